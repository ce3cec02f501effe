package process

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
)

type Process struct {
	cron   *cron.Cron
	core   *core.Core
	ctx    context.Context
	cancel context.CancelFunc
}

var p *Process

type ProcessKey struct{}

func NewProcess(core *core.Core) *Process {
	ctx, cancel := context.WithCancel(context.Background())
	p = &Process{
		cron:   cron.New(),
		core:   core,
		ctx:    ctx,
		cancel: cancel,
	}

	for _, h := range register.ResolveFuncHandlers[*Process](ProcessKey{}) {
		h(p)
	}

	return p
}

func (p *Process) Cron() *cron.Cron {
	return p.cron
}

func (p *Process) Core() *core.Core {
	return p.core
}

func (p *Process) Start() {
	RunDispatcher(p.ctx, p.core)
	p.cron.Start()
}

func (p *Process) Stop() {
	p.cancel()
	if p.cron != nil {
		ctx := p.cron.Stop()
		<-ctx.Done()
	}
}

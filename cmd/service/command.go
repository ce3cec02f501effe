package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1/process"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "chat delivery service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v1.RunTypingSweeper(ctx, app)
	v1.ForwardSyncEvents(ctx, app)

	p := process.NewProcess(app)
	p.Start()
	defer p.Stop()

	serve(app)

	return nil
}

// NewProcessCommand runs the background workers without the HTTP surface, for
// a dedicated dispatcher instance.
func NewProcessCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunProcess(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func RunProcess(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))

	p := process.NewProcess(app)
	p.Start()
	defer p.Stop()

	fmt.Println("Process starting...")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	return nil
}

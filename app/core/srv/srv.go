package srv

type Srv struct {
	rbac  *RBACSrv
	tower *Tower
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{
		rbac: SetupRBACSrv(),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Srv) RBAC() *RBACSrv {
	return s.rbac
}

func (s *Srv) Tower() *Tower {
	return s.tower
}

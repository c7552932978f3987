package hostapi

// Shim wraps a discovered API with fail-soft calls. No method panics or
// returns an error; failures surface as false.
type Shim struct {
	start    Frame
	api      API
	fallback bool
	inited   bool
	ok       bool
}

func NewShim(start Frame) *Shim {
	return &Shim{start: start}
}

// Initialize discovers the host API on first use and calls LMSInitialize.
// Later calls return the first result without touching the host again.
func (s *Shim) Initialize() bool {
	if s.inited {
		return s.ok
	}
	s.inited = true
	s.api = Discover(s.start)
	if s.api == nil {
		s.api = noopAPI{}
		s.fallback = true
	}
	s.ok = call(func() string { return s.api.LMSInitialize("") })
	return s.ok
}

func (s *Shim) Set(key, value string) bool {
	s.Initialize()
	return call(func() string { return s.api.LMSSetValue(key, value) })
}

func (s *Shim) Commit() bool {
	s.Initialize()
	return call(func() string { return s.api.LMSCommit("") })
}

func (s *Shim) Finish() bool {
	s.Initialize()
	return call(func() string { return s.api.LMSFinish("") })
}

// Fallback reports whether no host was found and the no-op API is in use.
func (s *Shim) Fallback() bool { return s.fallback }

func call(fn func() string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return fn() == "true"
}

type noopAPI struct{}

func (noopAPI) LMSInitialize(string) string    { return "true" }
func (noopAPI) LMSSetValue(_, _ string) string { return "true" }
func (noopAPI) LMSCommit(string) string        { return "true" }
func (noopAPI) LMSFinish(string) string        { return "true" }

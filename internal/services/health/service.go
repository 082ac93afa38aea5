package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Checker reports whether one dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	checks map[string]Checker
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Checker{}}
}

// Register adds a named dependency check. A nil checker is ignored.
func (s *Service) Register(name string, c Checker) {
	if c == nil {
		return
	}
	s.checks[name] = c
}

// RegisterPinger adds a check that pings p.
func (s *Service) RegisterPinger(name string, p Pinger) {
	if p == nil {
		return
	}
	s.Register(name, CheckFunc(p.PingContext))
}

// Status runs every check and returns the payload with an overall ok flag.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ok := true
	deps := make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name].Check(cctx)
		cancel()
		if err != nil {
			ok = false
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}

	payload := map[string]any{"ok": ok}
	if len(deps) > 0 {
		payload["dependencies"] = deps
	}
	return payload, ok
}

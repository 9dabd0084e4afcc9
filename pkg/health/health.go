// Package health provides Kubernetes-style liveness and readiness probes.
//
// Probes run on a shared ticker in background goroutines. Thresholds guard
// against flapping: a probe flips to failing only after failAfter consecutive
// errors and back to passing after okAfter consecutive successes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailAfter = 3
	defaultOKAfter   = 1
)

// probe carries a single check and its debounced state. The pass flag and the
// last error are read by HTTP handlers concurrently with the runner goroutine;
// the consecutive counters are touched only by the runner.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	pass    atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, check: check}
	p.pass.Store(true)
	return p
}

func (p *probe) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)

	if err != nil {
		p.oks = 0
		if p.fails++; p.fails >= defaultFailAfter {
			p.pass.Store(false)
		}
		return
	}
	p.fails = 0
	if p.oks++; p.oks >= defaultOKAfter {
		p.pass.Store(true)
	}
}

func (p *probe) failure() (string, bool) {
	if p.pass.Load() {
		return "", false
	}
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error(), true
	}
	return "probe is failing", true
}

// Service aggregates liveness and readiness probes and exposes them as HTTP
// endpoints. The zero value is unusable; call New.
type Service struct {
	ready atomic.Bool

	mu     sync.RWMutex
	live   []*probe
	readyP []*probe
	cancel context.CancelFunc
}

// New creates a Service in the not-ready state. Call SetReady(true) once
// initialization completes.
func New() *Service {
	return &Service{}
}

// AddLiveness registers a liveness probe: is the process itself functioning.
func (s *Service) AddLiveness(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = append(s.live, newProbe(name, timeout, check))
}

// AddReadiness registers a readiness probe: can the service take traffic.
func (s *Service) AddReadiness(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyP = append(s.readyP, newProbe(name, timeout, check))
}

// Start launches one goroutine per registered probe, each ticking at the
// given interval until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := make([]*probe, 0, len(s.live)+len(s.readyP))
	probes = append(probes, s.live...)
	probes = append(probes, s.readyP...)
	s.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.tick(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tick(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set false during graceful
// shutdown so load balancers drain the instance.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// passes.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}

	s.mu.RLock()
	probes := s.readyP
	s.mu.RUnlock()

	for _, p := range probes {
		if _, failed := p.failure(); failed {
			return false
		}
	}
	return true
}

type probeStatus struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

// LiveHandler serves the /livez endpoint: 200 when all liveness probes pass,
// 503 with the failure map otherwise.
func (s *Service) LiveHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	probes := make([]*probe, len(s.live))
	copy(probes, s.live)
	s.mu.RUnlock()

	writeProbeStatus(w, failures(probes))
}

// ReadyHandler serves the /readyz endpoint: 200 when the manual gate is open
// and all readiness probes pass, 503 with details otherwise.
func (s *Service) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	probes := make([]*probe, len(s.readyP))
	copy(probes, s.readyP)
	s.mu.RUnlock()

	fails := failures(probes)
	if !s.ready.Load() {
		fails["_gate"] = "service is not ready"
	}
	writeProbeStatus(w, fails)
}

func failures(probes []*probe) map[string]string {
	fails := make(map[string]string)
	for _, p := range probes {
		if msg, failed := p.failure(); failed {
			fails[p.name] = msg
		}
	}
	return fails
}

func writeProbeStatus(w http.ResponseWriter, fails map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeStatus{Status: "pass"}
	code := http.StatusOK
	if len(fails) > 0 {
		resp.Status = "fail"
		resp.Failures = fails
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

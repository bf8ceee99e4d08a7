package simulator

import (
	"fmt"
	"sync"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/spikes"
)

// State is the lifecycle state of a Simulator.
type State int

const (
	// StateIdle means no graph has been compiled.
	StateIdle State = iota
	// StateCompiled means a plan is ready to run.
	StateCompiled
	// StateRunning means a run is in progress.
	StateRunning
	// StateHalted means the last run completed.
	StateHalted
)

var stateNames = [...]string{"idle", "compiled", "running", "halted"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Simulator wraps a Plan with the compile/run lifecycle.
//
// Compile is all-or-nothing: a failed compile leaves the previous plan and
// state untouched. Run may be called repeatedly; each run starts from the
// initial potentials.
type Simulator struct {
	mu    sync.Mutex
	cfg   config
	plan  *Plan
	state State
}

// New creates a simulator in the idle state.
func New(opts ...Option) *Simulator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Simulator{cfg: cfg}
}

// Compile builds the execution plan for g.
func (s *Simulator) Compile(g *ir.Graph) error {
	p, err := compile(g, s.cfg)
	if err != nil {
		s.cfg.logger.Warn("compile failed", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
	s.state = StateCompiled
	return nil
}

// Run executes the compiled plan for steps steps.
func (s *Simulator) Run(steps int) (*spikes.Record, error) {
	s.mu.Lock()
	p := s.plan
	if p == nil {
		s.mu.Unlock()
		return nil, newError(ErrCodeNotCompiled, -1, "run called before a successful compile")
	}
	if steps < 0 {
		s.mu.Unlock()
		return nil, newError(ErrCodeInvalidSteps, -1, "step count %d is negative", steps)
	}
	s.state = StateRunning
	s.mu.Unlock()

	rec, err := p.Execute(steps)

	s.mu.Lock()
	s.state = StateHalted
	s.mu.Unlock()
	return rec, err
}

// State returns the current lifecycle state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Plan returns the compiled plan, or nil.
func (s *Simulator) Plan() *Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

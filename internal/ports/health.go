package ports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned when two checkers share a name.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// The meme engine probes its output directory, the quote service its loaded
// quotes, the catalog its photo directory and the download client its circuit.
type HealthChecker interface {
	// Name identifies the check in readiness responses.
	Name() string

	// Check returns nil when the component can serve requests.
	Check(ctx context.Context) error
}

// OptionalChecker is implemented by checkers whose failure degrades the
// service without taking it out of rotation. The download client is one:
// memes from local photos still work while remote hosts are failing.
type OptionalChecker interface {
	HealthChecker
	Optional() bool
}

// CheckerFunc adapts a plain function into a named HealthChecker.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name returns the checker name.
func (f CheckerFunc) Name() string { return f.CheckName }

// Check invokes the wrapped function.
func (f CheckerFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthRegistry aggregates the checkers registered at startup.
type HealthRegistry interface {
	// Register adds a checker. Names must be unique.
	Register(checker HealthChecker) error

	// CheckAll runs every checker concurrently and folds the results.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// rank orders statuses so the worst one wins when folding.
func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// Failed returns the names of checks that did not pass, sorted.
func (r *HealthResult) Failed() []string {
	var names []string

	for name, check := range r.Checks {
		if check.Status != HealthStatusHealthy {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe HealthRegistry. Each check runs
// under CheckTimeout when it is positive.
type DefaultHealthRegistry struct {
	CheckTimeout time.Duration

	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates an empty registry with a two second per-check timeout.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		CheckTimeout: 2 * time.Second,
		checkers:     make([]HealthChecker, 0),
	}
}

// Register adds a checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every checker concurrently. A failing optional checker marks
// the result degraded; any other failure marks it unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = r.run(ctx, checker)
			return nil
		})
	}

	_ = g.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		res := results[i]
		out.Checks[checker.Name()] = res

		if res.Status.rank() > out.Status.rank() {
			out.Status = res.Status
		}
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, checker HealthChecker) *CheckResult {
	if r.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.CheckTimeout)

		defer cancel()
	}

	start := time.Now()
	err := checker.Check(ctx)

	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
	if err == nil {
		return res
	}

	res.Message = err.Error()
	res.Status = HealthStatusUnhealthy

	if opt, ok := checker.(OptionalChecker); ok && opt.Optional() {
		res.Status = HealthStatusDegraded
	}

	return res
}

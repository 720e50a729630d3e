package health

import (
	"context"
	"strings"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

// CheckResult is one entry of the /health/ready checks array.
type CheckResult struct {
	Name       string  `json:"name"`
	Healthy    bool    `json:"healthy"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Checker reports on one catalog dependency: the database, the catalog
// schema or the Redis read cache.
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// ProbeRunner gates /health/ready. Each checker runs under its own timeout
// and the API reports unready while the startup grace period is active.
type ProbeRunner struct {
	checkers    []Checker
	timeout     time.Duration
	gracePeriod time.Duration
	startedAt   time.Time
}

// NewProbeRunner drops nil checkers so optional dependencies can be passed
// unconditionally.
func NewProbeRunner(timeout, gracePeriod time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}
	active := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			active = append(active, c)
		}
	}
	return &ProbeRunner{
		checkers:    active,
		timeout:     timeout,
		gracePeriod: gracePeriod,
		startedAt:   time.Now(),
	}
}

func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	if r == nil {
		return true, nil
	}
	if r.gracePeriod > 0 && time.Since(r.startedAt) < r.gracePeriod {
		observability.RecordHealthCheckResult(ctx, "startup_grace", "unready")
		return false, []CheckResult{{Name: "startup_grace", Healthy: false, Error: "startup grace period active"}}
	}
	results := make([]CheckResult, 0, len(r.checkers))
	allHealthy := true
	for _, c := range r.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		res := c.Check(checkCtx)
		cancel()
		elapsed := time.Since(start)
		res.DurationMS = float64(elapsed.Microseconds()) / 1000.0
		observability.RecordHealthCheckDuration(ctx, res.Name, elapsed)
		outcome := "ready"
		if !res.Healthy {
			outcome = "unready"
			allHealthy = false
		}
		observability.RecordHealthCheckResult(ctx, res.Name, outcome)
		results = append(results, res)
	}
	return allHealthy, results
}

// UnreadySummary joins the names of failing checks, e.g. "db, schema".
func UnreadySummary(results []CheckResult) string {
	names := make([]string, 0, len(results))
	for _, res := range results {
		if !res.Healthy {
			names = append(names, res.Name)
		}
	}
	return strings.Join(names, ", ")
}

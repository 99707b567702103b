package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// WithTimeout bounds a single checker, e.g. a call to a remote API.
func WithTimeout(c HealthChecker, d time.Duration) HealthChecker {
	return HealthCheckFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Check(ctx)
	})
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

// runChecks runs every checker concurrently and reports each result.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	health := HealthStatus{
		Status:    statusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			cs := CheckStatus{Status: statusHealthy, Duration: time.Since(start).String()}
			if err != nil {
				cs.Status = statusUnhealthy
				cs.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			health.Checks[name] = cs
			if err != nil {
				health.Status = statusUnhealthy
			}
		}()
	}
	wg.Wait()
	return health
}

func writeHealth(w http.ResponseWriter, health HealthStatus) {
	code := http.StatusOK
	if health.Status != statusHealthy && health.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}

// HealthHandler reports every dependency; 503 when any of them fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		writeHealth(w, runChecks(ctx, checkers))
	}
}

// ReadinessHandler runs the same checks but answers "ready"/"not_ready",
// for load balancers that only look at the status code.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := runChecks(ctx, checkers)
		if health.Status == statusHealthy {
			health.Status = "ready"
		} else {
			health.Status = "not_ready"
		}
		writeHealth(w, health)
	}
}

// LivenessHandler always answers "ok" while the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

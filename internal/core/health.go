package core

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the whole probe fan-out. A probe that cannot
// answer within it is reported as unhealthy rather than holding the endpoint
// open.
const healthCheckTimeout = 2 * time.Second

// HealthProbe is one dependency check run by GET /health. The dashboard
// registers one probe per critical dependency, such as the export data
// directory.
type HealthProbe interface {
	// Name identifies the probe in the response body (e.g. "snow_data").
	Name() string

	// Check reports whether the dependency is usable. It must respect ctx;
	// the health handler imposes a short deadline.
	Check(ctx context.Context) error
}

// componentStatus is the per-dependency entry of the health response.
type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every registered probe in parallel under a shared
// deadline and reports 200 when all pass, 503 otherwise. Probes that have
// not answered when the deadline fires are reported as timed out; a
// panicking probe is contained and reported as unhealthy.
//
// The endpoint is public and mounted at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.HealthProbes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	type outcome struct {
		name string
		err  error
	}
	outcomes := make(chan outcome, len(s.HealthProbes))

	for _, probe := range s.HealthProbes {
		probe := probe
		go func() {
			outcomes <- outcome{name: probe.Name(), err: runProbe(ctx, probe)}
		}()
	}

	components := make(map[string]componentStatus, len(s.HealthProbes))
	healthy := true

	pending := len(s.HealthProbes)
	for pending > 0 && ctx.Err() == nil {
		select {
		case o := <-outcomes:
			pending--
			if o.err != nil {
				healthy = false
				components[o.name] = componentStatus{Status: "unhealthy", Message: o.err.Error()}
			} else {
				components[o.name] = componentStatus{Status: "healthy"}
			}
		case <-ctx.Done():
		}
	}

	// Probes still pending after the deadline are reported without waiting
	// for them; their goroutines drain into the buffered channel.
	if pending > 0 {
		healthy = false
		for _, probe := range s.HealthProbes {
			if _, ok := components[probe.Name()]; !ok {
				components[probe.Name()] = componentStatus{
					Status:  "unhealthy",
					Message: "probe deadline exceeded",
				}
			}
		}
	}

	resp := healthResponse{Status: "healthy", Components: components}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	JSON(w, r, status, resp)
}

// runProbe executes one probe, containing panics so a broken probe cannot
// take down the endpoint.
func runProbe(ctx context.Context, p HealthProbe) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("probe panic: %v", v)
		}
	}()
	return p.Check(ctx)
}

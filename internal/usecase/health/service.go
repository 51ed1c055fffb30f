package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failed load or an unreachable source.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents int
}

// Service coordinates health checks.
type Service struct {
	loads  LoadStatusReader
	source SourcePinger
}

// New creates a Service. source can be nil.
func New(loads LoadStatusReader, source SourcePinger) *Service {
	return &Service{loads: loads, source: source}
}

// Check reports whether the last document load succeeded and the source is reachable.
// A failed load still serves (an empty collection), so it degrades rather than fails.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	last := s.loads.Status()
	if last.OK() {
		checks["documents"] = CheckOK
	} else {
		checks["documents"] = CheckError
	}

	if s.source != nil {
		if err := s.source.Ping(ctx); err != nil {
			checks["source"] = CheckError
		} else {
			checks["source"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Documents: last.Documents}
}

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// --- Mocks ---

type mockLoads struct {
	report store.Report
}

func (m *mockLoads) Status() store.Report { return m.report }

type mockSource struct {
	err error
}

func (m *mockSource) Ping(_ context.Context) error { return m.err }

func loaded(n int) *mockLoads {
	return &mockLoads{report: store.Report{SnapshotID: "snap", Documents: n}}
}

func failed(err error) *mockLoads {
	return &mockLoads{report: store.Report{SnapshotID: "snap", Err: err}}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(loaded(4), &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["documents"] != CheckOK {
		t.Errorf("expected documents %q, got %q", CheckOK, r.Checks["documents"])
	}
	if r.Checks["source"] != CheckOK {
		t.Errorf("expected source %q, got %q", CheckOK, r.Checks["source"])
	}
	if r.Documents != 4 {
		t.Errorf("Documents = %d, want 4", r.Documents)
	}
}

func TestCheck_LoadFailed(t *testing.T) {
	svc := New(failed(errors.New("missing file")), &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["documents"] != CheckError {
		t.Errorf("expected documents %q, got %q", CheckError, r.Checks["documents"])
	}
	if r.Checks["source"] != CheckOK {
		t.Errorf("expected source %q, got %q", CheckOK, r.Checks["source"])
	}
}

func TestCheck_SourceDown(t *testing.T) {
	svc := New(loaded(1), &mockSource{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["source"] != CheckError {
		t.Errorf("expected source %q, got %q", CheckError, r.Checks["source"])
	}
}

func TestCheck_NoSource(t *testing.T) {
	svc := New(loaded(0), nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["source"]; ok {
		t.Error("source check should be absent when source is nil")
	}
}

func TestCheck_NoSource_LoadFailed(t *testing.T) {
	svc := New(failed(errors.New("bad json")), nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["documents"] != CheckError {
		t.Error("expected documents error")
	}
}

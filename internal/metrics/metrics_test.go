package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	m := New("")
	m.RecordRun(nil)
	m.RecordRun(errors.New("boom"))
	m.RecordRun(errors.New("boom"))

	if got := testutil.ToFloat64(m.Runs.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(ResultFailed)); got != 2 {
		t.Errorf("expected 2 failures, got %v", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := New("")
	m.ObserveRequest("GetStack", 200, 20*time.Millisecond)
	m.ObserveRequest("GetStack", 0, time.Second)

	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("expected 2 series, got %d", got)
	}
}

func TestPushDisabled(t *testing.T) {
	m := New("")
	if m.Available() {
		t.Error("metrics should not be available without a pushgateway")
	}
	if err := m.Push(context.Background()); err != nil {
		t.Errorf("Push without gateway failed: %v", err)
	}
}

func TestPush(t *testing.T) {
	var path, body string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := New(gateway.URL)
	m.RecordRun(nil)
	if err := m.Push(context.Background()); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if path != "/metrics/job/lizzy_client" {
		t.Errorf("unexpected push path %q", path)
	}
	if !strings.Contains(body, "lizzy_client_runs_total") {
		t.Errorf("runs counter missing from push")
	}
}

func TestPushFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer gateway.Close()

	m := New(gateway.URL)
	if err := m.Push(context.Background()); err == nil {
		t.Error("expected push error")
	}
}

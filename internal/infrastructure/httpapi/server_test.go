package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

// fakeRunner records the trigger it was handed and returns a canned run.
type fakeRunner struct {
	status  domain.RunStatus
	trigger domain.Trigger
	called  bool
}

func (f *fakeRunner) Run(ctx context.Context, trigger domain.Trigger) domain.WorkflowRun {
	f.called = true
	f.trigger = trigger
	return domain.WorkflowRun{
		Workflow: "test",
		Trigger:  trigger,
		Steps:    []domain.StepResult{{Name: "step", Status: domain.StepSuccess}},
		Status:   f.status,
	}
}

func TestHandleUserCreated(t *testing.T) {
	t.Parallel()

	welcome := &fakeRunner{status: domain.RunSuccess}
	srv := NewServer(":0", &fakeRunner{}, welcome, nil)

	body := `{"email":"new@example.com","name":"Jordan"}`
	req := httptest.NewRequest(http.MethodPost, "/api/workflows/user-created", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !welcome.called {
		t.Fatal("welcome workflow not invoked")
	}
	if welcome.trigger.Kind != domain.TriggerEvent || welcome.trigger.Event != "app/user.created" {
		t.Fatalf("unexpected trigger: %+v", welcome.trigger)
	}
	if string(welcome.trigger.Payload) != body {
		t.Fatal("payload not forwarded verbatim")
	}

	var run domain.WorkflowRun
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("response is not a run summary: %v", err)
	}
	if run.Status != domain.RunSuccess || len(run.Steps) != 1 {
		t.Fatalf("unexpected run summary: %+v", run)
	}
}

func TestHandleUserCreatedRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	welcome := &fakeRunner{}
	srv := NewServer(":0", &fakeRunner{}, welcome, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/workflows/user-created", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if welcome.called {
		t.Fatal("workflow must not run on a malformed payload")
	}
}

func TestHandleDailyDigest(t *testing.T) {
	t.Parallel()

	digest := &fakeRunner{status: domain.RunPartialFailure}
	srv := NewServer(":0", digest, &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/workflows/daily-digest", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("partial failure still answers 200, got %d", rec.Code)
	}
	if !digest.called {
		t.Fatal("digest workflow not invoked")
	}
	if digest.trigger.Event != "app.send.daily.news" {
		t.Fatalf("unexpected event name: %s", digest.trigger.Event)
	}
}

func TestHandleDailyDigestFailedRunMapsTo500(t *testing.T) {
	t.Parallel()

	digest := &fakeRunner{status: domain.RunFailed}
	srv := NewServer(":0", digest, &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/workflows/daily-digest", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeRunner{}, &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

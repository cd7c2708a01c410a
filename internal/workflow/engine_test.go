package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

func testEngine() *Engine {
	return New(nil).WithBackoff(time.Millisecond)
}

func TestExecuteAllStepsSucceed(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "one", Run: func(ctx context.Context) (any, error) { return 1, nil }},
		{Name: "two", Run: func(ctx context.Context) (any, error) { return "done", nil }},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Status != domain.RunSuccess {
		t.Fatalf("status = %s, want success", run.Status)
	}
	if len(run.Steps) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(run.Steps))
	}
	if run.Steps[0].Name != "one" || run.Steps[1].Name != "two" {
		t.Fatalf("step names lost: %+v", run.Steps)
	}
	if run.Steps[1].Output != "done" {
		t.Fatalf("output lost: %v", run.Steps[1].Output)
	}
}

func TestExecuteFatalStepStopsRun(t *testing.T) {
	t.Parallel()

	called := false
	steps := []Step{
		{Name: "boom", Fatal: true, Run: func(ctx context.Context) (any, error) {
			return nil, errors.New("fatal problem")
		}},
		{Name: "never", Run: func(ctx context.Context) (any, error) {
			called = true
			return nil, nil
		}},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Status != domain.RunFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if len(run.Steps) != 1 {
		t.Fatalf("no results should be recorded past a fatal failure, got %d", len(run.Steps))
	}
	if called {
		t.Fatal("step after fatal failure must not execute")
	}
}

func TestExecuteNonFatalFailureDowngradesRun(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "flaky", Run: func(ctx context.Context) (any, error) { return nil, errors.New("nope") }},
		{Name: "after", Run: func(ctx context.Context) (any, error) { return "ok", nil }},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Status != domain.RunPartialFailure {
		t.Fatalf("status = %s, want partial_failure", run.Status)
	}
	if len(run.Steps) != 2 {
		t.Fatalf("expected both steps recorded, got %d", len(run.Steps))
	}
	if run.Steps[0].Status != domain.StepFailed || run.Steps[1].Status != domain.StepSuccess {
		t.Fatalf("unexpected step statuses: %+v", run.Steps)
	}
}

func TestExecutePartialKeepsOutput(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "degraded", Run: func(ctx context.Context) (any, error) {
			return 5, Partial(errors.New("2 branches failed"))
		}},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Status != domain.RunPartialFailure {
		t.Fatalf("status = %s, want partial_failure", run.Status)
	}
	step := run.Steps[0]
	if step.Status != domain.StepSuccess {
		t.Fatalf("degraded step should stay successful, got %s", step.Status)
	}
	if step.Output != 5 || step.Error == "" {
		t.Fatalf("degraded step should keep output and error detail: %+v", step)
	}
}

func TestExecuteSkippedStep(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "nothing-to-do", Run: func(ctx context.Context) (any, error) { return nil, ErrSkipStep }},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Status != domain.RunSuccess {
		t.Fatalf("a skip is not a failure, got %s", run.Status)
	}
	if run.Steps[0].Status != domain.StepSkipped {
		t.Fatalf("step status = %s, want skipped", run.Steps[0].Status)
	}
}

func TestInvokeRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	attempts := 0
	steps := []Step{
		{Name: "flaky", Retries: 2, Run: func(ctx context.Context) (any, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return "finally", nil
		}},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if run.Status != domain.RunSuccess {
		t.Fatalf("status = %s, want success", run.Status)
	}
}

func TestInvokeExhaustsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	steps := []Step{
		{Name: "hopeless", Retries: 2, Run: func(ctx context.Context) (any, error) {
			attempts++
			return nil, errors.New("still broken")
		}},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if run.Steps[0].Status != domain.StepFailed {
		t.Fatalf("step status = %s, want failed", run.Steps[0].Status)
	}
}

func TestInvokeTerminalFailureSkipsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	steps := []Step{
		{Name: "deterministic", Retries: 2, Run: func(ctx context.Context) (any, error) {
			attempts++
			return nil, Terminal(errors.New("nothing to process"))
		}},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if attempts != 1 {
		t.Fatalf("terminal failure must not be retried, got %d attempts", attempts)
	}
	if run.Steps[0].Status != domain.StepFailed {
		t.Fatalf("step status = %s, want failed", run.Steps[0].Status)
	}
	if run.Steps[0].Error != "nothing to process" {
		t.Fatalf("error detail lost: %s", run.Steps[0].Error)
	}
}

func TestInvokeRecoversPanics(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "panicky", Run: func(ctx context.Context) (any, error) { panic("oops") }},
		{Name: "after", Run: func(ctx context.Context) (any, error) { return nil, nil }},
	}

	run := testEngine().Execute(context.Background(), "wf", CronTrigger(time.Now()), steps)

	if run.Steps[0].Status != domain.StepFailed {
		t.Fatalf("panicking step should fail, got %s", run.Steps[0].Status)
	}
	if len(run.Steps) != 2 {
		t.Fatal("run should continue past a non-fatal panic")
	}
}

func TestTriggerShapes(t *testing.T) {
	t.Parallel()

	event := EventTrigger("app/user.created", []byte(`{"email":"a@b.c"}`))
	if event.Kind != domain.TriggerEvent || event.Event != "app/user.created" {
		t.Fatalf("unexpected event trigger: %+v", event)
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := CronTrigger(at)
	if tick.Kind != domain.TriggerCron || !tick.FiredAt.Equal(at) || tick.Payload != nil {
		t.Fatalf("unexpected cron trigger: %+v", tick)
	}
}

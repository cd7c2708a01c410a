package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

// ErrSkipStep signals that a step had nothing to do; the engine records it as
// Skipped and continues with the run.
var ErrSkipStep = errors.New("workflow: step skipped")

// partialError marks a step that produced usable output in degraded form.
type partialError struct{ err error }

func (p *partialError) Error() string { return p.err.Error() }
func (p *partialError) Unwrap() error { return p.err }

// Partial wraps err so the engine records the step as successful but
// downgrades the run to PartialFailure. Steps return it together with their
// output when some fan-out branches failed while the step as a whole still
// produced a result.
func Partial(err error) error {
	if err == nil {
		return nil
	}
	return &partialError{err: err}
}

// terminalError marks a failure retrying cannot fix.
type terminalError struct{ err error }

func (t *terminalError) Error() string { return t.err.Error() }
func (t *terminalError) Unwrap() error { return t.err }

// Terminal wraps err so the step fails on the first attempt, skipping any
// configured retries. Steps return it for deterministic failures where a
// second attempt would only repeat the same answer.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// Step is one named, retryable unit of work within a run. Run returns an
// output payload recorded on the step result, plus an error classified as
// plain failure, ErrSkipStep, a Partial degradation, or a Terminal failure.
type Step struct {
	Name    string
	Fatal   bool // failure terminates the run
	Retries int  // additional attempts after the first
	Run     func(ctx context.Context) (any, error)
}

// Engine executes step sequences and records their outcomes. It owns the
// retry/backoff policy so steps stay plain functions of their collaborators.
type Engine struct {
	logger  *slog.Logger
	backoff time.Duration
}

// New builds an engine; the logger may be nil.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, backoff: time.Second}
}

// WithBackoff overrides the base retry delay; each retry doubles it.
func (e *Engine) WithBackoff(d time.Duration) *Engine {
	e.backoff = d
	return e
}

// EventTrigger describes an ad-hoc invocation carrying a payload.
func EventTrigger(event string, payload json.RawMessage) domain.Trigger {
	return domain.Trigger{Kind: domain.TriggerEvent, Event: event, Payload: payload, FiredAt: time.Now()}
}

// CronTrigger describes a scheduled tick with no payload.
func CronTrigger(firedAt time.Time) domain.Trigger {
	return domain.Trigger{Kind: domain.TriggerCron, FiredAt: firedAt}
}

// Execute runs the steps in order for the given trigger. A fatal step's
// failure terminates the run as Failed without recording later steps; any
// other failure or degradation downgrades the run to PartialFailure. Given
// the same trigger and external state, the run shape (step names and count)
// is the same on every execution.
func (e *Engine) Execute(ctx context.Context, name string, trigger domain.Trigger, steps []Step) domain.WorkflowRun {
	run := domain.WorkflowRun{
		Workflow: name,
		Trigger:  trigger,
		Steps:    make([]domain.StepResult, 0, len(steps)),
		Status:   domain.RunSuccess,
	}

	log := e.logger.With("workflow", name, "trigger", string(trigger.Kind))
	log.Info("run started", "steps", len(steps))

	for _, step := range steps {
		result := e.invoke(ctx, log, step)
		run.Steps = append(run.Steps, result)

		if result.Status == domain.StepFailed {
			if step.Fatal {
				run.Status = domain.RunFailed
				log.Error("fatal step failed", "step", step.Name, "error", result.Error)
				return run
			}
			run.Status = domain.RunPartialFailure
			continue
		}

		// A successful step carrying error detail ran degraded.
		if result.Status == domain.StepSuccess && result.Error != "" && run.Status == domain.RunSuccess {
			run.Status = domain.RunPartialFailure
		}
	}

	log.Info("run finished", "status", string(run.Status))
	return run
}

// invoke executes one step with the engine's retry policy. Only plain
// failures are retried; skips, partial degradations, and terminal failures
// end the step on the attempt that produced them.
func (e *Engine) invoke(ctx context.Context, log *slog.Logger, step Step) domain.StepResult {
	var (
		output any
		err    error
	)

	attempts := step.Retries + 1
	for i := 0; i < attempts; i++ {
		output, err = e.attempt(ctx, step)
		if err == nil || errors.Is(err, ErrSkipStep) || isPartial(err) || isTerminal(err) {
			break
		}
		if i == attempts-1 {
			break
		}
		log.Warn("step retrying", "step", step.Name, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			log.Error("step canceled", "step", step.Name)
			return domain.StepResult{Name: step.Name, Status: domain.StepFailed, Error: ctx.Err().Error()}
		case <-time.After(e.backoff << uint(i)):
		}
	}

	switch {
	case err == nil:
		log.Info("step completed", "step", step.Name)
		return domain.StepResult{Name: step.Name, Status: domain.StepSuccess, Output: output}
	case errors.Is(err, ErrSkipStep):
		log.Info("step skipped", "step", step.Name)
		return domain.StepResult{Name: step.Name, Status: domain.StepSkipped}
	case isPartial(err):
		log.Warn("step degraded", "step", step.Name, "error", err)
		return domain.StepResult{Name: step.Name, Status: domain.StepSuccess, Error: err.Error(), Output: output}
	default:
		log.Error("step failed", "step", step.Name, "error", err)
		return domain.StepResult{Name: step.Name, Status: domain.StepFailed, Error: err.Error()}
	}
}

// attempt runs the step body behind a recover boundary so a panicking step is
// reported as a failed step, not a crashed run.
func (e *Engine) attempt(ctx context.Context, step Step) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("step %s panicked: %v", step.Name, r)
		}
	}()
	return step.Run(ctx)
}

func isPartial(err error) bool {
	var p *partialError
	return errors.As(err, &p)
}

func isTerminal(err error) bool {
	var t *terminalError
	return errors.As(err, &t)
}

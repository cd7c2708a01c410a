package domain

import (
	"encoding/json"
	"time"
)

// RunStatus is the terminal outcome of a workflow run.
type RunStatus string

const (
	RunSuccess        RunStatus = "success"
	RunPartialFailure RunStatus = "partial_failure"
	RunFailed         RunStatus = "failed"
)

// StepStatus describes how a single step ended.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// TriggerKind distinguishes ad-hoc event invocations from scheduled ticks.
type TriggerKind string

const (
	TriggerEvent TriggerKind = "event"
	TriggerCron  TriggerKind = "cron"
)

// Trigger describes what started a workflow run. Event triggers carry a
// payload; cron triggers carry only the fire time.
type Trigger struct {
	Kind    TriggerKind     `json:"kind"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	FiredAt time.Time       `json:"firedAt"`
}

// StepResult records the outcome of one named step. A successful step that
// still carries error detail completed in degraded form (some fan-out
// branches failed) and downgrades the run to PartialFailure.
type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
	Output any        `json:"output,omitempty"`
}

// WorkflowRun is one execution instance: the trigger, every recorded step
// outcome in order, and the overall status. Runs are returned to the
// caller/scheduler; durable storage of them is owned elsewhere.
type WorkflowRun struct {
	Workflow string       `json:"workflow"`
	Trigger  Trigger      `json:"trigger"`
	Steps    []StepResult `json:"steps"`
	Status   RunStatus    `json:"status"`
}

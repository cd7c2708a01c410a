package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/mail"
	"github.com/akashaba/stock-tracker-app/internal/ports"
	"github.com/akashaba/stock-tracker-app/internal/workflow"
)

// EventUserCreated triggers the welcome-email workflow.
const EventUserCreated = "app/user.created"

// defaultWelcomeIntro stands in when personalization fails; a new user still
// gets a welcome mail.
const defaultWelcomeIntro = "<p>Thanks for joining! You now have the tools to track markets and make smarter moves.</p>"

// UserCreatedEvent is the app/user.created payload.
type UserCreatedEvent struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investmentGoals"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredIndustry string `json:"preferredIndustry"`
}

// WelcomeDeps wires the welcome workflow's collaborators.
type WelcomeDeps struct {
	Summarizer ports.Summarizer
	Mailer     ports.MailSender
	Engine     *workflow.Engine
	Logger     *slog.Logger
}

// WelcomeWorkflow sends a personalized sign-up mail: parse the event,
// generate an intro via inference, deliver. Personalization is best-effort;
// delivery is fatal.
type WelcomeWorkflow struct {
	summarizer ports.Summarizer
	mailer     ports.MailSender
	engine     *workflow.Engine
	logger     *slog.Logger
}

// NewWelcomeWorkflow constructs the workflow from its dependencies.
func NewWelcomeWorkflow(deps WelcomeDeps) *WelcomeWorkflow {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WelcomeWorkflow{
		summarizer: deps.Summarizer,
		mailer:     deps.Mailer,
		engine:     deps.Engine,
		logger:     logger,
	}
}

// Run executes the welcome workflow for a user-created event trigger.
func (w *WelcomeWorkflow) Run(ctx context.Context, trigger domain.Trigger) domain.WorkflowRun {
	var event UserCreatedEvent

	// The default stands until inference replaces it, so delivery never
	// ships a blank intro even if the generate step dies outright.
	intro := defaultWelcomeIntro

	steps := []workflow.Step{
		{
			Name:  "parse-event",
			Fatal: true,
			Run: func(ctx context.Context) (any, error) {
				if err := json.Unmarshal(trigger.Payload, &event); err != nil {
					return nil, fmt.Errorf("decode user-created payload: %w", err)
				}
				if strings.TrimSpace(event.Email) == "" {
					return nil, fmt.Errorf("user-created payload missing email")
				}
				if strings.TrimSpace(event.Name) == "" {
					event.Name = "there"
				}
				return event.Email, nil
			},
		},
		{
			Name: "generate-welcome-intro",
			Run: func(ctx context.Context) (any, error) {
				text, err := w.summarizer.Summarize(ctx, WelcomeIntroPrompt(event))
				if err != nil {
					return intro, workflow.Partial(fmt.Errorf("welcome intro inference: %w", err))
				}
				if strings.TrimSpace(text) != "" {
					intro = text
				}
				return intro, nil
			},
		},
		{
			Name:    "send-welcome-email",
			Fatal:   true,
			Retries: 2,
			Run: func(ctx context.Context) (any, error) {
				body, err := mail.RenderWelcome(event.Name, intro)
				if err != nil {
					return nil, err
				}
				if err := w.mailer.Send(ctx, event.Email, mail.WelcomeSubject(), body); err != nil {
					return nil, fmt.Errorf("send welcome mail: %w", err)
				}
				return event.Email, nil
			},
		},
	}

	return w.engine.Execute(ctx, "sign-up-email", trigger, steps)
}

package interview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/esnunes/featurechat/internal/logger"
	"github.com/esnunes/featurechat/internal/models"
)

const (
	recordedMessage   = "Response recorded. "
	completionMessage = "Thank you! The feature has been fully documented. You can now use the 'analyze_feature' or 'suggest_architecture' prompts to get AI guidance on implementation."
)

// Engine walks discussions through the prompt script.
type Engine struct {
	store Store
	log   *logger.Logger
	now   func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

// Listener receives a copy of a discussion after it was created or answered.
type Listener func(ctx context.Context, d *models.Discussion)

type Option func(*Engine)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn for every successful Begin and Answer, whichever
// transport made the call.
func (e *Engine) Subscribe(fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) notify(ctx context.Context, d *models.Discussion) {
	e.mu.RLock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, d.Clone())
	}
}

type BeginResult struct {
	ID     string
	Title  string
	Prompt Prompt
}

// Message is the text shown to the user when a discussion starts.
func (r *BeginResult) Message() string {
	return fmt.Sprintf("Feature discussion started for: %s\n\nFeature ID: %s\n\nFirst question:\n%s",
		r.Title, r.ID, r.Prompt.Message)
}

func (e *Engine) Begin(ctx context.Context, title string) (*BeginResult, error) {
	first := FirstPrompt()
	d, _, err := e.store.Create(ctx, title, first.ID, e.now())
	if err != nil {
		return nil, fmt.Errorf("creating discussion: %w", err)
	}
	logger.FromContext(ctx, e.log).Info("discussion started", "discussion_id", d.ID, "title", title)
	e.notify(ctx, d)
	return &BeginResult{ID: d.ID, Title: d.Title, Prompt: first}, nil
}

type AnswerResult struct {
	Message  string
	Next     *Prompt // nil once the interview is complete
	Complete bool
}

// Answer records text as the answer to the discussion's current prompt and
// advances the cursor. A rejected call leaves the discussion untouched.
func (e *Engine) Answer(ctx context.Context, id, text string) (*AnswerResult, error) {
	log := logger.FromContext(ctx, e.log).With("discussion_id", id)

	var (
		res     AnswerResult
		updated *models.Discussion
	)
	err := e.store.Update(ctx, id, func(d *models.Discussion, c *models.Context) error {
		if d.Complete() {
			return fmt.Errorf("discussion %s is complete: %w", id, ErrInvalidState)
		}
		k := IndexOf(d.CurrentPrompt)
		current, ok := PromptAt(k)
		if !ok {
			return fmt.Errorf("discussion %s points at unknown prompt %q: %w", id, d.CurrentPrompt, ErrInvalidState)
		}

		now := e.now()
		d.Answers.Set(current.Field, Apply(current.Field, text))
		c.ConversationHistory = append(c.ConversationHistory, models.Exchange{
			Prompt:    current.Message,
			Response:  text,
			Timestamp: now,
		})

		if next, ok := PromptAt(k + 1); ok {
			d.CurrentPrompt = next.ID
			res = AnswerResult{
				Message: recordedMessage + "\n\nNext question:\n" + next.Message,
				Next:    &next,
			}
		} else {
			d.Status = models.StatusProposed
			d.CurrentPrompt = ""
			res = AnswerResult{
				Message:  recordedMessage + "\n\n" + completionMessage,
				Complete: true,
			}
		}
		d.UpdatedAt = now
		updated = d.Clone()
		return nil
	})
	if err != nil {
		log.Warn("answer rejected", "error", err)
		return nil, err
	}

	log.Info("answer recorded", "complete", res.Complete)
	e.notify(ctx, updated)
	return &res, nil
}

func (e *Engine) Read(ctx context.Context, id string) (*models.Discussion, *models.Context, error) {
	return e.store.Get(ctx, id)
}

type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (e *Engine) List(ctx context.Context) ([]Summary, error) {
	ds, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing discussions: %w", err)
	}
	out := make([]Summary, 0, len(ds))
	for _, d := range ds {
		out = append(out, Summary{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Answers.Get(models.FieldDescription).Text,
		})
	}
	return out, nil
}

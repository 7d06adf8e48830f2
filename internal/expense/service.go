package expense

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendtrail/internal/event"
	"spendtrail/internal/platform/config"
)

// Publisher is the slice of the event producer this service needs.
type Publisher interface {
	Publish(ctx context.Context, env event.Envelope) error
}

// Service persists expenses and emits the matching change events. Publish
// policy is fail-closed: if the event cannot be handed to the broker, the
// whole operation fails so the caller never sees a write the audit trail
// missed.
type Service struct {
	store    Store
	events   Publisher
	defaults config.Defaults
	now      func() time.Time
}

func NewService(store Store, events Publisher, defaults config.Defaults) *Service {
	return &Service{
		store:    store,
		events:   events,
		defaults: defaults,
		now:      time.Now,
	}
}

// eventPayload is the schema-specific slice of an expense carried inside the
// envelope.
type eventPayload struct {
	Amount        float64 `json:"amount"`
	Description   string  `json:"description,omitempty"`
	CategoryID    string  `json:"category,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Comment       string  `json:"comment,omitempty"`
}

// Create stores a new expense and publishes an ExpenseCreated event keyed to
// the owning user.
func (s *Service) Create(ctx context.Context, in CreateInput) (Expense, error) {
	if in.UserID == "" {
		return Expense{}, &event.ValidationError{Field: "userId", Reason: "must not be blank"}
	}
	if in.Amount <= 0 {
		return Expense{}, &event.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	exp := Expense{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		CategoryID:    in.CategoryID,
		Amount:        in.Amount,
		Description:   in.Description,
		PaymentMethod: in.PaymentMethod,
		Comment:       in.Comment,
		CreatedAt:     s.now().UTC(),
	}
	if exp.PaymentMethod == "" {
		exp.PaymentMethod = s.defaults.PaymentMethod
	}
	if exp.Comment == "" {
		exp.Comment = s.defaults.Comment
	}

	if err := s.store.Save(ctx, exp); err != nil {
		return Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publish(ctx, exp, "ExpenseCreated", event.ActionCreate, exp.CreatedAt); err != nil {
		return Expense{}, err
	}
	return exp, nil
}

// Update applies the changed fields and publishes an ExpenseUpdated event.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Expense, error) {
	if in.Amount < 0 {
		return Expense{}, &event.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	exp, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Expense{}, fmt.Errorf("find expense: %w", err)
	}
	if in.Amount > 0 {
		exp.Amount = in.Amount
	}
	if in.CategoryID != "" {
		exp.CategoryID = in.CategoryID
	}
	if in.Description != "" {
		exp.Description = in.Description
	}
	if in.PaymentMethod != "" {
		exp.PaymentMethod = in.PaymentMethod
	}
	if in.Comment != "" {
		exp.Comment = in.Comment
	}

	if err := s.store.Save(ctx, exp); err != nil {
		return Expense{}, fmt.Errorf("save expense: %w", err)
	}
	if err := s.publish(ctx, exp, "ExpenseUpdated", event.ActionUpdate, s.now().UTC()); err != nil {
		return Expense{}, err
	}
	return exp, nil
}

// Delete removes an expense and publishes an ExpenseDeleted event. Keying by
// the same user guarantees the delete is never observed before the create.
func (s *Service) Delete(ctx context.Context, id string) error {
	exp, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find expense: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return s.publish(ctx, exp, "ExpenseDeleted", event.ActionDelete, s.now().UTC())
}

// Get returns one expense by id.
func (s *Service) Get(ctx context.Context, id string) (Expense, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) publish(ctx context.Context, exp Expense, eventType string, action event.Action, ts time.Time) error {
	payload, err := json.Marshal(eventPayload{
		Amount:        exp.Amount,
		Description:   exp.Description,
		CategoryID:    exp.CategoryID,
		PaymentMethod: exp.PaymentMethod,
		Comment:       exp.Comment,
	})
	if err != nil {
		return fmt.Errorf("marshal expense payload: %w", err)
	}
	env := event.Envelope{
		EventType: eventType,
		EntityID:  exp.ID,
		UserID:    exp.UserID,
		Action:    action,
		Timestamp: ts,
		Payload:   payload,
	}
	if err := s.events.Publish(ctx, env); err != nil {
		return fmt.Errorf("expense %s stored but event not published: %w", exp.ID, err)
	}
	return nil
}

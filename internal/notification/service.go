// Package notification stores one-way notices addressed to members by personal id.
// Delivery is out of scope: a notice exists once it is stored.
package notification

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
)

type Notification struct {
	ID                  uuid.UUID `json:"id"`
	RecipientPersonalID string    `json:"recipientPersonalId"`
	Message             string    `json:"message"`
	CreatedAt           time.Time `json:"createdAt"`
}

// SendRequest is an admin-authored notice.
type SendRequest struct {
	RecipientPersonalID string `json:"recipientPersonalId"`
	Message             string `json:"message"`
}

type Store interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, personalID string) ([]*Notification, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send stores an admin notice and returns it.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Notification, error) {
	req.RecipientPersonalID = strings.TrimSpace(req.RecipientPersonalID)
	req.Message = strings.TrimSpace(req.Message)
	if req.RecipientPersonalID == "" || req.Message == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "recipientPersonalId and message are required")
	}
	n := &Notification{
		ID:                  uuid.New(),
		RecipientPersonalID: req.RecipientPersonalID,
		Message:             req.Message,
		CreatedAt:           requestcontext.Now(ctx),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store notification")
	}
	return n, nil
}

// Notify is the fire-and-forget sink used by the other contexts. Failures are
// logged and dropped.
func (s *Service) Notify(ctx context.Context, personalID, message string) {
	if _, err := s.Send(ctx, SendRequest{RecipientPersonalID: personalID, Message: message}); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"request_id", requestcontext.RequestID(ctx),
			"personal_id", personalID,
			"error", err.Error(),
		)
	}
}

// List returns a member's notices, newest first.
func (s *Service) List(ctx context.Context, personalID string) ([]*Notification, error) {
	personalID = strings.TrimSpace(personalID)
	if personalID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "personalId is required")
	}
	out, err := s.store.ListNotifications(ctx, personalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

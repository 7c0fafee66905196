// Package scraps handles the short public messages users leave on each
// other's profiles.
package scraps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/platform/id"
	"github.com/feliperosa/vinculo/internal/result"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
)

// Service owns scrap writes and reads.
type Service struct {
	users  storage.UserStore
	scraps storage.ScrapStore

	clock      func() time.Time
	generateID func() (string, error)
}

// NewService wires the scraps service over its stores.
func NewService(users storage.UserStore, scraps storage.ScrapStore) *Service {
	return &Service{
		users:      users,
		scraps:     scraps,
		clock:      time.Now,
		generateID: id.NewID,
	}
}

// Send appends a scrap from sender to recipient.
func (s *Service) Send(ctx context.Context, senderID, recipientID, message string) (result.Result[*fault.Fault, storage.Scrap], error) {
	var zero result.Result[*fault.Fault, storage.Scrap]
	if s == nil || s.scraps == nil {
		return zero, fmt.Errorf("scraps service not initialized")
	}
	if senderID == recipientID {
		return result.Fail[*fault.Fault, storage.Scrap](fault.New(fault.KindInvalidOperation, "cannot send a scrap to yourself")), nil
	}
	if strings.TrimSpace(message) == "" {
		return result.Fail[*fault.Fault, storage.Scrap](fault.New(fault.KindInvalidOperation, "scrap message is required")), nil
	}
	if _, err := s.users.GetUserByID(ctx, senderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return result.Fail[*fault.Fault, storage.Scrap](fault.New(fault.KindResourceNotFound, "sender not found")), nil
		}
		return zero, fmt.Errorf("get sender: %w", err)
	}
	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return result.Fail[*fault.Fault, storage.Scrap](fault.New(fault.KindResourceNotFound, "recipient not found")), nil
		}
		return zero, fmt.Errorf("get recipient: %w", err)
	}

	scrapID, err := s.generateID()
	if err != nil {
		return zero, fmt.Errorf("generate scrap id: %w", err)
	}
	scrap := storage.Scrap{
		ID:          scrapID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.scraps.CreateScrap(ctx, scrap); err != nil {
		return zero, fmt.Errorf("create scrap: %w", err)
	}
	return result.OK[*fault.Fault](scrap), nil
}

// ListReceived returns the scraps on a user's profile, oldest first.
func (s *Service) ListReceived(ctx context.Context, userID string) ([]storage.Scrap, error) {
	if s == nil || s.scraps == nil {
		return nil, fmt.Errorf("scraps service not initialized")
	}
	return s.scraps.ListScrapsByRecipient(ctx, userID)
}

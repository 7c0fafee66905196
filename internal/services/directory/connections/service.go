// Package connections manages the relationship edge between two users:
// a sender requests, the recipient accepts or declines, and either party
// can sever the edge afterwards.
package connections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/platform/id"
	"github.com/feliperosa/vinculo/internal/result"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
)

// Service owns the connection lifecycle. All operations take the acting
// user explicitly so authorization is checked here, not at the boundary.
type Service struct {
	users       storage.UserStore
	connections storage.ConnectionStore

	clock      func() time.Time
	generateID func() (string, error)
}

// NewService wires the connections service over its stores.
func NewService(users storage.UserStore, connections storage.ConnectionStore) *Service {
	return &Service{
		users:       users,
		connections: connections,
		clock:       time.Now,
		generateID:  id.NewID,
	}
}

// Request creates a PENDING edge from sender to recipient. At most one
// edge may exist per user pair in either direction, regardless of its
// status; a second request, or a request crossing an existing one, is a
// CONFLICT.
func (s *Service) Request(ctx context.Context, senderID, recipientID string) (result.Result[*fault.Fault, storage.Connection], error) {
	var zero result.Result[*fault.Fault, storage.Connection]
	if s == nil || s.connections == nil {
		return zero, fmt.Errorf("connections service not initialized")
	}
	if senderID == recipientID {
		return fail(fault.New(fault.KindInvalidOperation, "cannot request a connection with yourself")), nil
	}
	if _, err := s.users.GetUserByID(ctx, senderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(fault.New(fault.KindResourceNotFound, "sender not found")), nil
		}
		return zero, fmt.Errorf("get sender: %w", err)
	}
	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(fault.New(fault.KindResourceNotFound, "recipient not found")), nil
		}
		return zero, fmt.Errorf("get recipient: %w", err)
	}

	if _, err := s.connections.GetConnectionBetween(ctx, senderID, recipientID); err == nil {
		return fail(connectionExists()), nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return zero, fmt.Errorf("get connection between users: %w", err)
	}

	connectionID, err := s.generateID()
	if err != nil {
		return zero, fmt.Errorf("generate connection id: %w", err)
	}
	now := s.clock().UTC()
	connection := storage.Connection{
		ID:          connectionID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      storage.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.connections.CreateConnection(ctx, connection)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a race with a concurrent request for the same pair.
		return fail(connectionExists()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("create connection: %w", err)
	}
	return ok(connection), nil
}

// Accept transitions a PENDING edge to ACCEPTED. Only the recipient may
// accept; concurrent transitions resolve to a single winner.
func (s *Service) Accept(ctx context.Context, actingUserID, connectionID string) (result.Result[*fault.Fault, storage.Connection], error) {
	return s.resolve(ctx, actingUserID, connectionID, storage.StatusAccepted)
}

// Decline transitions a PENDING edge to DECLINED. Only the recipient may
// decline.
func (s *Service) Decline(ctx context.Context, actingUserID, connectionID string) (result.Result[*fault.Fault, storage.Connection], error) {
	return s.resolve(ctx, actingUserID, connectionID, storage.StatusDeclined)
}

func (s *Service) resolve(ctx context.Context, actingUserID, connectionID string, to storage.ConnectionStatus) (result.Result[*fault.Fault, storage.Connection], error) {
	var zero result.Result[*fault.Fault, storage.Connection]
	if s == nil || s.connections == nil {
		return zero, fmt.Errorf("connections service not initialized")
	}

	connection, err := s.connections.GetConnection(ctx, connectionID)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(connectionNotFound()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("get connection: %w", err)
	}
	if connection.RecipientID != actingUserID {
		return fail(fault.New(fault.KindUnauthorized, "only the recipient can resolve a connection request")), nil
	}
	if connection.Status != storage.StatusPending {
		return fail(notPending()), nil
	}

	updated, err := s.connections.UpdateConnectionStatus(ctx, connectionID, to, s.clock().UTC())
	if errors.Is(err, storage.ErrNotPending) {
		// Another transition landed first.
		return fail(notPending()), nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fail(connectionNotFound()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("update connection status: %w", err)
	}
	return ok(updated), nil
}

// Delete removes an edge in any status. Either endpoint may delete;
// deleting frees the pair for a fresh request.
func (s *Service) Delete(ctx context.Context, actingUserID, connectionID string) (result.Result[*fault.Fault, storage.Connection], error) {
	var zero result.Result[*fault.Fault, storage.Connection]
	if s == nil || s.connections == nil {
		return zero, fmt.Errorf("connections service not initialized")
	}

	connection, err := s.connections.GetConnection(ctx, connectionID)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(connectionNotFound()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("get connection: %w", err)
	}
	if connection.SenderID != actingUserID && connection.RecipientID != actingUserID {
		return fail(fault.New(fault.KindUnauthorized, "only a party to the connection can remove it")), nil
	}

	err = s.connections.DeleteConnection(ctx, connectionID)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(connectionNotFound()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("delete connection: %w", err)
	}
	return ok(connection), nil
}

// CountActive counts the user's ACCEPTED connections on either side.
func (s *Service) CountActive(ctx context.Context, userID string) (int, error) {
	if s == nil || s.connections == nil {
		return 0, fmt.Errorf("connections service not initialized")
	}
	return s.connections.CountActiveConnections(ctx, userID)
}

// List returns the user's edges with both endpoint summaries, oldest
// first. Empty status or direction means no filter.
func (s *Service) List(ctx context.Context, userID string, status storage.ConnectionStatus, direction storage.Direction) ([]storage.ConnectionWithUsers, error) {
	if s == nil || s.connections == nil {
		return nil, fmt.Errorf("connections service not initialized")
	}
	return s.connections.ListConnectionsByUser(ctx, userID, status, direction)
}

func fail(f *fault.Fault) result.Result[*fault.Fault, storage.Connection] {
	return result.Fail[*fault.Fault, storage.Connection](f)
}

func ok(c storage.Connection) result.Result[*fault.Fault, storage.Connection] {
	return result.OK[*fault.Fault](c)
}

func connectionExists() *fault.Fault {
	return fault.New(fault.KindConflict, "a connection already exists between these users")
}

func connectionNotFound() *fault.Fault {
	return fault.New(fault.KindResourceNotFound, "connection not found")
}

func notPending() *fault.Fault {
	return fault.New(fault.KindInvalidOperation, "connection request is no longer pending")
}

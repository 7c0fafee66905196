// Package profile assembles the public read model for a user: identity
// fields plus connection and scrap counts.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/result"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
)

// UserDetail is the profile view of one user.
type UserDetail struct {
	ID          string
	Name        string
	Username    string
	Bio         string
	Location    string
	Title       string
	Connections int
	Scraps      int
	MemberSince time.Time
}

// Service reads profile views.
type Service struct {
	users       storage.UserStore
	connections storage.ConnectionStore
	scraps      storage.ScrapStore
}

// NewService wires the profile service over its stores.
func NewService(users storage.UserStore, connections storage.ConnectionStore, scraps storage.ScrapStore) *Service {
	return &Service{users: users, connections: connections, scraps: scraps}
}

// FindUserByID loads a user's profile with its counters.
func (s *Service) FindUserByID(ctx context.Context, userID string) (result.Result[*fault.Fault, UserDetail], error) {
	var zero result.Result[*fault.Fault, UserDetail]
	if s == nil || s.users == nil {
		return zero, fmt.Errorf("profile service not initialized")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Fail[*fault.Fault, UserDetail](fault.New(fault.KindResourceNotFound, "user not found")), nil
	}
	if err != nil {
		return zero, fmt.Errorf("get user: %w", err)
	}

	connectionCount, err := s.connections.CountActiveConnections(ctx, userID)
	if err != nil {
		return zero, fmt.Errorf("count connections: %w", err)
	}
	scrapCount, err := s.scraps.CountScrapsByRecipient(ctx, userID)
	if err != nil {
		return zero, fmt.Errorf("count scraps: %w", err)
	}

	return result.OK[*fault.Fault](UserDetail{
		ID:          user.ID,
		Name:        user.Name,
		Username:    user.Username,
		Bio:         user.Bio,
		Location:    user.Location,
		Title:       user.Title,
		Connections: connectionCount,
		Scraps:      scrapCount,
		MemberSince: user.CreatedAt,
	}), nil
}

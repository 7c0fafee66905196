// Package storage defines persistence contracts for user-directory state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// ErrNotPending indicates a status transition was attempted on a connection
// that is no longer pending. Concurrent accept/decline calls surface this to
// the losing caller instead of silently succeeding.
var ErrNotPending = errors.New("connection is not pending")

// User stores one registered account.
type User struct {
	ID           string
	Name         string
	Username     string
	PasswordHash string
	Bio          string
	Location     string
	Title        string
	CreatedAt    time.Time
}

// UserSummary carries the public identity fields of a user.
type UserSummary struct {
	ID       string
	Name     string
	Username string
}

// ConnectionStatus is the lifecycle state of a relationship edge.
type ConnectionStatus string

const (
	// StatusPending is the only non-terminal connection status.
	StatusPending ConnectionStatus = "PENDING"
	// StatusAccepted is terminal and marks the edge as active.
	StatusAccepted ConnectionStatus = "ACCEPTED"
	// StatusDeclined is terminal.
	StatusDeclined ConnectionStatus = "DECLINED"
)

// Direction filters connection listings relative to a user.
type Direction string

const (
	// DirectionSent selects edges where the user is the sender.
	DirectionSent Direction = "SENT"
	// DirectionReceived selects edges where the user is the recipient.
	DirectionReceived Direction = "RECEIVED"
)

// Connection stores one directed relationship edge between two users.
type Connection struct {
	ID          string
	SenderID    string
	RecipientID string
	Status      ConnectionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConnectionWithUsers joins an edge with both endpoint user summaries.
type ConnectionWithUsers struct {
	Connection
	Sender    UserSummary
	Recipient UserSummary
}

// Scrap stores one append-only message between two users.
type Scrap struct {
	ID          string
	SenderID    string
	RecipientID string
	Message     string
	CreatedAt   time.Time
}

// UserStore persists registered accounts. Usernames are canonicalized to
// lowercase and unique.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
}

// ConnectionStore persists relationship edges. At most one edge exists per
// unordered user pair regardless of direction; the implementation enforces
// this with a uniqueness constraint and reports violations as
// ErrAlreadyExists.
type ConnectionStore interface {
	CreateConnection(ctx context.Context, connection Connection) error
	GetConnection(ctx context.Context, id string) (Connection, error)
	// GetConnectionBetween finds the edge for a pair irrespective of which
	// side is sender and which is recipient.
	GetConnectionBetween(ctx context.Context, userA, userB string) (Connection, error)
	// CountActiveConnections counts ACCEPTED edges touching the user on
	// either side.
	CountActiveConnections(ctx context.Context, userID string) (int, error)
	// UpdateConnectionStatus applies a PENDING → terminal transition as a
	// conditional write. It returns ErrNotPending when the edge exists but
	// is no longer pending, so only one concurrent transition wins.
	UpdateConnectionStatus(ctx context.Context, id string, to ConnectionStatus, updatedAt time.Time) (Connection, error)
	// ListConnectionsByUser returns edges touching the user in insertion
	// order. Empty status or direction means no filter.
	ListConnectionsByUser(ctx context.Context, userID string, status ConnectionStatus, direction Direction) ([]ConnectionWithUsers, error)
	// DeleteConnection removes an edge. Deleting a missing id is an error.
	DeleteConnection(ctx context.Context, id string) error
}

// ScrapStore persists append-only scrap messages.
type ScrapStore interface {
	CreateScrap(ctx context.Context, scrap Scrap) error
	ListScrapsByRecipient(ctx context.Context, userID string) ([]Scrap, error)
	CountScrapsByRecipient(ctx context.Context, userID string) (int, error)
}

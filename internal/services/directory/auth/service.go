// Package auth registers accounts and exchanges credentials for access
// tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/platform/id"
	"github.com/feliperosa/vinculo/internal/result"
	"github.com/feliperosa/vinculo/internal/services/directory/password"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
	"github.com/feliperosa/vinculo/internal/services/directory/token"
)

// Session is the outcome of a successful authentication.
type Session struct {
	AccessToken string
}

// Registration captures the input for a new account.
type Registration struct {
	Name     string
	Username string
	Password string
}

// Service owns account registration and credential checks.
type Service struct {
	users     storage.UserStore
	hasher    password.Hasher
	encrypter token.Encrypter

	clock      func() time.Time
	generateID func() (string, error)
}

// NewService wires the auth service. The encrypter must be configured
// with a signing secret before it reaches this constructor.
func NewService(users storage.UserStore, hasher password.Hasher, encrypter token.Encrypter) *Service {
	return &Service{
		users:      users,
		hasher:     hasher,
		encrypter:  encrypter,
		clock:      time.Now,
		generateID: id.NewID,
	}
}

// Register creates an account with a hashed password. A username that is
// already taken reports a CONFLICT fault.
func (s *Service) Register(ctx context.Context, reg Registration) (result.Result[*fault.Fault, storage.User], error) {
	var zero result.Result[*fault.Fault, storage.User]
	if s == nil || s.users == nil {
		return zero, fmt.Errorf("auth service not initialized")
	}
	name := strings.TrimSpace(reg.Name)
	username := strings.TrimSpace(reg.Username)
	if name == "" || username == "" || reg.Password == "" {
		return result.Fail[*fault.Fault, storage.User](fault.New(fault.KindInvalidOperation, "name, username and password are required")), nil
	}

	digest, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return zero, fmt.Errorf("hash password: %w", err)
	}
	userID, err := s.generateID()
	if err != nil {
		return zero, fmt.Errorf("generate user id: %w", err)
	}

	user := storage.User{
		ID:           userID,
		Name:         name,
		Username:     strings.ToLower(username),
		PasswordHash: digest,
		CreatedAt:    s.clock().UTC(),
	}
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return result.Fail[*fault.Fault, storage.User](fault.New(fault.KindConflict, "username is already taken")), nil
	}
	if err != nil {
		return zero, fmt.Errorf("create user: %w", err)
	}
	return result.OK[*fault.Fault](user), nil
}

// Authenticate checks a username/password pair and mints an access
// token. Unknown usernames and wrong passwords produce the same fault so
// callers cannot probe which usernames exist.
func (s *Service) Authenticate(ctx context.Context, username, plaintext string) (result.Result[*fault.Fault, Session], error) {
	var zero result.Result[*fault.Fault, Session]
	if s == nil || s.users == nil {
		return zero, fmt.Errorf("auth service not initialized")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Fail[*fault.Fault, Session](invalidCredentials()), nil
	}
	if err != nil {
		return zero, fmt.Errorf("get user by username: %w", err)
	}
	if !s.hasher.Compare(plaintext, user.PasswordHash) {
		return result.Fail[*fault.Fault, Session](invalidCredentials()), nil
	}

	accessToken, err := s.encrypter.Encrypt(map[string]any{"sub": user.ID})
	if err != nil {
		return zero, fmt.Errorf("encrypt token: %w", err)
	}
	return result.OK[*fault.Fault](Session{AccessToken: accessToken}), nil
}

func invalidCredentials() *fault.Fault {
	return fault.New(fault.KindInvalidCredentials, "invalid username or password")
}

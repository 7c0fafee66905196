// Package sqlite provides a SQLite-backed user-directory storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/feliperosa/vinculo/internal/platform/storage/sqlitemigrate"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
	"github.com/feliperosa/vinculo/internal/services/directory/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists user-directory state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite directory store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateUser inserts one account record. The username is stored lowercase
// and must be unique.
func (s *Store) CreateUser(ctx context.Context, user storage.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(user.ID)
	username := canonicalUsername(user.Username)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(user.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, name, username, password_hash, bio, location, title, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(user.Name),
		username,
		user.PasswordHash,
		user.Bio,
		user.Location,
		user.Title,
		toMillis(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID returns one account record by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (storage.User, error) {
	if err := ctx.Err(); err != nil {
		return storage.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, username, password_hash, bio, location, title, created_at
		 FROM users
		 WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// GetUserByUsername returns one account record by canonical username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (storage.User, error) {
	if err := ctx.Err(); err != nil {
		return storage.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}
	username = canonicalUsername(username)
	if username == "" {
		return storage.User{}, fmt.Errorf("username is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, username, password_hash, bio, location, title, created_at
		 FROM users
		 WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

// CreateConnection inserts one relationship edge in its initial status. The
// unordered pair uniqueness constraint surfaces duplicate edges, in either
// direction, as ErrAlreadyExists.
func (s *Store) CreateConnection(ctx context.Context, connection storage.Connection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(connection.ID)
	senderID := strings.TrimSpace(connection.SenderID)
	recipientID := strings.TrimSpace(connection.RecipientID)
	if id == "" {
		return fmt.Errorf("connection id is required")
	}
	if senderID == "" {
		return fmt.Errorf("sender id is required")
	}
	if recipientID == "" {
		return fmt.Errorf("recipient id is required")
	}
	if senderID == recipientID {
		return fmt.Errorf("recipient id must differ from sender id")
	}
	if !isValidStatus(connection.Status) {
		return fmt.Errorf("invalid connection status %q", connection.Status)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO connections (id, sender_id, recipient_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		senderID,
		recipientID,
		string(connection.Status),
		toMillis(connection.CreatedAt),
		toMillis(connection.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create connection: %w", err)
	}
	return nil
}

// GetConnection returns one edge by id.
func (s *Store) GetConnection(ctx context.Context, id string) (storage.Connection, error) {
	if err := ctx.Err(); err != nil {
		return storage.Connection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Connection{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Connection{}, fmt.Errorf("connection id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, sender_id, recipient_id, status, created_at, updated_at
		 FROM connections
		 WHERE id = ?`,
		id,
	)
	return scanConnection(row)
}

// GetConnectionBetween returns the edge for an unordered user pair.
func (s *Store) GetConnectionBetween(ctx context.Context, userA, userB string) (storage.Connection, error) {
	if err := ctx.Err(); err != nil {
		return storage.Connection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Connection{}, fmt.Errorf("storage is not configured")
	}
	userA = strings.TrimSpace(userA)
	userB = strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return storage.Connection{}, fmt.Errorf("both user ids are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, sender_id, recipient_id, status, created_at, updated_at
		 FROM connections
		 WHERE pair_lo = min(?1, ?2) AND pair_hi = max(?1, ?2)`,
		userA,
		userB,
	)
	return scanConnection(row)
}

// CountActiveConnections counts ACCEPTED edges touching the user on either side.
func (s *Store) CountActiveConnections(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*)
		 FROM connections
		 WHERE (sender_id = ?1 OR recipient_id = ?1) AND status = ?2`,
		userID,
		string(storage.StatusAccepted),
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count active connections: %w", err)
	}
	return count, nil
}

// UpdateConnectionStatus applies a PENDING → terminal transition as a
// conditional write so concurrent transitions cannot both succeed.
func (s *Store) UpdateConnectionStatus(ctx context.Context, id string, to storage.ConnectionStatus, updatedAt time.Time) (storage.Connection, error) {
	if err := ctx.Err(); err != nil {
		return storage.Connection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Connection{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Connection{}, fmt.Errorf("connection id is required")
	}
	if to != storage.StatusAccepted && to != storage.StatusDeclined {
		return storage.Connection{}, fmt.Errorf("invalid target status %q", to)
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE connections
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(to),
		toMillis(updatedAt),
		id,
		string(storage.StatusPending),
	)
	if err != nil {
		return storage.Connection{}, fmt.Errorf("update connection status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Connection{}, fmt.Errorf("update connection status: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing edge from a lost transition race.
		if _, err := s.GetConnection(ctx, id); err != nil {
			return storage.Connection{}, err
		}
		return storage.Connection{}, storage.ErrNotPending
	}
	return s.GetConnection(ctx, id)
}

// ListConnectionsByUser returns edges touching the user joined with both
// endpoint user summaries, in insertion order.
func (s *Store) ListConnectionsByUser(ctx context.Context, userID string, status storage.ConnectionStatus, direction storage.Direction) ([]storage.ConnectionWithUsers, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if status != "" && !isValidStatus(status) {
		return nil, fmt.Errorf("invalid connection status %q", status)
	}

	var where string
	args := []any{userID}
	switch direction {
	case storage.DirectionSent:
		where = "c.sender_id = ?"
	case storage.DirectionReceived:
		where = "c.recipient_id = ?"
	case "":
		where = "(c.sender_id = ?1 OR c.recipient_id = ?1)"
	default:
		return nil, fmt.Errorf("invalid direction %q", direction)
	}
	if status != "" {
		where += " AND c.status = ?"
		args = append(args, string(status))
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.id, c.sender_id, c.recipient_id, c.status, c.created_at, c.updated_at,
		        snd.id, snd.name, snd.username,
		        rcp.id, rcp.name, rcp.username
		 FROM connections c
		 JOIN users snd ON snd.id = c.sender_id
		 JOIN users rcp ON rcp.id = c.recipient_id
		 WHERE `+where+`
		 ORDER BY c.rowid ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var list []storage.ConnectionWithUsers
	for rows.Next() {
		var (
			item      storage.ConnectionWithUsers
			rawStatus string
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(
			&item.Connection.ID,
			&item.Connection.SenderID,
			&item.Connection.RecipientID,
			&rawStatus,
			&createdAt,
			&updatedAt,
			&item.Sender.ID,
			&item.Sender.Name,
			&item.Sender.Username,
			&item.Recipient.ID,
			&item.Recipient.Name,
			&item.Recipient.Username,
		); err != nil {
			return nil, fmt.Errorf("list connections: %w", err)
		}
		item.Connection.Status = storage.ConnectionStatus(rawStatus)
		item.Connection.CreatedAt = fromMillis(createdAt)
		item.Connection.UpdatedAt = fromMillis(updatedAt)
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return list, nil
}

// DeleteConnection removes one edge. A missing id is reported as ErrNotFound.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("connection id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateScrap inserts one scrap message.
func (s *Store) CreateScrap(ctx context.Context, scrap storage.Scrap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(scrap.ID)
	senderID := strings.TrimSpace(scrap.SenderID)
	recipientID := strings.TrimSpace(scrap.RecipientID)
	if id == "" {
		return fmt.Errorf("scrap id is required")
	}
	if senderID == "" {
		return fmt.Errorf("sender id is required")
	}
	if recipientID == "" {
		return fmt.Errorf("recipient id is required")
	}
	if strings.TrimSpace(scrap.Message) == "" {
		return fmt.Errorf("message is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scraps (id, sender_id, recipient_id, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id,
		senderID,
		recipientID,
		scrap.Message,
		toMillis(scrap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create scrap: %w", err)
	}
	return nil
}

// ListScrapsByRecipient returns scraps received by the user in insertion order.
func (s *Store) ListScrapsByRecipient(ctx context.Context, userID string) ([]storage.Scrap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, sender_id, recipient_id, message, created_at
		 FROM scraps
		 WHERE recipient_id = ?
		 ORDER BY rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scraps: %w", err)
	}
	defer rows.Close()

	var list []storage.Scrap
	for rows.Next() {
		var (
			scrap     storage.Scrap
			createdAt int64
		)
		if err := rows.Scan(&scrap.ID, &scrap.SenderID, &scrap.RecipientID, &scrap.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("list scraps: %w", err)
		}
		scrap.CreatedAt = fromMillis(createdAt)
		list = append(list, scrap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scraps: %w", err)
	}
	return list, nil
}

// CountScrapsByRecipient counts scraps received by the user.
func (s *Store) CountScrapsByRecipient(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM scraps WHERE recipient_id = ?`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count scraps: %w", err)
	}
	return count, nil
}

func canonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isValidStatus(status storage.ConnectionStatus) bool {
	switch status {
	case storage.StatusPending, storage.StatusAccepted, storage.StatusDeclined:
		return true
	}
	return false
}

func scanUser(row *sql.Row) (storage.User, error) {
	var user storage.User
	var createdAt int64
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
		&user.Bio,
		&user.Location,
		&user.Title,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

func scanConnection(row *sql.Row) (storage.Connection, error) {
	var connection storage.Connection
	var status string
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&connection.ID,
		&connection.SenderID,
		&connection.RecipientID,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Connection{}, storage.ErrNotFound
		}
		return storage.Connection{}, fmt.Errorf("get connection: %w", err)
	}
	connection.Status = storage.ConnectionStatus(status)
	connection.CreatedAt = fromMillis(createdAt)
	connection.UpdatedAt = fromMillis(updatedAt)
	return connection, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed")
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ConnectionStore = (*Store)(nil)
var _ storage.ScrapStore = (*Store)(nil)

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using the sessions table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a PostgreSQL-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)`,
		sess.ID, payload, sess.Expire,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// Get retrieves a live session by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess    Session
		payload []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT sid, sess, expire FROM sessions WHERE sid = $1`, id,
	).Scan(&sess.ID, &payload, &sess.Expire)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if sess.IsExpired(s.now()) {
		return nil, ErrSessionExpired
	}

	if err := json.Unmarshal(payload, &sess.Data); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}

	return &sess, nil
}

// Save rewrites the payload of an existing session. The expiry is left alone.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	result, err := s.pool.Exec(ctx, `UPDATE sessions SET sess = $2 WHERE sid = $1`, sess.ID, payload)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Delete removes a session row.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes every session whose expiry has passed.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expire <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	count := int(result.RowsAffected())
	if count > 0 {
		slog.Debug("deleted expired sessions", "count", count)
	}

	return count, nil
}

package idea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ideaforge/ideaforge/internal/db"
)

// ErrIdeaNotFound is returned when an idea record is not found.
var ErrIdeaNotFound = errors.New("idea not found")

// ErrOwnerNotFound is returned when the owning user does not exist.
var ErrOwnerNotFound = errors.New("idea owner not found")

// Repository provides operations on the business_ideas table.
type Repository interface {
	Create(ctx context.Context, idea *Idea) error
	GetByID(ctx context.Context, id uuid.UUID) (*Idea, error)
	// ListApproved returns approved ideas, most upvoted first.
	ListApproved(ctx context.Context) ([]Idea, error)
	// List returns ideas of every status, newest first.
	List(ctx context.Context, filter ListFilter) ([]Idea, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Idea, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Idea, error)
	// IncrementVotes adds one to the chosen counter in a single statement.
	IncrementVotes(ctx context.Context, id uuid.UUID, vote Vote) (*Idea, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const ideaColumns = `id, user_id, title, description, status, upvotes, downvotes, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new idea. Status defaults to pending and both counters start at zero.
func (r *PostgresRepository) Create(ctx context.Context, idea *Idea) error {
	if idea.Status == "" {
		idea.Status = StatusPending
	}

	query := `
		INSERT INTO business_ideas (user_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, upvotes, downvotes, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		idea.UserID,
		idea.Title,
		idea.Description,
		idea.Status,
	).Scan(&idea.ID, &idea.Upvotes, &idea.Downvotes, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrOwnerNotFound
		}
		if db.IsCheckViolation(err) {
			return ErrInvalidStatus
		}
		return fmt.Errorf("inserting idea: %w", err)
	}

	return nil
}

// GetByID retrieves a single idea by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM business_ideas WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// ListApproved returns approved ideas ordered by upvotes, ties broken by recency.
func (r *PostgresRepository) ListApproved(ctx context.Context) ([]Idea, error) {
	query := `
		SELECT ` + ideaColumns + `
		FROM business_ideas
		WHERE status = $1
		ORDER BY upvotes DESC, created_at DESC`
	return r.scanMany(ctx, query, StatusApproved)
}

// List returns ideas ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Idea, error) {
	var args []any
	where := ""
	if filter.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM business_ideas
		%s
		ORDER BY created_at DESC, id`, ideaColumns, where)
	return r.scanMany(ctx, query, args...)
}

// Update applies the non-nil fields and refreshes updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Idea, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *fields.Title)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *fields.Status)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE business_ideas
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, ideaColumns)

	return r.scanOne(ctx, query, args...)
}

// SetStatus changes only the status of an idea.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Idea, error) {
	query := `
		UPDATE business_ideas
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + ideaColumns
	return r.scanOne(ctx, query, status, id)
}

// IncrementVotes adds one to upvotes or downvotes. updated_at is not touched.
func (r *PostgresRepository) IncrementVotes(ctx context.Context, id uuid.UUID, vote Vote) (*Idea, error) {
	column := "upvotes"
	if vote == Downvote {
		column = "downvotes"
	}

	query := fmt.Sprintf(`
		UPDATE business_ideas
		SET %[1]s = %[1]s + 1
		WHERE id = $1
		RETURNING %[2]s`, column, ideaColumns)

	return r.scanOne(ctx, query, id)
}

// Delete removes an idea permanently.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM business_ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting idea: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Idea, error) {
	idea, err := scanIdea(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdeaNotFound
		}
		if db.IsCheckViolation(err) {
			return nil, ErrInvalidStatus
		}
		return nil, fmt.Errorf("scanning idea row: %w", err)
	}
	return idea, nil
}

func (r *PostgresRepository) scanMany(ctx context.Context, query string, args ...any) ([]Idea, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ideas: %w", err)
	}
	defer rows.Close()

	ideas := []Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning idea row: %w", err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating idea rows: %w", err)
	}

	return ideas, nil
}

func scanIdea(row pgx.Row) (*Idea, error) {
	var idea Idea
	err := row.Scan(
		&idea.ID, &idea.UserID, &idea.Title, &idea.Description, &idea.Status,
		&idea.Upvotes, &idea.Downvotes, &idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crm-service/internal/domain"
)

// PrincipalRepository defines persistence access for accounts. GetByID and
// GetByEmail are the only operations the auth core requires.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *domain.Principal) error
	Update(ctx context.Context, principal *domain.Principal) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error)
}

// PrincipalFilter defines query params for account listing.
type PrincipalFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

type principalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

func (r *principalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (display_name, email, password_hash, role, active_flag)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		principal.DisplayName,
		strings.ToLower(principal.Email),
		principal.PasswordHash,
		principal.Role,
		principal.Active,
	).Scan(&principal.ID, &principal.CreatedAt, &principal.UpdatedAt)
}

func (r *principalRepository) Update(ctx context.Context, principal *domain.Principal) error {
	const query = `
        UPDATE principals
        SET display_name=$1, email=$2, password_hash=$3, role=$4, active_flag=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		principal.DisplayName,
		strings.ToLower(principal.Email),
		principal.PasswordHash,
		principal.Role,
		principal.Active,
		principal.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	const query = `
        SELECT id, display_name, email, password_hash, role, active_flag, created_at, updated_at
        FROM principals WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	const query = `
        SELECT id, display_name, email, password_hash, role, active_flag, created_at, updated_at
        FROM principals WHERE email=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error) {
	query := `
        SELECT id, display_name, email, password_hash, role, active_flag, created_at, updated_at
        FROM principals`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Principal
	for rows.Next() {
		var p domain.Principal
		if err := rows.Scan(
			&p.ID,
			&p.DisplayName,
			&p.Email,
			&p.PasswordHash,
			&p.Role,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *principalRepository) scanOne(row pgx.Row) (*domain.Principal, error) {
	var p domain.Principal
	if err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.Email,
		&p.PasswordHash,
		&p.Role,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

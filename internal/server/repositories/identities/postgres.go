package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/dbx"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO identities (id, email, name, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id, identity.Email, identity.Name, identity.PasswordHash, string(identity.Role), identity.CreatedAt, identity.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	identity.ID = id
	return identity, nil
}

const selectIdentity = `SELECT id, email, name, password_hash, role, created_at, updated_at,
		 last_login, reset_password_token, reset_password_expires FROM identities
		 `

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, selectIdentity+`WHERE email = $1`, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.findOne(ctx, selectIdentity+`WHERE id = $1`, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Identity, error) {
	var (
		i            models.Identity
		role         string
		lastLogin    sql.NullTime
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&i.ID, &i.Email, &i.Name, &i.PasswordHash, &role, &i.CreatedAt, &i.UpdatedAt,
		&lastLogin, &resetToken, &resetExpires)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	i.Role = roles.Role(role)
	if lastLogin.Valid {
		i.LastLogin = &lastLogin.Time
	}
	if resetToken.Valid && resetExpires.Valid {
		i.ResetPasswordToken = &resetToken.String
		i.ResetPasswordExpires = &resetExpires.Time
	}
	return &i, nil
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE identities SET last_login = $2, updated_at = $2
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, at)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expires, at time.Time) error {
	query :=
		`UPDATE identities
		 SET reset_password_token = $2, reset_password_expires = $3, updated_at = $4
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, token, expires, at)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, digest string, at time.Time) error {
	query :=
		`UPDATE identities SET password_hash = $2, updated_at = $3
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, digest, at)
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, id, token, digest string, now time.Time) error {
	query :=
		`UPDATE identities
		 SET password_hash = $3, reset_password_token = NULL, reset_password_expires = NULL, updated_at = $4
		 WHERE id = $1 AND reset_password_token = $2 AND reset_password_expires > $4
		 `
	return r.execOne(ctx, query, id, token, digest, now)
}

// execOne runs a single-row update and maps zero affected rows to
// common.ErrorNotFound.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`UPDATE identities
		 SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = $1
		 WHERE reset_password_expires < $1
		 `

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

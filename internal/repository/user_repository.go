package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pass-service/internal/domain"
)

// Sentinel errors surfaced from storage-level uniqueness constraints. The
// constraints live in the database so that racing registrations cannot both
// claim the same email or Aadhar number.
var (
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateAadhar = errors.New("aadhar number already registered")
)

// ListFilter restricts and pages user listings.
type ListFilter struct {
	ExcludeRole domain.Role
	Limit       int
	Offset      int
}

// UserRepository defines persistence access for participant records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByInvitationToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	UpdateStatusByEmail(ctx context.Context, email string, status domain.UserStatus) error
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, college, aadhar_number, role, status,
        invitation_token, invitation_expires, aadhar_photo_url, college_id_photo_url, photo_url,
        created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.College,
		&user.AadharNumber,
		&user.Role,
		&user.Status,
		&user.InvitationToken,
		&user.InvitationExpires,
		&user.AadharPhotoURL,
		&user.CollegeIDPhotoURL,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_aadhar_number_key":
			return ErrDuplicateAadhar
		}
	}
	return err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, college, aadhar_number, role, status,
            invitation_token, invitation_expires)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.College,
		user.AadharNumber,
		user.Role,
		user.Status,
		user.InvitationToken,
		user.InvitationExpires,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, college=$4, aadhar_number=$5,
            status=$6, invitation_token=$7, invitation_expires=$8,
            aadhar_photo_url=$9, college_id_photo_url=$10, photo_url=$11, updated_at=NOW()
        WHERE id=$12`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.College,
		user.AadharNumber,
		user.Status,
		user.InvitationToken,
		user.InvitationExpires,
		user.AadharPhotoURL,
		user.CollegeIDPhotoURL,
		user.PhotoURL,
		user.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByInvitationToken resolves only live invitations: matching token,
// unexpired, still in the invited state.
func (r *userRepository) GetByInvitationToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users WHERE invitation_token=$1 AND invitation_expires > $2 AND status=$3`
	return scanUser(r.pool.QueryRow(ctx, query, token, now, domain.UserStatusInvited))
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	const query = `
        UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2
        RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, status, id))
}

func (r *userRepository) UpdateStatusByEmail(ctx context.Context, email string, status domain.UserStatus) error {
	const query = `UPDATE users SET status=$1, updated_at=NOW() WHERE LOWER(email)=LOWER($2)`
	cmd, err := r.pool.Exec(ctx, query, status, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users WHERE role <> $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}

	rows, err := r.pool.Query(ctx, query, filter.ExcludeRole, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role <> $1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, filter.ExcludeRole).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

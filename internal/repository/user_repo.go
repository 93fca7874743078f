package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"instaclone/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error)
	ListSuggested(ctx context.Context, excludeID string, limit int) ([]domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Las listas de followers/following se proyectan desde la tabla follows.
const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.bio, u.gender, u.profile_picture,
		COALESCE((SELECT array_agg(f.follower_id ORDER BY f.created_at, f.follower_id)
			FROM follows f WHERE f.followee_id = u.id), '{}') AS followers,
		COALESCE((SELECT array_agg(f.followee_id ORDER BY f.created_at, f.followee_id)
			FROM follows f WHERE f.follower_id = u.id), '{}') AS following,
		u.created_at, u.updated_at
	FROM users u
`

const pgUniqueViolation = "23505"

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, username, email, password_hash, bio, gender, profile_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Bio,
		user.Gender,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.email = $1`, email))
}

// UpdateProfile aplica solo los campos no nulos y devuelve el usuario actualizado.
func (r *PgUserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error) {
	const query = `
		UPDATE users SET
			bio = COALESCE($2, bio),
			gender = COALESCE($3, gender),
			profile_picture = COALESCE($4, profile_picture),
			updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, update.Bio, update.Gender, update.ProfilePicture)
	if err != nil {
		return domain.User{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// ListSuggested devuelve hasta limit usuarios distintos de excludeID en orden estable.
func (r *PgUserRepository) ListSuggested(ctx context.Context, excludeID string, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, selectUser+`
		WHERE u.id <> $1
		ORDER BY u.created_at, u.id
		LIMIT $2
	`, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Bio,
		&u.Gender,
		&u.ProfilePicture,
		&u.Followers,
		&u.Following,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

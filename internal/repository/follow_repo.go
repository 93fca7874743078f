package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"instaclone/internal/db"
	"instaclone/internal/domain"
)

// FollowRepository persiste la arista dirigida follower -> followee.
type FollowRepository interface {
	// Toggle elimina la arista si existe o la crea si no, en una sola transaccion.
	// Devuelve domain.ErrUserNotFound si alguno de los dos usuarios no existe.
	Toggle(ctx context.Context, followerID, followeeID string) (domain.FollowAction, error)
}

type PgFollowRepository struct {
	pool *pgxpool.Pool
}

func NewPgFollowRepository(pool *pgxpool.Pool) *PgFollowRepository {
	return &PgFollowRepository{pool: pool}
}

func (r *PgFollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (domain.FollowAction, error) {
	var action domain.FollowAction
	err := db.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// Bloquear ambas filas en orden de id serializa toggles concurrentes
		// sobre el mismo par sin riesgo de deadlock.
		const lockQuery = `
			SELECT id FROM users
			WHERE id = ANY($1)
			ORDER BY id
			FOR UPDATE
		`
		rows, err := tx.Query(ctx, lockQuery, []string{followerID, followeeID})
		if err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		locked := 0
		for rows.Next() {
			locked++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		if locked != 2 {
			return domain.ErrUserNotFound
		}

		const deleteQuery = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
		tag, err := tx.Exec(ctx, deleteQuery, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if tag.RowsAffected() > 0 {
			action = domain.ActionUnfollowed
			return nil
		}

		const insertQuery = `
			INSERT INTO follows (follower_id, followee_id, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT (follower_id, followee_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, insertQuery, followerID, followeeID); err != nil {
			return fmt.Errorf("insert follow: %w", err)
		}
		action = domain.ActionFollowed
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

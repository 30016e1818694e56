package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notifications: not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error)
	CountNonLues(ctx context.Context, artisanID int64) (int, error)
	MarquerLue(ctx context.Context, artisanID, id int64) error
	MarquerToutesLues(ctx context.Context, artisanID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.pool.QueryRow(ctx, `
INSERT INTO notifications (artisan_id, type, titre, message, lu, entite_type, entite_id, created_at)
VALUES ($1, $2, $3, $4, FALSE, $5, $6, NOW())
RETURNING id, created_at`,
		n.ArtisanID, n.Type, n.Titre, n.Message, n.EntiteType, n.EntiteID).Scan(&n.ID, &n.CreatedAt)
}

func (r *repository) List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{req.ArtisanID}
	argPos := 2

	if req.NonLues {
		conditions += " AND lu = FALSE"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT id, artisan_id, type, titre, message, lu, entite_type, entite_id, created_at
FROM notifications %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ArtisanID, &n.Type, &n.Titre, &n.Message, &n.Lu, &n.EntiteType, &n.EntiteID, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, n)
	}
	return result, total, rows.Err()
}

func (r *repository) CountNonLues(ctx context.Context, artisanID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE artisan_id = $1 AND lu = FALSE`, artisanID).Scan(&count)
	return count, err
}

func (r *repository) MarquerLue(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET lu = TRUE WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarquerToutesLues(ctx context.Context, artisanID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET lu = TRUE WHERE artisan_id = $1 AND lu = FALSE`, artisanID)
	return err
}

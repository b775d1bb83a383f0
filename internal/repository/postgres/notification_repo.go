package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-talentbridge-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

const notificationColumns = `
	id, user_id, type, title, message, data, priority,
	created_at, read_at, scheduled_for, dispatched_at`

// Create inserts a new notification row.
func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	var data []byte
	if n.Data != nil {
		var err error
		data, err = json.Marshal(n.Data)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data, priority, created_at, read_at, scheduled_for, dispatched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, data, n.Priority,
		n.CreatedAt, n.ReadAt, n.ScheduledFor, n.DispatchedAt,
	)
	return err
}

// GetByID retrieves a notification by ID.
func (r *notificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

// GetByUserID returns the user's notifications, newest first.
func (r *notificationRepo) GetByUserID(ctx context.Context, userID string, opts domain.NotificationListOptions) ([]domain.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []interface{}{userID}

	if opts.UnreadOnly {
		query += " AND read_at IS NULL"
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		query += " AND type = $2"
	}
	args = append(args, opts.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, nil
}

// CountUnread counts the user's unread notifications.
func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	).Scan(&count)
	return count, err
}

// MarkRead sets read_at once; repeated calls keep the original timestamp.
func (r *notificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, $2) WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead stamps every unread notification of the user.
func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`,
		userID, at,
	)
	return err
}

// FindDue returns unclaimed, unread notifications whose schedule has
// passed. Rows with no schedule at all are included: they were created for
// immediate dispatch but never claimed (crash between insert and claim).
func (r *notificationRepo) FindDue(ctx context.Context, now time.Time) ([]domain.Notification, error) {
	query := `SELECT` + notificationColumns + `
		FROM notifications
		WHERE dispatched_at IS NULL
		  AND read_at IS NULL
		  AND (scheduled_for IS NULL OR scheduled_for <= $1)
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *n)
	}
	return due, nil
}

// ClaimDispatch atomically stamps dispatched_at. The WHERE guard makes the
// claim exclusive: of any number of concurrent claimers exactly one sees
// true.
func (r *notificationRepo) ClaimDispatch(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET dispatched_at = $2 WHERE id = $1 AND dispatched_at IS NULL`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// Reschedule pushes a still-gated notification's delivery forward.
func (r *notificationRepo) Reschedule(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET scheduled_for = $2 WHERE id = $1 AND dispatched_at IS NULL`,
		id, at,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n    domain.Notification
		data []byte
	)
	if err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Priority,
		&n.CreatedAt, &n.ReadAt, &n.ScheduledFor, &n.DispatchedAt,
	); err != nil {
		return nil, err
	}
	if data != nil {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

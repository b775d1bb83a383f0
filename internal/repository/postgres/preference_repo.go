package postgres

import (
	"context"
	"time"

	"go-talentbridge-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type preferenceRepo struct {
	db *pgxpool.Pool
}

// NewPreferenceRepository creates a new notification preference repository
func NewPreferenceRepository(db *pgxpool.Pool) domain.PreferenceRepository {
	return &preferenceRepo{db: db}
}

// Get returns the user's saved preference or domain.ErrNotFound when the
// user never saved one (callers fall back to defaults).
func (r *preferenceRepo) Get(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	query := `
		SELECT user_id, email_notifications, push_notifications, sms_notifications,
		       disabled_types, frequency, quiet_hours_start, quiet_hours_end,
		       allowed_days, updated_at
		FROM notification_preferences
		WHERE user_id = $1`

	var (
		pref          domain.NotificationPreference
		disabledTypes []string
		allowedDays   []int64
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&pref.UserID, &pref.EmailNotifications, &pref.PushNotifications, &pref.SMSNotifications,
		pq.Array(&disabledTypes), &pref.Frequency, &pref.QuietHoursStart, &pref.QuietHoursEnd,
		pq.Array(&allowedDays), &pref.UpdatedAt,
	)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	pref.DisabledTypes = disabledTypes
	for _, d := range allowedDays {
		pref.AllowedDays = append(pref.AllowedDays, int(d))
	}
	return &pref, nil
}

// Upsert writes the full merged preference record for the user.
func (r *preferenceRepo) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences (
			user_id, email_notifications, push_notifications, sms_notifications,
			disabled_types, frequency, quiet_hours_start, quiet_hours_end,
			allowed_days, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications = EXCLUDED.email_notifications,
			push_notifications = EXCLUDED.push_notifications,
			sms_notifications = EXCLUDED.sms_notifications,
			disabled_types = EXCLUDED.disabled_types,
			frequency = EXCLUDED.frequency,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			allowed_days = EXCLUDED.allowed_days,
			updated_at = EXCLUDED.updated_at`

	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}

	allowedDays := make([]int64, 0, len(pref.AllowedDays))
	for _, d := range pref.AllowedDays {
		allowedDays = append(allowedDays, int64(d))
	}

	_, err := r.db.Exec(ctx, query,
		pref.UserID, pref.EmailNotifications, pref.PushNotifications, pref.SMSNotifications,
		pq.Array(pref.DisabledTypes), pref.Frequency, pref.QuietHoursStart, pref.QuietHoursEnd,
		pq.Array(allowedDays), pref.UpdatedAt,
	)
	return err
}

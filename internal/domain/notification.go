package domain

import (
	"context"
	"fmt"
	"time"
)

// Channel is a delivery medium for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// NotificationPriority classifies delivery urgency.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// Workflow notification types emitted by the interview coordinator.
const (
	NotificationTypeInterviewCreated  = "interview_created"
	NotificationTypeInterviewApproved = "interview_approved"
	NotificationTypeInterviewRejected = "interview_rejected"
	NotificationTypeInterviewResponse = "interview_response"
	NotificationTypeFeedbackSubmitted = "feedback_submitted"
	NotificationTypeFeedbackReviewed  = "feedback_reviewed"
)

// Notification is a single message to a single recipient.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  NotificationPriority   `json:"priority"`
	CreatedAt time.Time              `json:"created_at"`
	// ReadAt, once set, is never cleared.
	ReadAt *time.Time `json:"read_at,omitempty"`
	// ScheduledFor defers delivery until the given instant. Nil means
	// deliver immediately.
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	// DispatchedAt is the atomic dispatch marker. A row is sent at most
	// once; the scheduled sweep skips rows that already carry it.
	DispatchedAt *time.Time `json:"-"`
}

// Unread reports whether the notification has not been read yet.
func (n *Notification) Unread() bool { return n.ReadAt == nil }

// NotificationFrequency selects between immediate delivery and digesting.
type NotificationFrequency string

const (
	FrequencyImmediate NotificationFrequency = "immediate"
	FrequencyDigest    NotificationFrequency = "digest"
)

// NotificationPreference holds one user's delivery settings. A missing
// record behaves like DefaultPreference.
type NotificationPreference struct {
	UserID             string                `json:"user_id"`
	EmailNotifications bool                  `json:"email_notifications"`
	PushNotifications  bool                  `json:"push_notifications"`
	SMSNotifications   bool                  `json:"sms_notifications"`
	DisabledTypes      []string              `json:"disabled_types,omitempty"`
	Frequency          NotificationFrequency `json:"frequency"`
	// Quiet hours as local "HH:MM" times. The window may wrap midnight
	// (e.g. 22:00–07:00). Both empty means no quiet hours.
	QuietHoursStart string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string `json:"quiet_hours_end,omitempty"`
	// AllowedDays holds time.Weekday values. Empty means every day.
	AllowedDays []int     `json:"allowed_days,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultPreference is the behavior for users who never saved preferences:
// everything on, every day, no quiet hours.
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		SMSNotifications:   true,
		Frequency:          FrequencyImmediate,
	}
}

// Channels returns the delivery channels enabled for the given notification
// type, ignoring time-of-day gating.
func (p *NotificationPreference) Channels(notificationType string) []Channel {
	for _, t := range p.DisabledTypes {
		if t == notificationType {
			return nil
		}
	}
	var chs []Channel
	if p.EmailNotifications {
		chs = append(chs, ChannelEmail)
	}
	if p.PushNotifications {
		chs = append(chs, ChannelPush)
	}
	if p.SMSNotifications {
		chs = append(chs, ChannelSMS)
	}
	return chs
}

// AllowsDeliveryAt reports whether an immediate send at t is permitted:
// t must fall on an allowed day and outside quiet hours.
func (p *NotificationPreference) AllowsDeliveryAt(t time.Time) bool {
	return p.dayAllowed(t.Weekday()) && !p.inQuietHours(t)
}

// NextDeliveryTime returns the earliest instant at or after from where
// delivery is permitted: the next allowed day, at quiet-hours end when from
// falls inside the window. Falls back to from+24h if the preference blocks
// every probe (misconfigured allowed days).
func (p *NotificationPreference) NextDeliveryTime(from time.Time) time.Time {
	t := from
	for i := 0; i < 14; i++ {
		if !p.dayAllowed(t.Weekday()) {
			t = startOfNextDay(t)
			continue
		}
		if !p.inQuietHours(t) {
			return t
		}
		t = p.quietHoursEnd(t)
	}
	return from.Add(24 * time.Hour)
}

func (p *NotificationPreference) dayAllowed(d time.Weekday) bool {
	if len(p.AllowedDays) == 0 {
		return true
	}
	for _, allowed := range p.AllowedDays {
		if time.Weekday(allowed) == d {
			return true
		}
	}
	return false
}

func (p *NotificationPreference) inQuietHours(t time.Time) bool {
	start, okStart := parseClock(p.QuietHoursStart)
	end, okEnd := parseClock(p.QuietHoursEnd)
	if !okStart || !okEnd || start == end {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	if start < end {
		return m >= start && m < end
	}
	// Window wraps midnight.
	return m >= start || m < end
}

// quietHoursEnd returns the instant the current quiet window closes,
// relative to t (which must be inside the window).
func (p *NotificationPreference) quietHoursEnd(t time.Time) time.Time {
	start, _ := parseClock(p.QuietHoursStart)
	end, _ := parseClock(p.QuietHoursEnd)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	endToday := day.Add(time.Duration(end) * time.Minute)
	m := t.Hour()*60 + t.Minute()
	if start > end && m >= start {
		// Wrapped window entered before midnight: closes tomorrow.
		return endToday.Add(24 * time.Hour)
	}
	return endToday
}

func startOfNextDay(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.Add(24 * time.Hour)
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// NotificationListOptions narrows GetUserNotifications projections.
type NotificationListOptions struct {
	Limit      int
	UnreadOnly bool
	Type       string
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	GetByUserID(ctx context.Context, userID string, opts NotificationListOptions) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead sets read_at if not already set; idempotent.
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
	// FindDue returns undispatched notifications whose scheduled_for has
	// passed (or was never set but were left unclaimed by a crash).
	FindDue(ctx context.Context, now time.Time) ([]Notification, error)
	// ClaimDispatch atomically stamps dispatched_at; returns false when the
	// row was already claimed, making duplicate sweeps harmless.
	ClaimDispatch(ctx context.Context, id string, at time.Time) (bool, error)
	// Reschedule pushes scheduled_for forward for a still-gated row.
	Reschedule(ctx context.Context, id string, at time.Time) error
}

type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*NotificationPreference, error)
	Upsert(ctx context.Context, pref *NotificationPreference) error
}

// CreateNotificationRequest is a dispatch request. RequestedChannels, when
// set, intersects with the recipient's enabled channels.
type CreateNotificationRequest struct {
	UserID            string                 `json:"user_id" validate:"required"`
	Type              string                 `json:"type" validate:"required,max=100"`
	Title             string                 `json:"title" validate:"required,max=200"`
	Message           string                 `json:"message" validate:"required"`
	Data              map[string]interface{} `json:"data,omitempty"`
	Priority          NotificationPriority   `json:"priority,omitempty"`
	RequestedChannels []Channel              `json:"channels,omitempty"`
}

// PreferencePatch is a partial preference update; nil fields keep their
// prior values.
type PreferencePatch struct {
	EmailNotifications *bool                  `json:"email_notifications,omitempty"`
	PushNotifications  *bool                  `json:"push_notifications,omitempty"`
	SMSNotifications   *bool                  `json:"sms_notifications,omitempty"`
	DisabledTypes      *[]string              `json:"disabled_types,omitempty"`
	Frequency          *NotificationFrequency `json:"frequency,omitempty"`
	QuietHoursStart    *string                `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd      *string                `json:"quiet_hours_end,omitempty"`
	AllowedDays        *[]int                 `json:"allowed_days,omitempty"`
}

// NotificationDispatcher is the narrow contract the workflow coordinator
// uses to request notifications. The coordinator never writes notification
// rows itself.
type NotificationDispatcher interface {
	Create(ctx context.Context, req CreateNotificationRequest) (*Notification, error)
}

// NotificationUsecase is the dispatch engine surface.
type NotificationUsecase interface {
	NotificationDispatcher
	List(ctx context.Context, userID string, opts NotificationListOptions) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	GetPreferences(ctx context.Context, userID string) (*NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID string, patch PreferencePatch) (*NotificationPreference, error)
	// ProcessScheduled delivers every due notification at most once.
	// Safe to invoke concurrently or repeatedly.
	ProcessScheduled(ctx context.Context) error
}

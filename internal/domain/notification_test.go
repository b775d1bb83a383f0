package domain_test

import (
	"testing"
	"time"

	"go-talentbridge-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPreferenceChannels(t *testing.T) {
	t.Run("Should list every enabled channel", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		chs := pref.Channels(domain.NotificationTypeInterviewApproved)
		assert.ElementsMatch(t, []domain.Channel{domain.ChannelEmail, domain.ChannelPush, domain.ChannelSMS}, chs)
	})

	t.Run("Should drop disabled channels", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.PushNotifications = false
		pref.SMSNotifications = false
		chs := pref.Channels(domain.NotificationTypeInterviewApproved)
		assert.Equal(t, []domain.Channel{domain.ChannelEmail}, chs)
	})

	t.Run("Should return nothing for a disabled type", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.DisabledTypes = []string{domain.NotificationTypeFeedbackSubmitted}
		assert.Empty(t, pref.Channels(domain.NotificationTypeFeedbackSubmitted))
		assert.NotEmpty(t, pref.Channels(domain.NotificationTypeInterviewApproved))
	})
}

func TestAllowsDeliveryAt(t *testing.T) {
	// 2026-01-06 is a Tuesday.
	at := func(hour, min int) time.Time {
		return time.Date(2026, 1, 6, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		setup   func(p *domain.NotificationPreference)
		at      time.Time
		allowed bool
	}{
		{
			name:    "no gating allows any time",
			setup:   func(p *domain.NotificationPreference) {},
			at:      at(3, 0),
			allowed: true,
		},
		{
			name: "inside a same-day quiet window",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "09:00"
				p.QuietHoursEnd = "17:00"
			},
			at:      at(12, 0),
			allowed: false,
		},
		{
			name: "window end is exclusive of the quiet range",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "09:00"
				p.QuietHoursEnd = "17:00"
			},
			at:      at(17, 0),
			allowed: true,
		},
		{
			name: "wrapped window blocks before midnight",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "22:00"
				p.QuietHoursEnd = "07:00"
			},
			at:      at(23, 30),
			allowed: false,
		},
		{
			name: "wrapped window blocks after midnight",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "22:00"
				p.QuietHoursEnd = "07:00"
			},
			at:      at(6, 59),
			allowed: false,
		},
		{
			name: "wrapped window opens at its end",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "22:00"
				p.QuietHoursEnd = "07:00"
			},
			at:      at(7, 0),
			allowed: true,
		},
		{
			name: "disallowed weekday blocks the whole day",
			setup: func(p *domain.NotificationPreference) {
				p.AllowedDays = []int{int(time.Monday), int(time.Wednesday)}
			},
			at:      at(12, 0), // Tuesday
			allowed: false,
		},
		{
			name: "allowed weekday passes",
			setup: func(p *domain.NotificationPreference) {
				p.AllowedDays = []int{int(time.Tuesday)}
			},
			at:      at(12, 0),
			allowed: true,
		},
		{
			name: "malformed quiet hours are ignored",
			setup: func(p *domain.NotificationPreference) {
				p.QuietHoursStart = "nonsense"
				p.QuietHoursEnd = "07:00"
			},
			at:      at(3, 0),
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := domain.DefaultPreference("user1")
			tt.setup(pref)
			assert.Equal(t, tt.allowed, pref.AllowsDeliveryAt(tt.at))
		})
	}
}

func TestNextDeliveryTime(t *testing.T) {
	t.Run("Should return from unchanged when delivery is already allowed", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		from := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, from, pref.NextDeliveryTime(from))
	})

	t.Run("Should land on the quiet window end within the same day", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.QuietHoursStart = "09:00"
		pref.QuietHoursEnd = "17:00"
		from := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 1, 6, 17, 0, 0, 0, time.UTC), pref.NextDeliveryTime(from))
	})

	t.Run("Should cross midnight for a wrapped window", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.QuietHoursStart = "22:00"
		pref.QuietHoursEnd = "07:00"
		from := time.Date(2026, 1, 6, 23, 15, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC), pref.NextDeliveryTime(from))
	})

	t.Run("Should skip to the next allowed weekday", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.AllowedDays = []int{int(time.Friday)}
		from := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC) // Tuesday
		next := pref.NextDeliveryTime(from)
		assert.Equal(t, time.Friday, next.Weekday())
		assert.Equal(t, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("Should combine weekday and quiet hour gating", func(t *testing.T) {
		pref := domain.DefaultPreference("user1")
		pref.AllowedDays = []int{int(time.Wednesday)}
		pref.QuietHoursStart = "00:00"
		pref.QuietHoursEnd = "08:00"
		from := time.Date(2026, 1, 6, 23, 0, 0, 0, time.UTC) // Tuesday night
		assert.Equal(t, time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), pref.NextDeliveryTime(from))
	})
}

func TestNotificationUnread(t *testing.T) {
	n := domain.Notification{}
	assert.True(t, n.Unread())

	now := time.Now()
	n.ReadAt = &now
	assert.False(t, n.Unread())
}

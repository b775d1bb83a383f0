package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/internal/usecase"
	"go-talentbridge-backend/pkg/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) GetByUserID(ctx context.Context, userID string, opts domain.NotificationListOptions) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *MockNotificationRepo) FindDue(ctx context.Context, now time.Time) ([]domain.Notification, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) ClaimDispatch(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepo) Reschedule(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockPreferenceRepo struct {
	mock.Mock
}

func (m *MockPreferenceRepo) Get(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPreference), args.Error(1)
}

func (m *MockPreferenceRepo) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	return m.Called(ctx, pref).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Name() string { return "mock" }

func (m *MockSender) Send(ctx context.Context, msg channel.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type notificationFixture struct {
	notifRepo *MockNotificationRepo
	prefRepo  *MockPreferenceRepo
	userRepo  *MockUserRepo
	email     *MockSender
	uc        domain.NotificationUsecase
}

// Tuesday afternoon, well outside any quiet window.
var tuesdayNoon = time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)

func newNotificationFixture(now time.Time) *notificationFixture {
	f := &notificationFixture{
		notifRepo: new(MockNotificationRepo),
		prefRepo:  new(MockPreferenceRepo),
		userRepo:  new(MockUserRepo),
		email:     new(MockSender),
	}
	senders := map[domain.Channel]channel.Sender{
		domain.ChannelEmail: f.email,
	}
	f.uc = usecase.NewNotificationUsecase(f.notifRepo, f.prefRepo, f.userRepo, senders, nil, func() time.Time { return now })
	return f
}

func notifyRequest() domain.CreateNotificationRequest {
	return domain.CreateNotificationRequest{
		UserID:  "user1",
		Type:    domain.NotificationTypeInterviewApproved,
		Title:   "Interview approved",
		Message: "Your interview was approved.",
	}
}

func TestCreateNotificationImmediate(t *testing.T) {
	t.Run("Should persist, claim and send when nothing gates delivery", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		f.notifRepo.On("ClaimDispatch", mock.Anything, mock.AnythingOfType("string"), tuesdayNoon).Return(true, nil)
		f.userRepo.On("GetByID", mock.Anything, "user1").Return(&domain.User{ID: "user1", Email: "user1@example.com"}, nil)
		f.email.On("Send", mock.Anything, mock.MatchedBy(func(msg channel.Message) bool {
			return msg.Recipient == "user1@example.com"
		})).Return(nil)

		n, err := f.uc.Create(context.Background(), notifyRequest())
		assert.NoError(t, err)
		assert.Nil(t, n.ScheduledFor)
		assert.Equal(t, domain.PriorityNormal, n.Priority)
		f.email.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Should reject an incomplete request", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		_, err := f.uc.Create(context.Background(), domain.CreateNotificationRequest{UserID: "user1"})
		assert.Error(t, err)
	})

	t.Run("Should skip channels the recipient disabled for the type", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		pref := domain.DefaultPreference("user1")
		pref.DisabledTypes = []string{domain.NotificationTypeInterviewApproved}
		f.prefRepo.On("Get", mock.Anything, "user1").Return(pref, nil)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		f.notifRepo.On("ClaimDispatch", mock.Anything, mock.AnythingOfType("string"), tuesdayNoon).Return(true, nil)

		_, err := f.uc.Create(context.Background(), notifyRequest())
		assert.NoError(t, err)
		f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should keep the record when a channel send fails", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		f.notifRepo.On("ClaimDispatch", mock.Anything, mock.AnythingOfType("string"), tuesdayNoon).Return(true, nil)
		f.userRepo.On("GetByID", mock.Anything, "user1").Return(&domain.User{ID: "user1", Email: "user1@example.com"}, nil)
		f.email.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		n, err := f.uc.Create(context.Background(), notifyRequest())
		assert.NoError(t, err)
		assert.NotEmpty(t, n.ID)
	})
}

func TestCreateNotificationQuietHours(t *testing.T) {
	t.Run("Should defer into the next allowed window instead of dropping", func(t *testing.T) {
		lateNight := time.Date(2026, 1, 6, 23, 30, 0, 0, time.UTC)
		f := newNotificationFixture(lateNight)
		pref := domain.DefaultPreference("user1")
		pref.QuietHoursStart = "22:00"
		pref.QuietHoursEnd = "07:00"
		f.prefRepo.On("Get", mock.Anything, "user1").Return(pref, nil)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

		n, err := f.uc.Create(context.Background(), notifyRequest())
		assert.NoError(t, err)
		if assert.NotNil(t, n.ScheduledFor) {
			// Quiet window wraps midnight, so delivery opens at 07:00 next day.
			assert.Equal(t, time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC), *n.ScheduledFor)
		}
		f.notifRepo.AssertNotCalled(t, "ClaimDispatch", mock.Anything, mock.Anything, mock.Anything)
		f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should defer to the next allowed day", func(t *testing.T) {
		saturday := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
		f := newNotificationFixture(saturday)
		pref := domain.DefaultPreference("user1")
		pref.AllowedDays = []int{1, 2, 3, 4, 5} // weekdays only
		f.prefRepo.On("Get", mock.Anything, "user1").Return(pref, nil)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

		n, err := f.uc.Create(context.Background(), notifyRequest())
		assert.NoError(t, err)
		if assert.NotNil(t, n.ScheduledFor) {
			assert.Equal(t, time.Monday, n.ScheduledFor.Weekday())
		}
	})
}

func TestProcessScheduled(t *testing.T) {
	due := func() domain.Notification {
		return domain.Notification{
			ID:      "n1",
			UserID:  "user1",
			Type:    domain.NotificationTypeInterviewApproved,
			Title:   "Interview approved",
			Message: "Your interview was approved.",
		}
	}

	t.Run("Should dispatch due rows exactly once", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("FindDue", mock.Anything, tuesdayNoon).Return([]domain.Notification{due()}, nil)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		f.notifRepo.On("ClaimDispatch", mock.Anything, "n1", tuesdayNoon).Return(true, nil)
		f.userRepo.On("GetByID", mock.Anything, "user1").Return(&domain.User{ID: "user1", Email: "user1@example.com"}, nil)
		f.email.On("Send", mock.Anything, mock.Anything).Return(nil)

		err := f.uc.ProcessScheduled(context.Background())
		assert.NoError(t, err)
		f.email.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Should skip rows another sweep already claimed", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("FindDue", mock.Anything, tuesdayNoon).Return([]domain.Notification{due()}, nil)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		f.notifRepo.On("ClaimDispatch", mock.Anything, "n1", tuesdayNoon).Return(false, nil)

		err := f.uc.ProcessScheduled(context.Background())
		assert.NoError(t, err)
		f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should reschedule rows still gated at sweep time", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		pref := domain.DefaultPreference("user1")
		pref.AllowedDays = []int{int(time.Saturday)}
		f.notifRepo.On("FindDue", mock.Anything, tuesdayNoon).Return([]domain.Notification{due()}, nil)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(pref, nil)
		f.notifRepo.On("Reschedule", mock.Anything, "n1", mock.MatchedBy(func(at time.Time) bool {
			return at.Weekday() == time.Saturday
		})).Return(nil)

		err := f.uc.ProcessScheduled(context.Background())
		assert.NoError(t, err)
		f.notifRepo.AssertNotCalled(t, "ClaimDispatch", mock.Anything, mock.Anything, mock.Anything)
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("Should do nothing when the queue is empty", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("FindDue", mock.Anything, tuesdayNoon).Return([]domain.Notification{}, nil)

		err := f.uc.ProcessScheduled(context.Background())
		assert.NoError(t, err)
	})
}

func TestMarkRead(t *testing.T) {
	t.Run("Should forbid marking another user's notification", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("GetByID", mock.Anything, "n1").Return(&domain.Notification{ID: "n1", UserID: "user2"}, nil)

		err := f.uc.MarkRead(context.Background(), "user1", "n1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "your own notifications")
	})

	t.Run("Should return not found for a missing notification", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

		err := f.uc.MarkRead(context.Background(), "user1", "missing")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Should mark the owner's notification with the current time", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.notifRepo.On("GetByID", mock.Anything, "n1").Return(&domain.Notification{ID: "n1", UserID: "user1"}, nil)
		f.notifRepo.On("MarkRead", mock.Anything, "n1", tuesdayNoon).Return(nil)

		err := f.uc.MarkRead(context.Background(), "user1", "n1")
		assert.NoError(t, err)
		f.notifRepo.AssertExpectations(t)
	})
}

func TestUpdatePreferences(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }
	strPtr := func(s string) *string { return &s }

	t.Run("Should merge only the supplied fields", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		stored := domain.DefaultPreference("user1")
		stored.QuietHoursStart = "22:00"
		stored.QuietHoursEnd = "07:00"
		f.prefRepo.On("Get", mock.Anything, "user1").Return(stored, nil)
		f.prefRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.NotificationPreference")).Return(nil)

		pref, err := f.uc.UpdatePreferences(context.Background(), "user1", domain.PreferencePatch{
			EmailNotifications: boolPtr(false),
		})
		assert.NoError(t, err)
		assert.False(t, pref.EmailNotifications)
		assert.True(t, pref.PushNotifications)
		assert.Equal(t, "22:00", pref.QuietHoursStart)
	})

	t.Run("Should reject a malformed quiet hours clock", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)

		_, err := f.uc.UpdatePreferences(context.Background(), "user1", domain.PreferencePatch{
			QuietHoursStart: strPtr("25:99"),
		})
		assert.Error(t, err)
	})

	t.Run("Should reject out-of-range weekday numbers", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		days := []int{0, 7}

		_, err := f.uc.UpdatePreferences(context.Background(), "user1", domain.PreferencePatch{
			AllowedDays: &days,
		})
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown frequency", func(t *testing.T) {
		f := newNotificationFixture(tuesdayNoon)
		f.prefRepo.On("Get", mock.Anything, "user1").Return(nil, domain.ErrNotFound)
		freq := domain.NotificationFrequency("hourly")

		_, err := f.uc.UpdatePreferences(context.Background(), "user1", domain.PreferencePatch{
			Frequency: &freq,
		})
		assert.Error(t, err)
	})
}

func TestUnreadCount(t *testing.T) {
	f := newNotificationFixture(tuesdayNoon)
	f.notifRepo.On("CountUnread", mock.Anything, "user1").Return(3, nil)

	count, err := f.uc.UnreadCount(context.Background(), "user1")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

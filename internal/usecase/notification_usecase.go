package usecase

import (
	"context"
	"errors"
	"time"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"
	"go-talentbridge-backend/pkg/audit"
	"go-talentbridge-backend/pkg/channel"

	"github.com/google/uuid"
)

type notificationUsecase struct {
	notifRepo domain.NotificationRepository
	prefRepo  domain.PreferenceRepository
	userRepo  domain.UserRepository
	senders   map[domain.Channel]channel.Sender
	auditLog  *audit.Logger
	now       func() time.Time
}

// NewNotificationUsecase creates the dispatch engine. The now func exists
// for tests; pass nil to use the wall clock.
func NewNotificationUsecase(
	notifRepo domain.NotificationRepository,
	prefRepo domain.PreferenceRepository,
	userRepo domain.UserRepository,
	senders map[domain.Channel]channel.Sender,
	auditLog *audit.Logger,
	now func() time.Time,
) domain.NotificationUsecase {
	if now == nil {
		now = time.Now
	}
	return &notificationUsecase{
		notifRepo: notifRepo,
		prefRepo:  prefRepo,
		userRepo:  userRepo,
		senders:   senders,
		auditLog:  auditLog,
		now:       now,
	}
}

// Create persists a notification and either dispatches it immediately or,
// when the recipient's preferences gate delivery right now, stores it with
// scheduled_for set to the next permissible instant. Deferred, never
// dropped.
func (uc *notificationUsecase) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	// 1. Validate the request
	if req.UserID == "" || req.Type == "" || req.Title == "" || req.Message == "" {
		return nil, apperror.BadRequest("Recipient, type, title and message are required")
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = domain.PriorityNormal
	case domain.PriorityLow, domain.PriorityNormal, domain.PriorityHigh, domain.PriorityUrgent:
	default:
		return nil, apperror.BadRequest("Invalid priority")
	}

	// 2. Evaluate the recipient's preferences at creation time
	pref := uc.preferenceFor(ctx, req.UserID)
	at := uc.now()

	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		Priority:  priority,
		CreatedAt: at,
	}

	if !pref.AllowsDeliveryAt(at) {
		next := pref.NextDeliveryTime(at)
		n.ScheduledFor = &next
		if err := uc.notifRepo.Create(ctx, n); err != nil {
			return nil, apperror.Internal(err)
		}
		return n, nil
	}

	// 3. Persist first, then claim-and-send, so a crash between the two
	// leaves the row for the next sweep instead of losing it.
	if err := uc.notifRepo.Create(ctx, n); err != nil {
		return nil, apperror.Internal(err)
	}
	uc.dispatch(ctx, n, pref, req.RequestedChannels, at)
	return n, nil
}

// ProcessScheduled delivers every due notification at most once. Gating is
// re-evaluated at sweep time so delivery reflects the recipient's current
// preferences, not the snapshot taken at creation.
func (uc *notificationUsecase) ProcessScheduled(ctx context.Context) error {
	now := uc.now()
	due, err := uc.notifRepo.FindDue(ctx, now)
	if err != nil {
		return apperror.Internal(err)
	}

	for i := range due {
		n := &due[i]
		pref := uc.preferenceFor(ctx, n.UserID)
		if !pref.AllowsDeliveryAt(now) {
			if err := uc.notifRepo.Reschedule(ctx, n.ID, pref.NextDeliveryTime(now)); err != nil {
				uc.auditLog.NotificationFailed(n.UserID, n.Type, err)
			}
			continue
		}
		uc.dispatch(ctx, n, pref, nil, now)
	}
	return nil
}

// dispatch claims the row's dispatch marker and sends through every
// eligible channel. The claim is atomic per notification: overlapping
// sweeps or a repeated create never double-send. Channel failures are
// logged and do not undo the claim (at-least-once semantics; the row is
// considered sent once at least one channel succeeded or none were
// eligible).
func (uc *notificationUsecase) dispatch(ctx context.Context, n *domain.Notification, pref *domain.NotificationPreference, requested []domain.Channel, at time.Time) {
	claimed, err := uc.notifRepo.ClaimDispatch(ctx, n.ID, at)
	if err != nil {
		uc.auditLog.NotificationFailed(n.UserID, n.Type, err)
		return
	}
	if !claimed {
		return
	}

	channels := intersectChannels(pref.Channels(n.Type), requested)
	if len(channels) == 0 {
		return
	}

	user, err := uc.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		uc.auditLog.NotificationFailed(n.UserID, n.Type, err)
		return
	}

	for _, ch := range channels {
		sender, ok := uc.senders[ch]
		if !ok {
			continue
		}
		recipient := recipientAddress(user, ch)
		if recipient == "" {
			continue
		}
		if err := sender.Send(ctx, channel.Message{
			Recipient: recipient,
			Title:     n.Title,
			Body:      n.Message,
		}); err != nil {
			uc.auditLog.DeliveryFailed(n.ID, string(ch), err)
		}
	}
}

// List returns the user's notifications, newest first.
func (uc *notificationUsecase) List(ctx context.Context, userID string, opts domain.NotificationListOptions) ([]domain.Notification, error) {
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}
	items, err := uc.notifRepo.GetByUserID(ctx, userID, opts)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (uc *notificationUsecase) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := uc.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// MarkRead sets read_at on the recipient's own notification. Calling it on
// an already-read notification is a no-op, not an error.
func (uc *notificationUsecase) MarkRead(ctx context.Context, userID, id string) error {
	n, err := uc.notifRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Notification not found")
		}
		return apperror.Internal(err)
	}
	if n.UserID != userID {
		return apperror.Forbidden("You can only mark your own notifications as read")
	}
	if err := uc.notifRepo.MarkRead(ctx, id, uc.now()); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *notificationUsecase) MarkAllRead(ctx context.Context, userID string) error {
	if err := uc.notifRepo.MarkAllRead(ctx, userID, uc.now()); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *notificationUsecase) GetPreferences(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	return uc.preferenceFor(ctx, userID), nil
}

// UpdatePreferences merges the patch into the stored preference; fields the
// patch leaves nil keep their prior values.
func (uc *notificationUsecase) UpdatePreferences(ctx context.Context, userID string, patch domain.PreferencePatch) (*domain.NotificationPreference, error) {
	pref := uc.preferenceFor(ctx, userID)

	if patch.EmailNotifications != nil {
		pref.EmailNotifications = *patch.EmailNotifications
	}
	if patch.PushNotifications != nil {
		pref.PushNotifications = *patch.PushNotifications
	}
	if patch.SMSNotifications != nil {
		pref.SMSNotifications = *patch.SMSNotifications
	}
	if patch.DisabledTypes != nil {
		pref.DisabledTypes = *patch.DisabledTypes
	}
	if patch.Frequency != nil {
		if *patch.Frequency != domain.FrequencyImmediate && *patch.Frequency != domain.FrequencyDigest {
			return nil, apperror.BadRequest("Frequency must be: immediate or digest")
		}
		pref.Frequency = *patch.Frequency
	}
	if patch.QuietHoursStart != nil {
		if !validClock(*patch.QuietHoursStart) {
			return nil, apperror.BadRequest("Quiet hours start must be HH:MM")
		}
		pref.QuietHoursStart = *patch.QuietHoursStart
	}
	if patch.QuietHoursEnd != nil {
		if !validClock(*patch.QuietHoursEnd) {
			return nil, apperror.BadRequest("Quiet hours end must be HH:MM")
		}
		pref.QuietHoursEnd = *patch.QuietHoursEnd
	}
	if patch.AllowedDays != nil {
		for _, d := range *patch.AllowedDays {
			if d < 0 || d > 6 {
				return nil, apperror.BadRequest("Allowed days must be weekday numbers 0-6")
			}
		}
		pref.AllowedDays = *patch.AllowedDays
	}

	pref.UpdatedAt = uc.now()
	if err := uc.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, apperror.Internal(err)
	}
	return pref, nil
}

// preferenceFor loads the user's preference, falling back to the default
// (everything on) when none was ever saved.
func (uc *notificationUsecase) preferenceFor(ctx context.Context, userID string) *domain.NotificationPreference {
	pref, err := uc.prefRepo.Get(ctx, userID)
	if err != nil {
		return domain.DefaultPreference(userID)
	}
	return pref
}

// intersectChannels narrows enabled channels to the requested subset;
// an empty request means "all enabled".
func intersectChannels(enabled, requested []domain.Channel) []domain.Channel {
	if len(requested) == 0 {
		return enabled
	}
	var out []domain.Channel
	for _, ch := range enabled {
		for _, want := range requested {
			if ch == want {
				out = append(out, ch)
				break
			}
		}
	}
	return out
}

// recipientAddress picks the channel-specific delivery target.
func recipientAddress(user *domain.User, ch domain.Channel) string {
	switch ch {
	case domain.ChannelEmail:
		return user.Email
	case domain.ChannelPush:
		return user.DeviceToken
	case domain.ChannelSMS:
		return user.Phone
	}
	return ""
}

// validClock reports whether s parses as "HH:MM"; empty clears the window.
func validClock(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

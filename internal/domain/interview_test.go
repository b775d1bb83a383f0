package domain_test

import (
	"context"
	"testing"

	"go-talentbridge-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func testCtx(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, userID)
	return context.WithValue(ctx, domain.KeyUserRole, role)
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"candidate", "company", "admin"} {
		role, err := domain.ParseRole(valid)
		assert.NoError(t, err)
		assert.Equal(t, domain.Role(valid), role)
	}

	for _, invalid := range []string{"", "superuser", "Admin"} {
		_, err := domain.ParseRole(invalid)
		assert.Error(t, err, "role %q should not parse", invalid)
	}
}

func TestRecomputeFeedbackStatus(t *testing.T) {
	company := &domain.CompanyFeedback{Technical: 4, Communication: 4, Experience: 4, Overall: 4}
	candidate := &domain.CandidateFeedback{Rating: 5}

	tests := []struct {
		name              string
		companyFeedback   *domain.CompanyFeedback
		candidateFeedback *domain.CandidateFeedback
		initial           domain.FeedbackStatus
		want              domain.FeedbackStatus
	}{
		{"no feedback", nil, nil, domain.FeedbackStatusNone, domain.FeedbackStatusNone},
		{"company only", company, nil, domain.FeedbackStatusNone, domain.FeedbackStatusCompanySubmitted},
		{"candidate only", nil, candidate, domain.FeedbackStatusNone, domain.FeedbackStatusCandidateSubmitted},
		{"both sides", company, candidate, domain.FeedbackStatusCompanySubmitted, domain.FeedbackStatusBothSubmitted},
		{"admin review is sticky", company, candidate, domain.FeedbackStatusAdminReviewed, domain.FeedbackStatusAdminReviewed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := domain.Interview{
				CompanyFeedback:   tt.companyFeedback,
				CandidateFeedback: tt.candidateFeedback,
				FeedbackStatus:    tt.initial,
			}
			iv.RecomputeFeedbackStatus()
			assert.Equal(t, tt.want, iv.FeedbackStatus)
		})
	}
}

func TestIdentityFromContext(t *testing.T) {
	t.Run("Should fail without a user id", func(t *testing.T) {
		_, ok := domain.IdentityFromContext(testCtx("", "admin"))
		assert.False(t, ok)
	})

	t.Run("Should fail on an unknown role", func(t *testing.T) {
		_, ok := domain.IdentityFromContext(testCtx("user1", "root"))
		assert.False(t, ok)
	})

	t.Run("Should resolve a complete identity", func(t *testing.T) {
		identity, ok := domain.IdentityFromContext(testCtx("user1", "company"))
		assert.True(t, ok)
		assert.Equal(t, "user1", identity.ID)
		assert.Equal(t, domain.RoleCompany, identity.Role)
	})
}

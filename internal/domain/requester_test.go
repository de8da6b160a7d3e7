package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequesterFields() RequesterFields {
	return RequesterFields{
		DisplayName: "Ana",
		MainReason:  "anxiety at work",
		Country:     "AR",
		Needs:       []string{"anxiety", " ", "stress "},
		Languages:   []string{"es"},
	}
}

func TestNewRequesterProfile_Defaults(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p, err := NewRequesterProfile(owner, validRequesterFields())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, owner, p.OwnerID)
	assert.Equal(t, UrgencyMedium, p.Urgency)
	assert.Equal(t, KindNoPreference, p.PreferredKind)
	assert.Equal(t, BudgetStandard, p.Budget)
	assert.Equal(t, DefaultTimezone, p.Timezone)
	assert.Equal(t, []string{"anxiety", "stress"}, p.Needs, "tags are trimmed and blanks dropped")
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewRequesterProfile_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		owner  uuid.UUID
		mutate func(f *RequesterFields)
		field  string
	}{
		{"missing owner", uuid.Nil, func(f *RequesterFields) {}, "owner_id"},
		{"missing name", uuid.New(), func(f *RequesterFields) { f.DisplayName = "  " }, "display_name"},
		{"missing reason", uuid.New(), func(f *RequesterFields) { f.MainReason = "" }, "main_reason"},
		{"missing country", uuid.New(), func(f *RequesterFields) { f.Country = "" }, "country"},
		{"bad urgency", uuid.New(), func(f *RequesterFields) { f.Urgency = "now" }, "urgency"},
		{"other is not a preference", uuid.New(), func(f *RequesterFields) { f.PreferredKind = KindOther }, "preferred_kind"},
		{"bad budget", uuid.New(), func(f *RequesterFields) { f.Budget = "premium" }, "budget"},
		{"bad timezone", uuid.New(), func(f *RequesterFields) { f.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fields := validRequesterFields()
			tc.mutate(&fields)

			_, err := NewRequesterProfile(tc.owner, fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestRequesterProfile_ApplyUpdate(t *testing.T) {
	t.Parallel()

	p, err := NewRequesterProfile(uuid.New(), validRequesterFields())
	require.NoError(t, err)
	original := *p

	bad := validRequesterFields()
	bad.Budget = "premium"
	require.Error(t, p.ApplyUpdate(bad))
	assert.Equal(t, original.Budget, p.Budget, "failed update leaves the profile untouched")

	good := validRequesterFields()
	good.Urgency = UrgencyHigh
	good.Timezone = "America/Argentina/Buenos_Aires"
	require.NoError(t, p.ApplyUpdate(good))
	assert.Equal(t, UrgencyHigh, p.Urgency)
	assert.Equal(t, original.ID, p.ID)
	assert.Equal(t, original.CreatedAt, p.CreatedAt)
}

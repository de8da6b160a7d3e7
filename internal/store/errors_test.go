package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		transient bool
	}{
		{name: "nil error"},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, notFound: true},
		{name: "wrapped match not found", err: fmt.Errorf("accept: %w", ErrMatchNotFound), notFound: true},
		{name: "slot not found", err: ErrSlotNotFound, notFound: true},
		{name: "profile exists", err: ErrProfileExists, duplicate: true},
		{name: "accepted match exists", err: fmt.Errorf("insert: %w", ErrAcceptedMatchExists), duplicate: true},
		{name: "transient", err: fmt.Errorf("%w: deadlock detected", ErrTransient), transient: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
			assert.Equal(t, tt.transient, IsTransientError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	err := NewStoreError("match", "transition", "update failed", inner)

	assert.Equal(t, "transition operation on match failed: update failed: connection reset", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("slot", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on slot failed: no rows", bare.Error())
}

package shared

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func TestBaseAggregateRoot_PullDomainEvents(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.GetVersion())
	assert.NotEqual(t, uuid.Nil, root.GetID())

	first := &testEvent{NewBaseDomainEvent("First", "Test", root.ID)}
	second := &testEvent{NewBaseDomainEvent("Second", "Test", root.ID)}
	root.AddDomainEvent(first)
	root.AddDomainEvent(second)

	pulled := root.PullDomainEvents()
	require.Len(t, pulled, 2)
	assert.Equal(t, "First", pulled[0].EventType())
	assert.Equal(t, "Second", pulled[1].EventType())
	assert.Empty(t, root.GetDomainEvents())
	assert.Empty(t, root.PullDomainEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	entity := NewBaseEntity()
	entity.UpdatedAt = entity.CreatedAt.Add(-1)
	entity.Touch()
	assert.False(t, entity.GetUpdatedAt().Before(entity.GetCreatedAt()))
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"price", NewDomainError("INVALID_PRICE", "bad"), true},
		{"wrapped quantity", fmt.Errorf("add item: %w", NewDomainError("INVALID_QUANTITY", "bad")), true},
		{"state", ErrInvalidState, false},
		{"conflict", ErrConcurrencyConflict, false},
		{"plain", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidationError(tt.err))
		})
	}
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_BoardEnums(t *testing.T) {
	tests := []struct {
		name  string
		check func(v *Validator)
		valid bool
		field string
	}{
		{
			name:  "known ticket type passes",
			check: func(v *Validator) { v.TicketType("ticketType", "BUG") },
			valid: true,
		},
		{
			name:  "unknown ticket type fails",
			check: func(v *Validator) { v.TicketType("ticketType", "EPIC") },
			field: "ticketType",
		},
		{
			name:  "known priority passes",
			check: func(v *Validator) { v.TicketPriority("ticketPriority", "URGENT") },
			valid: true,
		},
		{
			name:  "unknown priority fails",
			check: func(v *Validator) { v.TicketPriority("ticketPriority", "CRITICAL") },
			field: "ticketPriority",
		},
		{
			name:  "board column passes",
			check: func(v *Validator) { v.TicketStatus("status", "IN_REVIEW") },
			valid: true,
		},
		{
			name:  "unknown column fails",
			check: func(v *Validator) { v.TicketStatus("status", "ARCHIVED") },
			field: "status",
		},
		{
			name:  "blank enum is left to Required",
			check: func(v *Validator) { v.TicketStatus("status", "") },
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			tt.check(v)

			if tt.valid {
				assert.False(t, v.HasErrors())
				return
			}

			require.True(t, v.HasErrors())
			assert.Contains(t, v.Errors().Errors, tt.field)
		})
	}
}

func TestValidator_IDsPositionsAndTimestamps(t *testing.T) {
	t.Run("serial ids must be positive", func(t *testing.T) {
		v := NewValidator()
		v.PositiveID("ticketId", 7)
		assert.False(t, v.HasErrors())

		v = NewValidator()
		v.PositiveID("ticketId", 0)
		require.True(t, v.HasErrors())
		assert.Contains(t, v.Errors().Errors, "ticketId")
	})

	t.Run("positions are zero-indexed, never negative", func(t *testing.T) {
		v := NewValidator()
		v.Position("position", 0)
		assert.False(t, v.HasErrors())

		v = NewValidator()
		v.Position("position", -1)
		require.True(t, v.HasErrors())
		assert.Contains(t, v.Errors().Errors, "position")
	})

	t.Run("due dates must be RFC3339", func(t *testing.T) {
		v := NewValidator()
		v.Timestamp("dueAt", "2026-09-01T12:00:00Z")
		assert.False(t, v.HasErrors())

		v = NewValidator()
		v.Timestamp("dueAt", "tomorrow")
		require.True(t, v.HasErrors())
		assert.Contains(t, v.Errors().Errors, "dueAt")
	})
}

func TestValidator_ChainAccumulatesFields(t *testing.T) {
	v := NewValidator()
	v.Required("title", "").
		MaxLength("title", "", 120)
	v.Required("email", "nobody").
		Email("email", "nobody")

	require.True(t, v.HasErrors())
	assert.Contains(t, v.Errors().Errors, "title")
	assert.Contains(t, v.Errors().Errors, "email")
}

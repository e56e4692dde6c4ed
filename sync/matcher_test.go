package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchContactByEmail(t *testing.T) {
	existing := []models.Contact{
		{ID: uuid.New(), FirstName: "Alice", Email: "alice@example.com"},
		{ID: uuid.New(), FirstName: "Bob", Email: "bob@example.com"},
		{ID: uuid.New(), FirstName: "NoEmail"},
	}

	matcher := NewContactMatcher(existing)

	match, found := matcher.FindMatch(" ALICE@example.com ")
	require.True(t, found)
	assert.Equal(t, existing[0].ID, match.ID)

	_, found = matcher.FindMatch("charlie@example.com")
	assert.False(t, found)

	_, found = matcher.FindMatch("")
	assert.False(t, found)
}

func TestMatcherAddContact(t *testing.T) {
	matcher := NewContactMatcher(nil)
	c := &models.Contact{ID: uuid.New(), Email: "New@Example.com"}
	matcher.AddContact(c)

	match, found := matcher.FindMatch("new@example.com")
	require.True(t, found)
	assert.Same(t, c, match)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.com", "alice@example.com"},
		{"alice.smith@example.com", "alice.smith@example.com"},
		{"  ALICE@EXAMPLE.COM\t", "alice@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeEmail(tt.input), tt.input)
	}
}

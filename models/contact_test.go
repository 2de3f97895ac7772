package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkResolved(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	contact := Contact{CreatedAt: created}

	resolved := created.Add(26*time.Hour + 20*time.Minute)
	contact.MarkResolved(resolved)

	require.NotNil(t, contact.ResolvedAt)
	assert.Equal(t, resolved, *contact.ResolvedAt)
	require.NotNil(t, contact.ResponseTime)
	assert.Equal(t, float64(26), *contact.ResponseTime)
}

func TestMarkResolvedRoundsUp(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	contact := Contact{CreatedAt: created}

	contact.MarkResolved(created.Add(90 * time.Minute))

	require.NotNil(t, contact.ResponseTime)
	assert.Equal(t, float64(2), *contact.ResponseTime)
}

func TestMarkResolvedIdempotent(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	contact := Contact{CreatedAt: created}

	first := created.Add(4 * time.Hour)
	contact.MarkResolved(first)
	contact.MarkResolved(created.Add(100 * time.Hour))

	require.NotNil(t, contact.ResolvedAt)
	assert.Equal(t, first, *contact.ResolvedAt)
	assert.Equal(t, float64(4), *contact.ResponseTime)
}

func TestContactValidators(t *testing.T) {
	assert.True(t, ValidContactCategory("bug"))
	assert.False(t, ValidContactCategory("complaint"))

	assert.True(t, ValidContactStatus(ContactStatusInProgress))
	assert.False(t, ValidContactStatus("open"))

	assert.True(t, ValidContactPriority("urgent"))
	assert.False(t, ValidContactPriority("critical"))
}

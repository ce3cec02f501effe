package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingStartRefreshStop(t *testing.T) {
	tt := NewTypingTable(5 * time.Second)

	assert.True(t, tt.Start("conv-1", "alice"))
	assert.False(t, tt.Start("conv-1", "alice"), "repeat start is a refresh, not a new entry")
	assert.True(t, tt.Start("conv-1", "bob"))
	assert.Equal(t, 2, tt.Len())

	assert.True(t, tt.Stop("conv-1", "alice"))
	assert.False(t, tt.Stop("conv-1", "alice"))
	assert.Equal(t, 1, tt.Len())
}

func TestTypingSweepExpiresOverdueOnly(t *testing.T) {
	tt := NewTypingTable(5 * time.Second)
	tt.Start("conv-1", "alice")
	tt.Start("conv-2", "bob")

	assert.Empty(t, tt.Sweep(time.Now()))

	expired := tt.Sweep(time.Now().Add(10 * time.Second))
	assert.Len(t, expired, 2)
	assert.Equal(t, 0, tt.Len())
}

func TestTypingRefreshExtendsExpiry(t *testing.T) {
	tt := NewTypingTable(50 * time.Millisecond)
	tt.Start("conv-1", "alice")
	time.Sleep(30 * time.Millisecond)
	tt.Start("conv-1", "alice")

	// the refresh pushed expiry past the original deadline
	assert.Empty(t, tt.Sweep(time.Now().Add(30*time.Millisecond)))
	assert.Equal(t, 1, tt.Len())
}

func TestTypingStopAllForUser(t *testing.T) {
	tt := NewTypingTable(5 * time.Second)
	tt.Start("conv-1", "alice")
	tt.Start("conv-2", "alice")
	tt.Start("conv-1", "bob")

	cleared := tt.StopAllForUser("alice")
	assert.ElementsMatch(t, []string{"conv-1", "conv-2"}, cleared)
	assert.Equal(t, 1, tt.Len())
}

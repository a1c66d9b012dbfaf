package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenLedger(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	ledger := NewMemoryTokenLedger().WithClock(c.now)
	ctx := context.Background()

	first, err := ledger.MarkUsed(ctx, "a", c.t.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, first)

	first, err = ledger.MarkUsed(ctx, "a", c.t.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, first)

	used, _ := ledger.IsUsed(ctx, "a")
	assert.True(t, used)
	used, _ = ledger.IsUsed(ctx, "b")
	assert.False(t, used)

	_, _ = ledger.MarkUsed(ctx, "b", c.t.Add(2*time.Minute))
	c.advance(time.Minute)

	assert.Equal(t, 1, ledger.Purge())
	assert.Equal(t, 1, ledger.Len())
	used, _ = ledger.IsUsed(ctx, "a")
	assert.False(t, used)
}

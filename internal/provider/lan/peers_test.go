package lan

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerTable_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	table := NewPeerTable(clock, 15*time.Second)

	assert.True(t, table.Upsert("dev-b", "http://10.0.0.2:7000", "1.0"))
	assert.False(t, table.Upsert("dev-b", "http://10.0.0.2:7001", "1.0"))
	table.AddStatic("http://10.0.0.9:7000")

	alive := table.Alive()
	require.Len(t, alive, 2)
	assert.Equal(t, "dev-b", alive[0].DeviceID)
	assert.Equal(t, "http://10.0.0.2:7001", alive[0].BaseURL)

	clock.Advance(16 * time.Second)
	alive = table.Alive()
	require.Len(t, alive, 1)
	assert.True(t, alive[0].Static)

	assert.Equal(t, 1, table.Prune())
	assert.Equal(t, 0, table.Prune())
}

func TestPeerTable_RefreshKeepsAlive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	table := NewPeerTable(clock, 10*time.Second)

	table.Upsert("dev-b", "http://b", "1.0")
	clock.Advance(8 * time.Second)
	table.Upsert("dev-b", "http://b", "1.0")
	clock.Advance(8 * time.Second)

	assert.Len(t, table.Alive(), 1)
}

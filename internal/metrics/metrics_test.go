package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRequest("balance", 10*time.Millisecond, nil)
	m.RecordRequest("balance", 30*time.Millisecond, assert.AnError)
	m.RecordRequest("nonce", 20*time.Millisecond, nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestsTotal)
	assert.Equal(t, int64(1), snap.ErrorsTotal)
	assert.Equal(t, int64(2), snap.ByEndpoint["balance"])
	assert.Equal(t, int64(1), snap.ByEndpoint["nonce"])
	assert.InDelta(t, 20.0, m.LatencyAvgMs(), 0.01)
}

func TestRecordRetryAndRateLimited(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRetry()
	m.RecordRetry()
	m.RecordRateLimited()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RetriesTotal)
	assert.Equal(t, int64(1), snap.RateLimited)
}

func TestReset(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRequest("objects", time.Millisecond, nil)
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.RequestsTotal)
	assert.Empty(t, snap.ByEndpoint)
	assert.Zero(t, m.LatencyAvgMs())
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRequest("utxos", time.Millisecond, nil)

	snap := m.Snapshot()
	snap.ByEndpoint["utxos"] = 99

	assert.Equal(t, int64(1), m.Snapshot().ByEndpoint["utxos"])
}

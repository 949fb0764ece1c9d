package multisensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuvalrakavy/goPool"
)

func sequencedCollection(t *testing.T) (*fakeRig, *Collection) {
	t.Helper()

	rig := newRig(map[int]*fakeSensor{
		10: newFakeSensor(11),
		9:  newFakeSensor(22),
		11: newFakeSensor(33),
	})

	collection, err := rig.sequencer().Initialize(threeSensorConfig())
	require.NoError(t, err)
	require.Equal(t, 3, collection.Len())

	return rig, collection
}

func TestStartRangeReadingsRoundRobin(t *testing.T) {
	_, collection := sequencedCollection(t)

	pool := goPool.Make()
	readings := collection.StartRangeReadings(pool)

	wantDistances := []byte{11, 22, 33, 11, 22, 33}
	for i, want := range wantDistances {
		reading := <-readings
		assert.Equal(t, i%3, reading.Index)
		assert.Equal(t, want, reading.Distance)
		require.NoError(t, reading.Err)
	}

	pool.Terminate()
	for range readings {
		// drain until the poller closes the channel
	}
}

func TestStartRangeReadingsReportsErrors(t *testing.T) {
	rig, collection := sequencedCollection(t)
	rig.powered[0x30].failNow = true

	pool := goPool.Make()
	readings := collection.StartRangeReadings(pool)

	first := <-readings
	assert.Equal(t, 0, first.Index)
	assert.Error(t, first.Err)
	assert.Equal(t, KindQuery, KindOf(first.Err))

	second := <-readings
	assert.Equal(t, 1, second.Index)
	require.NoError(t, second.Err)
	assert.Equal(t, byte(22), second.Distance)

	pool.Terminate()
	for range readings {
	}
}

func TestStartRangeReadingsEmptyCollection(t *testing.T) {
	collection := &Collection{}

	pool := goPool.Make()
	readings := collection.StartRangeReadings(pool)

	pool.Terminate()

	_, open := <-readings
	assert.False(t, open, "channel must close when the pool terminates")
}

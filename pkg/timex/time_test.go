package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeJSONRoundTrip(t *testing.T) {
	in := Time(time.Date(2026, 5, 12, 3, 30, 0, 0, time.Local))

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2026-05-12 03:30:00"`, string(data))

	var out Time
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Time().Equal(out.Time()))
}

func TestTimeJSONZero(t *testing.T) {
	data, err := json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var out Time
	require.NoError(t, json.Unmarshal([]byte(`""`), &out))
	assert.True(t, out.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`null`), &out))
	assert.True(t, out.IsZero())
}

func TestTimeScan(t *testing.T) {
	want := time.Date(2026, 5, 12, 3, 30, 0, 0, time.Local)

	var fromTime Time
	require.NoError(t, fromTime.Scan(want))
	assert.True(t, fromTime.Time().Equal(want))

	var fromString Time
	require.NoError(t, fromString.Scan("2026-05-12 03:30:00"))
	assert.True(t, fromString.Time().Equal(want))

	var fromBytes Time
	require.NoError(t, fromBytes.Scan([]byte("2026-05-12 03:30:00")))
	assert.True(t, fromBytes.Time().Equal(want))

	var fromNil Time
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var fromInt Time
	assert.Error(t, fromInt.Scan(42))
}

func TestTimeValue(t *testing.T) {
	v, err := Time{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "zero time stores as NULL")

	now := time.Date(2026, 5, 12, 3, 30, 0, 0, time.Local)
	v, err = Time(now).Value()
	require.NoError(t, err)
	assert.Equal(t, now, v)
}

package viaplay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, raw string) *Object {
	t.Helper()
	obj, err := DecodeObject([]byte(raw))
	require.NoError(t, err)
	return obj
}

func TestEventStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data string
		want Status
	}{
		{
			name: "isLive flag wins over past interval",
			data: `{"system":{"flags":["isLive"]},"epg":{"startTime":"2020-01-01T00:00:00Z","endTime":"2020-01-01T01:00:00Z"}}`,
			want: StatusLive,
		},
		{
			name: "inside epg startTime interval",
			data: `{"system":{"flags":[]},"epg":{"startTime":"2024-05-01T11:00:00Z","endTime":"2024-05-01T13:00:00Z"}}`,
			want: StatusLive,
		},
		{
			name: "start equal to now is live",
			data: `{"epg":{"startTime":"2024-05-01T12:00:00Z","endTime":"2024-05-01T13:00:00Z"}}`,
			want: StatusLive,
		},
		{
			name: "end equal to now is archive",
			data: `{"epg":{"startTime":"2024-05-01T11:00:00Z","endTime":"2024-05-01T12:00:00Z"}}`,
			want: StatusArchive,
		},
		{
			name: "future epg start/end is upcoming",
			data: `{"epg":{"start":"2024-05-02T11:00:00.000Z","end":"2024-05-02T13:00:00.000Z"}}`,
			want: StatusUpcoming,
		},
		{
			name: "availability in the past is archive",
			data: `{"system":{"availability":{"start":"2024-04-01T00:00:00+02:00","end":"2024-04-02T00:00:00+02:00"}}}`,
			want: StatusArchive,
		},
		{
			name: "zone-less availability is read as utc",
			data: `{"system":{"availability":{"start":"2024-05-01T11:59:00","end":"2024-05-01T12:30:00"}}}`,
			want: StatusLive,
		},
		{
			name: "no interval is archive",
			data: `{"system":{"flags":["something"]}}`,
			want: StatusArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EventStatus(mustObject(t, tt.data), now))
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Live ")
	assert.True(t, ok)
	assert.Equal(t, StatusLive, st)

	_, ok = ParseStatus("finished")
	assert.False(t, ok)
}

func TestAiringAtIncludesBounds(t *testing.T) {
	ev := mustObject(t, `{"epg":{"startTime":"2024-05-01T11:00:00Z","endTime":"2024-05-01T12:00:00Z"}}`)
	assert.True(t, airingAt(ev, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)))
	assert.True(t, airingAt(ev, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, airingAt(ev, time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC)))
}

package export

import (
	"context"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

const payloadVersion = 1

// StreamsPayload is the JSON-STREAMS document.
type StreamsPayload struct {
	Version int           `json:"version"`
	Streams []StreamEntry `json:"streams"`
}

type StreamEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Preset *int   `json:"preset"`
	Logo   string `json:"logo"`
	Stream string `json:"stream"`
}

// EPGPayload is the JSON-EPG document keyed by channel guid.
type EPGPayload struct {
	Version int                   `json:"version"`
	EPG     map[string][]EPGEntry `json:"epg"`
}

type EPGEntry struct {
	Start       string `json:"start"`
	Stop        string `json:"stop"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Producer builds the document SendVia delivers.
type Producer func(ctx context.Context) (any, error)

// Source is the part of the viaplay client the exporter reads from.
type Source interface {
	ChannelsURL() string
	Channels(ctx context.Context, rawURL string) (*viaplay.ChannelPage, error)
	ChannelEPG(ctx context.Context, guid string) ([]*viaplay.Object, error)
}

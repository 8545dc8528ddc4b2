// Package export feeds channel and programme listings to an IPTV manager
// listening on a local socket.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

const (
	dialTimeout = 3 * time.Second
	epgWorkers  = 4
	maxPages    = 50
)

// Addr is the loopback address of the IPTV manager.
func Addr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// SendVia runs produce, then writes its result as one JSON document to addr
// and closes the connection.
func SendVia(ctx context.Context, addr string, produce Producer) error {
	v, err := produce(ctx)
	if err != nil {
		return err
	}
	return Send(ctx, addr, v)
}

func Send(ctx context.Context, addr string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send payload: %w", err)
	}
	return nil
}

// BuildStreams renders channels as JSON-STREAMS. "{guid}" in template is
// replaced by each channel guid.
func BuildStreams(channels []viaplay.Channel, template string) StreamsPayload {
	out := StreamsPayload{Version: payloadVersion, Streams: make([]StreamEntry, 0, len(channels))}
	for _, ch := range channels {
		out.Streams = append(out.Streams, StreamEntry{
			ID:     ch.GUID,
			Name:   ch.Title,
			Preset: ch.ChannelNumber,
			Logo:   ch.Logo(),
			Stream: strings.ReplaceAll(template, "{guid}", ch.GUID),
		})
	}
	return out
}

// BuildEPG renders the embedded programmes of channels as JSON-EPG.
func BuildEPG(channels []viaplay.Channel) EPGPayload {
	out := EPGPayload{Version: payloadVersion, EPG: make(map[string][]EPGEntry, len(channels))}
	for _, ch := range channels {
		entries := make([]EPGEntry, 0, len(ch.Events))
		for _, obj := range ch.Events {
			ev := viaplay.NewEPGEvent(obj)
			entries = append(entries, EPGEntry{
				Start:       ev.Start,
				Stop:        ev.Stop,
				Title:       ev.Title,
				Description: ev.Description,
				Image:       ev.Image,
			})
		}
		if prev, ok := out.EPG[ch.GUID]; ok {
			entries = append(prev, entries...)
		}
		out.EPG[ch.GUID] = entries
	}
	return out
}

type Exporter struct {
	src      Source
	template string
	log      zerolog.Logger
}

func NewExporter(src Source, streamTemplate string) *Exporter {
	return &Exporter{
		src:      src,
		template: streamTemplate,
		log:      vlog.WithComponent("export"),
	}
}

// AllChannels walks every page of the channel listing.
func (e *Exporter) AllChannels(ctx context.Context) ([]viaplay.Channel, error) {
	var channels []viaplay.Channel
	seen := make(map[string]bool)

	next := e.src.ChannelsURL()
	for i := 0; i < maxPages && next != "" && !seen[next]; i++ {
		seen[next] = true

		page, err := e.src.Channels(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to list channels: %w", err)
		}
		channels = append(channels, page.Channels...)

		next = ""
		if page.HasNext {
			next = page.NextPage
		}
	}

	e.log.Debug().Int("count", len(channels)).Msg("channels collected")
	return channels, nil
}

func (e *Exporter) Streams(ctx context.Context) (any, error) {
	channels, err := e.AllChannels(ctx)
	if err != nil {
		return nil, err
	}
	return BuildStreams(channels, e.template), nil
}

// EPG fetches programmes for channels that came without an embedded
// schedule, at most epgWorkers at a time.
func (e *Exporter) EPG(ctx context.Context) (any, error) {
	channels, err := e.AllChannels(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(epgWorkers)

	for i := range channels {
		if len(channels[i].Events) > 0 || channels[i].GUID == "" {
			continue
		}
		idx := i
		g.Go(func() error {
			events, err := e.src.ChannelEPG(gctx, channels[idx].GUID)
			if err != nil {
				// the channel is exported without programmes
				e.log.Warn().Err(err).Str(vlog.FieldGUID, channels[idx].GUID).Msg("failed to fetch channel epg")
				return nil
			}
			channels[idx].Events = events
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildEPG(channels), nil
}

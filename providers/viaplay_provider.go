package providers

import (
	"context"
	"fmt"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/config"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/export"
	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/storage"
)

// maxBrowsePages bounds --all listings.
const maxBrowsePages = 20

type ViaplayProvider struct {
	Config *config.Config
	Store  *storage.Storage
	Client *viaplay.Client
}

type PlayResult struct {
	Stream        *viaplay.Stream `json:"stream"`
	SubtitlePaths []string        `json:"subtitle_paths,omitempty"`
}

func NewViaplayProvider(o config.Overrides, opts ...viaplay.Option) (*ViaplayProvider, error) {
	cfg, err := config.Load(o)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	vlog.Configure(vlog.Config{Level: cfg.LogLevel, Debug: cfg.Debug})

	store, err := storage.New(cfg.SettingsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client, err := viaplay.NewClient(cfg, store, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &ViaplayProvider{
		Config: cfg,
		Store:  store,
		Client: client,
	}, nil
}

// LoggedIn validates the stored cookies with the service.
func (p *ViaplayProvider) LoggedIn(ctx context.Context) bool {
	if !p.Store.HasSession() {
		return false
	}
	return p.Client.ValidateSession(ctx) == nil
}

// Products lists a page, following next links when all is set.
func (p *ViaplayProvider) Products(ctx context.Context, url string, q viaplay.ProductQuery, all bool) (*viaplay.ProductPage, error) {
	page, err := p.Client.Products(ctx, url, q)
	if err != nil {
		return nil, err
	}

	for i := 1; all && page.HasNext && i < maxBrowsePages; i++ {
		next, err := p.Client.Products(ctx, page.NextPage, viaplay.ProductQuery{FilterEvent: q.FilterEvent})
		if err != nil {
			return nil, err
		}
		page.Products = append(page.Products, next.Products...)
		page.NextPage, page.HasNext = next.NextPage, next.HasNext
	}
	return page, nil
}

func (p *ViaplayProvider) Channels(ctx context.Context, url string, all bool) (*viaplay.ChannelPage, error) {
	if url == "" {
		url = p.Client.ChannelsURL()
	}
	page, err := p.Client.Channels(ctx, url)
	if err != nil {
		return nil, err
	}

	for i := 1; all && page.HasNext && i < maxBrowsePages; i++ {
		next, err := p.Client.Channels(ctx, page.NextPage)
		if err != nil {
			return nil, err
		}
		page.Channels = append(page.Channels, next.Channels...)
		page.NextPage, page.HasNext = next.NextPage, next.HasNext
	}
	return page, nil
}

// PlayWithProgress resolves guid and optionally downloads its subtitles.
func (p *ViaplayProvider) PlayWithProgress(ctx context.Context, guid string, opts viaplay.StreamOptions, subs bool, reporter viaplay.ProgressReporter) (*PlayResult, error) {
	if guid == "" {
		return nil, fmt.Errorf("guid cannot be empty")
	}

	stream, err := p.Client.Stream(ctx, guid, opts)
	if err != nil {
		return nil, err
	}

	result := &PlayResult{Stream: stream}
	if subs && len(stream.Subtitles) > 0 {
		paths, err := p.Client.DownloadSubtitles(ctx, stream.Subtitles, reporter)
		if err != nil {
			return nil, err
		}
		result.SubtitlePaths = paths
	}
	return result, nil
}

// Export sends the channel list or the guide to the IPTV manager on port.
func (p *ViaplayProvider) Export(ctx context.Context, what string, port int) error {
	if port == 0 {
		port = p.Config.Export.Port
	}
	if port <= 0 {
		return fmt.Errorf("export port is not set")
	}

	exp := export.NewExporter(p.Client, p.Config.Export.StreamTemplate)

	var produce export.Producer
	switch what {
	case "channels":
		produce = exp.Streams
	case "epg":
		produce = exp.EPG
	default:
		return fmt.Errorf("unknown export %q", what)
	}

	if err := p.ensureSession(ctx); err != nil {
		return err
	}
	return export.SendVia(ctx, export.Addr(port), produce)
}

// ensureSession refreshes the cookies before a batch of requests.
func (p *ViaplayProvider) ensureSession(ctx context.Context) error {
	if err := p.Client.ValidateSession(ctx); err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}
	return nil
}

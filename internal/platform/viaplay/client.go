package viaplay

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/config"
	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay/session"
)

func NewClient(cfg *config.Config, store Store, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	sess := session.New()
	c := &Client{
		cfg:       cfg,
		endpoints: EndpointsFor(cfg),
		session:   sess,
		store:     store,
		httpClient: &http.Client{
			Jar:     sess,
			Timeout: DefaultTimeout,
		},
		log: vlog.WithComponent("viaplay").With().Str(vlog.FieldCountry, cfg.Country).Logger(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}
	// the session must stay the jar even when a custom http client is supplied
	c.httpClient.Jar = c.session

	if err := store.LoadSession(sess); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if len(sess.Records()) > 0 {
		c.state = StateAuthenticated
	}

	return c, nil
}

func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// WithHTTPClient replaces the transport. Its Jar is overwritten by the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// EndpointsFor builds the service roots for the configured country.
func EndpointsFor(cfg *config.Config) Endpoints {
	tld := cfg.TLD()
	return Endpoints{
		Content: fmt.Sprintf("https://content.viaplay.%s/xdk-%s", tld, cfg.Country),
		Login:   fmt.Sprintf("https://login.viaplay.%s/api", tld),
		Play:    fmt.Sprintf("https://play.viaplay.%s/api", tld),
		EPG:     fmt.Sprintf("https://epg.viaplay.%s/xdk-%s", tld, cfg.Country),
		Profile: "https://viaplay.mtg-api.com",
	}
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// DeviceKey identifies this client class to the login and content APIs.
func (c *Client) DeviceKey() string {
	return "xdk-" + c.cfg.Country
}

func (c *Client) Config() *config.Config {
	return c.cfg
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	if prev != s {
		c.log.Debug().Str(vlog.FieldState, s.String()).Str("previous", prev.String()).Msg("session state changed")
	}
}

// ChannelsURL is the content page listing live channels.
func (c *Client) ChannelsURL() string {
	var page string
	switch c.cfg.Country {
	case "se", "dk", "no":
		page = "kanaler"
	case "fi":
		page = "kanavat"
	case "pl":
		page = "kanaly"
	default:
		page = "channels"
	}
	return c.endpoints.Content + "/" + page
}

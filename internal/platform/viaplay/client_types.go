package viaplay

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/config"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay/session"
)

const (
	DefaultTimeout = 30 * time.Second
	UserAgent      = "Kodi"
	DeviceName     = "web"
	DeviceType     = "pc"
)

// Store is the persistence the client needs: device identity, the cookie
// file and a scratch directory for subtitles.
type Store interface {
	DeviceID() (string, error)
	LoadSession(sess *session.Session) error
	SaveSession(sess *session.Session) error
	DeleteSession() error
	TempDir() string
}

type Client struct {
	mu    sync.RWMutex
	state State

	cfg       *config.Config
	endpoints Endpoints
	session   *session.Session
	store     Store

	httpClient *http.Client
	log        zerolog.Logger
	now        func() time.Time
}

// Endpoints are the per-country service roots.
type Endpoints struct {
	Content string
	Login   string
	Play    string
	EPG     string
	Profile string
}

type Method string

const (
	MethodGet  Method = "get"
	MethodPut  Method = "put"
	MethodPost Method = "post"
)

type Request struct {
	URL     string
	Method  Method
	Params  map[string]string
	Payload map[string]string
	Headers map[string]string
}

// State tracks the session lifecycle as observed through service responses.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type Option func(*Client)

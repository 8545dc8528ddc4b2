package viaplay

import "strings"

type StreamOptions struct {
	PinCode string
	TVE     bool
}

// Stream is everything a player needs for one playback.
type Stream struct {
	MPDURL     string   `json:"mpd_url"`
	LicenseURL string   `json:"license_url"`
	ReleasePID string   `json:"release_pid"`
	Subtitles  []string `json:"subtitles,omitempty"`
}

// manifestLinks in priority order.
var manifestLinks = []string{
	"viaplay:media",
	"viaplay:fallbackMedia",
	"viaplay:playlist",
	"viaplay:encryptedPlaylist",
}

// IsChannelGUID reports whether guid names a live channel rather than a programme.
func IsChannelGUID(guid string) bool {
	return strings.HasPrefix(guid, "ch-")
}

package storage

import "sync"

// Storage is the settings folder: device identity, cookie file and the
// temporary directory for downloaded subtitles.
type Storage struct {
	mu       sync.Mutex
	basePath string
}

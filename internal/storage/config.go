package storage

import (
	"os"
	"path/filepath"

	"github.com/ekisa-team/whisperd/internal/xfs"
)

// Config is the storage configuration captured once at startup. It is
// never hot-reloaded; every lookup after boot sees the same view.
type Config struct {
	// ExternalEnabled toggles probing of the external model store ahead
	// of the default caches.
	ExternalEnabled bool

	// CacheDir is the explicit external cache directory, if any.
	CacheDir string

	// VolumePath is a mounted volume used as the external store when no
	// explicit cache dir is set and the path exists on disk.
	VolumePath string

	// HFHome and TransformersCache are cache homes inherited from the
	// process environment.
	HFHome            string
	TransformersCache string
}

// ExternalDir resolves the external store root. It only yields a
// directory when external storage is enabled: the explicit cache dir
// wins, otherwise the mounted volume is used if it exists.
func (c Config) ExternalDir() (string, bool) {
	if !c.ExternalEnabled {
		return "", false
	}
	if c.CacheDir != "" {
		return xfs.ExpandTilde(c.CacheDir), true
	}
	if c.VolumePath != "" {
		p := xfs.ExpandTilde(c.VolumePath)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Effective returns the effective cache directory by the fixed priority
// order: explicit external dir > volume path if it exists > inherited
// cache homes. Empty means nothing is configured and the platform
// default applies.
func (c Config) Effective() string {
	if dir, ok := c.ExternalDir(); ok {
		return dir
	}
	if c.HFHome != "" {
		return xfs.ExpandTilde(c.HFHome)
	}
	if c.TransformersCache != "" {
		return xfs.ExpandTilde(c.TransformersCache)
	}
	return ""
}

// HubCache returns the Hugging Face style cache root probed after any
// external store: the inherited cache home when set, the platform
// default otherwise.
func (c Config) HubCache() string {
	if c.HFHome != "" {
		return xfs.ExpandTilde(c.HFHome)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".cache", "huggingface")
	}
	return filepath.Join(home, ".cache", "huggingface")
}

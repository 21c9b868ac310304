// Package storage resolves where model artifacts live on disk. Publisher
// naming conventions have varied over time and across environments, so a
// model has many legitimate locations; the locator enumerates them in
// priority order and confirms presence by read-only inspection only.
// Nothing in this package ever opens a network connection.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ekisa-team/whisperd/internal/xfs"
)

// hubLayouts are directory patterns relative to a Hugging Face style
// cache root, in probing priority order. New layouts are added here, not
// as new code paths.
var hubLayouts = []string{
	"hub/models--guillaumekln--faster-whisper-%s",
	"hub/models--Systran--faster-whisper-%s",
	"hub/models--openai--whisper-%s",
	"transformers/models--guillaumekln--faster-whisper-%s",
	"transformers/models--Systran--faster-whisper-%s",
	"transformers/models--openai--whisper-%s",
	"%s",
	"faster-whisper-%s",
}

// flatLayouts are legacy directory patterns relative to a well-known
// local cache directory.
var flatLayouts = []string{
	"%s",
	"whisper-%s",
	"faster-whisper-%s",
}

// commonCacheDirs are well-known local directories always probed as a
// fallback, regardless of storage configuration.
var commonCacheDirs = []string{
	"~/.cache/huggingface",
	"~/.cache/whisper",
	"~/.local/share/whisper",
	"/tmp/whisper",
	"./models",
}

// artifactExts identify recognizable artifact files: packed weights
// (model.bin, pytorch_model.bin), safetensors, CTranslate2 and GGML
// serialized formats.
var artifactExts = map[string]struct{}{
	".bin":         {},
	".safetensors": {},
	".ctranslate2": {},
	".gguf":        {},
}

// Candidate is one filesystem location a model artifact might occupy,
// together with the naming convention that produced it.
type Candidate struct {
	Path   string
	Layout string
}

// Locator enumerates and probes candidate artifact locations.
type Locator struct {
	cfg Config
}

// NewLocator creates a Locator over a fixed storage configuration.
func NewLocator(cfg Config) *Locator {
	return &Locator{cfg: cfg}
}

// Config returns the storage configuration the locator probes with.
func (l *Locator) Config() Config {
	return l.cfg
}

// Candidates returns the ordered, deduplicated candidate locations for a
// model. External-store candidates come strictly first when external
// storage is enabled; the default hub cache and the well-known local
// directories always follow as fallback.
func (l *Locator) Candidates(name string) []Candidate {
	seen := make(map[string]struct{})
	candidates := make([]Candidate, 0, 2*len(hubLayouts)+len(commonCacheDirs)*len(flatLayouts))

	add := func(layout, path string) {
		path = filepath.Clean(path)
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, Candidate{Path: path, Layout: layout})
	}

	if external, ok := l.cfg.ExternalDir(); ok {
		for _, layout := range hubLayouts {
			add(layout, filepath.Join(external, fmt.Sprintf(layout, name)))
		}
	}

	hub := l.cfg.HubCache()
	for _, layout := range hubLayouts {
		add(layout, filepath.Join(hub, fmt.Sprintf(layout, name)))
	}

	for _, dir := range commonCacheDirs {
		dir = xfs.ExpandTilde(dir)
		for _, layout := range flatLayouts {
			add(layout, filepath.Join(dir, fmt.Sprintf(layout, name)))
		}
	}

	return candidates
}

// Find returns the first candidate location holding the model's
// artifact. Evaluation is lazy and short-circuits on the first hit.
// Filesystem errors count as "not present here" so a bad candidate never
// aborts the search.
func (l *Locator) Find(name string) (Candidate, bool) {
	for _, cand := range l.Candidates(name) {
		if l.probe(cand) {
			slog.Debug("Model artifact found", "model", name, "path", cand.Path, "layout", cand.Layout)
			return cand, true
		}
	}
	return Candidate{}, false
}

// IsPresent reports whether the model's artifact is already materialized
// in any candidate location.
func (l *Locator) IsPresent(name string) bool {
	_, ok := l.Find(name)
	return ok
}

// DownloadedModels filters names down to those present on disk.
func (l *Locator) DownloadedModels(names []string) []string {
	downloaded := make([]string, 0, len(names))
	for _, name := range names {
		if l.IsPresent(name) {
			downloaded = append(downloaded, name)
		}
	}
	return downloaded
}

// probe inspects one candidate directory, then one level of snapshots/
// children, because hub layouts version artifacts under content-addressed
// snapshot folders.
func (l *Locator) probe(cand Candidate) bool {
	if dirHasArtifact(cand.Path) {
		return true
	}

	snapshots := filepath.Join(cand.Path, "snapshots")
	entries, err := os.ReadDir(snapshots)
	if err != nil {
		warnProbeError(snapshots, err)
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if dirHasArtifact(filepath.Join(snapshots, entry.Name())) {
			return true
		}
	}
	return false
}

// dirHasArtifact reports whether dir directly contains a recognizable
// artifact file.
func dirHasArtifact(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		warnProbeError(dir, err)
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsArtifactFile(entry.Name()) {
			return true
		}
	}
	return false
}

// IsArtifactFile reports whether a file name looks like a model artifact.
func IsArtifactFile(name string) bool {
	_, ok := artifactExts[filepath.Ext(name)]
	return ok
}

func warnProbeError(path string, err error) {
	// Absence is the normal miss, not a probe error worth reporting.
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return
	}
	slog.Warn("Failed to inspect candidate path", "path", path, "error", err)
}

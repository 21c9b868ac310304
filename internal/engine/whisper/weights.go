package whisper

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/ekisa-team/whisperd/internal/storage"
)

// preferredWeights are exact file names picked ahead of any other
// artifact file when present.
var preferredWeights = []string{"model.bin", "ggml-model.bin"}

// resolveWeights finds the weights file to hand to the engine binary
// inside a resolved artifact directory. Hub layouts nest the real files
// under snapshots/<revision>/, so the whole tree is searched.
func resolveWeights(dir string) (string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if storage.IsArtifactFile(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan model directory: %w", err)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoWeights, dir)
	}

	sort.Strings(found)
	for _, name := range preferredWeights {
		for _, path := range found {
			if filepath.Base(path) == name {
				return path, nil
			}
		}
	}
	return found[0], nil
}

package xfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, ".cache", "huggingface"), ExpandTilde("~/.cache/huggingface"))
	assert.Equal(t, "/srv/models", ExpandTilde("/srv/models"))
	assert.Equal(t, "~bob/models", ExpandTilde("~bob/models"))
	assert.Equal(t, "relative/path", ExpandTilde("relative/path"))
	assert.Equal(t, "", ExpandTilde(""))
}

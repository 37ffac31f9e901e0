package inbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions gates which inbox files a scan will pick up.
var audioExtensions = map[string]bool{
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
}

// Files stores raw uploads in the Inbox directory.
type Files struct {
	layout layoutDirs
}

type layoutDirs interface {
	InboxDir() string
	Rel(path string) string
	Abs(stored string) string
}

// NewFiles creates an inbox file store.
func NewFiles(layout layoutDirs) *Files {
	return &Files{layout: layout}
}

// SaveUpload writes an uploaded audio file into the Inbox. The stored
// name is the base of the client-supplied name so uploads cannot escape
// the Inbox directory.
func (f *Files) SaveUpload(name string, r io.Reader) (string, error) {
	safe := filepath.Base(strings.TrimSpace(name))
	if safe == "" || safe == "." || safe == string(filepath.Separator) {
		return "", fmt.Errorf("empty upload name")
	}
	if err := os.MkdirAll(f.layout.InboxDir(), 0o755); err != nil {
		return "", fmt.Errorf("create inbox dir: %w", err)
	}
	target := filepath.Join(f.layout.InboxDir(), safe)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return target, nil
}

// ListAudio returns the audio files currently in the Inbox, sorted by
// name.
func (f *Files) ListAudio() ([]string, error) {
	entries, err := os.ReadDir(f.layout.InboxDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(f.layout.InboxDir(), e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Rel converts an absolute path inside the vault to its stored
// vault-relative form.
func (f *Files) Rel(path string) string {
	return f.layout.Rel(path)
}

// Abs resolves a stored vault-relative path to an absolute one.
func (f *Files) Abs(stored string) string {
	return f.layout.Abs(stored)
}

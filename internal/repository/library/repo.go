// Package library manages per-item recording folders under the vault's
// Library tree.
package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	"github.com/recitevault/recitevault/internal/repository/vault"
)

var (
	unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Repo resolves and creates item directories and archives takes into
// them. A take file is named take_<stamp><ext> so lexical order matches
// recording order.
type Repo struct {
	layout vault.Layout
}

// New creates a library repository.
func New(layout vault.Layout) *Repo {
	return &Repo{layout: layout}
}

// Rel converts an absolute path inside the vault to its stored
// vault-relative form.
func (r *Repo) Rel(path string) string {
	return r.layout.Rel(path)
}

func itemPrefix(cat taxonomy.Category, index int) string {
	return fmt.Sprintf("%s%02d_", cat.Code(), index)
}

// FindItemDir locates the directory for an item without creating it.
// Existing folders win even when their suffix no longer matches the
// current titles, so renaming a mapping does not orphan old takes.
func (r *Repo) FindItemDir(cat taxonomy.Category, index int, meta taxonomy.ItemMeta) (string, bool) {
	base := r.layout.LibraryDir(cat)
	matches, _ := filepath.Glob(filepath.Join(base, itemPrefix(cat, index)+"*"))
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[0], true
	}
	candidate := filepath.Join(base, itemDirName(cat, index, meta))
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate, true
	}
	return "", false
}

// EnsureItemDir returns the item directory, creating it when absent.
func (r *Repo) EnsureItemDir(cat taxonomy.Category, index int, meta taxonomy.ItemMeta) (string, error) {
	if dir, ok := r.FindItemDir(cat, index, meta); ok {
		return dir, nil
	}
	dir := filepath.Join(r.layout.LibraryDir(cat), itemDirName(cat, index, meta))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create item dir: %w", err)
	}
	return dir, nil
}

func itemDirName(cat taxonomy.Category, index int, meta taxonomy.ItemMeta) string {
	prefix := itemPrefix(cat, index)
	if cat == taxonomy.FastStory {
		raw := meta.TitleEN
		if raw == "" {
			raw = meta.TitleZH
		}
		if raw == "" {
			raw = fmt.Sprintf("story_%02d", index)
		}
		safe := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), "_")
		safe = unsafeNameChars.ReplaceAllString(safe, "_")
		return prefix + safe
	}
	return fmt.Sprintf("%s%s(%s)", prefix, meta.TitleZH, meta.TitleEN)
}

// Takes lists take files in an item directory, newest first.
func (r *Repo) Takes(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "take_*"))
	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files
}

// ArchiveTake copies the source audio into the item directory as a new
// take and returns the vault-relative target path. The source is removed
// only when it came from the Inbox, so re-labeling an already archived
// take never deletes library files.
func (r *Repo) ArchiveTake(srcPath string, cat taxonomy.Category, index int, meta taxonomy.ItemMeta) (string, error) {
	dir, err := r.EnsureItemDir(cat, index, meta)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(srcPath))
	if ext == "" {
		ext = ".m4a"
	}
	stamp := time.Now().Format("20060102_150405")
	target := filepath.Join(dir, "take_"+stamp+ext)
	if err := copyFile(srcPath, target); err != nil {
		return "", fmt.Errorf("archive take: %w", err)
	}

	if parent, err := filepath.Abs(filepath.Dir(srcPath)); err == nil {
		if inbox, err := filepath.Abs(r.layout.InboxDir()); err == nil && parent == inbox {
			os.Remove(srcPath)
		}
	}
	return r.layout.Rel(target), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

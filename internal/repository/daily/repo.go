// Package daily manages dated delivery folders under the vault's Daily
// tree.
package daily

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	"github.com/recitevault/recitevault/internal/repository/vault"
)

var unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// Repo creates day folders and copies selected takes into them.
type Repo struct {
	layout vault.Layout
}

// New creates a daily repository.
func New(layout vault.Layout) *Repo {
	return &Repo{layout: layout}
}

// Rel converts an absolute path inside the vault to its stored
// vault-relative form.
func (r *Repo) Rel(path string) string {
	return r.layout.Rel(path)
}

// DayDir creates and returns the folder for the given date. The date
// must be in YYYY-MM-DD form.
func (r *Repo) DayDir(dateStr string) (string, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", domain.ErrInvalidDocument, dateStr)
	}
	dir := filepath.Join(r.layout.DailyDir(), t.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create day dir: %w", err)
	}
	return dir, nil
}

// CategoryDir creates and returns the per-category subfolder, named by
// the category's Chinese label.
func (r *Repo) CategoryDir(dayDir string, cat taxonomy.Category) (string, error) {
	dir := filepath.Join(dayDir, cat.Label())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}
	return dir, nil
}

// CopyTake copies a take into dstDir under the given name, with
// filesystem-unsafe characters replaced.
func (r *Repo) CopyTake(srcPath, dstDir, name string) error {
	safe := unsafeNameChars.ReplaceAllString(name, "_")
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open take: %w", err)
	}
	defer in.Close()
	out, err := os.Create(filepath.Join(dstDir, safe))
	if err != nil {
		return fmt.Errorf("copy take: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy take: %w", err)
	}
	return out.Close()
}

// WriteReport writes the coverage report into the day folder and
// returns its path.
func (r *Repo) WriteReport(dayDir, content string) (string, error) {
	path := filepath.Join(dayDir, "_report.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

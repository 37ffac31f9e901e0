// Package vault defines the on-disk layout of the homework vault and
// small shared filesystem helpers.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// Layout resolves every fixed path under the vault root.
type Layout struct {
	Root string
}

// NewLayout creates a layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// InboxDir holds unprocessed audio drops.
func (l Layout) InboxDir() string { return filepath.Join(l.Root, "Inbox") }

// LibraryDir holds one subtree per category.
func (l Layout) LibraryDir(c taxonomy.Category) string {
	return filepath.Join(l.Root, "Library", c.LibraryDir())
}

// DailyDir holds dated delivery packages.
func (l Layout) DailyDir() string { return filepath.Join(l.Root, "Daily") }

// ConfigDir holds the taxonomy document and instruction audit file.
func (l Layout) ConfigDir() string { return filepath.Join(l.Root, "Config") }

// ReportsDir holds the inbox record log.
func (l Layout) ReportsDir() string { return filepath.Join(l.Root, "Reports") }

// MappingsPath is the taxonomy JSON document.
func (l Layout) MappingsPath() string { return filepath.Join(l.ConfigDir(), "mappings.json") }

// InstructionPath is the last raw teacher instruction.
func (l Layout) InstructionPath() string { return filepath.Join(l.ConfigDir(), "teacher_cmd.txt") }

// RecordsPath is the append-only inbox record log.
func (l Layout) RecordsPath() string { return filepath.Join(l.ReportsDir(), "inbox_items.json") }

// EnsureTree creates the whole directory tree.
func (l Layout) EnsureTree() error {
	dirs := []string{
		l.InboxDir(),
		l.DailyDir(),
		l.ConfigDir(),
		l.ReportsDir(),
	}
	for _, c := range taxonomy.Categories() {
		dirs = append(dirs, l.LibraryDir(c))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Rel renders a path relative to the vault root for storage in records.
// Paths outside the vault stay absolute.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return path
		}
		return abs
	}
	return filepath.ToSlash(rel)
}

// Abs resolves a stored record path back to a filesystem path.
func (l Layout) Abs(stored string) string {
	if filepath.IsAbs(stored) {
		return stored
	}
	return filepath.Join(l.Root, filepath.FromSlash(stored))
}

// InstructionLog persists raw teacher instruction text for audit.
type InstructionLog struct {
	layout Layout
}

// NewInstructionLog creates the audit log writer.
func NewInstructionLog(layout Layout) *InstructionLog {
	return &InstructionLog{layout: layout}
}

// SaveInstruction overwrites the stored instruction text.
func (il *InstructionLog) SaveInstruction(_ context.Context, text string) error {
	if err := os.MkdirAll(il.layout.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(il.layout.InstructionPath(), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write instruction: %w", err)
	}
	return nil
}

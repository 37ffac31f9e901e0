// Package daily builds the dated delivery package for a practice day:
// the two newest takes of every requested item plus a coverage report.
package daily

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain/needs"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	"github.com/recitevault/recitevault/internal/metrics"
)

const takesPerItem = 2

// packageOrder fixes the report section order. Sentences lead because
// they are the most common teacher request.
var packageOrder = []taxonomy.Category{taxonomy.Sentence, taxonomy.Vocab, taxonomy.FastStory}

// Shortfall records an item that could not be packaged in full.
type Shortfall struct {
	Type         taxonomy.Category `json:"type"`
	Index        int               `json:"index"`
	MissingCount int               `json:"missing_count"`
}

// BuildResult summarizes one package build.
type BuildResult struct {
	DailyDir   string      `json:"daily_dir"`
	Copied     int         `json:"copied"`
	Missing    []Shortfall `json:"missing"`
	ReportPath string      `json:"report_path"`
}

// Service assembles delivery packages.
type Service struct {
	taxonomies TaxonomyLoader
	takes      TakeStore
	packages   PackageStore
	logger     *zap.Logger
}

// New creates a package build service.
func New(taxonomies TaxonomyLoader, takes TakeStore, packages PackageStore, logger *zap.Logger) *Service {
	return &Service{taxonomies: taxonomies, takes: takes, packages: packages, logger: logger}
}

// BuildPackage copies up to two takes per requested item into the day
// folder and writes a Chinese coverage report next to them. A failure
// on one item never aborts the rest of the package.
func (s *Service) BuildPackage(ctx context.Context, dateStr, teacherCmd string, requested needs.Set) (BuildResult, error) {
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return BuildResult{}, err
	}
	dayDir, err := s.packages.DayDir(dateStr)
	if err != nil {
		return BuildResult{}, err
	}

	var report []string
	report = append(report,
		"日期："+dateStr,
		"老师指令："+teacherCmd,
		"",
		"需求清单：",
	)
	for _, cat := range packageOrder {
		report = append(report, s.needsLine(store, cat, requested[cat]))
	}
	report = append(report, "", "覆盖率：")

	result := BuildResult{Missing: []Shortfall{}}
	for _, cat := range packageOrder {
		catDir, err := s.packages.CategoryDir(dayDir, cat)
		if err != nil {
			return BuildResult{}, err
		}
		for _, idx := range sortedIndexes(requested[cat]) {
			if !store.ValidIndex(cat, idx) {
				continue
			}
			line := s.packageItem(store, cat, idx, catDir, &result)
			report = append(report, line)
		}
	}

	reportPath, err := s.packages.WriteReport(dayDir, strings.Join(report, "\n")+"\n")
	if err != nil {
		return BuildResult{}, err
	}
	result.DailyDir = s.packages.Rel(dayDir)
	result.ReportPath = s.packages.Rel(reportPath)

	s.logger.Info("daily package built",
		zap.String("date", dateStr),
		zap.Int("copied", result.Copied),
		zap.Int("shortfalls", len(result.Missing)),
	)
	return result, nil
}

// packageItem copies the newest takes of one item and returns its
// coverage line.
func (s *Service) packageItem(store *taxonomy.Store, cat taxonomy.Category, idx int, catDir string, result *BuildResult) string {
	meta := store.Item(cat, idx)
	code := fmt.Sprintf("%s%02d", cat.Code(), idx)

	var takes []string
	if dir, ok := s.takes.FindItemDir(cat, idx, meta); ok {
		takes = s.takes.Takes(dir)
	}
	selected := takes
	if len(selected) > takesPerItem {
		selected = selected[:takesPerItem]
	}

	packed := 0
	for i, src := range selected {
		ext := strings.ToLower(filepath.Ext(src))
		if ext == "" {
			ext = ".m4a"
		}
		name := fmt.Sprintf("%s_%s_%s_take%d%s", cat.Label(), code, meta.TitleZH, i+1, ext)
		if err := s.packages.CopyTake(src, catDir, name); err != nil {
			s.logger.Warn("take copy failed",
				zap.String("code", code),
				zap.String("src", src),
				zap.Error(err),
			)
			continue
		}
		packed++
	}
	result.Copied += packed

	if packed < takesPerItem {
		missing := takesPerItem - packed
		result.Missing = append(result.Missing, Shortfall{Type: cat, Index: idx, MissingCount: missing})
		metrics.PackageShortfallsTotal.Inc()
		return fmt.Sprintf("- %s %s：可用 %d 条，仅打包 %d 条 ⚠ 缺 %d 条",
			cat.Label(), code, len(takes), packed, missing)
	}
	return fmt.Sprintf("- %s %s：可用 %d 条，已打包 %d 条 ✓",
		cat.Label(), code, len(takes), takesPerItem)
}

// needsLine renders one requirement-list line, e.g.
// "- 句子：S05 疑问句；S07 时态" or "- 快嘴：无".
func (s *Service) needsLine(store *taxonomy.Store, cat taxonomy.Category, indexes []int) string {
	var labels []string
	for _, idx := range sortedIndexes(indexes) {
		if !store.ValidIndex(cat, idx) {
			continue
		}
		meta := store.Item(cat, idx)
		label := fmt.Sprintf("%s%02d %s", cat.Code(), idx, meta.TitleZH)
		labels = append(labels, strings.TrimSpace(label))
	}
	if len(labels) == 0 {
		return "- " + cat.Label() + "：无"
	}
	return "- " + cat.Label() + "：" + strings.Join(labels, "；")
}

func sortedIndexes(in []int) []int {
	seen := make(map[int]bool, len(in))
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

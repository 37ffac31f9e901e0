package daily

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain/needs"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

func testStore(t *testing.T) *taxonomy.Store {
	t.Helper()
	store, err := taxonomy.New(map[taxonomy.Category]taxonomy.Entry{
		taxonomy.Vocab: {MaxIndex: 17, Items: map[int]taxonomy.ItemMeta{
			7: {TitleZH: "颜色", TitleEN: "Colors"},
		}},
		taxonomy.Sentence: {MaxIndex: 15, Items: map[int]taxonomy.ItemMeta{
			5: {TitleZH: "疑问句", TitleEN: "Questions"},
		}},
		taxonomy.FastStory: {MaxIndex: 6, Items: map[int]taxonomy.ItemMeta{
			3: {TitleZH: "超级玩家", TitleEN: "A super player"},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	return store
}

type stubTaxonomies struct {
	store *taxonomy.Store
}

func (s stubTaxonomies) Load(context.Context) (*taxonomy.Store, error) {
	return s.store, nil
}

type fakeTakes struct {
	dirs  map[string]string
	takes map[string][]string
}

func (f *fakeTakes) FindItemDir(cat taxonomy.Category, idx int, _ taxonomy.ItemMeta) (string, bool) {
	dir, ok := f.dirs[fmt.Sprintf("%s%d", cat, idx)]
	return dir, ok
}

func (f *fakeTakes) Takes(dir string) []string {
	return f.takes[dir]
}

type copiedTake struct {
	src, dstDir, name string
}

type fakePackages struct {
	copies    []copiedTake
	failNames map[string]bool
	report    string
}

func (f *fakePackages) DayDir(dateStr string) (string, error) {
	return "/vault/Daily/" + dateStr, nil
}

func (f *fakePackages) CategoryDir(dayDir string, cat taxonomy.Category) (string, error) {
	return filepath.Join(dayDir, cat.Label()), nil
}

func (f *fakePackages) CopyTake(srcPath, dstDir, name string) error {
	if f.failNames[name] {
		return errors.New("copy failed")
	}
	f.copies = append(f.copies, copiedTake{src: srcPath, dstDir: dstDir, name: name})
	return nil
}

func (f *fakePackages) WriteReport(dayDir, content string) (string, error) {
	f.report = content
	return filepath.Join(dayDir, "_report.txt"), nil
}

func (f *fakePackages) Rel(path string) string {
	return strings.TrimPrefix(path, "/vault/")
}

func TestBuildPackage_FullCoverage(t *testing.T) {
	takes := &fakeTakes{
		dirs: map[string]string{"SENTENCE5": "/vault/Library/Sentences/S05_疑问句(Questions)"},
		takes: map[string][]string{
			"/vault/Library/Sentences/S05_疑问句(Questions)": {
				"/vault/Library/Sentences/S05_疑问句(Questions)/take_20250901_100000.m4a",
				"/vault/Library/Sentences/S05_疑问句(Questions)/take_20250831_090000.m4a",
				"/vault/Library/Sentences/S05_疑问句(Questions)/take_20250830_080000.m4a",
			},
		},
	}
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, takes, packages, zap.NewNop())

	got, err := svc.BuildPackage(context.Background(), "2025-09-01", "句子五两遍",
		needs.Set{taxonomy.Sentence: {5}})
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if got.Copied != 2 {
		t.Errorf("copied = %d, want 2", got.Copied)
	}
	if len(got.Missing) != 0 {
		t.Errorf("missing = %v, want none", got.Missing)
	}
	if got.DailyDir != "Daily/2025-09-01" {
		t.Errorf("daily_dir = %q", got.DailyDir)
	}
	if got.ReportPath != "Daily/2025-09-01/_report.txt" {
		t.Errorf("report_path = %q", got.ReportPath)
	}

	if len(packages.copies) != 2 {
		t.Fatalf("copies = %d, want 2", len(packages.copies))
	}
	if packages.copies[0].name != "句子_S05_疑问句_take1.m4a" {
		t.Errorf("first take name = %q", packages.copies[0].name)
	}
	if packages.copies[1].name != "句子_S05_疑问句_take2.m4a" {
		t.Errorf("second take name = %q", packages.copies[1].name)
	}
	if !strings.HasSuffix(packages.copies[0].src, "take_20250901_100000.m4a") {
		t.Errorf("newest take must be packed first, got %q", packages.copies[0].src)
	}
	if packages.copies[0].dstDir != "/vault/Daily/2025-09-01/句子" {
		t.Errorf("dst dir = %q", packages.copies[0].dstDir)
	}

	for _, want := range []string{
		"日期：2025-09-01",
		"老师指令：句子五两遍",
		"- 句子：S05 疑问句",
		"- 词汇：无",
		"- 快嘴：无",
		"- 句子 S05：可用 3 条，已打包 2 条 ✓",
	} {
		if !strings.Contains(packages.report, want) {
			t.Errorf("report missing %q\n%s", want, packages.report)
		}
	}
}

func TestBuildPackage_Shortfall(t *testing.T) {
	takes := &fakeTakes{
		dirs: map[string]string{"VOCAB7": "/vault/Library/Vocab/C07_颜色(Colors)"},
		takes: map[string][]string{
			"/vault/Library/Vocab/C07_颜色(Colors)": {
				"/vault/Library/Vocab/C07_颜色(Colors)/take_20250901_100000.mp3",
			},
		},
	}
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, takes, packages, zap.NewNop())

	got, err := svc.BuildPackage(context.Background(), "2025-09-01", "词汇七",
		needs.Set{taxonomy.Vocab: {7}})
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if got.Copied != 1 {
		t.Errorf("copied = %d, want 1", got.Copied)
	}
	want := []Shortfall{{Type: taxonomy.Vocab, Index: 7, MissingCount: 1}}
	if len(got.Missing) != 1 || got.Missing[0] != want[0] {
		t.Errorf("missing = %v, want %v", got.Missing, want)
	}
	if !strings.Contains(packages.report, "- 词汇 C07：可用 1 条，仅打包 1 条 ⚠ 缺 1 条") {
		t.Errorf("report missing shortfall line\n%s", packages.report)
	}
}

func TestBuildPackage_NoTakesForItem(t *testing.T) {
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{}, packages, zap.NewNop())

	got, err := svc.BuildPackage(context.Background(), "2025-09-01", "读第三篇",
		needs.Set{taxonomy.FastStory: {3}})
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if got.Copied != 0 {
		t.Errorf("copied = %d, want 0", got.Copied)
	}
	if len(got.Missing) != 1 || got.Missing[0].MissingCount != 2 {
		t.Errorf("missing = %v, want one shortfall of 2", got.Missing)
	}
	if !strings.Contains(packages.report, "- 快嘴 P03：可用 0 条，仅打包 0 条 ⚠ 缺 2 条") {
		t.Errorf("report missing empty-item line\n%s", packages.report)
	}
}

func TestBuildPackage_CopyFailureDoesNotAbort(t *testing.T) {
	takes := &fakeTakes{
		dirs: map[string]string{"SENTENCE5": "/lib/S05"},
		takes: map[string][]string{
			"/lib/S05": {"/lib/S05/take_b.m4a", "/lib/S05/take_a.m4a"},
		},
	}
	packages := &fakePackages{failNames: map[string]bool{"句子_S05_疑问句_take1.m4a": true}}
	svc := New(stubTaxonomies{testStore(t)}, takes, packages, zap.NewNop())

	got, err := svc.BuildPackage(context.Background(), "2025-09-01", "句子五",
		needs.Set{taxonomy.Sentence: {5}})
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if got.Copied != 1 {
		t.Errorf("copied = %d, want 1 despite the failed copy", got.Copied)
	}
	if len(got.Missing) != 1 || got.Missing[0].MissingCount != 1 {
		t.Errorf("missing = %v, want shortfall of 1", got.Missing)
	}
}

func TestBuildPackage_InvalidIndexSkipped(t *testing.T) {
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{}, packages, zap.NewNop())

	got, err := svc.BuildPackage(context.Background(), "2025-09-01", "句子九十九",
		needs.Set{taxonomy.Sentence: {99}})
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if got.Copied != 0 || len(got.Missing) != 0 {
		t.Errorf("result = %+v, want nothing packaged and no shortfalls", got)
	}
	if strings.Contains(packages.report, "S99") {
		t.Errorf("out-of-range item must not appear in report\n%s", packages.report)
	}
}

func TestBuildPackage_MissingExtensionDefaultsToM4A(t *testing.T) {
	takes := &fakeTakes{
		dirs:  map[string]string{"VOCAB7": "/lib/C07"},
		takes: map[string][]string{"/lib/C07": {"/lib/C07/take_noext"}},
	}
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, takes, packages, zap.NewNop())

	if _, err := svc.BuildPackage(context.Background(), "2025-09-01", "词汇七",
		needs.Set{taxonomy.Vocab: {7}}); err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	if len(packages.copies) != 1 || packages.copies[0].name != "词汇_C07_颜色_take1.m4a" {
		t.Errorf("copies = %v, want .m4a default", packages.copies)
	}
}

func TestBuildPackage_ReportSectionOrder(t *testing.T) {
	packages := &fakePackages{}
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{}, packages, zap.NewNop())

	if _, err := svc.BuildPackage(context.Background(), "2025-09-01", "全部",
		needs.Set{taxonomy.Vocab: {7}, taxonomy.Sentence: {5}, taxonomy.FastStory: {3}}); err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	sentence := strings.Index(packages.report, "- 句子：")
	vocab := strings.Index(packages.report, "- 词汇：")
	story := strings.Index(packages.report, "- 快嘴：")
	if sentence < 0 || vocab < 0 || story < 0 || !(sentence < vocab && vocab < story) {
		t.Errorf("requirement lines out of order (S=%d V=%d P=%d)\n%s", sentence, vocab, story, packages.report)
	}
}

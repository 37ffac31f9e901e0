// Package library reports archive coverage per taxonomy item.
package library

import (
	"context"
	"path/filepath"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// SummaryRow describes archive coverage for one taxonomy item.
type SummaryRow struct {
	Type       taxonomy.Category `json:"type"`
	Index      int               `json:"index"`
	TitleZH    string            `json:"title_zh"`
	TitleEN    string            `json:"title_en"`
	TakeCount  int               `json:"take_count"`
	LatestTime string            `json:"latest_time"`
}

// TakeInfo is one archived recording of an item.
type TakeInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// TakeList holds all takes for one item, newest first.
type TakeList struct {
	Type  taxonomy.Category `json:"type"`
	Index int               `json:"index"`
	Takes []TakeInfo        `json:"takes"`
}

// Service answers coverage queries over the library tree.
type Service struct {
	taxonomies TaxonomyLoader
	takes      TakeStore
}

// New creates a library query service.
func New(taxonomies TaxonomyLoader, takes TakeStore) *Service {
	return &Service{taxonomies: taxonomies, takes: takes}
}

// Summary returns one row per item across every category, in category
// and index order.
func (s *Service) Summary(ctx context.Context) ([]SummaryRow, error) {
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, 32)
	for _, cat := range taxonomy.Categories() {
		for idx := 1; idx <= store.MaxIndex(cat); idx++ {
			meta := store.Item(cat, idx)
			row := SummaryRow{
				Type:    cat,
				Index:   idx,
				TitleZH: meta.TitleZH,
				TitleEN: meta.TitleEN,
			}
			if dir, ok := s.takes.FindItemDir(cat, idx, meta); ok {
				files := s.takes.Takes(dir)
				row.TakeCount = len(files)
				if len(files) > 0 {
					row.LatestTime = filepath.Base(files[0])
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Takes lists the archived takes for one item.
func (s *Service) Takes(ctx context.Context, rawType string, index int) (TakeList, error) {
	cat, err := taxonomy.Parse(rawType)
	if err != nil {
		return TakeList{}, err
	}
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return TakeList{}, err
	}
	if !store.ValidIndex(cat, index) {
		return TakeList{}, domain.NewIndexError(string(cat), index)
	}

	out := TakeList{Type: cat, Index: index, Takes: []TakeInfo{}}
	if dir, ok := s.takes.FindItemDir(cat, index, store.Item(cat, index)); ok {
		for _, f := range s.takes.Takes(dir) {
			out.Takes = append(out.Takes, TakeInfo{
				Name: filepath.Base(f),
				Path: s.takes.Rel(f),
			})
		}
	}
	return out, nil
}

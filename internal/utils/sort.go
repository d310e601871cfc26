package utils

import (
	"sort"

	"github.com/goaltrace-dev/goaltrace/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortTitleAsc    = "title-asc"
	SortTitleDesc   = "title-desc"
	SortCreatedAsc  = "created-asc"
	SortCreatedDesc = "created-desc"
)

// SortTraces orders the fetched set in place. Titles collate instead of
// comparing bytes, so "apple" sorts before "Banana".
func SortTraces(traces []models.Trace, sortKey string) {
	switch sortKey {
	case SortTitleAsc, SortTitleDesc:
		collator := collate.New(language.Und)
		sort.SliceStable(traces, func(i, j int) bool {
			cmp := collator.CompareString(traces[i].Title, traces[j].Title)
			if sortKey == SortTitleDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	case SortCreatedDesc:
		sort.SliceStable(traces, func(i, j int) bool {
			return traces[i].CreatedAt.After(traces[j].CreatedAt)
		})
	default: // created-asc
		sort.SliceStable(traces, func(i, j int) bool {
			return traces[i].CreatedAt.Before(traces[j].CreatedAt)
		})
	}
}

package report

import (
	"sort"
	"strings"
	"time"

	"github.com/lojf/campreg/internal/models"
)

// AidIndex summarises aid deliveries per family. It is built once per load
// and never modified afterwards, so one index can back concurrent runs.
type AidIndex struct {
	byFamily map[uint]aidSummary
}

type aidSummary struct {
	last      time.Time
	lastItems string
	items     map[string]struct{}
}

var itemSeparators = strings.NewReplacer("،", ",", "؛", ",", ";", ",")

// SplitItems tokenises a free-text item list on Arabic and Latin commas.
func SplitItems(s string) []string {
	var out []string
	for _, part := range strings.Split(itemSeparators.Replace(s), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewAidIndex builds the index from each family's most recent delivery by
// date. Its tokenised items form the family's item set.
func NewAidIndex(deliveries []models.AidDelivery) *AidIndex {
	idx := &AidIndex{byFamily: make(map[uint]aidSummary)}
	for _, d := range deliveries {
		s, ok := idx.byFamily[d.FamilyID]
		if ok && !d.Date.After(s.last) {
			continue
		}
		s = aidSummary{last: d.Date, lastItems: d.Items, items: make(map[string]struct{})}
		for _, it := range SplitItems(d.Items) {
			s.items[normItem(it)] = struct{}{}
		}
		idx.byFamily[d.FamilyID] = s
	}
	return idx
}

// Last returns the most recent delivery for a family.
func (x *AidIndex) Last(familyID uint) (date time.Time, items string, ok bool) {
	if x == nil {
		return time.Time{}, "", false
	}
	s, ok := x.byFamily[familyID]
	return s.last, s.lastItems, ok
}

// HasAny reports whether the family's last delivery included one of items.
func (x *AidIndex) HasAny(familyID uint, items []string) bool {
	if x == nil {
		return false
	}
	s, ok := x.byFamily[familyID]
	if !ok {
		return false
	}
	for _, it := range items {
		if _, hit := s.items[normItem(it)]; hit {
			return true
		}
	}
	return false
}

// items returns a sorted copy of a family's item set.
func (x *AidIndex) items(familyID uint) []string {
	if x == nil {
		return nil
	}
	s := x.byFamily[familyID]
	out := make([]string, 0, len(s.items))
	for it := range s.items {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

package report

import (
	"time"

	"github.com/lojf/campreg/internal/household"
	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/roles"
)

const placeholder = "-"

// Dataset is one load of raw records. Nothing in the engine writes to it.
type Dataset struct {
	Camps       []models.Camp
	Families    []models.Family
	Individuals []models.Individual
	Aid         *AidIndex
	Generation  uint64
}

// Record is one individual joined to its family with the derived household
// fields. Family is nil for orphaned individuals; the derived fields then
// hold placeholders.
type Record struct {
	Individual models.Individual
	Family     *models.Family

	CampID       uint
	CampName     string
	FamilyNumber string
	Age          int
	MemberCount  int
	IsHead       bool
	HeadName     string
	HeadNID      string
	SpouseName   string
	SpouseNID    string
	FemaleHead   bool
	// FamilyFemaleHead is the head's female-head flag, shared by every member.
	FamilyFemaleHead bool
	FamilyHasInfant  bool
	LastAidDate      string
	LastAidItems     string
	// KnownRole is false for roles outside the vocabulary.
	KnownRole bool
}

type householdFacts struct {
	count      int
	head       int
	spouse     int
	members    []models.Individual
	hasInfant  bool
	femaleHead bool
}

// Enrich joins and derives every record of ds, in input order.
func Enrich(ds *Dataset, now time.Time) []Record {
	families := make(map[uint]*models.Family, len(ds.Families))
	for i := range ds.Families {
		families[ds.Families[i].ID] = &ds.Families[i]
	}
	campNames := make(map[uint]string, len(ds.Camps))
	for _, c := range ds.Camps {
		campNames[c.ID] = c.Name
	}

	groups := household.GroupByFamily(ds.Individuals)
	facts := make(map[uint]householdFacts, len(groups))
	for fid, ms := range groups {
		h := household.HeadIndex(ms)
		f := householdFacts{
			count:     len(ms),
			head:      h,
			spouse:    household.SpouseIndex(ms, h),
			members:   ms,
			hasInfant: household.HasInfant(ms, now),
		}
		if h >= 0 {
			f.femaleHead = household.IsFemaleHead(ms[h], ms)
		}
		facts[fid] = f
	}

	// position of each individual inside its family group
	pos := make([]int, len(ds.Individuals))
	seen := make(map[uint]int, len(groups))
	for i, m := range ds.Individuals {
		pos[i] = seen[m.FamilyID]
		seen[m.FamilyID]++
	}

	out := make([]Record, 0, len(ds.Individuals))
	for i, m := range ds.Individuals {
		rec := Record{
			Individual:   m,
			CampName:     placeholder,
			FamilyNumber: placeholder,
			HeadName:     placeholder,
			HeadNID:      placeholder,
			SpouseName:   placeholder,
			SpouseNID:    placeholder,
			LastAidDate:  placeholder,
			LastAidItems: placeholder,
			Age:          household.Age(m.DOB, now),
			KnownRole:    roles.Valid(m.Role),
		}

		fam, ok := families[m.FamilyID]
		if !ok {
			out = append(out, rec)
			continue
		}
		rec.Family = fam
		rec.CampID = fam.CampID
		if name, ok := campNames[fam.CampID]; ok {
			rec.CampName = name
		}
		if fam.FamilyNumber != "" {
			rec.FamilyNumber = fam.FamilyNumber
		}

		f := facts[m.FamilyID]
		rec.MemberCount = f.count
		rec.FamilyHasInfant = f.hasInfant
		rec.FamilyFemaleHead = f.femaleHead
		rec.FemaleHead = household.IsFemaleHead(m, f.members)
		if f.head >= 0 {
			head := f.members[f.head]
			rec.IsHead = pos[i] == f.head
			rec.HeadName = orPlaceholder(head.Name)
			rec.HeadNID = orPlaceholder(head.NID)
		}
		if f.spouse >= 0 {
			sp := f.members[f.spouse]
			rec.SpouseName = orPlaceholder(sp.Name)
			rec.SpouseNID = orPlaceholder(sp.NID)
		}
		if date, items, ok := ds.Aid.Last(fam.ID); ok {
			rec.LastAidDate = date.Format("2006-01-02")
			rec.LastAidItems = orPlaceholder(items)
		}
		out = append(out, rec)
	}
	return out
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

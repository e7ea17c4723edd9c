// Package report is the faceted report pipeline: enrich, match, expand,
// sub-filter, sort and project.
package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lojf/campreg/internal/roles"
)

// Result is one materialised report.
type Result struct {
	Columns     []Column `json:"columns"`
	Rows        []Row    `json:"rows"`
	Count       int      `json:"count"`
	Quarantined []uint   `json:"quarantined,omitempty"`
	Generation  uint64   `json:"generation"`
}

// Engine runs reports over a Dataset. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	lang language.Tag
	now  func() time.Time
}

func NewEngine(lang language.Tag) *Engine {
	return &Engine{lang: lang, now: time.Now}
}

// Run executes the pipeline. ds is only read.
func (e *Engine) Run(ds *Dataset, c Criteria) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	cols := c.Columns
	if len(cols) == 0 {
		cols, _ = Preset(DefaultPreset)
	}

	now := e.now()
	records := Enrich(ds, now)
	matched := match(records, c, ds.Aid)
	if c.Expand {
		matched = expand(records, matched)
		if c.Display.Enabled {
			matched = subFilter(matched, c.Display)
		}
	}
	e.sort(matched)

	res := Result{
		Columns:    cols,
		Rows:       e.project(matched, cols),
		Count:      len(matched),
		Generation: ds.Generation,
	}
	for _, r := range records {
		if !r.KnownRole {
			res.Quarantined = append(res.Quarantined, r.Individual.ID)
		}
	}
	sort.Slice(res.Quarantined, func(i, j int) bool { return res.Quarantined[i] < res.Quarantined[j] })
	return res, nil
}

// match keeps records satisfying every supplied primary criterion.
func match(records []Record, c Criteria, aid *AidIndex) []Record {
	wantRoles := roleSet(c.Roles)
	camps := make(map[uint]bool, len(c.CampIDs))
	for _, id := range c.CampIDs {
		camps[id] = true
	}
	delegate := strings.TrimSpace(c.Delegate)
	gender := strings.ToLower(strings.TrimSpace(c.Gender))

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if wantRoles != nil && !hasRole(wantRoles, r.Individual.Role) {
			continue
		}
		if !ageCategory(c.AgeCategory, r.Age) || !inRange(r.Age, c.MinAge, c.MaxAge) {
			continue
		}
		if !health(c.Health, r) {
			continue
		}
		if delegate != "" && (r.Family == nil || strings.TrimSpace(r.Family.Delegate) != delegate) {
			continue
		}
		if (c.MinMembers != nil || c.MaxMembers != nil) && !inRange(r.MemberCount, c.MinMembers, c.MaxMembers) {
			continue
		}
		if len(c.AidItems) > 0 && (r.Family == nil || !aid.HasAny(r.Family.ID, c.AidItems)) {
			continue
		}
		if len(camps) > 0 && !camps[r.CampID] {
			continue
		}
		if gender != "" && strings.ToLower(strings.TrimSpace(r.Individual.Gender)) != gender {
			continue
		}
		if !departure(c.Departure, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasRole(set map[roles.Role]bool, raw string) bool {
	r, err := roles.Parse(raw)
	return err == nil && set[r]
}

func ageCategory(cat AgeCategory, age int) bool {
	switch cat {
	case AgeInfant:
		return age < 2
	case AgeChild:
		return age >= 2 && age < 18
	case AgeAdult:
		return age >= 18 && age < 60
	case AgeElderly:
		return age >= 60
	default:
		return true
	}
}

func inRange(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func health(h Health, r Record) bool {
	switch h {
	case HealthPregnant:
		return r.Individual.IsPregnant
	case HealthNursing:
		return r.Individual.IsNursing || r.FamilyHasInfant
	case HealthFemaleHead:
		return r.FemaleHead
	case HealthHealthNotes:
		return strings.TrimSpace(r.Individual.HealthNotes) != ""
	default:
		return true
	}
}

func departure(d Departure, r Record) bool {
	switch d {
	case DepartureActive:
		return r.Family == nil || !r.Family.IsDeparted
	case DepartureDeparted:
		return r.Family != nil && r.Family.IsDeparted
	default:
		return true
	}
}

// expand widens matches to every record of a family with at least one match,
// keeping the input order of records.
func expand(records, matched []Record) []Record {
	families := make(map[uint]bool, len(matched))
	for _, r := range matched {
		families[r.Individual.FamilyID] = true
	}
	out := make([]Record, 0, len(matched))
	for _, r := range records {
		if families[r.Individual.FamilyID] {
			out = append(out, r)
		}
	}
	return out
}

func subFilter(records []Record, d Display) []Record {
	wantRoles := roleSet(d.Roles)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if wantRoles != nil && !hasRole(wantRoles, r.Individual.Role) {
			continue
		}
		if !inRange(r.Age, d.MinAge, d.MaxAge) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sort orders by camp name (collated for the engine language), then family
// number as an integer. Equal keys keep their order.
func (e *Engine) sort(records []Record) {
	col := collate.New(e.lang)
	sort.SliceStable(records, func(i, j int) bool {
		if c := col.CompareString(records[i].CampName, records[j].CampName); c != 0 {
			return c < 0
		}
		return familyNumberKey(records[i]) < familyNumberKey(records[j])
	})
}

func familyNumberKey(r Record) int {
	if r.Family == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.Family.FamilyNumber))
	if err != nil {
		return 0
	}
	return n
}

func (e *Engine) project(records []Record, cols []Column) []Row {
	visible := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !c.Visible {
			continue
		}
		if c.Label == "" {
			c.Label = catalog.byKey[c.Key].Label
		}
		visible = append(visible, c)
	}
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		row := make(Row, 0, len(visible))
		for _, c := range visible {
			row = append(row, Cell{Key: c.Key, Label: c.Label, Value: extractors[c.Key](r, e)})
		}
		rows = append(rows, row)
	}
	return rows
}

package report

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lojf/campreg/internal/roles"
)

//go:embed columns.yaml
var columnsYAML []byte

// Column is one projected field. Order in a column list is display order.
type Column struct {
	Key     string `json:"key" yaml:"key"`
	Label   string `json:"label" yaml:"label"`
	Visible bool   `json:"visible" yaml:"-"`
}

// Cell is one projected value.
type Cell struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Row is an ordered list of cells.
type Row []Cell

// Map returns the label -> value object export collaborators consume.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r))
	for _, c := range r {
		out[c.Label] = c.Value
	}
	return out
}

type columnCatalog struct {
	order   []Column
	byKey   map[string]Column
	presets map[string][]string
}

var catalog = mustLoadColumns(columnsYAML)

func mustLoadColumns(data []byte) *columnCatalog {
	c, err := loadColumns(data)
	if err != nil {
		panic(fmt.Sprintf("report: column catalogue: %v", err))
	}
	return c
}

func loadColumns(data []byte) (*columnCatalog, error) {
	var raw struct {
		Columns []Column            `yaml:"columns"`
		Presets map[string][]string `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	c := &columnCatalog{byKey: make(map[string]Column), presets: raw.Presets}
	for _, col := range raw.Columns {
		if _, ok := extractors[col.Key]; !ok {
			return nil, fmt.Errorf("column %q has no extractor", col.Key)
		}
		if _, dup := c.byKey[col.Key]; dup {
			return nil, fmt.Errorf("column %q listed twice", col.Key)
		}
		if col.Label == "" {
			return nil, fmt.Errorf("column %q has no label", col.Key)
		}
		c.byKey[col.Key] = col
		c.order = append(c.order, col)
	}
	for key := range extractors {
		if _, ok := c.byKey[key]; !ok {
			return nil, fmt.Errorf("extractor %q missing from catalogue", key)
		}
	}
	if _, ok := c.presets[DefaultPreset]; !ok {
		return nil, fmt.Errorf("preset %q is missing", DefaultPreset)
	}
	for name, keys := range c.presets {
		for _, k := range keys {
			if _, ok := c.byKey[k]; !ok {
				return nil, fmt.Errorf("preset %q names unknown column %q", name, k)
			}
		}
	}
	return c, nil
}

const DefaultPreset = "default"

// Preset returns a fresh column list: the preset's columns visible and in
// order, then every other catalogue column hidden.
func Preset(name string) ([]Column, error) {
	keys, ok := catalog.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidCriteria, name)
	}
	out := make([]Column, 0, len(catalog.order))
	used := make(map[string]bool, len(keys))
	for _, k := range keys {
		col := catalog.byKey[k]
		col.Visible = true
		out = append(out, col)
		used[k] = true
	}
	for _, col := range catalog.order {
		if !used[col.Key] {
			out = append(out, col)
		}
	}
	return out, nil
}

// PresetNames lists the configured presets.
func PresetNames() []string {
	out := make([]string, 0, len(catalog.presets))
	for name := range catalog.presets {
		out = append(out, name)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "نعم"
	}
	return "لا"
}

func familyField(r Record, get func() string) string {
	if r.Family == nil {
		return placeholder
	}
	return orPlaceholder(get())
}

// extractors map column keys to record fields.
var extractors = map[string]func(Record, *Engine) any{
	"camp_name":     func(r Record, _ *Engine) any { return r.CampName },
	"family_number": func(r Record, _ *Engine) any { return r.FamilyNumber },
	"name":          func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.Name) },
	"nid":           func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.NID) },
	"dob":           func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.DOB) },
	"age":           func(r Record, _ *Engine) any { return r.Age },
	"gender":        func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.Gender) },
	"role": func(r Record, e *Engine) any {
		return orPlaceholder(roles.LabelIn(e.lang, r.Individual.Role, r.Individual.RoleDescription))
	},
	"head_name":    func(r Record, _ *Engine) any { return r.HeadName },
	"head_nid":     func(r Record, _ *Engine) any { return r.HeadNID },
	"spouse_name":  func(r Record, _ *Engine) any { return r.SpouseName },
	"spouse_nid":   func(r Record, _ *Engine) any { return r.SpouseNID },
	"member_count": func(r Record, _ *Engine) any { return r.MemberCount },
	"address": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.Address })
	},
	"contact": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.Contact })
	},
	"alternative_mobile": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.AlternativeMobile })
	},
	"housing_status": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.HousingStatus })
	},
	"shelter_type": func(r Record, _ *Engine) any {
		return familyField(r, func() string {
			if r.Family.ShelterType == "other" && r.Family.ShelterTypeOther != "" {
				return r.Family.ShelterTypeOther
			}
			return r.Family.ShelterType
		})
	},
	"delegate": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.Delegate })
	},
	"family_needs": func(r Record, _ *Engine) any {
		return familyField(r, func() string { return r.Family.FamilyNeeds })
	},
	"is_departed":    func(r Record, _ *Engine) any { return yesNo(r.Family != nil && r.Family.IsDeparted) },
	"is_pregnant":    func(r Record, _ *Engine) any { return yesNo(r.Individual.IsPregnant) },
	"is_nursing":     func(r Record, _ *Engine) any { return yesNo(r.Individual.IsNursing) },
	"female_head":    func(r Record, _ *Engine) any { return yesNo(r.FemaleHead) },
	"health_notes":   func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.HealthNotes) },
	"notes":          func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.Notes) },
	"shoe_size":      func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.ShoeSize) },
	"clothes_size":   func(r Record, _ *Engine) any { return orPlaceholder(r.Individual.ClothesSize) },
	"last_aid_date":  func(r Record, _ *Engine) any { return r.LastAidDate },
	"last_aid_items": func(r Record, _ *Engine) any { return r.LastAidItems },
}

package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lojf/campreg/internal/roles"
)

// ErrInvalidCriteria wraps every criteria validation failure.
var ErrInvalidCriteria = errors.New("invalid report criteria")

type AgeCategory string

const (
	AgeAny     AgeCategory = ""
	AgeInfant  AgeCategory = "infant"  // under 2
	AgeChild   AgeCategory = "child"   // 2 to 17
	AgeAdult   AgeCategory = "adult"   // 18 to 59
	AgeElderly AgeCategory = "elderly" // 60 and over
)

type Health string

const (
	HealthAny         Health = ""
	HealthPregnant    Health = "pregnant"
	HealthNursing     Health = "nursing"
	HealthFemaleHead  Health = "female_head"
	HealthHealthNotes Health = "health_notes"
)

type Departure string

const (
	DepartureAll      Departure = "all"
	DepartureActive   Departure = "active"
	DepartureDeparted Departure = "departed"
)

// Display narrows an expanded result a second time. It only applies when
// expansion is on.
type Display struct {
	Enabled bool     `json:"enabled"`
	Roles   []string `json:"roles,omitempty"`
	MinAge  *int     `json:"min_age,omitempty"`
	MaxAge  *int     `json:"max_age,omitempty"`
}

// Criteria configures one report run. Zero values mean "no constraint".
type Criteria struct {
	Roles       []string    `json:"roles,omitempty"`
	AgeCategory AgeCategory `json:"age_category,omitempty"`
	MinAge      *int        `json:"min_age,omitempty"`
	MaxAge      *int        `json:"max_age,omitempty"`
	Health      Health      `json:"health,omitempty"`
	Delegate    string      `json:"delegate,omitempty"`
	MinMembers  *int        `json:"min_members,omitempty"`
	MaxMembers  *int        `json:"max_members,omitempty"`
	AidItems    []string    `json:"aid_items,omitempty"`
	CampIDs     []uint      `json:"camp_ids,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Departure   Departure   `json:"departure,omitempty"`

	Expand  bool     `json:"expand"`
	Display Display  `json:"display"`
	Columns []Column `json:"columns,omitempty"`
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidCriteria}, args...)...)
}

// Validate rejects criteria that can never be meaningful: unknown roles or
// columns, unknown enum values and inverted ranges.
func (c Criteria) Validate() error {
	if err := validRoles("roles", c.Roles); err != nil {
		return err
	}
	if err := validRoles("display.roles", c.Display.Roles); err != nil {
		return err
	}
	switch c.AgeCategory {
	case AgeAny, AgeInfant, AgeChild, AgeAdult, AgeElderly:
	default:
		return invalidf("unknown age category %q", c.AgeCategory)
	}
	if c.AgeCategory != AgeAny && (c.MinAge != nil || c.MaxAge != nil) {
		return invalidf("age category and explicit age range are exclusive")
	}
	switch c.Health {
	case HealthAny, HealthPregnant, HealthNursing, HealthFemaleHead, HealthHealthNotes:
	default:
		return invalidf("unknown health status %q", c.Health)
	}
	switch c.Departure {
	case "", DepartureAll, DepartureActive, DepartureDeparted:
	default:
		return invalidf("unknown departure filter %q", c.Departure)
	}
	if err := validRange("age", c.MinAge, c.MaxAge); err != nil {
		return err
	}
	if err := validRange("display age", c.Display.MinAge, c.Display.MaxAge); err != nil {
		return err
	}
	if err := validRange("member count", c.MinMembers, c.MaxMembers); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, col := range c.Columns {
		if _, ok := catalog.byKey[col.Key]; !ok {
			return invalidf("unknown column %q", col.Key)
		}
		if seen[col.Key] {
			return invalidf("column %q listed twice", col.Key)
		}
		seen[col.Key] = true
	}
	return nil
}

func validRoles(field string, list []string) error {
	for _, r := range list {
		if _, err := roles.Parse(r); err != nil {
			return invalidf("%s: unknown role %q", field, r)
		}
	}
	return nil
}

func validRange(name string, lo, hi *int) error {
	if lo != nil && *lo < 0 {
		return invalidf("%s minimum is negative", name)
	}
	if lo != nil && hi != nil && *lo > *hi {
		return invalidf("%s range is inverted (%d > %d)", name, *lo, *hi)
	}
	return nil
}

// roleSet canonicalises list to role codes. Callers validate first.
func roleSet(list []string) map[roles.Role]bool {
	if len(list) == 0 {
		return nil
	}
	out := make(map[roles.Role]bool, len(list))
	for _, raw := range list {
		if r, err := roles.Parse(raw); err == nil {
			out[r] = true
		}
	}
	return out
}

func normItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

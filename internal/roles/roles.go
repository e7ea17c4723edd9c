// Package roles is the household role vocabulary shared by head resolution,
// report filters and display labels.
package roles

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Role is a household role code as stored on individuals.role.
type Role string

const (
	Husband         Role = "husband"
	Wife            Role = "wife"
	SecondWife      Role = "second_wife"
	Widow           Role = "widow"
	Widower         Role = "widower"
	Divorced        Role = "divorced"
	Abandoned       Role = "abandoned"
	Guardian        Role = "guardian"
	Son             Role = "son"
	Daughter        Role = "daughter"
	Other           Role = "other"
	Father          Role = "father"
	Head            Role = "head"
	HeadOfHousehold Role = "head_of_household"
)

var all = []Role{
	Husband, Wife, SecondWife, Widow, Widower, Divorced, Abandoned,
	Guardian, Son, Daughter, Other, Father, Head, HeadOfHousehold,
}

// All returns every role code in vocabulary order.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// Category groups roles for head resolution and filters.
type Category int

const (
	CategoryOther Category = iota
	CategoryHeadEligible
	CategorySpouse
	CategoryChild
)

func (c Category) String() string {
	switch c {
	case CategoryHeadEligible:
		return "head_eligible"
	case CategorySpouse:
		return "spouse"
	case CategoryChild:
		return "child"
	default:
		return "other"
	}
}

var ErrUnknownRole = errors.New("unknown household role")

var headEligible = map[Role]bool{
	Husband: true, Widower: true, Widow: true, Divorced: true, Abandoned: true,
	SecondWife: true, Guardian: true, Other: true, Father: true, Head: true,
	HeadOfHousehold: true,
}

var femaleHead = map[Role]bool{
	Widow: true, Divorced: true, Abandoned: true, SecondWife: true,
}

var spousal = map[Role]bool{
	Husband: true, Wife: true, SecondWife: true,
}

// Normalize trims and lowercases a raw role string.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Parse maps a raw role (code or Arabic synonym) onto the closed vocabulary.
func Parse(raw string) (Role, error) {
	n := Normalize(raw)
	if n == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownRole)
	}
	if _, ok := vocab.labels[language.English][Role(n)]; ok {
		return Role(n), nil
	}
	if r, ok := vocab.synonyms[n]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

// Valid reports whether raw parses onto a known role.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Category returns the role's category.
func (r Role) Category() Category {
	switch {
	case headEligible[r]:
		return CategoryHeadEligible
	case r == Wife:
		return CategorySpouse
	case r == Son || r == Daughter:
		return CategoryChild
	default:
		return CategoryOther
	}
}

// CategoryOf categorises a raw role; unknown values fall into CategoryOther.
func CategoryOf(raw string) Category {
	r, err := Parse(raw)
	if err != nil {
		return CategoryOther
	}
	return r.Category()
}

// IsHeadEligible reports whether the normalized raw role, or its synonym,
// marks a head of household.
func IsHeadEligible(raw string) bool {
	r, err := Parse(raw)
	return err == nil && headEligible[r]
}

// IsFemaleHeadRole reports roles that on their own indicate a female-headed
// household.
func IsFemaleHeadRole(raw string) bool {
	r, err := Parse(raw)
	return err == nil && femaleHead[r]
}

// IsSpousal reports roles that can pair with a head as spouse.
func IsSpousal(raw string) bool {
	r, err := Parse(raw)
	return err == nil && spousal[r]
}

// Is reports whether raw parses to want.
func Is(raw string, want Role) bool {
	r, err := Parse(raw)
	return err == nil && r == want
}

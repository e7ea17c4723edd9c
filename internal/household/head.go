// Package household derives household-level facts (head, spouse, size) from
// an unordered member list.
package household

import (
	"strings"

	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/roles"
)

// headMarker appears in free-text "other" role descriptions such as
// "رب الأسرة" or "ربة منزل".
const headMarker = "رب"

// ResolveHead picks the head of one household. It returns false only for an
// empty household.
func ResolveHead(members []models.Individual) (models.Individual, bool) {
	i := HeadIndex(members)
	if i < 0 {
		return models.Individual{}, false
	}
	return members[i], true
}

// HeadIndex returns the position of the head in members, or -1 when members
// is empty. Resolution order: first head-eligible role, then first "other"
// member whose description carries the head marker, then the earliest birth
// date (members without a usable date lose to any dated member).
func HeadIndex(members []models.Individual) int {
	if len(members) == 0 {
		return -1
	}
	for i := range members {
		if roles.IsHeadEligible(members[i].Role) {
			return i
		}
	}
	for i := range members {
		if members[i].Role == string(roles.Other) && strings.Contains(members[i].RoleDescription, headMarker) {
			return i
		}
	}

	best := -1
	for i := range members {
		t, ok := ParseDOB(members[i].DOB)
		if !ok {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		bt, _ := ParseDOB(members[best].DOB)
		if t.Before(bt) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// SpouseIndex finds a member with a role complementary to the head's, never
// the head itself. It returns -1 when no such member exists.
func SpouseIndex(members []models.Individual, head int) int {
	if head < 0 || head >= len(members) {
		return -1
	}
	var match func(string) bool
	switch r, _ := roles.Parse(members[head].Role); r {
	case roles.Husband, roles.Father, roles.Widower:
		match = func(raw string) bool { return roles.Is(raw, roles.Wife) || roles.Is(raw, roles.SecondWife) }
	case roles.Wife, roles.SecondWife:
		match = func(raw string) bool { return roles.Is(raw, roles.Husband) }
	default:
		match = roles.IsSpousal
	}
	for i := range members {
		if i != head && match(members[i].Role) {
			return i
		}
	}
	return -1
}

// IsFemaleHead reports whether m marks a female-headed household: either her
// role says so on its own, or she is a wife in a household with no husband.
func IsFemaleHead(m models.Individual, members []models.Individual) bool {
	if roles.IsFemaleHeadRole(m.Role) {
		return true
	}
	if !roles.Is(m.Role, roles.Wife) {
		return false
	}
	for i := range members {
		if roles.Is(members[i].Role, roles.Husband) {
			return false
		}
	}
	return true
}

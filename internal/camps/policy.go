// Package camps decides which camps a principal may see and which one is
// selected, and keeps that selection per session.
package camps

import "github.com/lojf/campreg/internal/models"

// IsAdmin reports admin-tier roles that see every camp.
func IsAdmin(u *models.User) bool {
	return u != nil && (u.Role == models.RoleAdmin || u.Role == models.RoleSystemAdmin)
}

// Visible returns the subset of all that u may see, in list order. Unknown
// roles see nothing.
func Visible(u *models.User, all []models.Camp) []models.Camp {
	if u == nil {
		return nil
	}
	switch u.Role {
	case models.RoleAdmin, models.RoleSystemAdmin:
		out := make([]models.Camp, len(all))
		copy(out, all)
		return out
	case models.RoleManager, models.RoleUser:
		if u.CampID == nil {
			return []models.Camp{}
		}
		return filter(all, func(c models.Camp) bool { return c.ID == *u.CampID })
	case models.RoleSupervisor:
		assigned := make(map[uint]bool, len(u.AssignedCamps))
		for _, id := range u.AssignedCamps {
			assigned[id] = true
		}
		return filter(all, func(c models.Camp) bool { return assigned[c.ID] })
	default:
		return []models.Camp{}
	}
}

func filter(all []models.Camp, keep func(models.Camp) bool) []models.Camp {
	out := make([]models.Camp, 0, len(all))
	for _, c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Select applies the auto-selection rule once visibility is known. persisted
// is the previously stored camp id, if any. locked reports a selection the
// principal cannot change (camp_id-scoped managers and users).
func Select(u *models.User, visible []models.Camp, persisted *uint) (selected *models.Camp, locked bool) {
	if u == nil || len(visible) == 0 {
		return nil, false
	}
	if u.Role == models.RoleManager || u.Role == models.RoleUser {
		c := visible[0]
		return &c, true
	}
	if persisted != nil {
		if c, ok := find(visible, *persisted); ok {
			return &c, false
		}
	}
	if u.Role == models.RoleSupervisor || len(visible) == 1 {
		c := visible[0]
		return &c, false
	}
	// several camps and nothing remembered: make the user choose
	return nil, false
}

// CanAccess reports whether campID is in visible.
func CanAccess(visible []models.Camp, campID uint) bool {
	_, ok := find(visible, campID)
	return ok
}

func find(list []models.Camp, id uint) (models.Camp, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return models.Camp{}, false
}

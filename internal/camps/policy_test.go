package camps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/campreg/internal/models"
)

var allCamps = []models.Camp{
	{ID: 1, Name: "A"},
	{ID: 2, Name: "B"},
	{ID: 3, Name: "C"},
	{ID: 4, Name: "D"},
}

func uintp(v uint) *uint { return &v }

func ids(list []models.Camp) []uint {
	out := make([]uint, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want []uint
	}{
		{"system admin sees all", &models.User{Role: models.RoleSystemAdmin}, []uint{1, 2, 3, 4}},
		{"admin sees all", &models.User{Role: models.RoleAdmin}, []uint{1, 2, 3, 4}},
		{"manager sees own camp", &models.User{Role: models.RoleManager, CampID: uintp(3)}, []uint{3}},
		{"legacy user sees own camp", &models.User{Role: models.RoleUser, CampID: uintp(2)}, []uint{2}},
		{"manager without camp sees nothing", &models.User{Role: models.RoleManager}, []uint{}},
		{"manager with missing camp sees nothing", &models.User{Role: models.RoleManager, CampID: uintp(9)}, []uint{}},
		{"supervisor sees assigned", &models.User{Role: models.RoleSupervisor, AssignedCamps: []uint{1, 3}}, []uint{1, 3}},
		{"supervisor ignores unknown assignments", &models.User{Role: models.RoleSupervisor, AssignedCamps: []uint{3, 42}}, []uint{3}},
		{"unknown role sees nothing", &models.User{Role: "guest"}, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Visible(tt.user, allCamps)))
		})
	}
	assert.Nil(t, Visible(nil, allCamps))
}

func TestSelect(t *testing.T) {
	manager := &models.User{Role: models.RoleManager, CampID: uintp(3)}
	sel, locked := Select(manager, Visible(manager, allCamps), uintp(1))
	require.NotNil(t, sel)
	assert.Equal(t, uint(3), sel.ID)
	assert.True(t, locked)

	user := &models.User{Role: models.RoleUser, CampID: uintp(2)}
	sel, locked = Select(user, Visible(user, allCamps), nil)
	require.NotNil(t, sel)
	assert.Equal(t, uint(2), sel.ID)
	assert.True(t, locked, "camp_id-scoped users cannot clear their camp")

	supervisor := &models.User{Role: models.RoleSupervisor, AssignedCamps: []uint{1, 3}}
	visible := Visible(supervisor, allCamps)
	sel, locked = Select(supervisor, visible, uintp(2))
	require.NotNil(t, sel)
	assert.Equal(t, uint(1), sel.ID, "persisted camp outside the assignment falls back to the first visible")
	assert.False(t, locked)
	sel, _ = Select(supervisor, visible, uintp(3))
	assert.Equal(t, uint(3), sel.ID)
	sel, _ = Select(supervisor, visible, nil)
	assert.Equal(t, uint(1), sel.ID)

	admin := &models.User{Role: models.RoleAdmin}
	sel, _ = Select(admin, allCamps, uintp(4))
	assert.Equal(t, uint(4), sel.ID)
	sel, _ = Select(admin, allCamps, uintp(99))
	assert.Nil(t, sel, "several camps and no valid choice leaves nothing selected")
	sel, _ = Select(admin, allCamps[:1], nil)
	assert.Equal(t, uint(1), sel.ID)
	sel, _ = Select(admin, nil, uintp(1))
	assert.Nil(t, sel)
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(allCamps, 2))
	assert.False(t, CanAccess(allCamps[:1], 2))
	assert.False(t, CanAccess(nil, 1))
}

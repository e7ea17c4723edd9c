package household

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/campreg/internal/models"
)

func TestSummariesAndSearch(t *testing.T) {
	families := []models.Family{
		{ID: 1, FamilyNumber: "12", Contact: "+970 599-123456"},
		{ID: 2, FamilyNumber: "13"},
		{ID: 3, FamilyNumber: "14"},
	}
	members := []models.Individual{
		{ID: 10, FamilyID: 1, Name: "Ahmad Saleh", Role: "husband", NID: "400111222"},
		{ID: 11, FamilyID: 1, Name: "Mona Saleh", Role: "wife"},
		{ID: 20, FamilyID: 2, Name: "Huda Nasser", Role: "widow"},
	}

	list := Summaries(families, members)
	require.Len(t, list, 3)
	assert.Equal(t, "Ahmad Saleh", list[0].HeadName)
	assert.Equal(t, "400111222", list[0].HeadNID)
	assert.Equal(t, 2, list[0].MemberCount)
	assert.Equal(t, "Huda Nasser", list[1].HeadName)
	assert.Equal(t, "-", list[1].HeadNID)
	assert.Nil(t, list[2].Head, "family without members has no head")
	assert.Equal(t, "-", list[2].HeadName)

	assert.Len(t, Search(list, ""), 3)
	assert.Equal(t, uint(1), Search(list, "ahmad")[0].Family.ID)
	assert.Equal(t, uint(1), Search(list, "mona")[0].Family.ID, "member names match too")
	assert.Equal(t, uint(2), Search(list, "13")[0].Family.ID)
	assert.Equal(t, uint(1), Search(list, "599123")[0].Family.ID)
	assert.Equal(t, uint(1), Search(list, "400111")[0].Family.ID)
	assert.Empty(t, Search(list, "zzz"))
}

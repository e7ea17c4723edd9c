package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreset(t *testing.T) {
	cols, err := Preset("health")
	require.NoError(t, err)
	assert.Len(t, cols, len(catalog.order), "every catalogue column is listed")
	assert.Equal(t, "camp_name", cols[0].Key)
	assert.True(t, cols[0].Visible)

	visible := 0
	for _, c := range cols {
		if c.Visible {
			visible++
		}
	}
	assert.Equal(t, len(catalog.presets["health"]), visible)

	cols[0].Visible = false
	again, _ := Preset("health")
	assert.True(t, again[0].Visible, "presets hand out fresh copies")

	_, err = Preset("nope")
	assert.ErrorIs(t, err, ErrInvalidCriteria)
	assert.ElementsMatch(t, []string{"default", "distribution", "health"}, PresetNames())
}

func TestLoadColumnsRejectsBadCatalogue(t *testing.T) {
	_, err := loadColumns([]byte("columns:\n  - {key: favourite_colour, label: x}\npresets:\n  default: []\n"))
	assert.ErrorContains(t, err, "no extractor")

	_, err = loadColumns([]byte("columns:\n  - {key: name, label: x}\npresets:\n  default: [name]\n"))
	assert.ErrorContains(t, err, "missing from catalogue")
}

//go:build unit

package catalog_test

import (
	"testing"

	"medslot/internal/domain/capacity"
	"medslot/internal/infra/catalog"

	"github.com/stretchr/testify/assert"
)

func TestHasResource(t *testing.T) {
	cat := catalog.NewStatic([]string{"morning", "afternoon", "evening"})

	testCases := []struct {
		name     string
		resource capacity.ResourceKey
		want     bool
	}{
		{
			name:     "known ward",
			resource: capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "Ruby General Hospital", UnitID: "Surgical Wards"},
			want:     true,
		},
		{
			name:     "known lab test",
			resource: capacity.ResourceKey{Category: capacity.CategoryTest, ProviderID: "Thyrocare", UnitID: "Lipid Profile"},
			want:     true,
		},
		{
			name:     "ward name under the wrong category",
			resource: capacity.ResourceKey{Category: capacity.CategoryTest, ProviderID: "Ruby General Hospital", UnitID: "Surgical Wards"},
			want:     false,
		},
		{
			name:     "unknown provider",
			resource: capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "No Such Hospital", UnitID: "Surgical Wards"},
			want:     false,
		},
		{
			name:     "unknown unit at a known provider",
			resource: capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "Ruby General Hospital", UnitID: "Helipad"},
			want:     false,
		},
		{
			name:     "unknown category",
			resource: capacity.ResourceKey{Category: "clinic", ProviderID: "Ruby General Hospital", UnitID: "Surgical Wards"},
			want:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cat.HasResource(tc.resource))
		})
	}
}

func TestValidSlot(t *testing.T) {
	cat := catalog.NewStatic([]string{"morning", "afternoon"})
	lab := capacity.ResourceKey{Category: capacity.CategoryTest, ProviderID: "Thyrocare", UnitID: "Urinalysis"}

	assert.True(t, cat.ValidSlot(lab, "morning"))
	assert.False(t, cat.ValidSlot(lab, "midnight"))
}

func TestCatalogListings(t *testing.T) {
	cat := catalog.NewStatic([]string{"morning", "afternoon", "evening"})

	assert.Len(t, cat.Hospitals(), 10)
	assert.Len(t, cat.Labs(), 11)
	assert.Equal(t, []string{"morning", "afternoon", "evening"}, cat.Slots())

	for _, h := range cat.Hospitals() {
		assert.Len(t, h.Units, 4)
	}
	for _, l := range cat.Labs() {
		assert.Len(t, l.Units, 5)
	}
}

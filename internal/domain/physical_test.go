package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSphereMass(t *testing.T) {
	tests := []struct {
		diameterKm float64
		density    float64
	}{
		{0.001, 1.0},
		{0.14, 2.6},
		{0.49, 1.19},
		{10, 3.0},
	}
	for _, tt := range tests {
		r := tt.diameterKm * 1000 / 2
		want := tt.density * 1000 * 4 / 3 * math.Pi * r * r * r
		assert.InEpsilon(t, want, SphereMass(tt.diameterKm, tt.density), 1e-6)
	}
}

func TestDiameterFromMagnitude(t *testing.T) {
	assert.InDelta(t, 0.1414, DiameterFromMagnitude(22, 0.14), 1e-3)
	// Brighter objects are larger.
	assert.Greater(t, DiameterFromMagnitude(18, 0.14), DiameterFromMagnitude(22, 0.14))
	// Darker surfaces imply larger bodies at the same H.
	assert.Greater(t, DiameterFromMagnitude(22, 0.05), DiameterFromMagnitude(22, 0.25))
}

func TestTaxonomyDensity(t *testing.T) {
	tests := []struct {
		class string
		want  float64
		ok    bool
	}{
		{"S", 2.72, true},
		{"c", 1.33, true},
		{"Sq", 2.72, true},
		{" B ", 2.38, true},
		{"Xk", 1.85, true},
		{"Z", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, ok := TaxonomyDensity(tt.class)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaxonomyTable_Sorted(t *testing.T) {
	table := TaxonomyTable()
	assert.Len(t, table, len(taxonomyDensity))
	for i := 1; i < len(table); i++ {
		assert.Less(t, table[i-1].Class, table[i].Class)
	}
}

func TestTarget(t *testing.T) {
	d, ok := TargetWater.Density()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, d)

	_, ok = Target("lava").Density()
	assert.False(t, ok)

	assert.True(t, TargetWater.IsAqueous())
	assert.True(t, TargetIce.IsAqueous())
	assert.False(t, TargetRock.IsAqueous())
}

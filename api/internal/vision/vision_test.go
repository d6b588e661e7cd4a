package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRaw_BoxMapping(t *testing.T) {
	out := NormalizeRaw([]RawItem{
		{Label: "oat milk", Box: []float64{10, 20, 110, 220}},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "oat milk", out[0].Label)
	// y0=top, x0=left, y1=bottom, x1=right — порядок фиксированный
	assert.Equal(t, 10.0, out[0].Box.Y0)
	assert.Equal(t, 20.0, out[0].Box.X0)
	assert.Equal(t, 110.0, out[0].Box.Y1)
	assert.Equal(t, 220.0, out[0].Box.X1)
}

func TestNormalizeRaw_DropsMalformedItems(t *testing.T) {
	out := NormalizeRaw([]RawItem{
		{Label: "cola", Box: []float64{1, 2, 3, 4}},
		{Label: "broken", Box: []float64{1, 2, 3}}, // 3 компоненты — выкидываем
		{Label: "juice", Box: []float64{5, 6, 7, 8}},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "cola", out[0].Label)
	assert.Equal(t, "juice", out[1].Label)
}

func TestNormalizeRaw_DropsEmptyLabelAndNonFinite(t *testing.T) {
	out := NormalizeRaw([]RawItem{
		{Label: "   ", Box: []float64{1, 2, 3, 4}},
		{Label: "chips", Box: []float64{1, math.NaN(), 3, 4}},
		{Label: "bread", Box: []float64{1, 2, math.Inf(1), 4}},
	})
	assert.Empty(t, out)
}

func TestNormalizeRaw_TrimsLabel(t *testing.T) {
	out := NormalizeRaw([]RawItem{{Label: "  beans \n", Box: []float64{0, 0, 1, 1}}})
	require.Len(t, out, 1)
	assert.Equal(t, "beans", out[0].Label)
}

package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels()

	assert.Equal(t, DefaultClasses, labels.Len())
	assert.Equal(t, "middle_finger", labels.Label(0))
	assert.Equal(t, "like", labels.Label(4))
	assert.Equal(t, "no_gesture", labels.Label(9))
}

func TestLabels_UnknownFallback(t *testing.T) {
	labels := DefaultLabels()

	for _, id := range []int{-1, 10, 1000} {
		assert.Equal(t, UnknownLabel, labels.Label(id), "class %d", id)
	}
}

func TestLabels_Index(t *testing.T) {
	labels := NewLabels([]string{"a", "b", "a"})

	i, ok := labels.Index("a")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = labels.Index("missing")
	assert.False(t, ok)
}

func TestLabels_NamesIsCopy(t *testing.T) {
	labels := DefaultLabels()
	names := labels.Names()
	names[0] = "changed"

	assert.Equal(t, "middle_finger", labels.Label(0))
}

func TestSummarize(t *testing.T) {
	labels := DefaultLabels()
	dets := []Detection{
		{ClassID: 4, Confidence: 0.8, Anchor: 1},
		{ClassID: 2, Confidence: 0.9, Anchor: 2},
		{ClassID: 4, Confidence: 0.6, Anchor: 3},
	}

	got := Summarize(dets, labels)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "fist", got[0].Label)
		assert.Equal(t, 1, got[0].Count)

		assert.Equal(t, "like", got[1].Label)
		assert.Equal(t, 2, got[1].Count)
		assert.Equal(t, float32(0.8), got[1].MaxConfidence)
		assert.InDelta(t, 0.7, got[1].AvgConfidence, 1e-6)
		assert.Equal(t, []float32{0.8, 0.6}, got[1].Top)
	}

	assert.Nil(t, Summarize(nil, labels))
}

func TestSummarize_TopKeepsBestThree(t *testing.T) {
	dets := []Detection{
		{ClassID: 7, Confidence: 0.75, Anchor: 0},
		{ClassID: 7, Confidence: 0.95, Anchor: 1},
		{ClassID: 7, Confidence: 0.71, Anchor: 2},
		{ClassID: 7, Confidence: 0.88, Anchor: 3},
	}

	got := Summarize(dets, DefaultLabels())
	require.Len(t, got, 1)
	assert.Equal(t, "three", got[0].Label)
	assert.Equal(t, []float32{0.95, 0.88, 0.75}, got[0].Top)
	assert.Equal(t, float32(0.95), got[0].MaxConfidence)
}

package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfattal/david-gpt-sub005/model"
)

func TestNormalize(t *testing.T) {
	t.Run("Case, punctuation and whitespace are folded", func(t *testing.T) {
		assert.Equal(t, "leia inc", Normalize("Leia, Inc."))
		assert.Equal(t, "light field display", Normalize("Light-Field  Display"))
		assert.Equal(t, "2d 3d display", Normalize("2D/3D display"))
	})

	t.Run("Empty and punctuation-only strings normalize to empty", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
		assert.Equal(t, "", Normalize("..!!"))
	})
}

func TestSimilarityRatio(t *testing.T) {
	t.Run("Equal strings have ratio 1", func(t *testing.T) {
		assert.Equal(t, 1.0, SimilarityRatio("lightfield", "lightfield"))
		assert.Equal(t, 1.0, SimilarityRatio("", ""))
	})

	t.Run("Ratio falls with edit distance", func(t *testing.T) {
		assert.InDelta(t, 0.8, SimilarityRatio("aaaaaaaaaa", "aaaaaaaabb"), 0.001)
	})
}

func TestIsNearDuplicate(t *testing.T) {
	t.Run("Normalized equality matches", func(t *testing.T) {
		assert.True(t, IsNearDuplicate("Light-Field Display", "light field display", model.KindTechnology))
		assert.True(t, IsNearDuplicate("Leia Inc.", "leia inc", model.KindOrganization))
	})

	t.Run("Containment with a small length difference matches", func(t *testing.T) {
		assert.True(t, IsNearDuplicate("holographic displays", "holographic display", model.KindTechnology))
		assert.True(t, IsNearDuplicate("parallax barrier", "parallax barriers", model.KindComponent))
	})

	t.Run("Containment with a large length difference does not match", func(t *testing.T) {
		assert.False(t, IsNearDuplicate("display", "holographic display", model.KindTechnology))
	})

	t.Run("Edit distance applies only to long technology names", func(t *testing.T) {
		// 3 edits over 20 characters is exactly the 0.85 threshold
		assert.True(t, IsNearDuplicate("aaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaaabbb", model.KindTechnology))
		// 4 edits over 20 characters falls below it
		assert.False(t, IsNearDuplicate("aaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaabbbb", model.KindTechnology))
		// other kinds never use edit distance
		assert.False(t, IsNearDuplicate("aaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaaabbb", model.KindOrganization))
	})

	t.Run("Short technology names never fuzzy-match", func(t *testing.T) {
		assert.False(t, IsNearDuplicate("OLED", "QLED", model.KindTechnology))
	})

	t.Run("Empty names never match", func(t *testing.T) {
		assert.False(t, IsNearDuplicate("", "anything", model.KindTechnology))
	})
}

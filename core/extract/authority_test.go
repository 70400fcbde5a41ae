package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfattal/david-gpt-sub005/model"
)

func TestScoreAuthority(t *testing.T) {
	t.Run("Structured candidates ignore the section modifier", func(t *testing.T) {
		assert.Equal(t, 0.9, ScoreAuthority(model.KindPerson, true, model.SectionCitations, 1))
		assert.Equal(t, 0.9, ScoreAuthority(model.KindOrganization, true, model.SectionUnknown, 1))
		assert.Equal(t, 0.75, ScoreAuthority(model.KindComponent, true, model.SectionBackground, 1))
	})

	t.Run("Content candidates scale by section", func(t *testing.T) {
		assert.Equal(t, 0.6, ScoreAuthority(model.KindTechnology, false, model.SectionTitle, 1))
		assert.Equal(t, 0.54, ScoreAuthority(model.KindTechnology, false, model.SectionAbstract, 1))
		assert.Equal(t, 0.42, ScoreAuthority(model.KindTechnology, false, model.SectionDescription, 1))
		assert.Equal(t, 0.24, ScoreAuthority(model.KindTechnology, false, model.SectionBackground, 1))
		assert.Equal(t, 0.12, ScoreAuthority(model.KindTechnology, false, model.SectionCitations, 1))
	})

	t.Run("Unknown sections use the neutral modifier", func(t *testing.T) {
		assert.Equal(t, 0.3, ScoreAuthority(model.KindTechnology, false, model.SectionUnknown, 1))
		assert.Equal(t, 0.25, ScoreAuthority(model.KindPerson, false, model.Section("bogus"), 1))
	})

	t.Run("Mentions boost the score by 0.05 each up to 0.2", func(t *testing.T) {
		assert.Equal(t, 0.35, ScoreAuthority(model.KindTechnology, false, model.SectionUnknown, 2))
		assert.Equal(t, 0.5, ScoreAuthority(model.KindTechnology, false, model.SectionUnknown, 5))
		assert.Equal(t, 0.5, ScoreAuthority(model.KindTechnology, false, model.SectionUnknown, 50),
			"Expected the mention boost to saturate at 0.2")
	})

	t.Run("Scores never exceed 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, ScoreAuthority(model.KindPerson, true, model.SectionUnknown, 10))
	})

	t.Run("More mentions never lower a score", func(t *testing.T) {
		prev := 0.0
		for mentions := 1; mentions <= 10; mentions++ {
			score := ScoreAuthority(model.KindComponent, false, model.SectionClaims, mentions)
			assert.GreaterOrEqual(t, score, prev)
			prev = score
		}
	})
}

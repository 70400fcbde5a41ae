package extract

import (
	"math"

	"github.com/dfattal/david-gpt-sub005/model"
)

// structuredBaseScores apply to candidates pulled from structured
// metadata fields (patent inventors, paper authors), which are far more
// trustworthy than free-text matches.
var structuredBaseScores = map[model.EntityKind]float64{
	model.KindPerson:       0.9,
	model.KindOrganization: 0.9,
	model.KindProduct:      0.85,
	model.KindTechnology:   0.8,
	model.KindComponent:    0.75,
	model.KindDocument:     0.9,
}

// contentBaseScores apply to candidates matched in free text.
var contentBaseScores = map[model.EntityKind]float64{
	model.KindPerson:       0.5,
	model.KindOrganization: 0.6,
	model.KindProduct:      0.6,
	model.KindTechnology:   0.6,
	model.KindComponent:    0.5,
	model.KindDocument:     0.5,
}

// sectionModifiers scale content scores by where in the document the
// candidate was found. A term in a patent's citations or background
// should rank far below the same term in its title or claims, so
// prior-art noise does not pollute the graph.
var sectionModifiers = map[model.Section]float64{
	model.SectionTitle:       1.0,
	model.SectionAbstract:    0.9,
	model.SectionClaims:      0.85,
	model.SectionDescription: 0.7,
	model.SectionBackground:  0.4,
	model.SectionCitations:   0.2,
	model.SectionUnknown:     0.5,
}

// ScoreAuthority computes the 0-1 trust score for a candidate from its
// kind, origin, section and mention count, rounded to two decimals.
// Structured candidates ignore the section modifier.
func ScoreAuthority(kind model.EntityKind, isStructured bool, section model.Section, mentionCount int) float64 {
	var base float64
	var modifier float64

	if isStructured {
		base = structuredBaseScores[kind]
		modifier = 1.0
	} else {
		base = contentBaseScores[kind]
		var ok bool
		modifier, ok = sectionModifiers[section]
		if !ok {
			modifier = sectionModifiers[model.SectionUnknown]
		}
	}

	mentionBoost := math.Min(0.2, float64(mentionCount-1)*0.05)
	if mentionBoost < 0 {
		mentionBoost = 0
	}

	result := math.Min(1.0, base*modifier+mentionBoost)
	return math.Round(result*100) / 100
}

package extract

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dfattal/david-gpt-sub005/model"
)

// abbreviationTable maps well-known short forms onto their expanded
// canonical form, so "lcd" and "liquid crystal display" merge before
// they ever reach the consolidation engine.
var abbreviationTable = map[string]string{
	"lcd":   "liquid crystal display",
	"oled":  "organic light-emitting diode",
	"led":   "light-emitting diode",
	"qd":    "quantum dot",
	"ar":    "augmented reality",
	"vr":    "virtual reality",
	"lf":    "lightfield",
	"diy":   "do it yourself",
	"tft":   "thin-film transistor",
	"amoled": "active-matrix organic light-emitting diode",
}

// synonymTable maps variant technical spellings onto one canonical
// spelling for technologies and components.
var synonymTable = map[string]string{
	"light field":         "lightfield",
	"light-field":         "lightfield",
	"eye tracking":        "eye-tracking",
	"head tracking":       "head-tracking",
	"micro led":           "micro-LED",
	"microled":            "micro-LED",
	"quantum-dot":         "quantum dot",
	"auto-stereoscopic":   "autostereoscopic",
	"auto stereoscopic":   "autostereoscopic",
	"glasses free":        "glasses-free",
}

// Deduplicator merges candidates from the same extraction pass that
// are trivially the same entity, before inter-batch consolidation.
type Deduplicator struct {
	abbreviations map[string]string
	synonyms      map[string]string
}

// NewDeduplicator creates a deduplicator with the built-in
// abbreviation and synonym tables.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		abbreviations: abbreviationTable,
		synonyms:      synonymTable,
	}
}

// Deduplicate merges trivially-equal candidates by canonical key, then
// runs an organization-specific containment pass. Merging sums mention
// counts, keeps the max authority score and prefers the longer, more
// descriptive name as the surviving label.
func (d *Deduplicator) Deduplicate(candidates []*model.CandidateEntity) []*model.CandidateEntity {
	merged := map[string]*model.CandidateEntity{}
	var order []string

	for _, candidate := range candidates {
		key := string(candidate.Kind) + "\x00" + d.canonicalKey(candidate.Name, candidate.Kind)
		if existing, ok := merged[key]; ok {
			mergeCandidates(existing, candidate)
			continue
		}
		copied := *candidate
		merged[key] = &copied
		order = append(order, key)
	}

	result := make([]*model.CandidateEntity, 0, len(merged))
	for _, key := range order {
		result = append(result, merged[key])
	}

	return d.mergeOrganizationsByContainment(result)
}

// canonicalKey folds a name down to the form used for intra-batch
// identity: unicode-normalized, lowercased, abbreviation-expanded and
// synonym-mapped; technologies and components additionally compare
// word-order-insensitive.
func (d *Deduplicator) canonicalKey(name string, kind model.EntityKind) string {
	folded := strings.ToLower(strings.TrimSpace(norm.NFKC.String(name)))
	folded = strings.Join(strings.Fields(folded), " ")

	if expanded, ok := d.abbreviations[folded]; ok {
		folded = expanded
	}
	if canonical, ok := d.synonyms[folded]; ok {
		folded = strings.ToLower(canonical)
	}

	switch kind {
	case model.KindOrganization:
		folded = stripCorporateSuffixes(folded)
	case model.KindTechnology, model.KindComponent:
		words := strings.Fields(folded)
		sort.Strings(words)
		folded = strings.Join(words, " ")
	}

	return folded
}

// mergeOrganizationsByContainment merges organizations whose
// suffix-stripped forms match or where one contains the other, e.g.
// "Leia" into "Leia Inc".
func (d *Deduplicator) mergeOrganizationsByContainment(candidates []*model.CandidateEntity) []*model.CandidateEntity {
	result := make([]*model.CandidateEntity, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.Kind != model.KindOrganization {
			result = append(result, candidate)
			continue
		}

		reduced := stripCorporateSuffixes(strings.ToLower(candidate.Name))
		mergedInto := false
		for _, existing := range result {
			if existing.Kind != model.KindOrganization {
				continue
			}
			existingReduced := stripCorporateSuffixes(strings.ToLower(existing.Name))
			if reduced == existingReduced ||
				strings.Contains(existingReduced, reduced) ||
				strings.Contains(reduced, existingReduced) {
				mergeCandidates(existing, candidate)
				mergedInto = true
				break
			}
		}
		if !mergedInto {
			result = append(result, candidate)
		}
	}

	return result
}

// mergeCandidates folds b into a: mention counts sum, authority takes
// the max, the longer name survives as the label and structured origin
// is sticky.
func mergeCandidates(a *model.CandidateEntity, b *model.CandidateEntity) {
	a.MentionCount += b.MentionCount
	if b.AuthorityScore > a.AuthorityScore {
		a.AuthorityScore = b.AuthorityScore
	}
	if len(b.Name) > len(a.Name) {
		a.Name = b.Name
	}
	if a.Description == "" {
		a.Description = b.Description
	}
	if b.IsStructured {
		a.IsStructured = true
	}
	if a.SectionHint == model.SectionUnknown && b.SectionHint != model.SectionUnknown {
		a.SectionHint = b.SectionHint
	}
}

func stripCorporateSuffixes(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 {
		last := strings.TrimRight(words[len(words)-1], ".,")
		if !corporateSuffixContains(last) {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

package extract

import (
	"regexp"
	"strings"

	"github.com/dfattal/david-gpt-sub005/model"
)

// junkPatterns reject strings that are markdown debris, escape
// sequences, truncated links or sentence fragments rather than names.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\[\]{}<>|#*_` + "`" + `]`),       // markdown fragments
	regexp.MustCompile(`\\[ntr"'\\]`),                      // escaped sequences
	regexp.MustCompile(`https?://|www\.|\]\(`),             // incomplete links and URLs
	regexp.MustCompile(`^(?:the|a|an|of|in|on|to|for|with|is|are|was|were|said|such|same|has|have|had)\s`), // leading sentence fragment
	regexp.MustCompile(`(?i)^(?:it|its|they|their|this|that|these|those|he|she|his|her|we|our)\b`),
	regexp.MustCompile(`(?i)^(?:and|or|but|also|however|therefore|thus|whereas|wherein|thereby)\b`),
	regexp.MustCompile(`(?i)\b(?:using|comprising|comprises|including|includes|having|wherein|thereof|said)\b`), // claim-language verbs inside a span

	regexp.MustCompile(`(?i)\b(?:thing|stuff|item|aspect|manner|way)s?$`), // generic-noun-only suffix
}

// technicalStopWords are bare generic terms that never identify an
// entity on their own.
var technicalStopWords = map[string]bool{
	"system":      true,
	"device":      true,
	"method":      true,
	"apparatus":   true,
	"display":     true,
	"technology":  true,
	"component":   true,
	"module":      true,
	"unit":        true,
	"element":     true,
	"structure":   true,
	"material":    true,
	"process":     true,
	"layer":       true,
	"surface":     true,
	"signal":      true,
	"data":        true,
	"image":       true,
	"light":       true,
	"user":        true,
	"interface":   true,
	"information": true,
}

// connectorWords are closed-class words that do not count as
// meaningful in compound terms.
var connectorWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"into": true, "onto": true, "over": true, "under": true, "between": true,
	"same": true, "such": true, "each": true, "other": true, "both": true,
	"via": true, "per": true, "of": true, "in": true, "on": true, "to": true,
	"a": true, "an": true, "as": true, "at": true, "by": true, "or": true,
}

// technologyIndicators match domain vocabulary that marks a term as a
// plausible technology name even when it is a single word.
var technologyIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:display|imaging|rendering|tracking|sensing|holograph|lenticular|autostereo|stereoscop|parallax|lightfield|light[\s-]field)\w*`),
	regexp.MustCompile(`(?i)\b(?:3d|2d|hdr|oled|lcd|led|qled|micro-?led|quantum[\s-]dot)\b`),
	regexp.MustCompile(`(?i)\b(?:algorithm|codec|protocol|framework|architecture|pipeline|learning|neural|diffusion)\b`),
	regexp.MustCompile(`(?i)\b(?:switchable|eye[\s-]tracking|head[\s-]tracking|depth[\s-]sensing)\b`),
}

// componentIndicators match physical component vocabulary.
var componentIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:layer|cell|substrate|electrode|lens|lenslet|film|array|waveguide|diffuser|backlight|barrier|grating|panel|emitter|pixel|subpixel)s?\b`),
	regexp.MustCompile(`(?i)\b(?:liquid[\s-]crystal|thin[\s-]film|polariz|birefringen)\w*`),
}

// corporateSuffixes disqualify a string as a person name and are
// stripped when reducing organization names.
var corporateSuffixes = []string{
	"inc", "corp", "corporation", "llc", "ltd", "gmbh", "co", "company",
	"technologies", "technology", "labs", "laboratories", "holdings", "group",
}

// genericProcessNouns reject bare process words as organization names.
var genericProcessNouns = map[string]bool{
	"manufacturing": true,
	"production":    true,
	"research":      true,
	"development":   true,
	"engineering":   true,
	"marketing":     true,
	"management":    true,
	"licensing":     true,
}

var personNamePattern = regexp.MustCompile(`^[A-Z][a-zA-Z'\-]+(?:\s[A-Z]\.?)?(?:\s[A-Z][a-zA-Z'\-]+){0,3}$`)

// IsValidEntity reports whether text is plausible as an entity name of
// the given kind. It is a pure function of its inputs.
func IsValidEntity(text string, kind model.EntityKind) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 || len(trimmed) > 80 {
		return false
	}

	for _, pattern := range junkPatterns {
		if pattern.MatchString(trimmed) {
			return false
		}
	}

	if alphanumericRatio(trimmed) < 0.6 {
		return false
	}

	lower := strings.ToLower(trimmed)
	if technicalStopWords[lower] {
		return false
	}

	if meaningfulWordCount(trimmed) < 1 {
		return false
	}

	switch kind {
	case model.KindTechnology:
		return hasIndicator(trimmed, technologyIndicators) || wordCount(trimmed) >= 2
	case model.KindComponent:
		return hasIndicator(trimmed, componentIndicators) || wordCount(trimmed) >= 2
	case model.KindPerson:
		return IsValidPersonName(trimmed)
	case model.KindOrganization:
		return isValidOrganizationName(trimmed)
	}

	return true
}

// IsValidPersonName checks the shape of a person name: one to four
// capitalized tokens of letters, hyphens and apostrophes, with no
// corporate suffix.
func IsValidPersonName(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 || len(trimmed) > 80 {
		return false
	}

	if !personNamePattern.MatchString(trimmed) {
		return false
	}

	for _, word := range strings.Fields(strings.ToLower(trimmed)) {
		if corporateSuffixContains(word) {
			return false
		}
	}

	return true
}

func isValidOrganizationName(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if genericProcessNouns[lower] {
		return false
	}

	substantive := 0
	for _, word := range strings.Fields(lower) {
		if connectorWords[word] || corporateSuffixContains(word) {
			continue
		}
		substantive++
	}

	return substantive >= 1
}

func corporateSuffixContains(word string) bool {
	word = strings.TrimRight(word, ".,")
	for _, suffix := range corporateSuffixes {
		if word == suffix {
			return true
		}
	}
	return false
}

func alphanumericRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	alnum := 0
	for _, r := range text {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			alnum++
		}
	}
	return float64(alnum) / float64(len([]rune(text)))
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// meaningfulWordCount counts words of at least three characters that
// are not closed-class connectors.
func meaningfulWordCount(text string) int {
	count := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:")
		if len(word) >= 3 && !connectorWords[word] {
			count++
		}
	}
	return count
}

func hasIndicator(text string, indicators []*regexp.Regexp) bool {
	for _, pattern := range indicators {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

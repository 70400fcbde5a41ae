package extract

import (
	"regexp"

	"github.com/dfattal/david-gpt-sub005/model"
)

// entityPatterns are the kind-specific pattern families run over the
// full document text. They are kept as data, not code, so they can be
// unit-tested and extended without touching the extractor logic. Each
// pattern's first capture group is the candidate name.
var entityPatterns = map[model.EntityKind][]*regexp.Regexp{
	model.KindTechnology: {
		regexp.MustCompile(`\b([A-Z][A-Za-z0-9]*(?:[\s\-][A-Za-z0-9&/]+){0,4})\s+(?:technology|technique|algorithm|protocol|framework)\b`),
		regexp.MustCompile(`(?i)\b((?:switchable|autostereoscopic|holographic|lenticular|glasses-free|naked-eye)\s[\w\s\-/]{2,40}?(?:display|imaging|rendering|tracking|vision))\b`),
		regexp.MustCompile(`(?i)\b((?:lightfield|light[\s-]field|eye[\s-]tracking|head[\s-]tracking|depth[\s-]sensing|quantum[\s-]dot)(?:\s[\w\-/]+){0,3})\b`),
		regexp.MustCompile(`\b((?:OLED|LCD|LED|QLED|microLED|micro-LED|AMOLED|E-?Ink)(?:\s[\w\-/]+){0,2})\b`),
	},
	model.KindComponent: {
		regexp.MustCompile(`(?i)\b(?:(?:the|a|an|said|each)\s+)?([\w\-]+(?:\s[\w\-]+){0,3}\s(?:layer|cell|substrate|electrode|lenslet|waveguide|diffuser|backlight|barrier|grating))s?\b`),
		regexp.MustCompile(`(?i)\b((?:liquid[\s-]crystal|thin[\s-]film|polarizing|birefringent)\s[\w\s\-]{2,30}?)\b(?:\s(?:is|was|are|were|that|which|and|or|,|\.))`),
		regexp.MustCompile(`(?i)\b(?:(?:the|a|an|said|each)\s+)?([\w\-]+(?:\s[\w\-]+){0,2}\s(?:lens|film|array|panel|emitter))\s(?:array|stack|assembly|arrangement)?\b`),
	},
	model.KindProduct: {
		regexp.MustCompile(`\b([A-Z][\w\-]+(?:\s[A-Z][\w\-]+){0,2}\s(?:Pro|Max|Ultra|Mini|Lite|[0-9]+[A-Za-z]*))\b`),
		regexp.MustCompile(`\bthe\s([A-Z][A-Za-z0-9\-]+(?:\s[A-Z][A-Za-z0-9\-]+){0,2})\s(?:device|tablet|phone|smartphone|monitor|headset|laptop)\b`),
	},
	model.KindOrganization: {
		regexp.MustCompile(`\b([A-Z][\w&\.\-]*(?:\s[A-Z&][\w&\.\-]*){0,3}\s(?:Inc|Corp|Corporation|LLC|Ltd|GmbH|Co|Company|Technologies|Labs|Laboratories)\.?)(?:\s|,|\.|$)`),
		regexp.MustCompile(`\b([A-Z][\w\-]+(?:\s[A-Z][\w\-]+){0,2}\s(?:University|Institute|Foundation))\b`),
		regexp.MustCompile(`(?:assigned\s+to|developed\s+by|manufactured\s+by|licensed\s+(?:to|from))\s+([A-Z][\w&\.\-]*(?:\s[A-Z&][\w&\.\-]*){0,3})`),
	},
	model.KindPerson: {
		regexp.MustCompile(`(?:invented\s+by|authored\s+by|founded\s+by|led\s+by)\s+([A-Z][a-z'\-]+(?:\s[A-Z]\.?)?\s[A-Z][a-z'\-]+)`),
		regexp.MustCompile(`\b(?:Dr|Prof|Mr|Ms|Mrs)\.?\s+([A-Z][a-z'\-]+(?:\s[A-Z]\.?)?\s[A-Z][a-z'\-]+)`),
		regexp.MustCompile(`\b([A-Z][a-z'\-]+(?:\s[A-Z]\.?)?\s[A-Z][a-z'\-]+)\s+(?:et\s+al|and\s+colleagues|and\s+co-workers)`),
	},
}

// relationPattern detects one relation family in free text. Each
// pattern captures the source name in group 1 and the destination name
// in group 2.
type relationPattern struct {
	relation model.Relation
	pattern  *regexp.Regexp
}

var namePart = `([A-Za-z0-9][\w\-/]*(?:\s[\w\-/]+){0,4})`

var relationPatterns = []relationPattern{
	{model.RelationUsesComponent, regexp.MustCompile(`(?i)` + namePart + `\s(?:uses|using|comprising|comprises|includes|including|incorporates|incorporating|employs)\s(?:a|an|the)?\s*` + namePart)},
	{model.RelationEnhances, regexp.MustCompile(`(?i)` + namePart + `\s(?:enhances|improves|augments|boosts|sharpens)\s(?:the)?\s*` + namePart)},
	{model.RelationEvolvedTo, regexp.MustCompile(`(?i)` + namePart + `\s(?:evolved\s(?:in)?to|was\ssucceeded\sby|was\sreplaced\sby|gave\sway\sto)\s` + namePart)},
	{model.RelationAlternativeTo, regexp.MustCompile(`(?i)` + namePart + `\s(?:is\san?\salternative\sto|can\sreplace|substitutes\sfor)\s` + namePart)},
	{model.RelationImplements, regexp.MustCompile(`(?i)` + namePart + `\s(?:implements|adopts|is\sbuilt\son|is\sbased\son|realizes)\s(?:the)?\s*` + namePart)},
	{model.RelationCompetingWith, regexp.MustCompile(`(?i)` + namePart + `\s(?:competes\swith|is\scompeting\swith|rivals)\s` + namePart)},
}

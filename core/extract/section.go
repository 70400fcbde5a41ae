package extract

import (
	"regexp"
	"strings"

	"github.com/dfattal/david-gpt-sub005/model"
)

// sectionPattern locates one structural section of a patent document.
// The regex matches the whole section region; a candidate span falls in
// the section when its offset lies inside the matched range.
type sectionPattern struct {
	section model.Section
	pattern *regexp.Regexp
}

// sectionPatterns is ordered: the first section whose matched range
// contains the span offset wins. Title and abstract come first since
// their regions can be nested inside broader matches.
var sectionPatterns = []sectionPattern{
	{model.SectionTitle, regexp.MustCompile(`(?im)^\s*title\s*[:\-].*$`)},
	{model.SectionAbstract, regexp.MustCompile(`(?is)(?:^|\n)\s*(?:abstract|summary)\s*[:\n].*?(?:\n\s*\n|$)`)},
	{model.SectionClaims, regexp.MustCompile(`(?is)(?:^|\n)\s*(?:what is claimed is|claims?)\s*[:\n].*?(?:\n\s*\n|$)`)},
	{model.SectionBackground, regexp.MustCompile(`(?is)(?:^|\n)\s*(?:background(?:\s+of\s+the\s+invention)?|field(?:\s+of\s+the\s+invention)?)\s*[:\n].*?(?:\n\s*\n|$)`)},
	{model.SectionCitations, regexp.MustCompile(`(?is)(?:^|\n)\s*(?:references?\s+cited|citations?|prior\s+art(?:\s+references?)?)\s*[:\n].*?(?:\n\s*\n|$)`)},
	{model.SectionDescription, regexp.MustCompile(`(?is)(?:^|\n)\s*(?:detailed\s+description|description(?:\s+of\s+the\s+(?:preferred\s+)?embodiments?)?)\s*[:\n].*?(?:\n\s*\n|$)`)},
}

// DetectSection locates which structural section of a document a
// candidate span falls in. Only patents have sections; all other
// document types yield SectionUnknown. Missing sections simply fail to
// match, they never error.
func DetectSection(documentText string, spanText string, docType model.DocumentType) model.Section {
	if docType != model.DocTypePatent {
		return model.SectionUnknown
	}

	offset := strings.Index(documentText, spanText)
	if offset < 0 {
		// try a case-insensitive locate before giving up
		offset = strings.Index(strings.ToLower(documentText), strings.ToLower(spanText))
		if offset < 0 {
			return model.SectionUnknown
		}
	}

	for _, sp := range sectionPatterns {
		for _, loc := range sp.pattern.FindAllStringIndex(documentText, -1) {
			if offset >= loc[0] && offset < loc[1] {
				return sp.section
			}
		}
	}

	return model.SectionUnknown
}

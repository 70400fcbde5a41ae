package model

// Section identifies the structural part of a source document a
// candidate span was found in. Only patents carry sections; other
// document types always yield SectionUnknown.
type Section string

const (
	SectionTitle       Section = "title"
	SectionAbstract    Section = "abstract"
	SectionClaims      Section = "claims"
	SectionDescription Section = "description"
	SectionBackground  Section = "background"
	SectionCitations   Section = "citations"
	SectionUnknown     Section = "unknown"
)

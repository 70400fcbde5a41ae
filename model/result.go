package model

import "github.com/google/uuid"

// ExtractionResult holds the validated candidates produced from a
// single document pass, before consolidation against the graph.
type ExtractionResult struct {
	DocumentID    string                   `json:"document_id"`
	Entities      []*CandidateEntity       `json:"entities"`
	Relationships []*CandidateRelationship `json:"relationships"`
}

// ConsolidationResult is the outcome of resolving one candidate
// against the existing graph.
type ConsolidationResult struct {
	EntityID    uuid.UUID `json:"entity_id"`
	WasReused   bool      `json:"was_reused"`
	MatchedName string    `json:"matched_name,omitempty"`
}

// BatchConsolidationResult summarizes an administrative sweep over the
// whole graph.
type BatchConsolidationResult struct {
	Merged            int `json:"merged"`
	AliasesCreated    int `json:"aliases_created"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// SaveResult summarizes persisting one document's extraction output
type SaveResult struct {
	EntitiesResolved   int `json:"entities_resolved"`
	EntitiesCreated    int `json:"entities_created"`
	RelationshipsSaved int `json:"relationships_saved"`
	Skipped            int `json:"skipped"`
}

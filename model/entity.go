package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind classifies a canonical entity in the knowledge graph
type EntityKind string

const (
	KindPerson       EntityKind = "person"
	KindOrganization EntityKind = "organization"
	KindProduct      EntityKind = "product"
	KindTechnology   EntityKind = "technology"
	KindComponent    EntityKind = "component"
	KindDocument     EntityKind = "document"
)

// EntityKinds lists all kinds in a stable order
var EntityKinds = []EntityKind{
	KindPerson,
	KindOrganization,
	KindProduct,
	KindTechnology,
	KindComponent,
	KindDocument,
}

// Entity represents a deduplicated canonical entity.
// At most one row exists per (name, kind) pair; the consolidation
// cascade enforces this, not the caller.
type Entity struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Kind           EntityKind `json:"kind"`
	Description    string     `json:"description,omitempty"`
	AuthorityScore float64    `json:"authority_score"`
	MentionCount   int        `json:"mention_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Alias represents an alternative surface form of an entity.
// An alias string is unique within a kind's namespace; a duplicate
// insert is treated as a no-op merge signal by the store.
type Alias struct {
	ID         uuid.UUID  `json:"id"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Alias      string     `json:"alias"`
	Kind       EntityKind `json:"kind"`
	IsPrimary  bool       `json:"is_primary"`
	Confidence float64    `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CandidateEntity is a transient extraction product. It is consumed by
// deduplication and consolidation and never persisted as-is.
type CandidateEntity struct {
	Name           string     `json:"name"`
	Kind           EntityKind `json:"kind"`
	Description    string     `json:"description,omitempty"`
	AuthorityScore float64    `json:"authority_score"`
	MentionCount   int        `json:"mention_count"`
	SectionHint    Section    `json:"section_hint"`
	IsStructured   bool       `json:"is_structured"`
}

// ConsolidationRule is a curated canonicalization entry mapping known
// variant spellings onto a primary name. Read-only at run time.
type ConsolidationRule struct {
	PrimaryName string     `json:"primary_name"`
	Kind        EntityKind `json:"kind"`
	Variants    []string   `json:"variants"`
	Description string     `json:"description,omitempty"`
}

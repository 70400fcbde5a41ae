package model

import (
	"time"

	"github.com/google/uuid"
)

// NodeType distinguishes edge endpoints between entity and document rows
type NodeType string

const (
	NodeTypeEntity   NodeType = "entity"
	NodeTypeDocument NodeType = "document"
)

// Relation represents the type of relationship between two nodes
type Relation string

const (
	RelationInventorOf    Relation = "inventor_of"
	RelationAssigneeOf    Relation = "assignee_of"
	RelationAuthorOf      Relation = "author_of"
	RelationUsesComponent Relation = "uses_component"
	RelationEnhances      Relation = "enhances"
	RelationEvolvedTo     Relation = "evolved_to"
	RelationAlternativeTo Relation = "alternative_to"
	RelationImplements    Relation = "implements"
	RelationCompetingWith Relation = "competing_with"
)

// Edge represents a typed relationship between two graph nodes.
// The (src, relation, dst) triple is idempotent: re-extracting the same
// fact updates weight and evidence instead of duplicating the row.
type Edge struct {
	ID            uuid.UUID `json:"id"`
	SrcID         uuid.UUID `json:"src_id"`
	SrcType       NodeType  `json:"src_type"`
	Relation      Relation  `json:"relation"`
	DstID         uuid.UUID `json:"dst_id"`
	DstType       NodeType  `json:"dst_type"`
	Weight        float64   `json:"weight"`
	EvidenceText  string    `json:"evidence_text,omitempty"`
	EvidenceDocID uuid.UUID `json:"evidence_doc_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CandidateRelationship is a transient extraction product holding a
// relation between two entity names before identity resolution.
type CandidateRelationship struct {
	SrcName      string     `json:"src_name"`
	SrcKind      EntityKind `json:"src_kind"`
	Relation     Relation   `json:"relation"`
	DstName      string     `json:"dst_name"`
	DstKind      EntityKind `json:"dst_kind"`
	Weight       float64    `json:"weight"`
	EvidenceText string     `json:"evidence_text,omitempty"`
}

// KindPair is a (source kind, destination kind) endpoint combination
type KindPair struct {
	Src EntityKind
	Dst EntityKind
}

// allowedRelationKinds is the endpoint matrix every extracted relation
// is checked against. Relations with endpoint kinds outside this matrix
// are discarded, never coerced.
var allowedRelationKinds = map[Relation][]KindPair{
	RelationInventorOf: {
		{KindPerson, KindDocument},
	},
	RelationAssigneeOf: {
		{KindOrganization, KindDocument},
	},
	RelationAuthorOf: {
		{KindPerson, KindDocument},
	},
	RelationUsesComponent: {
		{KindTechnology, KindComponent},
		{KindProduct, KindComponent},
		{KindComponent, KindComponent},
	},
	RelationEnhances: {
		{KindTechnology, KindTechnology},
		{KindComponent, KindTechnology},
		{KindTechnology, KindProduct},
	},
	RelationEvolvedTo: {
		{KindTechnology, KindTechnology},
		{KindProduct, KindProduct},
	},
	RelationAlternativeTo: {
		{KindTechnology, KindTechnology},
		{KindComponent, KindComponent},
		{KindProduct, KindProduct},
	},
	RelationImplements: {
		{KindProduct, KindTechnology},
		{KindOrganization, KindTechnology},
		{KindComponent, KindTechnology},
	},
	RelationCompetingWith: {
		{KindOrganization, KindOrganization},
		{KindProduct, KindProduct},
		{KindTechnology, KindTechnology},
	},
}

// ValidRelationEndpoints reports whether srcKind and dstKind are an
// allowed endpoint combination for the given relation.
func ValidRelationEndpoints(relation Relation, srcKind, dstKind EntityKind) bool {
	pairs, ok := allowedRelationKinds[relation]
	if !ok {
		return false
	}
	for _, p := range pairs {
		if p.Src == srcKind && p.Dst == dstKind {
			return true
		}
	}
	return false
}

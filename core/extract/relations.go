package extract

import (
	"strings"

	"github.com/dfattal/david-gpt-sub005/model"
)

const (
	metadataRelationConfidence = 0.95
	contentRelationConfidence  = 0.7
)

// componentNameHints mark endpoint names that almost certainly denote
// physical components regardless of relation semantics.
var componentNameHints = []string{
	"cell", "layer", "substrate", "electrode", "lens", "film", "waveguide",
	"diffuser", "backlight", "barrier", "grating", "emitter", "array",
}

var organizationNameHints = []string{
	"inc", "corp", "llc", "ltd", "gmbh", "company", "technologies",
	"labs", "university", "institute",
}

// relationEndpointKinds gives the default endpoint kinds implied by
// each content relation's semantics, before name heuristics refine them.
var relationEndpointKinds = map[model.Relation]model.KindPair{
	model.RelationUsesComponent: {Src: model.KindTechnology, Dst: model.KindComponent},
	model.RelationEnhances:      {Src: model.KindTechnology, Dst: model.KindTechnology},
	model.RelationEvolvedTo:     {Src: model.KindTechnology, Dst: model.KindTechnology},
	model.RelationAlternativeTo: {Src: model.KindTechnology, Dst: model.KindTechnology},
	model.RelationImplements:    {Src: model.KindProduct, Dst: model.KindTechnology},
	model.RelationCompetingWith: {Src: model.KindOrganization, Dst: model.KindOrganization},
}

// ExtractRelationships detects relations in two tiers: deterministic
// metadata relations at confidence 0.95 and textual pattern matches at
// confidence 0.7. Every relation is checked against the allowed-kind
// matrix; invalid endpoint combinations are discarded, not coerced.
func ExtractRelationships(input *model.DocumentInput, text string) []*model.CandidateRelationship {
	var relationships []*model.CandidateRelationship

	relationships = append(relationships, extractMetadataRelations(input)...)
	relationships = append(relationships, extractContentRelations(text)...)

	return relationships
}

// extractMetadataRelations builds relations directly from structured
// fields: inventors and authors point at the document, assignees own it.
func extractMetadataRelations(input *model.DocumentInput) []*model.CandidateRelationship {
	var relationships []*model.CandidateRelationship

	addDocRelation := func(name string, kind model.EntityKind, relation model.Relation) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if !model.ValidRelationEndpoints(relation, kind, model.KindDocument) {
			return
		}
		relationships = append(relationships, &model.CandidateRelationship{
			SrcName:  name,
			SrcKind:  kind,
			Relation: relation,
			DstName:  input.DocumentID,
			DstKind:  model.KindDocument,
			Weight:   metadataRelationConfidence,
		})
	}

	switch input.Metadata.DocType {
	case model.DocTypePatent:
		for _, inventor := range input.Metadata.Inventors {
			addDocRelation(inventor, model.KindPerson, model.RelationInventorOf)
		}
		for _, assignee := range input.Metadata.Assignees {
			addDocRelation(assignee, model.KindOrganization, model.RelationAssigneeOf)
		}
	case model.DocTypePaper:
		for _, author := range input.Metadata.Authors {
			addDocRelation(author, model.KindPerson, model.RelationAuthorOf)
		}
	}

	return relationships
}

// extractContentRelations matches the relation pattern families over
// free text, inferring endpoint kinds from relation semantics refined
// by endpoint-name heuristics.
func extractContentRelations(text string) []*model.CandidateRelationship {
	var relationships []*model.CandidateRelationship
	seen := map[string]bool{}

	for _, rp := range relationPatterns {
		for _, match := range rp.pattern.FindAllStringSubmatch(text, -1) {
			srcName := cleanRelationEndpoint(match[1])
			dstName := cleanRelationEndpoint(match[2])
			if srcName == "" || dstName == "" || strings.EqualFold(srcName, dstName) {
				continue
			}

			srcKind, dstKind := InferEndpointKinds(rp.relation, srcName, dstName)
			if !model.ValidRelationEndpoints(rp.relation, srcKind, dstKind) {
				continue
			}
			if !IsValidEntity(srcName, srcKind) || !IsValidEntity(dstName, dstKind) {
				continue
			}

			key := strings.ToLower(srcName) + "|" + string(rp.relation) + "|" + strings.ToLower(dstName)
			if seen[key] {
				continue
			}
			seen[key] = true

			relationships = append(relationships, &model.CandidateRelationship{
				SrcName:      srcName,
				SrcKind:      srcKind,
				Relation:     rp.relation,
				DstName:      dstName,
				DstKind:      dstKind,
				Weight:       contentRelationConfidence,
				EvidenceText: strings.TrimSpace(match[0]),
			})
		}
	}

	return relationships
}

// InferEndpointKinds derives the endpoint kinds for a content relation
// from the relation's default semantics, refined by what the endpoint
// names look like.
func InferEndpointKinds(relation model.Relation, srcName string, dstName string) (model.EntityKind, model.EntityKind) {
	pair := relationEndpointKinds[relation]
	srcKind := refineKindByName(pair.Src, srcName)
	dstKind := refineKindByName(pair.Dst, dstName)
	return srcKind, dstKind
}

func refineKindByName(kind model.EntityKind, name string) model.EntityKind {
	lower := strings.ToLower(name)

	for _, hint := range componentNameHints {
		if strings.Contains(lower, hint) {
			return model.KindComponent
		}
	}
	for _, hint := range organizationNameHints {
		for _, word := range strings.Fields(lower) {
			if strings.TrimRight(word, ".,") == hint {
				return model.KindOrganization
			}
		}
	}

	return kind
}

// cleanRelationEndpoint strips leading articles and trailing
// punctuation from a captured endpoint name.
func cleanRelationEndpoint(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, ".,;:")
	for _, article := range []string{"the ", "a ", "an ", "The ", "A ", "An "} {
		name = strings.TrimPrefix(name, article)
	}
	return strings.TrimSpace(name)
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfattal/david-gpt-sub005/model"
)

func TestExtractMetadataRelations(t *testing.T) {
	t.Run("Patent inventors and assignees point at the document", func(t *testing.T) {
		input := &model.DocumentInput{
			DocumentID: "US9876543B2",
			Metadata: model.DocumentMetadata{
				DocType:   model.DocTypePatent,
				Title:     "Directional backlight",
				Inventors: []string{"David Fattal"},
				Assignees: []string{"Leia Inc"},
			},
		}

		relationships := ExtractRelationships(input, "")
		require.Len(t, relationships, 2)

		assert.Equal(t, model.RelationInventorOf, relationships[0].Relation)
		assert.Equal(t, "David Fattal", relationships[0].SrcName)
		assert.Equal(t, model.KindPerson, relationships[0].SrcKind)
		assert.Equal(t, "US9876543B2", relationships[0].DstName)
		assert.Equal(t, model.KindDocument, relationships[0].DstKind)
		assert.Equal(t, 0.95, relationships[0].Weight)

		assert.Equal(t, model.RelationAssigneeOf, relationships[1].Relation)
		assert.Equal(t, model.KindOrganization, relationships[1].SrcKind)
	})

	t.Run("Paper authors yield author_of relations", func(t *testing.T) {
		input := &model.DocumentInput{
			DocumentID: "doi:10.1000/demo",
			Metadata: model.DocumentMetadata{
				DocType: model.DocTypePaper,
				Authors: []string{"Jane Doe", "John Smith"},
			},
		}

		relationships := ExtractRelationships(input, "")
		require.Len(t, relationships, 2)
		assert.Equal(t, model.RelationAuthorOf, relationships[0].Relation)
		assert.Equal(t, 0.95, relationships[0].Weight)
	})

	t.Run("Press releases have no metadata relations", func(t *testing.T) {
		input := &model.DocumentInput{
			DocumentID: "press-1",
			Metadata:   model.DocumentMetadata{DocType: model.DocTypePress},
		}

		assert.Empty(t, ExtractRelationships(input, ""))
	})
}

func TestExtractContentRelations(t *testing.T) {
	input := &model.DocumentInput{
		DocumentID: "note-1",
		Metadata:   model.DocumentMetadata{DocType: model.DocTypeNote},
	}

	t.Run("Implements relations between product and technology are extracted", func(t *testing.T) {
		text := "The Lume Pad implements the lightfield display technology."
		relationships := ExtractRelationships(input, text)

		require.Len(t, relationships, 1)
		rel := relationships[0]
		assert.Equal(t, model.RelationImplements, rel.Relation)
		assert.Equal(t, "Lume Pad", rel.SrcName)
		assert.Equal(t, model.KindProduct, rel.SrcKind)
		assert.Equal(t, model.KindTechnology, rel.DstKind)
		assert.Equal(t, 0.7, rel.Weight)
		assert.NotEmpty(t, rel.EvidenceText)
	})

	t.Run("Uses-component relations carry component endpoints", func(t *testing.T) {
		text := "The autostereoscopic display uses a switchable parallax barrier."
		relationships := ExtractRelationships(input, text)

		require.Len(t, relationships, 1)
		rel := relationships[0]
		assert.Equal(t, model.RelationUsesComponent, rel.Relation)
		assert.Equal(t, model.KindComponent, rel.DstKind)
	})

	t.Run("Competing organizations are recognized", func(t *testing.T) {
		text := "Leia Inc competes with Looking Glass Factory."
		relationships := ExtractRelationships(input, text)

		require.Len(t, relationships, 1)
		rel := relationships[0]
		assert.Equal(t, model.RelationCompetingWith, rel.Relation)
		assert.Equal(t, model.KindOrganization, rel.SrcKind)
		assert.Equal(t, model.KindOrganization, rel.DstKind)
	})

	t.Run("Relations with disallowed endpoint kinds are discarded", func(t *testing.T) {
		text := "Acme Corp implements quantum dot film."
		assert.Empty(t, ExtractRelationships(input, text))
	})

	t.Run("Repeated statements collapse to one relation", func(t *testing.T) {
		text := "The Lume Pad implements the lightfield display technology. " +
			"The Lume Pad implements the lightfield display technology."
		relationships := ExtractRelationships(input, text)
		assert.Len(t, relationships, 1)
	})

	t.Run("Self-referential matches are dropped", func(t *testing.T) {
		text := "lightfield rendering enhances lightfield rendering."
		assert.Empty(t, ExtractRelationships(input, text))
	})
}

func TestInferEndpointKinds(t *testing.T) {
	t.Run("Relation defaults apply when names carry no hints", func(t *testing.T) {
		src, dst := InferEndpointKinds(model.RelationEnhances, "neural rendering", "depth mapping")
		assert.Equal(t, model.KindTechnology, src)
		assert.Equal(t, model.KindTechnology, dst)
	})

	t.Run("Component name hints refine the kind", func(t *testing.T) {
		src, dst := InferEndpointKinds(model.RelationUsesComponent, "holographic imaging", "liquid crystal cell")
		assert.Equal(t, model.KindTechnology, src)
		assert.Equal(t, model.KindComponent, dst)
	})

	t.Run("Organization name hints refine the kind", func(t *testing.T) {
		src, _ := InferEndpointKinds(model.RelationCompetingWith, "Acme Technologies", "whatever")
		assert.Equal(t, model.KindOrganization, src)
	})
}

package kgraph

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
)

var dbPort string

func TestMain(m *testing.M) {
	teardown, port, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}
	dbPort = port

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("error tearing down postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func newTestKGraph(t *testing.T) *KGraph {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	config, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	kg, err := NewKGraph(config)
	require.NoError(t, err, "failed to create graph instance")
	t.Cleanup(func() { _ = kg.Close() })

	return kg
}

func patentInput() *model.DocumentInput {
	return &model.DocumentInput{
		DocumentID: "US7654321B1",
		Metadata: model.DocumentMetadata{
			DocType:      model.DocTypePatent,
			Title:        "Directional backlight apparatus",
			Inventors:    []string{"Pierre-Emmanuel Evreux"},
			Assignees:    []string{"Alioscopy"},
			PatentNumber: "US7654321B1",
		},
		Chunks: []string{
			"Title: Directional backlight apparatus",
			"Abstract:\nA switchable 2D/3D display based on lightfield imaging, for autostereoscopic viewing.",
			"Claims:\n1. The diffractive waveguide layer refracts light toward distinct views.",
		},
	}
}

func TestProcessDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Patent ingestion persists the document, entities and relationships", func(t *testing.T) {
		kg := newTestKGraph(t)

		first, err := kg.ProcessDocument(ctx, patentInput())
		require.NoError(t, err)
		assert.Equal(t, 0, first.EntitiesResolved, "Expected a fresh graph to only create entities")
		assert.GreaterOrEqual(t, first.EntitiesCreated, 4)
		assert.Equal(t, 2, first.RelationshipsSaved, "Expected the inventor and assignee relations")
		assert.Equal(t, 0, first.Skipped)

		doc, err := kg.Documents.SelectDocumentBySource("US7654321B1")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "Directional backlight apparatus", doc.Title)

		inventor, err := kg.Entities.SelectEntityByName("Pierre-Emmanuel Evreux", model.KindPerson)
		require.NoError(t, err)
		require.NotNil(t, inventor)
		assert.Equal(t, 0.9, inventor.AuthorityScore)

		tech, err := kg.Entities.SelectEntityByName("switchable 2D/3D display", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, tech)

		edges, err := kg.Edges.SelectEdgesByEvidence(doc.ID)
		require.NoError(t, err)
		require.Len(t, edges, 2)
		for _, edge := range edges {
			assert.Equal(t, model.NodeTypeDocument, edge.DstType)
			assert.Equal(t, doc.ID, edge.DstID)
		}

		second, err := kg.ProcessDocument(ctx, patentInput())
		require.NoError(t, err)
		assert.Equal(t, 0, second.EntitiesCreated, "Expected reprocessing to reuse every entity")
		assert.Equal(t, first.EntitiesCreated, second.EntitiesResolved)

		reprocessed, err := kg.Documents.SelectDocumentBySource("US7654321B1")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, reprocessed.ID, "Expected the document row to be stable across ingestions")

		assignee, err := kg.Entities.SelectEntityByName("Alioscopy", model.KindOrganization)
		require.NoError(t, err)
		require.NotNil(t, assignee)
		assert.Equal(t, 2, assignee.MentionCount)

		edges, err = kg.Edges.SelectEdgesByEvidence(doc.ID)
		require.NoError(t, err)
		assert.Len(t, edges, 2, "Expected edge triples to stay unique across reprocessing")
	})
}

func TestProcessDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("Parallel ingestion converges shared entities onto single rows", func(t *testing.T) {
		kg := newTestKGraph(t)

		inputs := []*model.DocumentInput{
			{
				DocumentID: "US2222222B2",
				Metadata: model.DocumentMetadata{
					DocType:   model.DocTypePatent,
					Title:     "Display housing improvements",
					Inventors: []string{"Tibor Balogh"},
					Assignees: []string{"Holografika Kft"},
				},
				Chunks: []string{"Title: Display housing improvements"},
			},
			{
				DocumentID: "US3333333B2",
				Metadata: model.DocumentMetadata{
					DocType:   model.DocTypePatent,
					Title:     "Display hinge improvements",
					Inventors: []string{"Tibor Balogh"},
					Assignees: []string{"Holografika Kft"},
				},
				Chunks: []string{"Title: Display hinge improvements"},
			},
		}

		results, err := kg.ProcessDocuments(ctx, inputs)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, result := range results {
			require.NotNil(t, result)
			assert.Equal(t, 2, result.RelationshipsSaved)
		}

		inventor, err := kg.Entities.SelectEntityByName("Tibor Balogh", model.KindPerson)
		require.NoError(t, err)
		require.NotNil(t, inventor)
		assert.Equal(t, 2, inventor.MentionCount, "Expected both documents to count one mention each")

		assignee, err := kg.Entities.SelectEntityByName("Holografika Kft", model.KindOrganization)
		require.NoError(t, err)
		require.NotNil(t, assignee)
		assert.Equal(t, 2, assignee.MentionCount)
	})
}

func TestSaveExtractionResult(t *testing.T) {
	ctx := context.Background()

	t.Run("Nil arguments are rejected", func(t *testing.T) {
		kg := newTestKGraph(t)
		_, err := kg.SaveExtractionResult(ctx, nil, nil)
		assert.Error(t, err)
	})

	t.Run("Relationships with unresolved endpoints are skipped", func(t *testing.T) {
		kg := newTestKGraph(t)

		input := &model.DocumentInput{
			DocumentID: "press-001",
			Metadata:   model.DocumentMetadata{DocType: model.DocTypePress, Title: "Launch note"},
		}
		result := &model.ExtractionResult{
			DocumentID: "press-001",
			Entities: []*model.CandidateEntity{
				{Name: "depth sensing module", Kind: model.KindTechnology, AuthorityScore: 0.5, MentionCount: 1},
			},
			Relationships: []*model.CandidateRelationship{
				{
					SrcName: "depth sensing module", SrcKind: model.KindTechnology,
					Relation: model.RelationUsesComponent,
					DstName:  "unresolved widget", DstKind: model.KindComponent,
					Weight: 0.7,
				},
			},
		}

		save, err := kg.SaveExtractionResult(ctx, input, result)
		require.NoError(t, err)
		assert.Equal(t, 1, save.EntitiesCreated)
		assert.Equal(t, 0, save.RelationshipsSaved)
		assert.Equal(t, 1, save.Skipped, "Expected the dangling relationship to be skipped, not guessed")
	})
}

func TestConsolidateEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("Batch sweep folds stored rule variants into their primary", func(t *testing.T) {
		kg := newTestKGraph(t)

		_, err := kg.Entities.UpsertEntity(&model.Entity{Name: "lcd", Kind: model.KindTechnology, AuthorityScore: 0.5})
		require.NoError(t, err)
		_, err = kg.Entities.UpsertEntity(&model.Entity{Name: "liquid crystal display", Kind: model.KindTechnology, AuthorityScore: 0.6})
		require.NoError(t, err)

		result, err := kg.ConsolidateEntities(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Merged, 2)
		assert.GreaterOrEqual(t, result.AliasesCreated, 2)

		primary, err := kg.Entities.SelectEntityByName("LCD", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, primary)
		assert.Equal(t, 2, primary.MentionCount)

		gone, err := kg.Entities.SelectEntityByName("liquid crystal display", model.KindTechnology)
		require.NoError(t, err)
		assert.Nil(t, gone)

		alias, err := kg.Aliases.SelectAliasByName("liquid crystal display", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, alias)
		assert.Equal(t, primary.ID, alias.EntityID)
	})
}

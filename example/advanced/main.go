package main

import (
	"context"
	"fmt"
	"log"

	kgraph "github.com/dfattal/david-gpt-sub005"
	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
)

func main() {
	// Start a disposable PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		User:     "postgres",
		Password: "postgres",
		Name:     "kgraph",
		Schema:   "public",
	}

	kg, err := kgraph.NewKGraph(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create knowledge graph: %v", err)
	}
	defer kg.Close()

	ctx := context.Background()

	// A patent, a paper and a press release mentioning overlapping
	// entities under different spellings.
	inputs := []*model.DocumentInput{
		{
			DocumentID: "US9876543B2",
			Metadata: model.DocumentMetadata{
				DocType:      model.DocTypePatent,
				Title:        "Directional backlight apparatus",
				Inventors:    []string{"David Fattal"},
				Assignees:    []string{"Leia Inc"},
				PatentNumber: "US9876543B2",
			},
			Chunks: []string{
				"Title: Directional backlight apparatus",
				"Abstract:\nA switchable 2D/3D display based on lightfield imaging, for autostereoscopic viewing.",
			},
		},
		{
			DocumentID: "doi:10.1038/nature11972",
			Metadata: model.DocumentMetadata{
				DocType: model.DocTypePaper,
				Title:   "A multi-directional backlight for a wide-angle display",
				Authors: []string{"David Fattal", "Zhen Peng"},
				DOI:     "10.1038/nature11972",
			},
			Chunks: []string{
				"Abstract:\nWe demonstrate glasses-free 3D display operation using a diffraction grating backlight.",
			},
		},
		{
			DocumentID: "press-lumepad",
			Metadata: model.DocumentMetadata{
				DocType: model.DocTypePress,
				Title:   "Lume Pad launch announcement",
			},
			Chunks: []string{
				"The Lume Pad implements the lightfield display technology. " +
					"The autostereoscopic display uses a switchable parallax barrier.",
			},
		},
	}

	fmt.Println("=== Ingesting documents in parallel ===")
	results, err := kg.ProcessDocuments(ctx, inputs)
	if err != nil {
		log.Fatalf("Failed to process documents: %v", err)
	}
	for i, save := range results {
		if save == nil {
			fmt.Printf("Document %s failed\n", inputs[i].DocumentID)
			continue
		}
		fmt.Printf("%s: %d created, %d reused, %d relationships\n",
			inputs[i].DocumentID, save.EntitiesCreated, save.EntitiesResolved, save.RelationshipsSaved)
	}

	// Run the administrative batch sweep: curated rules, then fuzzy
	// clustering of near-duplicate names.
	fmt.Println("\n=== Batch consolidation ===")
	batch, err := kg.ConsolidateEntities(ctx)
	if err != nil {
		log.Fatalf("Failed to consolidate entities: %v", err)
	}
	fmt.Printf("Merged %d, removed %d duplicates, created %d aliases\n",
		batch.Merged, batch.DuplicatesRemoved, batch.AliasesCreated)

	// Show the consolidated graph, most mentioned entities first
	fmt.Println("\n=== Consolidated entities ===")
	for _, kind := range model.EntityKinds {
		entities, err := kg.Entities.SelectEntitiesByKind(kind, 5, 0)
		if err != nil {
			log.Fatalf("Failed to list entities: %v", err)
		}
		for _, entity := range entities {
			fmt.Printf("  [%s] %s (authority %.2f, mentions %d)\n",
				entity.Kind, entity.Name, entity.AuthorityScore, entity.MentionCount)

			aliases, err := kg.Aliases.SelectAliasesByEntity(entity.ID)
			if err != nil {
				log.Fatalf("Failed to list aliases: %v", err)
			}
			for _, alias := range aliases {
				fmt.Printf("      alias: %s (confidence %.2f)\n", alias.Alias, alias.Confidence)
			}
		}
	}

	fmt.Println("\nAdvanced example completed successfully!")
}

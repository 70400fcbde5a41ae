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

	// Ingest one patent: structured metadata plus full-text chunks
	input := &model.DocumentInput{
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
			"Claims:\n1. The diffractive waveguide layer refracts light toward distinct views.",
		},
	}

	fmt.Println("Ingesting document...")
	save, err := kg.ProcessDocument(context.Background(), input)
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}
	fmt.Printf("Created %d entities, reused %d, saved %d relationships\n",
		save.EntitiesCreated, save.EntitiesResolved, save.RelationshipsSaved)

	// List what landed in the graph
	for _, kind := range model.EntityKinds {
		entities, err := kg.Entities.SelectEntitiesByKind(kind, 10, 0)
		if err != nil {
			log.Fatalf("Failed to list entities: %v", err)
		}
		for _, entity := range entities {
			fmt.Printf("  [%s] %s (authority %.2f, mentions %d)\n",
				entity.Kind, entity.Name, entity.AuthorityScore, entity.MentionCount)
		}
	}

	fmt.Println("\nBasic example completed successfully!")
}

package kgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dfattal/david-gpt-sub005/core/consolidate"
	"github.com/dfattal/david-gpt-sub005/core/extract"
	"github.com/dfattal/david-gpt-sub005/database"
	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
	loadSql "github.com/dfattal/david-gpt-sub005/sql"
)

// ingestConcurrency caps how many documents are processed in parallel
const ingestConcurrency = 4

// KGraph provides a unified interface to extraction, consolidation and
// the database handlers.
type KGraph struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Edges     *database.EdgesDBHandler
	Entities  *database.EntitiesDBHandler
	Aliases   *database.AliasesDBHandler
	Extractor *extract.Extractor
	Engine    *consolidate.Engine
	// Logging
	log *slog.Logger
}

// NewKGraph creates a new KGraph instance with all handlers initialized
func NewKGraph(config *helper.DatabaseConfiguration) (*KGraph, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("kgraph", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in dependency order (entities before aliases).
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	aliases, err := database.NewAliasesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create aliases handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	engine, err := consolidate.NewEngine(entities, aliases, edges, consolidate.DefaultRuleIndex(), logger)
	if err != nil {
		return nil, helper.NewError("create consolidation engine", err)
	}

	return &KGraph{
		DB:        db,
		Documents: documents,
		Edges:     edges,
		Entities:  entities,
		Aliases:   aliases,
		Extractor: extract.NewExtractor(logger),
		Engine:    engine,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (k *KGraph) Close() error {
	if k.DB != nil && k.DB.Instance != nil {
		return k.DB.Instance.Close()
	}
	return nil
}

// ExtractFromDocument runs extraction only, without touching the store
func (k *KGraph) ExtractFromDocument(input *model.DocumentInput) (*model.ExtractionResult, error) {
	return k.Extractor.ExtractFromDocument(input)
}

// ConsolidateEntityOnIngestion resolves one candidate against the
// graph through the consolidation cascade.
func (k *KGraph) ConsolidateEntityOnIngestion(ctx context.Context, candidate *model.CandidateEntity) (*model.ConsolidationResult, error) {
	return k.Engine.Resolve(ctx, candidate)
}

// ConsolidateEntities runs the administrative batch sweeps over the
// whole graph: curated rules first, then fuzzy clustering.
func (k *KGraph) ConsolidateEntities(ctx context.Context) (*model.BatchConsolidationResult, error) {
	return k.Engine.ConsolidateEntities(ctx)
}

// SaveExtractionResult persists one document's extraction output: the
// document row itself, every candidate entity resolved through the
// cascade, and the relationships between resolved endpoints. A failing
// candidate is dropped with a warning; a relationship whose endpoint
// did not resolve is skipped, not guessed.
func (k *KGraph) SaveExtractionResult(ctx context.Context, input *model.DocumentInput, result *model.ExtractionResult) (*model.SaveResult, error) {
	if input == nil || result == nil {
		return nil, helper.NewError("save extraction result", fmt.Errorf("input and result must be non-nil"))
	}

	doc := &model.Document{
		Source:  input.DocumentID,
		Title:   input.Metadata.Title,
		DocType: input.Metadata.DocType,
		Metadata: model.Metadata{
			"doi":           input.Metadata.DOI,
			"patent_number": input.Metadata.PatentNumber,
		},
	}
	err := k.Documents.UpsertDocument(doc)
	if err != nil {
		return nil, helper.NewError("upsert document", err)
	}

	save := &model.SaveResult{}
	resolved := map[string]*model.ConsolidationResult{}

	for _, candidate := range result.Entities {
		if err := ctx.Err(); err != nil {
			return save, err
		}

		resolution, err := k.Engine.Resolve(ctx, candidate)
		if err != nil {
			k.log.Warn("Dropping candidate that failed to resolve",
				slog.String("name", candidate.Name),
				slog.String("kind", string(candidate.Kind)),
				slog.String("error", err.Error()))
			save.Skipped++
			continue
		}

		resolved[endpointKey(candidate.Name, candidate.Kind)] = resolution
		if resolution.WasReused {
			save.EntitiesResolved++
		} else {
			save.EntitiesCreated++
		}
	}

	for _, rel := range result.Relationships {
		edge, ok := k.buildEdge(rel, doc, resolved)
		if !ok {
			k.log.Warn("Skipping relationship with unresolved endpoint",
				slog.String("src", rel.SrcName),
				slog.String("relation", string(rel.Relation)),
				slog.String("dst", rel.DstName))
			save.Skipped++
			continue
		}

		err = k.Edges.UpsertEdge(edge)
		if err != nil {
			k.log.Warn("Skipping relationship that failed to persist",
				slog.String("src", rel.SrcName),
				slog.String("relation", string(rel.Relation)),
				slog.String("error", err.Error()))
			save.Skipped++
			continue
		}
		save.RelationshipsSaved++
	}

	k.log.Info("Saved extraction result",
		slog.String("document_id", input.DocumentID),
		slog.Int("resolved", save.EntitiesResolved),
		slog.Int("created", save.EntitiesCreated),
		slog.Int("relationships", save.RelationshipsSaved),
		slog.Int("skipped", save.Skipped))

	return save, nil
}

// ProcessDocument extracts and persists a single document
func (k *KGraph) ProcessDocument(ctx context.Context, input *model.DocumentInput) (*model.SaveResult, error) {
	result, err := k.Extractor.ExtractFromDocument(input)
	if err != nil {
		return nil, helper.NewError("extract document", err)
	}
	return k.SaveExtractionResult(ctx, input, result)
}

// ProcessDocuments ingests a batch of documents in parallel. Failures
// are isolated per document: a document that fails to process leaves a
// nil slot in the returned slice and a warning in the log, while the
// rest of the batch continues. Only context cancellation aborts the
// whole batch.
func (k *KGraph) ProcessDocuments(ctx context.Context, inputs []*model.DocumentInput) ([]*model.SaveResult, error) {
	results := make([]*model.SaveResult, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(ingestConcurrency)

	for i, input := range inputs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			save, err := k.ProcessDocument(ctx, input)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				k.log.Warn("Document failed during batch ingestion",
					slog.String("document_id", input.DocumentID),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = save
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return results, helper.NewError("process documents", err)
	}

	return results, nil
}

// buildEdge maps a candidate relationship onto stored node ids. Entity
// endpoints must have resolved during this save or already exist in
// the graph; document endpoints map onto the document row.
func (k *KGraph) buildEdge(rel *model.CandidateRelationship, doc *model.Document, resolved map[string]*model.ConsolidationResult) (*model.Edge, bool) {
	edge := &model.Edge{
		Relation:      rel.Relation,
		SrcType:       model.NodeTypeEntity,
		DstType:       model.NodeTypeEntity,
		Weight:        rel.Weight,
		EvidenceText:  rel.EvidenceText,
		EvidenceDocID: doc.ID,
	}

	src, ok := k.lookupEndpoint(rel.SrcName, rel.SrcKind, doc, resolved)
	if !ok {
		return nil, false
	}
	edge.SrcID = src
	if rel.SrcKind == model.KindDocument {
		edge.SrcType = model.NodeTypeDocument
	}

	dst, ok := k.lookupEndpoint(rel.DstName, rel.DstKind, doc, resolved)
	if !ok {
		return nil, false
	}
	edge.DstID = dst
	if rel.DstKind == model.KindDocument {
		edge.DstType = model.NodeTypeDocument
	}

	return edge, true
}

func (k *KGraph) lookupEndpoint(name string, kind model.EntityKind, doc *model.Document, resolved map[string]*model.ConsolidationResult) (uuid.UUID, bool) {
	if kind == model.KindDocument && name == doc.Source {
		return doc.ID, true
	}

	if resolution, ok := resolved[endpointKey(name, kind)]; ok {
		return resolution.EntityID, true
	}

	entity, err := k.Entities.SelectEntityByName(name, kind)
	if err != nil || entity == nil {
		return uuid.Nil, false
	}
	return entity.ID, true
}

func endpointKey(name string, kind model.EntityKind) string {
	return string(kind) + "\x00" + name
}

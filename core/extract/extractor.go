package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dfattal/david-gpt-sub005/model"
)

// retentionThresholds give the minimum authority a content candidate
// must reach, per kind, to survive extraction.
var retentionThresholds = map[model.EntityKind]float64{
	model.KindPerson:       0.4,
	model.KindOrganization: 0.3,
	model.KindTechnology:   0.25,
	model.KindProduct:      0.3,
	model.KindComponent:    0.2,
}

// MetadataStrategy pulls high-confidence candidates from a document's
// structured fields for one document type.
type MetadataStrategy func(input *model.DocumentInput) []*model.CandidateEntity

// metadataStrategies maps each document type to its structured-field
// extraction, instead of branching inheritance.
var metadataStrategies = map[model.DocumentType]MetadataStrategy{
	model.DocTypePatent: extractPatentMetadata,
	model.DocTypePaper:  extractPaperMetadata,
	model.DocTypePress:  extractPressMetadata,
}

// Extractor runs pattern-based candidate extraction over documents.
// It is stateless per document and safe to share across goroutines.
type Extractor struct {
	dedup *Deduplicator
	log   *slog.Logger
}

// NewExtractor creates an extractor logging through the given logger
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		dedup: NewDeduplicator(),
		log:   logger,
	}
}

// ExtractFromDocument produces validated, scored, deduplicated
// candidate entities and relationships from one document.
func (e *Extractor) ExtractFromDocument(input *model.DocumentInput) (*model.ExtractionResult, error) {
	if input == nil || input.DocumentID == "" {
		return nil, fmt.Errorf("document input is empty")
	}

	text := input.FullText()
	docType := input.Metadata.DocType

	candidates := e.extractContentCandidates(text, docType)

	if strategy, ok := metadataStrategies[docType]; ok {
		candidates = append(candidates, strategy(input)...)
	}

	retained := make([]*model.CandidateEntity, 0, len(candidates))
	for _, candidate := range candidates {
		if e.retain(candidate) {
			retained = append(retained, candidate)
		}
	}

	deduped := e.dedup.Deduplicate(retained)

	relationships := ExtractRelationships(input, text)

	e.log.Debug("Extracted candidates",
		slog.String("document_id", input.DocumentID),
		slog.Int("entities", len(deduped)),
		slog.Int("relationships", len(relationships)))

	return &model.ExtractionResult{
		DocumentID:    input.DocumentID,
		Entities:      deduped,
		Relationships: relationships,
	}, nil
}

// extractContentCandidates runs every kind's pattern family over the
// full text, counting case-insensitive unique mentions and scoring
// each by the section of its first occurrence.
func (e *Extractor) extractContentCandidates(text string, docType model.DocumentType) []*model.CandidateEntity {
	var candidates []*model.CandidateEntity

	for kind, patterns := range entityPatterns {
		seen := map[string]*model.CandidateEntity{}

		for _, pattern := range patterns {
			for _, match := range pattern.FindAllStringSubmatch(text, -1) {
				name := strings.TrimSpace(match[1])
				if name == "" {
					continue
				}

				key := strings.ToLower(name)
				if existing, ok := seen[key]; ok {
					existing.MentionCount++
					continue
				}

				if !IsValidEntity(name, kind) {
					continue
				}

				seen[key] = &model.CandidateEntity{
					Name:         name,
					Kind:         kind,
					MentionCount: 1,
					SectionHint:  DetectSection(text, name, docType),
				}
			}
		}

		for _, candidate := range seen {
			candidate.AuthorityScore = ScoreAuthority(candidate.Kind, false, candidate.SectionHint, candidate.MentionCount)
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

// retain applies the per-kind minimum authority threshold. Persons
// found in citation or reference sections face a stricter rule to
// suppress bibliographic noise: authority >= 0.6 or at least three
// mentions. Candidates failing retention are dropped, not down-weighted.
func (e *Extractor) retain(candidate *model.CandidateEntity) bool {
	if candidate.Kind == model.KindPerson && candidate.SectionHint == model.SectionCitations {
		return candidate.AuthorityScore >= 0.6 || candidate.MentionCount >= 3
	}

	threshold, ok := retentionThresholds[candidate.Kind]
	if !ok {
		return true
	}
	return candidate.AuthorityScore >= threshold
}

// extractPatentMetadata yields inventors as persons and assignees as
// organizations, both structured and exempt from section modifiers.
func extractPatentMetadata(input *model.DocumentInput) []*model.CandidateEntity {
	var candidates []*model.CandidateEntity

	for _, inventor := range input.Metadata.Inventors {
		name := strings.TrimSpace(inventor)
		if !IsValidPersonName(name) {
			continue
		}
		candidates = append(candidates, &model.CandidateEntity{
			Name:           name,
			Kind:           model.KindPerson,
			Description:    fmt.Sprintf("Inventor on %s", input.Metadata.Title),
			AuthorityScore: ScoreAuthority(model.KindPerson, true, model.SectionUnknown, 1),
			MentionCount:   1,
			SectionHint:    model.SectionUnknown,
			IsStructured:   true,
		})
	}

	for _, assignee := range input.Metadata.Assignees {
		name := strings.TrimSpace(assignee)
		if !IsValidEntity(name, model.KindOrganization) {
			continue
		}
		candidates = append(candidates, &model.CandidateEntity{
			Name:           name,
			Kind:           model.KindOrganization,
			Description:    fmt.Sprintf("Assignee of %s", input.Metadata.Title),
			AuthorityScore: ScoreAuthority(model.KindOrganization, true, model.SectionUnknown, 1),
			MentionCount:   1,
			SectionHint:    model.SectionUnknown,
			IsStructured:   true,
		})
	}

	return candidates
}

// extractPaperMetadata yields paper authors as persons
func extractPaperMetadata(input *model.DocumentInput) []*model.CandidateEntity {
	var candidates []*model.CandidateEntity

	for _, author := range input.Metadata.Authors {
		name := strings.TrimSpace(author)
		if !IsValidPersonName(name) {
			continue
		}
		candidates = append(candidates, &model.CandidateEntity{
			Name:           name,
			Kind:           model.KindPerson,
			Description:    fmt.Sprintf("Author of %s", input.Metadata.Title),
			AuthorityScore: ScoreAuthority(model.KindPerson, true, model.SectionUnknown, 1),
			MentionCount:   1,
			SectionHint:    model.SectionUnknown,
			IsStructured:   true,
		})
	}

	return candidates
}

// extractPressMetadata has no structured people fields; press articles
// only contribute content candidates.
func extractPressMetadata(input *model.DocumentInput) []*model.CandidateEntity {
	return nil
}

package consolidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
)

const (
	// defaultNewAuthority is assigned to entities created by the
	// cascade's no-match branch when the candidate carries no score.
	defaultNewAuthority = 0.3

	// fuzzyCandidateLimit caps how many high-mention entities the fuzzy
	// tier compares against per resolve.
	fuzzyCandidateLimit = 50

	// fuzzyMinMentions keeps one-off entities out of the fuzzy tier;
	// the batch sweep catches those later.
	fuzzyMinMentions = 2

	ruleAliasConfidence  = 0.95
	fuzzyAliasConfidence = 0.85
	mergeAliasConfidence = 0.9
)

// EntityStore is the entity persistence surface the engine needs.
type EntityStore interface {
	UpsertEntity(entity *model.Entity) (bool, error)
	SelectEntity(id uuid.UUID) (*model.Entity, error)
	SelectEntityByName(name string, kind model.EntityKind) (*model.Entity, error)
	SelectEntitiesByKind(kind model.EntityKind, limit int, offset int) ([]*model.Entity, error)
	IncrementMentionCount(id uuid.UUID, delta int) error
	UpdateEntityStats(id uuid.UUID, authorityScore float64, mentionCount int) error
	DeleteEntity(id uuid.UUID) error
}

// AliasStore is the alias persistence surface the engine needs.
type AliasStore interface {
	InsertAlias(alias *model.Alias) error
	SelectAliasByName(alias string, kind model.EntityKind) (*model.Alias, error)
	SelectAliasesByEntity(entityID uuid.UUID) ([]*model.Alias, error)
	ReassignAliases(from uuid.UUID, to uuid.UUID) (int, error)
}

// EdgeStore is the edge surface batch merges need to repoint
// relationships from merged entities onto their survivors.
type EdgeStore interface {
	ReassignEdges(from uuid.UUID, to uuid.UUID) (int, error)
}

// Engine resolves candidate entities against the existing graph
// through a tiered cascade: exact name, alias, curated rule, fuzzy
// match, and finally creation. Creation goes through the store's
// atomic get-or-create, so concurrent resolves of the same identity
// converge on one row.
type Engine struct {
	entities EntityStore
	aliases  AliasStore
	edges    EdgeStore
	rules    *RuleIndex
	log      *slog.Logger
}

// NewEngine creates a consolidation engine over the given stores. A
// nil rule index falls back to the built-in curated rules.
func NewEngine(entities EntityStore, aliases AliasStore, edges EdgeStore, rules *RuleIndex, logger *slog.Logger) (*Engine, error) {
	if entities == nil || aliases == nil || edges == nil {
		return nil, helper.NewError("engine store validation", fmt.Errorf("entity, alias and edge stores must be non-nil"))
	}
	if rules == nil {
		rules = DefaultRuleIndex()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		entities: entities,
		aliases:  aliases,
		edges:    edges,
		rules:    rules,
		log:      logger,
	}, nil
}

// Resolve maps one candidate onto a canonical entity, creating it if
// no tier matches. Every resolve counts as exactly one mention of the
// resulting entity.
func (e *Engine) Resolve(ctx context.Context, candidate *model.CandidateEntity) (*model.ConsolidationResult, error) {
	if candidate == nil {
		return nil, helper.NewError("candidate validation", fmt.Errorf("candidate is nil"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tier 1: exact (name, kind) match.
	existing, err := e.entities.SelectEntityByName(candidate.Name, candidate.Kind)
	if err != nil {
		return nil, helper.NewError("exact match lookup", err)
	}
	if existing != nil {
		err = e.entities.IncrementMentionCount(existing.ID, 1)
		if err != nil {
			return nil, helper.NewError("increment mention count", err)
		}
		return &model.ConsolidationResult{EntityID: existing.ID, WasReused: true, MatchedName: existing.Name}, nil
	}

	// Tier 2: known alias.
	alias, err := e.aliases.SelectAliasByName(candidate.Name, candidate.Kind)
	if err != nil {
		return nil, helper.NewError("alias lookup", err)
	}
	if alias != nil {
		owner, err := e.entities.SelectEntity(alias.EntityID)
		if err != nil {
			return nil, helper.NewError("alias owner lookup", err)
		}
		if owner != nil {
			err = e.entities.IncrementMentionCount(owner.ID, 1)
			if err != nil {
				return nil, helper.NewError("increment mention count", err)
			}
			return &model.ConsolidationResult{EntityID: owner.ID, WasReused: true, MatchedName: owner.Name}, nil
		}
	}

	// Tier 3: curated rule.
	if rule := e.rules.Lookup(candidate.Name, candidate.Kind); rule != nil {
		return e.resolveThroughRule(candidate, rule)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tier 4: fuzzy match against the kind's most-mentioned entities.
	match, err := e.fuzzyMatch(candidate)
	if err != nil {
		return nil, err
	}
	if match != nil {
		err = e.entities.IncrementMentionCount(match.ID, 1)
		if err != nil {
			return nil, helper.NewError("increment mention count", err)
		}
		err = e.aliases.InsertAlias(&model.Alias{
			EntityID:   match.ID,
			Alias:      candidate.Name,
			Kind:       candidate.Kind,
			Confidence: fuzzyAliasConfidence,
		})
		if err != nil {
			return nil, helper.NewError("insert fuzzy alias", err)
		}
		e.log.Info("Fuzzy-matched candidate onto existing entity",
			slog.String("candidate", candidate.Name),
			slog.String("entity", match.Name),
			slog.String("kind", string(candidate.Kind)))
		return &model.ConsolidationResult{EntityID: match.ID, WasReused: true, MatchedName: match.Name}, nil
	}

	// Tier 5: create. The store upsert makes this safe under races; the
	// loser of a concurrent insert gets the winner's row back.
	return e.createEntity(candidate)
}

func (e *Engine) resolveThroughRule(candidate *model.CandidateEntity, rule *model.ConsolidationRule) (*model.ConsolidationResult, error) {
	entity := &model.Entity{
		Name:           rule.PrimaryName,
		Kind:           rule.Kind,
		Description:    rule.Description,
		AuthorityScore: candidateAuthority(candidate),
	}
	inserted, err := e.entities.UpsertEntity(entity)
	if err != nil {
		return nil, helper.NewError("rule primary upsert", err)
	}

	if candidate.Name != rule.PrimaryName {
		err = e.aliases.InsertAlias(&model.Alias{
			EntityID:   entity.ID,
			Alias:      candidate.Name,
			Kind:       rule.Kind,
			Confidence: ruleAliasConfidence,
		})
		if err != nil {
			return nil, helper.NewError("insert rule alias", err)
		}
	}

	return &model.ConsolidationResult{EntityID: entity.ID, WasReused: !inserted, MatchedName: rule.PrimaryName}, nil
}

func (e *Engine) fuzzyMatch(candidate *model.CandidateEntity) (*model.Entity, error) {
	candidates, err := e.entities.SelectEntitiesByKind(candidate.Kind, fuzzyCandidateLimit, 0)
	if err != nil {
		return nil, helper.NewError("fuzzy candidate listing", err)
	}

	for _, entity := range candidates {
		if entity.MentionCount < fuzzyMinMentions {
			continue
		}
		if IsNearDuplicate(candidate.Name, entity.Name, candidate.Kind) {
			return entity, nil
		}
	}

	return nil, nil
}

func (e *Engine) createEntity(candidate *model.CandidateEntity) (*model.ConsolidationResult, error) {
	entity := &model.Entity{
		Name:           candidate.Name,
		Kind:           candidate.Kind,
		Description:    candidate.Description,
		AuthorityScore: candidateAuthority(candidate),
	}
	inserted, err := e.entities.UpsertEntity(entity)
	if err != nil {
		return nil, helper.NewError("entity creation", err)
	}

	return &model.ConsolidationResult{EntityID: entity.ID, WasReused: !inserted, MatchedName: entity.Name}, nil
}

func candidateAuthority(candidate *model.CandidateEntity) float64 {
	if candidate.AuthorityScore > 0 {
		return candidate.AuthorityScore
	}
	return defaultNewAuthority
}

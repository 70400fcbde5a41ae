package consolidate

import (
	"context"
	"log/slog"

	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
)

const (
	// mergeAuthorityBoost is added to a survivor's authority per merged
	// duplicate, capped at mergeAuthorityCap.
	mergeAuthorityBoost = 0.02
	mergeAuthorityCap   = 0.95

	// batchListLimit bounds how many entities per kind a sweep loads.
	batchListLimit = 1000
)

// ConsolidateEntities runs the administrative sweeps over the whole
// graph: curated rule application first, then transitive fuzzy
// clustering per kind. It is idempotent; a second run on a clean graph
// merges nothing.
func (e *Engine) ConsolidateEntities(ctx context.Context) (*model.BatchConsolidationResult, error) {
	result := &model.BatchConsolidationResult{}

	err := e.ApplyRules(ctx, result)
	if err != nil {
		return result, err
	}

	err = e.FuzzySweep(ctx, result)
	if err != nil {
		return result, err
	}

	e.log.Info("Batch consolidation finished",
		slog.Int("merged", result.Merged),
		slog.Int("aliasesCreated", result.AliasesCreated),
		slog.Int("duplicatesRemoved", result.DuplicatesRemoved))

	return result, nil
}

// ApplyRules folds every stored entity whose name is a known rule
// variant into the rule's primary entity, creating the primary when it
// does not exist yet.
func (e *Engine) ApplyRules(ctx context.Context, result *model.BatchConsolidationResult) error {
	for _, rule := range e.rules.Rules() {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, variant := range rule.Variants {
			if variant == rule.PrimaryName {
				continue
			}

			duplicate, err := e.entities.SelectEntityByName(variant, rule.Kind)
			if err != nil {
				return helper.NewError("rule variant lookup", err)
			}
			if duplicate == nil {
				continue
			}

			primary, err := e.entities.SelectEntityByName(rule.PrimaryName, rule.Kind)
			if err != nil {
				return helper.NewError("rule primary lookup", err)
			}
			if primary == nil {
				primary = &model.Entity{
					Name:           rule.PrimaryName,
					Kind:           rule.Kind,
					Description:    rule.Description,
					AuthorityScore: duplicate.AuthorityScore,
				}
				_, err = e.entities.UpsertEntity(primary)
				if err != nil {
					return helper.NewError("rule primary upsert", err)
				}
				// The upsert seeded mention count 1; the merge below
				// folds the duplicate's mentions on top of zero.
				primary.MentionCount = 0
			}

			err = e.mergeEntity(duplicate, primary, result)
			if err != nil {
				return err
			}
			result.Merged++
		}
	}

	return nil
}

// FuzzySweep clusters near-duplicate entities per kind transitively
// and merges each cluster into its primary: the member with the most
// mentions, ties broken by the shorter name.
func (e *Engine) FuzzySweep(ctx context.Context, result *model.BatchConsolidationResult) error {
	for _, kind := range model.EntityKinds {
		if kind == model.KindDocument {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		entities, err := e.entities.SelectEntitiesByKind(kind, batchListLimit, 0)
		if err != nil {
			return helper.NewError("batch entity listing", err)
		}

		for _, cluster := range clusterNearDuplicates(entities, kind) {
			primary := pickPrimary(cluster)
			for _, member := range cluster {
				if member.ID == primary.ID {
					continue
				}
				err = e.mergeEntity(member, primary, result)
				if err != nil {
					return err
				}
			}
			result.Merged++
		}
	}

	return nil
}

// mergeEntity folds duplicate into primary: aliases and edges are
// repointed, the duplicate's name becomes an alias of the primary,
// mention counts sum, authority takes the higher score plus a small
// boost, and the duplicate row is removed.
func (e *Engine) mergeEntity(duplicate *model.Entity, primary *model.Entity, result *model.BatchConsolidationResult) error {
	_, err := e.aliases.ReassignAliases(duplicate.ID, primary.ID)
	if err != nil {
		return helper.NewError("reassign aliases", err)
	}

	_, err = e.edges.ReassignEdges(duplicate.ID, primary.ID)
	if err != nil {
		return helper.NewError("reassign edges", err)
	}

	err = e.aliases.InsertAlias(&model.Alias{
		EntityID:   primary.ID,
		Alias:      duplicate.Name,
		Kind:       primary.Kind,
		Confidence: mergeAliasConfidence,
	})
	if err != nil {
		return helper.NewError("insert merge alias", err)
	}
	result.AliasesCreated++

	authority := primary.AuthorityScore
	if duplicate.AuthorityScore > authority {
		authority = duplicate.AuthorityScore
	}
	authority += mergeAuthorityBoost
	if authority > mergeAuthorityCap {
		authority = mergeAuthorityCap
	}
	mentions := primary.MentionCount + duplicate.MentionCount

	err = e.entities.UpdateEntityStats(primary.ID, authority, mentions)
	if err != nil {
		return helper.NewError("update primary stats", err)
	}
	primary.AuthorityScore = authority
	primary.MentionCount = mentions

	err = e.entities.DeleteEntity(duplicate.ID)
	if err != nil {
		return helper.NewError("delete duplicate", err)
	}
	result.DuplicatesRemoved++

	e.log.Info("Merged duplicate entity",
		slog.String("duplicate", duplicate.Name),
		slog.String("primary", primary.Name),
		slog.String("kind", string(primary.Kind)))

	return nil
}

// clusterNearDuplicates groups entities into transitive near-duplicate
// clusters; singleton groups are dropped.
func clusterNearDuplicates(entities []*model.Entity, kind model.EntityKind) [][]*model.Entity {
	parent := make([]int, len(entities))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			if IsNearDuplicate(entities[i].Name, entities[j].Name, kind) {
				parent[find(j)] = find(i)
			}
		}
	}

	groups := map[int][]*model.Entity{}
	for i, entity := range entities {
		root := find(i)
		groups[root] = append(groups[root], entity)
	}

	var clusters [][]*model.Entity
	for _, group := range groups {
		if len(group) > 1 {
			clusters = append(clusters, group)
		}
	}
	return clusters
}

// pickPrimary selects a cluster's surviving entity: highest mention
// count, ties broken by the shorter name, then lexicographically.
func pickPrimary(cluster []*model.Entity) *model.Entity {
	primary := cluster[0]
	for _, entity := range cluster[1:] {
		switch {
		case entity.MentionCount > primary.MentionCount:
			primary = entity
		case entity.MentionCount == primary.MentionCount && len(entity.Name) < len(primary.Name):
			primary = entity
		case entity.MentionCount == primary.MentionCount && len(entity.Name) == len(primary.Name) && entity.Name < primary.Name:
			primary = entity
		}
	}
	return primary
}

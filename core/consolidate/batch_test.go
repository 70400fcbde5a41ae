package consolidate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfattal/david-gpt-sub005/database"
	"github.com/dfattal/david-gpt-sub005/model"
)

func seedEntity(t *testing.T, store *database.MemoryStore, name string, kind model.EntityKind, mentions int, authority float64) *model.Entity {
	t.Helper()
	entity := &model.Entity{Name: name, Kind: kind, AuthorityScore: authority}
	_, err := store.UpsertEntity(entity)
	require.NoError(t, err)
	if mentions > 1 {
		err = store.IncrementMentionCount(entity.ID, mentions-1)
		require.NoError(t, err)
		entity.MentionCount = mentions
	}
	return entity
}

func TestConsolidateEntitiesRules(t *testing.T) {
	t.Run("Rule variants merge into the curated primary", func(t *testing.T) {
		engine, store := newTestEngine(t)
		seedEntity(t, store, "oled", model.KindTechnology, 2, 0.5)
		seedEntity(t, store, "Oled", model.KindTechnology, 1, 0.4)

		result, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Merged)
		assert.Equal(t, 2, result.DuplicatesRemoved)
		assert.Equal(t, 2, result.AliasesCreated)

		primary, err := store.SelectEntityByName("OLED", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, primary, "Expected the curated primary to be created")
		assert.Equal(t, 3, primary.MentionCount, "Expected the variants' mentions to sum")

		gone, err := store.SelectEntityByName("oled", model.KindTechnology)
		require.NoError(t, err)
		assert.Nil(t, gone)

		aliases, err := store.SelectAliasesByEntity(primary.ID)
		require.NoError(t, err)
		assert.Len(t, aliases, 2)
	})

	t.Run("Rules leave unrelated entities alone", func(t *testing.T) {
		engine, store := newTestEngine(t)
		seedEntity(t, store, "diffractive waveguide", model.KindComponent, 2, 0.5)

		result, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Merged)

		entity, err := store.SelectEntityByName("diffractive waveguide", model.KindComponent)
		require.NoError(t, err)
		assert.NotNil(t, entity)
	})
}

func TestConsolidateEntitiesFuzzySweep(t *testing.T) {
	t.Run("Near-duplicate entities collapse onto the most mentioned one", func(t *testing.T) {
		engine, store := newTestEngine(t)
		survivor := seedEntity(t, store, "lightfield displays", model.KindTechnology, 3, 0.6)
		seedEntity(t, store, "lightfield display", model.KindTechnology, 1, 0.4)

		result, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Merged)
		assert.Equal(t, 1, result.DuplicatesRemoved)

		merged, err := store.SelectEntity(survivor.ID)
		require.NoError(t, err)
		require.NotNil(t, merged)
		assert.Equal(t, 4, merged.MentionCount)

		alias, err := store.SelectAliasByName("lightfield display", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, alias)
		assert.Equal(t, survivor.ID, alias.EntityID)
	})

	t.Run("Transitive clusters merge as one group with the shortest name winning ties", func(t *testing.T) {
		engine, store := newTestEngine(t)
		seedEntity(t, store, "holo displays", model.KindTechnology, 1, 0.4)
		short := seedEntity(t, store, "holo display", model.KindTechnology, 1, 0.4)
		seedEntity(t, store, "holo displayss", model.KindTechnology, 1, 0.4)

		result, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Merged, "Expected one transitive cluster")
		assert.Equal(t, 2, result.DuplicatesRemoved)

		merged, err := store.SelectEntity(short.ID)
		require.NoError(t, err)
		require.NotNil(t, merged, "Expected the shortest name to survive the tie")
		assert.Equal(t, 3, merged.MentionCount)
	})

	t.Run("Merges boost the survivor's authority up to the cap", func(t *testing.T) {
		engine, store := newTestEngine(t)
		survivor := seedEntity(t, store, "neural view synthesis", model.KindTechnology, 3, 0.94)
		seedEntity(t, store, "neural view synthesis v2", model.KindTechnology, 1, 0.9)

		_, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)

		merged, err := store.SelectEntity(survivor.ID)
		require.NoError(t, err)
		require.NotNil(t, merged)
		assert.Equal(t, 0.95, merged.AuthorityScore, "Expected the boost to cap at 0.95")
	})

	t.Run("A second sweep over a clean graph merges nothing", func(t *testing.T) {
		engine, store := newTestEngine(t)
		seedEntity(t, store, "lightfield displays", model.KindTechnology, 3, 0.6)
		seedEntity(t, store, "lightfield display", model.KindTechnology, 1, 0.4)

		_, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)

		second, err := engine.ConsolidateEntities(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, second.Merged)
		assert.Equal(t, 0, second.DuplicatesRemoved)
		assert.Equal(t, 0, second.AliasesCreated)
	})

	t.Run("Cancelled contexts abort the sweep", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.ConsolidateEntities(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package consolidate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfattal/david-gpt-sub005/database"
	"github.com/dfattal/david-gpt-sub005/model"
)

func newTestEngine(t *testing.T) (*Engine, *database.MemoryStore) {
	store := database.NewMemoryStore()
	engine, err := NewEngine(store, store, store, nil, nil)
	require.NoError(t, err)
	return engine, store
}

func TestNewEngine(t *testing.T) {
	t.Run("Nil stores are rejected", func(t *testing.T) {
		_, err := NewEngine(nil, nil, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("A nil rule index falls back to the curated rules", func(t *testing.T) {
		store := database.NewMemoryStore()
		engine, err := NewEngine(store, store, store, nil, nil)
		assert.NoError(t, err)
		assert.NotNil(t, engine.rules)
	})
}

func TestEngineResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown candidates create a new entity", func(t *testing.T) {
		engine, store := newTestEngine(t)

		result, err := engine.Resolve(ctx, &model.CandidateEntity{
			Name: "diffractive backlight", Kind: model.KindComponent, AuthorityScore: 0.42,
		})
		require.NoError(t, err)
		assert.False(t, result.WasReused)
		assert.Equal(t, "diffractive backlight", result.MatchedName)

		entity, err := store.SelectEntity(result.EntityID)
		require.NoError(t, err)
		require.NotNil(t, entity)
		assert.Equal(t, 0.42, entity.AuthorityScore)
		assert.Equal(t, 1, entity.MentionCount)
	})

	t.Run("Candidates without a score default to authority 0.3", func(t *testing.T) {
		engine, store := newTestEngine(t)

		result, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "novel emitter grid", Kind: model.KindComponent})
		require.NoError(t, err)

		entity, err := store.SelectEntity(result.EntityID)
		require.NoError(t, err)
		assert.Equal(t, 0.3, entity.AuthorityScore)
	})

	t.Run("Exact name matches reuse the entity and count a mention", func(t *testing.T) {
		engine, store := newTestEngine(t)

		first, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "parallax barrier", Kind: model.KindComponent})
		require.NoError(t, err)

		second, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "parallax barrier", Kind: model.KindComponent})
		require.NoError(t, err)
		assert.True(t, second.WasReused)
		assert.Equal(t, first.EntityID, second.EntityID)

		entity, err := store.SelectEntity(first.EntityID)
		require.NoError(t, err)
		assert.Equal(t, 2, entity.MentionCount)
	})

	t.Run("Alias matches resolve to the owning entity", func(t *testing.T) {
		engine, store := newTestEngine(t)

		owner, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "eye-tracking", Kind: model.KindTechnology})
		require.NoError(t, err)
		err = store.InsertAlias(&model.Alias{EntityID: owner.EntityID, Alias: "gaze tracker", Kind: model.KindTechnology, Confidence: 0.9})
		require.NoError(t, err)

		result, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "gaze tracker", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.True(t, result.WasReused)
		assert.Equal(t, owner.EntityID, result.EntityID)
		assert.Equal(t, "eye-tracking", result.MatchedName)
	})

	t.Run("Rule variants collapse onto the curated primary", func(t *testing.T) {
		engine, store := newTestEngine(t)

		first, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "oled", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.Equal(t, "OLED", first.MatchedName)
		assert.False(t, first.WasReused, "Expected the primary to be created on first resolve")

		second, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "Oled", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.True(t, second.WasReused)
		assert.Equal(t, first.EntityID, second.EntityID)

		third, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "OLED", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.True(t, third.WasReused)
		assert.Equal(t, first.EntityID, third.EntityID)

		entity, err := store.SelectEntity(first.EntityID)
		require.NoError(t, err)
		assert.Equal(t, "OLED", entity.Name)
		assert.Equal(t, 3, entity.MentionCount)

		aliases, err := store.SelectAliasesByEntity(first.EntityID)
		require.NoError(t, err)
		assert.Len(t, aliases, 2, "Expected one alias per variant spelling seen")
	})

	t.Run("Fuzzy matches attach to established entities and record an alias", func(t *testing.T) {
		engine, store := newTestEngine(t)

		established, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "holographic displays", Kind: model.KindTechnology})
		require.NoError(t, err)
		_, err = engine.Resolve(ctx, &model.CandidateEntity{Name: "holographic displays", Kind: model.KindTechnology})
		require.NoError(t, err)

		result, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "holographic display", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.True(t, result.WasReused)
		assert.Equal(t, established.EntityID, result.EntityID)
		assert.Equal(t, "holographic displays", result.MatchedName)

		alias, err := store.SelectAliasByName("holographic display", model.KindTechnology)
		require.NoError(t, err)
		require.NotNil(t, alias)
		assert.Equal(t, established.EntityID, alias.EntityID)

		entity, err := store.SelectEntity(established.EntityID)
		require.NoError(t, err)
		assert.Equal(t, 3, entity.MentionCount)
	})

	t.Run("Entities with a single mention are not fuzzy targets", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		first, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "quantum imaging", Kind: model.KindTechnology})
		require.NoError(t, err)

		second, err := engine.Resolve(ctx, &model.CandidateEntity{Name: "quantum imagings", Kind: model.KindTechnology})
		require.NoError(t, err)
		assert.False(t, second.WasReused, "Expected a fresh entity instead of a fuzzy match on a one-off")
		assert.NotEqual(t, first.EntityID, second.EntityID)
	})

	t.Run("Nil candidates are rejected", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		_, err := engine.Resolve(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Cancelled contexts abort the resolve", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.Resolve(cancelled, &model.CandidateEntity{Name: "anything at all", Kind: model.KindTechnology})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEngineResolveConcurrent(t *testing.T) {
	t.Run("Concurrent resolves of one identity yield one row with one mention each", func(t *testing.T) {
		engine, store := newTestEngine(t)
		const workers = 12

		var wg sync.WaitGroup
		ids := make(chan string, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := engine.Resolve(context.Background(), &model.CandidateEntity{
					Name: "Leia Inc", Kind: model.KindOrganization, AuthorityScore: 0.9,
				})
				assert.NoError(t, err)
				ids <- result.EntityID.String()
			}()
		}
		wg.Wait()
		close(ids)

		unique := map[string]bool{}
		for id := range ids {
			unique[id] = true
		}
		assert.Len(t, unique, 1, "Expected every resolve to land on the same entity")

		entity, err := store.SelectEntityByName("Leia Inc", model.KindOrganization)
		require.NoError(t, err)
		require.NotNil(t, entity)
		assert.Equal(t, workers, entity.MentionCount)
	})
}

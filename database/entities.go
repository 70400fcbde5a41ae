package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dfattal/david-gpt-sub005/helper"
	"github.com/dfattal/david-gpt-sub005/model"
	loadSql "github.com/dfattal/david-gpt-sub005/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	UpsertEntity(entity *model.Entity) (bool, error)
	SelectEntity(id uuid.UUID) (*model.Entity, error)
	SelectEntityByName(name string, kind model.EntityKind) (*model.Entity, error)
	SelectEntitiesByKind(kind model.EntityKind, limit int, offset int) ([]*model.Entity, error)
	SearchEntities(term string, kind *model.EntityKind, limit int) ([]*model.Entity, error)
	IncrementMentionCount(id uuid.UUID, delta int) error
	UpdateEntityStats(id uuid.UUID, authorityScore float64, mentionCount int) error
	DeleteEntity(id uuid.UUID) error
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// UpsertEntity performs the atomic get-or-create for an entity identity.
// If no row exists for (name, kind) one is created with mention count 1;
// otherwise the existing row's mention count is incremented. The entity
// struct is filled from the resulting row either way. Returns true if a
// new row was inserted.
func (h *EntitiesDBHandler) UpsertEntity(entity *model.Entity) (bool, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_entity($1, $2, $3, $4)`,
		entity.Name,
		entity.Kind,
		nullString(entity.Description),
		entity.AuthorityScore,
	)

	var description sql.NullString
	var inserted bool
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Kind,
		&description,
		&entity.AuthorityScore,
		&entity.MentionCount,
		&entity.CreatedAt,
		&entity.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return false, helper.NewError("scan", err)
	}
	entity.Description = description.String

	return inserted, nil
}

// SelectEntity retrieves an entity by ID. Returns (nil, nil) when no
// such entity exists.
func (h *EntitiesDBHandler) SelectEntity(id uuid.UUID) (*model.Entity, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		id,
	)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

// SelectEntityByName retrieves an entity by its exact name and kind.
// Returns (nil, nil) when no such entity exists, since the consolidation
// cascade treats a miss as a normal outcome.
func (h *EntitiesDBHandler) SelectEntityByName(name string, kind model.EntityKind) (*model.Entity, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_name($1, $2)`,
		name,
		kind,
	)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

// SelectEntitiesByKind retrieves entities of a kind, ordered by mention
// count descending, paged via limit and offset.
func (h *EntitiesDBHandler) SelectEntitiesByKind(kind model.EntityKind, limit int, offset int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_kind($1, $2, $3)`,
		kind,
		limit,
		offset,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SearchEntities searches entities by name pattern, optionally scoped to a kind
func (h *EntitiesDBHandler) SearchEntities(term string, kind *model.EntityKind, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_entities($1, $2, $3)`,
		term,
		kind,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// IncrementMentionCount adds delta to an entity's mention count as a
// single atomic update, safe to call from concurrent resolves.
func (h *EntitiesDBHandler) IncrementMentionCount(id uuid.UUID, delta int) error {
	_, err := h.db.Instance.Exec(
		`SELECT increment_mention_count($1, $2)`,
		id,
		delta,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// UpdateEntityStats sets an entity's authority score and mention count,
// used by batch merges that recompute both.
func (h *EntitiesDBHandler) UpdateEntityStats(id uuid.UUID, authorityScore float64, mentionCount int) error {
	_, err := h.db.Instance.Exec(
		`SELECT update_entity_stats($1, $2, $3)`,
		id,
		authorityScore,
		mentionCount,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (*model.Entity, error) {
	entity := &model.Entity{}
	var description sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Kind,
		&description,
		&entity.AuthorityScore,
		&entity.MentionCount,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, helper.NewError("scan", err)
	}
	entity.Description = description.String

	return entity, nil
}

func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

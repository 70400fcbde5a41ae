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

// AliasesDBHandlerFunctions defines the interface for Aliases database operations.
type AliasesDBHandlerFunctions interface {
	InsertAlias(alias *model.Alias) error
	SelectAliasByName(alias string, kind model.EntityKind) (*model.Alias, error)
	SelectAliasesByEntity(entityID uuid.UUID) ([]*model.Alias, error)
	ReassignAliases(from uuid.UUID, to uuid.UUID) (int, error)
	DeleteAlias(id uuid.UUID) error
}

// AliasesDBHandler handles alias-related database operations
type AliasesDBHandler struct {
	db *helper.Database
}

// NewAliasesDBHandler creates a new aliases database handler.
// It initializes the database connection and loads alias-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAliasesDBHandler(db *helper.Database, force bool) (*AliasesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	aliasesDbHandler := &AliasesDBHandler{
		db: db,
	}

	err := loadSql.LoadAliasesSql(aliasesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load aliases sql", err)
	}

	err = aliasesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AliasesDBHandler")

	return aliasesDbHandler, nil
}

// CreateTable creates the 'aliases' table in the database.
// If the table already exists, it does not create it again.
func (h *AliasesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_aliases();`)
	if err != nil {
		log.Panicf("error initializing aliases table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table aliases")

	return nil
}

// InsertAlias inserts a new alias. A duplicate (alias, kind) insert is
// a no-op merge signal: the existing row is returned and the alias
// struct is filled from it.
func (h *AliasesDBHandler) InsertAlias(alias *model.Alias) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_alias($1, $2, $3, $4, $5)`,
		alias.EntityID,
		alias.Alias,
		alias.Kind,
		alias.IsPrimary,
		alias.Confidence,
	)

	err := row.Scan(
		&alias.ID,
		&alias.EntityID,
		&alias.Alias,
		&alias.Kind,
		&alias.IsPrimary,
		&alias.Confidence,
		&alias.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectAliasByName retrieves an alias by its exact string, scoped to a
// kind. Returns (nil, nil) when no such alias exists.
func (h *AliasesDBHandler) SelectAliasByName(aliasName string, kind model.EntityKind) (*model.Alias, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_alias_by_name($1, $2)`,
		aliasName,
		kind,
	)

	alias := &model.Alias{}
	err := row.Scan(
		&alias.ID,
		&alias.EntityID,
		&alias.Alias,
		&alias.Kind,
		&alias.IsPrimary,
		&alias.Confidence,
		&alias.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return alias, nil
}

// SelectAliasesByEntity retrieves all aliases owned by an entity
func (h *AliasesDBHandler) SelectAliasesByEntity(entityID uuid.UUID) ([]*model.Alias, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_aliases_by_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var aliases []*model.Alias
	for rows.Next() {
		alias := &model.Alias{}
		err := rows.Scan(
			&alias.ID,
			&alias.EntityID,
			&alias.Alias,
			&alias.Kind,
			&alias.IsPrimary,
			&alias.Confidence,
			&alias.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		aliases = append(aliases, alias)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return aliases, nil
}

// ReassignAliases moves all aliases from one entity to another and
// returns the number moved. Used by batch merges before the duplicate
// entity row is deleted.
func (h *AliasesDBHandler) ReassignAliases(from uuid.UUID, to uuid.UUID) (int, error) {
	var moved int
	err := h.db.Instance.QueryRow(
		`SELECT reassign_aliases($1, $2)`,
		from,
		to,
	).Scan(&moved)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return moved, nil
}

// DeleteAlias deletes an alias by ID
func (h *AliasesDBHandler) DeleteAlias(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_alias($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

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

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	UpsertDocument(doc *model.Document) error
	SelectDocument(id uuid.UUID) (*model.Document, error)
	SelectDocumentBySource(source string) (*model.Document, error)
	SearchDocuments(term string, limit int) ([]*model.Document, error)
	DeleteDocument(id uuid.UUID) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		log.Panicf("error initializing documents table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// UpsertDocument inserts a document or updates the existing row with
// the same source, keeping its id stable for edge evidence.
func (h *DocumentsDBHandler) UpsertDocument(doc *model.Document) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_document($1, $2, $3, $4)`,
		doc.Source,
		doc.Title,
		doc.DocType,
		doc.Metadata,
	)

	return scanDocumentInto(row, doc)
}

// SelectDocument retrieves a document by ID
func (h *DocumentsDBHandler) SelectDocument(id uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		id,
	)

	doc := &model.Document{}
	err := scanDocumentInto(row, doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SelectDocumentBySource retrieves a document by its source identifier.
// Returns (nil, nil) when no such document exists.
func (h *DocumentsDBHandler) SelectDocumentBySource(source string) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document_by_source($1)`,
		source,
	)

	doc := &model.Document{}
	err := scanDocumentInto(row, doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SearchDocuments searches documents by title or source pattern
func (h *DocumentsDBHandler) SearchDocuments(term string, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_documents($1, $2)`,
		term,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := scanDocumentInto(rows, doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return docs, nil
}

// DeleteDocument deletes a document by ID
func (h *DocumentsDBHandler) DeleteDocument(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanDocumentInto(row rowScanner, doc *model.Document) error {
	err := row.Scan(
		&doc.ID,
		&doc.Source,
		&doc.Title,
		&doc.DocType,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return helper.NewError("scan", err)
	}

	return nil
}

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

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	UpsertEdge(edge *model.Edge) error
	SelectEdge(id uuid.UUID) (*model.Edge, error)
	SelectEdgesFromNode(srcID uuid.UUID) ([]*model.Edge, error)
	SelectEdgesToNode(dstID uuid.UUID) ([]*model.Edge, error)
	SelectEdgesByEvidence(docID uuid.UUID) ([]*model.Edge, error)
	ReassignEdges(from uuid.UUID, to uuid.UUID) (int, error)
	DeleteEdge(id uuid.UUID) error
}

// EdgesDBHandler handles edge-related database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It initializes the database connection and loads edge-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'edges' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_edges();`)
	if err != nil {
		log.Panicf("error initializing edges table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table edges")

	return nil
}

// UpsertEdge inserts an edge or, if the (src, relation, dst) triple
// already exists, keeps the higher weight and refreshes the evidence.
// The edge struct is filled from the resulting row.
func (h *EdgesDBHandler) UpsertEdge(edge *model.Edge) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_edge($1, $2, $3, $4, $5, $6, $7, $8)`,
		edge.SrcID,
		edge.SrcType,
		edge.Relation,
		edge.DstID,
		edge.DstType,
		edge.Weight,
		nullString(edge.EvidenceText),
		edge.EvidenceDocID,
	)

	return scanEdgeInto(row, edge)
}

// SelectEdge retrieves an edge by ID
func (h *EdgesDBHandler) SelectEdge(id uuid.UUID) (*model.Edge, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_edge($1)`,
		id,
	)

	edge := &model.Edge{}
	err := scanEdgeInto(row, edge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// SelectEdgesFromNode retrieves all edges with the given source node
func (h *EdgesDBHandler) SelectEdgesFromNode(srcID uuid.UUID) ([]*model.Edge, error) {
	return h.selectEdges(`SELECT * FROM select_edges_from_node($1)`, srcID)
}

// SelectEdgesToNode retrieves all edges with the given destination node
func (h *EdgesDBHandler) SelectEdgesToNode(dstID uuid.UUID) ([]*model.Edge, error) {
	return h.selectEdges(`SELECT * FROM select_edges_to_node($1)`, dstID)
}

// SelectEdgesByEvidence retrieves all edges extracted from a document
func (h *EdgesDBHandler) SelectEdgesByEvidence(docID uuid.UUID) ([]*model.Edge, error) {
	return h.selectEdges(`SELECT * FROM select_edges_by_evidence($1)`, docID)
}

// ReassignEdges repoints edges of a merged entity onto the surviving
// one and returns the number of source edges moved.
func (h *EdgesDBHandler) ReassignEdges(from uuid.UUID, to uuid.UUID) (int, error) {
	var moved int
	err := h.db.Instance.QueryRow(
		`SELECT reassign_edges($1, $2)`,
		from,
		to,
	).Scan(&moved)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return moved, nil
}

// DeleteEdge deletes an edge by ID
func (h *EdgesDBHandler) DeleteEdge(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_edge($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func (h *EdgesDBHandler) selectEdges(query string, arg interface{}) ([]*model.Edge, error) {
	rows, err := h.db.Instance.Query(query, arg)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		edge := &model.Edge{}
		err := scanEdgeInto(rows, edge)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}

func scanEdgeInto(row rowScanner, edge *model.Edge) error {
	var evidenceText sql.NullString
	var evidenceDocID uuid.NullUUID
	err := row.Scan(
		&edge.ID,
		&edge.SrcID,
		&edge.SrcType,
		&edge.Relation,
		&edge.DstID,
		&edge.DstType,
		&edge.Weight,
		&evidenceText,
		&evidenceDocID,
		&edge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return helper.NewError("scan", err)
	}
	edge.EvidenceText = evidenceText.String
	edge.EvidenceDocID = evidenceDocID.UUID

	return nil
}

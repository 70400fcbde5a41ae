package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType tags the kind of source document being ingested
type DocumentType string

const (
	DocTypePatent  DocumentType = "patent"
	DocTypePaper   DocumentType = "paper"
	DocTypePress   DocumentType = "press"
	DocTypeNote    DocumentType = "note"
	DocTypeUnknown DocumentType = "unknown"
)

// Document represents a persisted source document row. Edges reference
// documents both as endpoints and as extraction evidence.
type Document struct {
	ID        uuid.UUID    `json:"id"`
	Source    string       `json:"source"`
	Title     string       `json:"title"`
	DocType   DocumentType `json:"doc_type"`
	Metadata  Metadata     `json:"metadata,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DocumentMetadata carries the structured fields supplied by the
// ingestion pipeline alongside the raw chunk text.
type DocumentMetadata struct {
	DocType      DocumentType `json:"doc_type"`
	Title        string       `json:"title"`
	Inventors    []string     `json:"inventors,omitempty"`
	Assignees    []string     `json:"assignees,omitempty"`
	Authors      []string     `json:"authors,omitempty"`
	DOI          string       `json:"doi,omitempty"`
	PatentNumber string       `json:"patent_number,omitempty"`
	Extra        Metadata     `json:"extra,omitempty"`
}

// DocumentInput is the per-document tuple consumed from the ingestion
// pipeline: an identifier, structured metadata and the full text as
// ordered chunks.
type DocumentInput struct {
	DocumentID string           `json:"document_id"`
	Metadata   DocumentMetadata `json:"metadata"`
	Chunks     []string         `json:"chunks"`
}

// FullText joins the ordered chunks back into the document text
func (d *DocumentInput) FullText() string {
	return strings.Join(d.Chunks, "\n\n")
}

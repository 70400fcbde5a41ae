package database

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dfattal/david-gpt-sub005/model"
)

// MemoryStore is an in-process store implementing the same handler
// interfaces as the Postgres handlers. It preserves the store-level
// contracts the consolidation engine depends on: unique (name, kind)
// per entity, unique (alias, kind) with no-op duplicate inserts, and
// a unique (src, relation, dst) edge triple. All operations are
// serialized through one mutex, which is the in-process equivalent of
// the unique-constraint-plus-retry dance.
type MemoryStore struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*model.Entity
	byName   map[string]uuid.UUID
	aliases  map[string]*model.Alias
	edges    map[string]*model.Edge
	docs     map[string]*model.Document
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[uuid.UUID]*model.Entity),
		byName:   make(map[string]uuid.UUID),
		aliases:  make(map[string]*model.Alias),
		edges:    make(map[string]*model.Edge),
		docs:     make(map[string]*model.Document),
	}
}

func entityKey(name string, kind model.EntityKind) string {
	return string(kind) + "\x00" + name
}

func aliasKey(alias string, kind model.EntityKind) string {
	return string(kind) + "\x00" + alias
}

func edgeKey(src uuid.UUID, relation model.Relation, dst uuid.UUID) string {
	return src.String() + "\x00" + string(relation) + "\x00" + dst.String()
}

// UpsertEntity implements the atomic get-or-create. Returns true if a
// new entity row was created.
func (s *MemoryStore) UpsertEntity(entity *model.Entity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entityKey(entity.Name, entity.Kind)
	if id, ok := s.byName[key]; ok {
		existing := s.entities[id]
		existing.MentionCount++
		if existing.Description == "" {
			existing.Description = entity.Description
		}
		existing.UpdatedAt = time.Now()
		*entity = *existing
		return false, nil
	}

	entity.ID = uuid.New()
	entity.MentionCount = 1
	entity.CreatedAt = time.Now()
	entity.UpdatedAt = entity.CreatedAt
	stored := *entity
	s.entities[entity.ID] = &stored
	s.byName[key] = entity.ID

	return true, nil
}

// SelectEntity retrieves an entity by ID, nil if absent
func (s *MemoryStore) SelectEntity(id uuid.UUID) (*model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, nil
	}
	copied := *entity
	return &copied, nil
}

// SelectEntityByName retrieves an entity by exact (name, kind), nil if absent
func (s *MemoryStore) SelectEntityByName(name string, kind model.EntityKind) (*model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[entityKey(name, kind)]
	if !ok {
		return nil, nil
	}
	copied := *s.entities[id]
	return &copied, nil
}

// SelectEntitiesByKind lists entities of a kind ordered by mention
// count descending, paged via limit and offset.
func (s *MemoryStore) SelectEntitiesByKind(kind model.EntityKind, limit int, offset int) ([]*model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []*model.Entity
	for _, entity := range s.entities {
		if entity.Kind == kind {
			copied := *entity
			matching = append(matching, &copied)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if matching[i].MentionCount != matching[j].MentionCount {
			return matching[i].MentionCount > matching[j].MentionCount
		}
		return matching[i].Name < matching[j].Name
	})

	if offset >= len(matching) {
		return nil, nil
	}
	matching = matching[offset:]
	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}

	return matching, nil
}

// SearchEntities searches by case-insensitive substring
func (s *MemoryStore) SearchEntities(term string, kind *model.EntityKind, limit int) ([]*model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(term)
	var matching []*model.Entity
	for _, entity := range s.entities {
		if kind != nil && entity.Kind != *kind {
			continue
		}
		if strings.Contains(strings.ToLower(entity.Name), lower) {
			copied := *entity
			matching = append(matching, &copied)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].MentionCount > matching[j].MentionCount
	})
	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}

	return matching, nil
}

// IncrementMentionCount adds delta to an entity's mention count
func (s *MemoryStore) IncrementMentionCount(id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entity, ok := s.entities[id]; ok {
		entity.MentionCount += delta
		entity.UpdatedAt = time.Now()
	}
	return nil
}

// UpdateEntityStats sets authority score and mention count
func (s *MemoryStore) UpdateEntityStats(id uuid.UUID, authorityScore float64, mentionCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entity, ok := s.entities[id]; ok {
		entity.AuthorityScore = authorityScore
		entity.MentionCount = mentionCount
		entity.UpdatedAt = time.Now()
	}
	return nil
}

// DeleteEntity removes an entity and its aliases and edges, matching
// the cascade behavior of the Postgres schema.
func (s *MemoryStore) DeleteEntity(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil
	}
	delete(s.byName, entityKey(entity.Name, entity.Kind))
	delete(s.entities, id)

	for key, alias := range s.aliases {
		if alias.EntityID == id {
			delete(s.aliases, key)
		}
	}

	return nil
}

// InsertAlias inserts an alias; a duplicate (alias, kind) insert is a
// no-op that fills the struct from the existing row.
func (s *MemoryStore) InsertAlias(alias *model.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aliasKey(alias.Alias, alias.Kind)
	if existing, ok := s.aliases[key]; ok {
		if alias.Confidence > existing.Confidence {
			existing.Confidence = alias.Confidence
		}
		*alias = *existing
		return nil
	}

	alias.ID = uuid.New()
	alias.CreatedAt = time.Now()
	stored := *alias
	s.aliases[key] = &stored

	return nil
}

// SelectAliasByName retrieves an alias by exact (alias, kind), nil if absent
func (s *MemoryStore) SelectAliasByName(aliasName string, kind model.EntityKind) (*model.Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alias, ok := s.aliases[aliasKey(aliasName, kind)]
	if !ok {
		return nil, nil
	}
	copied := *alias
	return &copied, nil
}

// SelectAliasesByEntity retrieves all aliases owned by an entity
func (s *MemoryStore) SelectAliasesByEntity(entityID uuid.UUID) ([]*model.Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var aliases []*model.Alias
	for _, alias := range s.aliases {
		if alias.EntityID == entityID {
			copied := *alias
			aliases = append(aliases, &copied)
		}
	}
	sort.Slice(aliases, func(i, j int) bool {
		return aliases[i].Alias < aliases[j].Alias
	})

	return aliases, nil
}

// ReassignAliases moves all aliases from one entity to another
func (s *MemoryStore) ReassignAliases(from uuid.UUID, to uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for _, alias := range s.aliases {
		if alias.EntityID == from {
			alias.EntityID = to
			moved++
		}
	}
	return moved, nil
}

// DeleteAlias removes an alias by ID
func (s *MemoryStore) DeleteAlias(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, alias := range s.aliases {
		if alias.ID == id {
			delete(s.aliases, key)
			return nil
		}
	}
	return nil
}

// UpsertEdge inserts an edge or merges into the existing triple,
// keeping the higher weight.
func (s *MemoryStore) UpsertEdge(edge *model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey(edge.SrcID, edge.Relation, edge.DstID)
	if existing, ok := s.edges[key]; ok {
		if edge.Weight > existing.Weight {
			existing.Weight = edge.Weight
		}
		if edge.EvidenceText != "" {
			existing.EvidenceText = edge.EvidenceText
		}
		existing.EvidenceDocID = edge.EvidenceDocID
		*edge = *existing
		return nil
	}

	edge.ID = uuid.New()
	edge.CreatedAt = time.Now()
	stored := *edge
	s.edges[key] = &stored

	return nil
}

// SelectEdge retrieves an edge by ID, nil if absent
func (s *MemoryStore) SelectEdge(id uuid.UUID) (*model.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, edge := range s.edges {
		if edge.ID == id {
			copied := *edge
			return &copied, nil
		}
	}
	return nil, nil
}

// SelectEdgesFromNode retrieves all edges with the given source node
func (s *MemoryStore) SelectEdgesFromNode(srcID uuid.UUID) ([]*model.Edge, error) {
	return s.selectEdges(func(e *model.Edge) bool { return e.SrcID == srcID })
}

// SelectEdgesToNode retrieves all edges with the given destination node
func (s *MemoryStore) SelectEdgesToNode(dstID uuid.UUID) ([]*model.Edge, error) {
	return s.selectEdges(func(e *model.Edge) bool { return e.DstID == dstID })
}

// SelectEdgesByEvidence retrieves all edges extracted from a document
func (s *MemoryStore) SelectEdgesByEvidence(docID uuid.UUID) ([]*model.Edge, error) {
	return s.selectEdges(func(e *model.Edge) bool { return e.EvidenceDocID == docID })
}

// ReassignEdges repoints edges from one entity to another
func (s *MemoryStore) ReassignEdges(from uuid.UUID, to uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	rekeyed := make(map[string]*model.Edge, len(s.edges))
	for _, edge := range s.edges {
		if edge.SrcID == from {
			edge.SrcID = to
			moved++
		}
		if edge.DstID == from {
			edge.DstID = to
		}
		key := edgeKey(edge.SrcID, edge.Relation, edge.DstID)
		if existing, ok := rekeyed[key]; ok {
			if edge.Weight > existing.Weight {
				existing.Weight = edge.Weight
			}
			continue
		}
		rekeyed[key] = edge
	}
	s.edges = rekeyed

	return moved, nil
}

// DeleteEdge removes an edge by ID
func (s *MemoryStore) DeleteEdge(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, edge := range s.edges {
		if edge.ID == id {
			delete(s.edges, key)
			return nil
		}
	}
	return nil
}

// UpsertDocument inserts a document or updates the row with the same source
func (s *MemoryStore) UpsertDocument(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.docs[doc.Source]; ok {
		existing.Title = doc.Title
		existing.DocType = doc.DocType
		existing.Metadata = doc.Metadata
		existing.UpdatedAt = time.Now()
		*doc = *existing
		return nil
	}

	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	stored := *doc
	s.docs[doc.Source] = &stored

	return nil
}

// SelectDocument retrieves a document by ID, nil if absent
func (s *MemoryStore) SelectDocument(id uuid.UUID) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs {
		if doc.ID == id {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

// SelectDocumentBySource retrieves a document by source, nil if absent
func (s *MemoryStore) SelectDocumentBySource(source string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[source]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

// SearchDocuments searches documents by title or source substring
func (s *MemoryStore) SearchDocuments(term string, limit int) ([]*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(term)
	var docs []*model.Document
	for _, doc := range s.docs {
		if strings.Contains(strings.ToLower(doc.Title), lower) ||
			strings.Contains(strings.ToLower(doc.Source), lower) {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	return docs, nil
}

// DeleteDocument removes a document by ID
func (s *MemoryStore) DeleteDocument(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for source, doc := range s.docs {
		if doc.ID == id {
			delete(s.docs, source)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) selectEdges(match func(*model.Edge) bool) ([]*model.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var edges []*model.Edge
	for _, edge := range s.edges {
		if match(edge) {
			copied := *edge
			edges = append(edges, &copied)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Weight > edges[j].Weight
	})

	return edges, nil
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"docuvault/internal/document/model"
	"docuvault/internal/document/repository"
	"docuvault/pkg/apperr"
	"docuvault/socket"
)

// SnapshotVersion identifies the snapshot producer. It is informational:
// different deployments may emit different strings and importers do not
// gate on it.
const SnapshotVersion = "docuvault-1"

type DocumentService struct {
	Repo *repository.DocumentRepository
	Hub  *socket.Hub // nil when no change feed is attached (CLI paths)
}

func NewDocumentService(repo *repository.DocumentRepository, hub *socket.Hub) *DocumentService {
	return &DocumentService{Repo: repo, Hub: hub}
}

func (s *DocumentService) ReadStore(ctx context.Context, store string) ([]json.RawMessage, error) {
	return s.Repo.ReadStore(ctx, store)
}

// Upsert validates that content carries a non-empty id, then writes it
// through the repository's atomic insert-or-replace. The id authority is
// the body, not the URL: whatever id the content declares is the key.
func (s *DocumentService) Upsert(ctx context.Context, store string, content json.RawMessage) error {
	id, err := extractID(content)
	if err != nil {
		return err
	}
	if err := s.Repo.Upsert(ctx, id, store, content); err != nil {
		return err
	}
	s.publish(socket.ChangeEvent{Type: socket.UpsertType, Store: store, ID: id, Payload: content})
	return nil
}

// Delete removes a document by id. The store argument exists for routing
// symmetry and the change feed; the deletion key is the id alone.
func (s *DocumentService) Delete(ctx context.Context, store, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(socket.ChangeEvent{Type: socket.DeleteType, Store: store, ID: id})
	return nil
}

func (s *DocumentService) Health(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

// ExportAll produces a complete snapshot of every store, or an error —
// never a partial result. The schema is re-ensured first so an export
// against a fresh database yields an empty snapshot instead of a missing-
// table failure.
func (s *DocumentService) ExportAll(ctx context.Context) (*model.Snapshot, error) {
	if err := s.Repo.EnsureSchema(ctx); err != nil {
		return nil, &apperr.ExportError{Hint: "verify the database is reachable and the documents table can be created", Err: err}
	}

	docs, err := s.Repo.ReadAll(ctx)
	if err != nil {
		return nil, &apperr.ExportError{Hint: "verify the documents table exists", Err: err}
	}

	data := make(map[string][]json.RawMessage)
	for _, doc := range docs {
		data[doc.Store] = append(data[doc.Store], doc.Content)
	}

	return &model.Snapshot{
		Version:     SnapshotVersion,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Data:        data,
		RecordCount: len(docs),
	}, nil
}

// Import replays a snapshot through the upsert path. It is a merge:
// documents absent from the snapshot are left alone, and re-importing the
// same snapshot is a no-op state-wise. Returns the number of documents
// applied before any failure.
func (s *DocumentService) Import(ctx context.Context, snap *model.Snapshot) (int, error) {
	imported := 0
	for store, contents := range snap.Data {
		for _, content := range contents {
			if err := s.Upsert(ctx, store, content); err != nil {
				return imported, err
			}
			imported++
		}
	}
	return imported, nil
}

func (s *DocumentService) publish(evt socket.ChangeEvent) {
	if s.Hub != nil {
		s.Hub.Publish(evt)
	}
}

func extractID(content json.RawMessage) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return "", &apperr.ValidationError{Reason: "document must be a JSON object"}
	}
	if probe.ID == "" {
		return "", &apperr.ValidationError{Reason: "missing id"}
	}
	return probe.ID, nil
}

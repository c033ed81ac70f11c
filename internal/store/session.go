package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/spacesedan/ideiamap/internal/annotation"
	"github.com/spacesedan/ideiamap/internal/ingest"
	"github.com/spacesedan/ideiamap/internal/models"
)

// AnnotatorProvider hands out the annotator a session works with. It is
// called again after every Reset.
type AnnotatorProvider func() (Annotator, error)

// Session owns one Store and the annotator handle used to fill it.
type Session struct {
	ID    uuid.UUID
	store *Store

	provider  AnnotatorProvider
	annotator Annotator
	mu        sync.Mutex
}

func NewSession(provider AnnotatorProvider) *Session {
	return &Session{
		ID:       uuid.New(),
		store:    New(),
		provider: provider,
	}
}

func (s *Session) acquire() (Annotator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.annotator != nil {
		return s.annotator, nil
	}

	annotator, err := s.provider()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire annotator: %w", err)
	}
	s.annotator = annotator
	slog.Debug("[Session] Annotator acquired", slog.String("session", s.ID.String()))
	return annotator, nil
}

// LoadBatch replaces the session's batch slice with the annotated ideas.
func (s *Session) LoadBatch(ctx context.Context, ideas []models.Idea, progress annotation.ProgressFunc) ([]models.AnnotatedIdea, error) {
	annotator, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return s.store.LoadBatch(ctx, annotator, ideas, progress), nil
}

// LoadBatchFile validates and parses a batch file, then loads it. A file
// without the text column leaves the current batch untouched.
func (s *Session) LoadBatchFile(ctx context.Context, filename string, r io.Reader, progress annotation.ProgressFunc) ([]models.AnnotatedIdea, error) {
	ideas, err := ingest.ReadIdeas(filename, r)
	if err != nil {
		return nil, err
	}
	return s.LoadBatch(ctx, ideas, progress)
}

func (s *Session) AddIndividual(ctx context.Context, text string) (models.AnnotatedIdea, error) {
	annotator, err := s.acquire()
	if err != nil {
		return models.AnnotatedIdea{}, err
	}
	return s.store.AddIndividual(ctx, annotator, models.NewIndividualIdea(text)), nil
}

func (s *Session) AllRecords() []models.AnnotatedIdea {
	return s.store.AllRecords()
}

func (s *Session) Store() *Store {
	return s.store
}

// Reset wipes all records and drops the annotator handle so the next call
// acquires a fresh one.
func (s *Session) Reset() {
	s.store.Reset()

	s.mu.Lock()
	s.annotator = nil
	s.mu.Unlock()

	slog.Info("[Session] Session reset", slog.String("session", s.ID.String()))
}

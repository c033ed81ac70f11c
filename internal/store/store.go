package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spacesedan/ideiamap/internal/annotation"
	"github.com/spacesedan/ideiamap/internal/models"
)

// Annotator is the orchestrator the store delegates annotation to.
type Annotator interface {
	Annotate(ctx context.Context, idea models.Idea) models.AnnotatedIdea
	AnnotateBatch(ctx context.Context, ideas []models.Idea, progress annotation.ProgressFunc) []models.AnnotatedIdea
}

// Store accumulates the annotated records of one session. The batch slice
// is only ever replaced whole; the individual slice only grows until Reset.
//
// Every Reset starts a new generation. Annotation runs outside the lock, so
// records annotated under an older generation are dropped instead of stored.
type Store struct {
	batch      []models.AnnotatedIdea
	individual []models.AnnotatedIdea
	generation uint64
	mu         sync.RWMutex
}

func New() *Store {
	return &Store{}
}

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LoadBatch annotates ideas and replaces the batch slice with the result.
// The previous batch is never consulted.
func (s *Store) LoadBatch(ctx context.Context, annotator Annotator, ideas []models.Idea, progress annotation.ProgressFunc) []models.AnnotatedIdea {
	generation := s.currentGeneration()
	records := annotator.AnnotateBatch(ctx, ideas, progress)
	batch := append([]models.AnnotatedIdea(nil), records...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		slog.Warn("[Store] Store was reset while annotating, batch discarded",
			slog.Int("records", len(records)))
		return records
	}
	s.batch = batch

	slog.Info("[Store] Batch slice replaced", slog.Int("records", len(records)))
	return records
}

// AddIndividual annotates one idea and appends it to the individual slice.
func (s *Store) AddIndividual(ctx context.Context, annotator Annotator, idea models.Idea) models.AnnotatedIdea {
	generation := s.currentGeneration()
	record := annotator.Annotate(ctx, idea)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		slog.Warn("[Store] Store was reset while annotating, idea discarded")
		return record
	}
	s.individual = append(s.individual, record)
	return record
}

// AllRecords returns the batch slice followed by the individual slice.
func (s *Store) AllRecords() []models.AnnotatedIdea {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.AnnotatedIdea, 0, len(s.batch)+len(s.individual))
	all = append(all, s.batch...)
	return append(all, s.individual...)
}

func (s *Store) BatchRecords() []models.AnnotatedIdea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AnnotatedIdea(nil), s.batch...)
}

func (s *Store) IndividualRecords() []models.AnnotatedIdea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AnnotatedIdea(nil), s.individual...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batch) + len(s.individual)
}

// Reset clears both slices and starts a new generation.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = nil
	s.individual = nil
	s.generation++
}

// Package subjectcache is the read side over hydrated subjects: lookup by id,
// free-text search, related subjects and sentence lookup.
//
// Reads go through a short-lived memo. The memo is only an optimization; it
// reflects a concurrently finished hydration only after Invalidate or
// InvalidateAll, which the hydration pipeline calls after every committed page.
package subjectcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/subject"
)

const (
	subjectKeyPrefix = "subject:"
	searchKeyPrefix  = "search:"
)

// Store is the read contract of the local subject store.
type Store interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]subject.Subject, error)
	SearchByText(ctx context.Context, query string, limit int) ([]subject.Subject, error)
	FindByCharacters(ctx context.Context, characters []string) ([]subject.Subject, error)
}

// Service is constructed once per process and shared.
type Service struct {
	store    Store
	memo     Memo
	analyzer *Analyzer
	logger   *slog.Logger

	// gen counts invalidations. A store read that started under an older
	// generation is returned to its caller but not memoized.
	fillMu sync.RWMutex
	gen    uint64
}

type Option func(*Service)

// WithMemo replaces the default no-op memo.
func WithMemo(m Memo) Option {
	return func(s *Service) { s.memo = m }
}

// WithAnalyzer enables LookupSentence.
func WithAnalyzer(a *Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		memo:   NewLocalMemo(0, 0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByIDs returns the subjects for ids; unknown ids are absent from the map.
func (s *Service) GetByIDs(ctx context.Context, ids []int64) (map[int64]subject.Subject, error) {
	out := make(map[int64]subject.Subject, len(ids))
	var misses []int64

	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		if cached, ok := s.memoSubject(ctx, id); ok {
			out[id] = cached
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}

	gen := s.generation()
	found, err := s.store.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, subj := range found {
		out[id] = subj
		s.storeSubject(ctx, gen, subj)
	}
	return out, nil
}

// GetOrdered returns the subjects for ids in the order given, skipping unknown
// ids and duplicates.
func (s *Service) GetOrdered(ctx context.Context, ids []int64) ([]subject.Subject, error) {
	found, err := s.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]subject.Subject, 0, len(found))
	seen := make(map[int64]bool, len(found))
	for _, id := range ids {
		subj, ok := found[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, subj)
	}
	return out, nil
}

// Get returns one subject. ok is false when it is not hydrated.
func (s *Service) Get(ctx context.Context, id int64) (subject.Subject, bool, error) {
	found, err := s.GetByIDs(ctx, []int64{id})
	if err != nil {
		return subject.Subject{}, false, err
	}
	subj, ok := found[id]
	return subj, ok, nil
}

// Search returns matching subjects in store order. An empty query lists all
// visible subjects.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]subject.Subject, error) {
	key := searchKeyPrefix + strconv.Itoa(limit) + ":" + subjects.NormalizeQuery(query)

	if data, ok := s.memo.Get(ctx, key); ok {
		var ids []int64
		if err := json.Unmarshal(data, &ids); err == nil {
			return s.GetOrdered(ctx, ids)
		}
	}

	gen := s.generation()
	results, err := s.store.SearchByText(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(results))
	for i, subj := range results {
		ids[i] = subj.ID
		s.storeSubject(ctx, gen, subj)
	}
	if data, err := json.Marshal(ids); err == nil {
		s.fill(ctx, gen, key, data)
	}
	return results, nil
}

// Components returns the subjects a subject is built from, in stored order.
func (s *Service) Components(ctx context.Context, id int64) ([]subject.Subject, error) {
	subj, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return s.GetOrdered(ctx, subj.ComponentSubjectIDs)
}

// Amalgamations returns the subjects that use a subject as a component.
func (s *Service) Amalgamations(ctx context.Context, id int64) ([]subject.Subject, error) {
	subj, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return s.GetOrdered(ctx, subj.AmalgamationSubjectIDs)
}

// Invalidate drops memoized entries for ids and every memoized search.
func (s *Service) Invalidate(ids []int64) {
	s.bump()
	ctx := context.Background()
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = subjectKey(id)
	}
	s.memo.Delete(ctx, keys...)
	s.memo.DeletePrefix(ctx, searchKeyPrefix)
}

// InvalidateAll drops every memoized entry.
func (s *Service) InvalidateAll() {
	s.bump()
	ctx := context.Background()
	s.memo.DeletePrefix(ctx, subjectKeyPrefix)
	s.memo.DeletePrefix(ctx, searchKeyPrefix)
}

func (s *Service) memoSubject(ctx context.Context, id int64) (subject.Subject, bool) {
	data, ok := s.memo.Get(ctx, subjectKey(id))
	if !ok {
		return subject.Subject{}, false
	}
	var subj subject.Subject
	if err := json.Unmarshal(data, &subj); err != nil {
		s.logger.Warn("discarding undecodable memo entry", "id", id, "error", err)
		return subject.Subject{}, false
	}
	return subj, true
}

func (s *Service) generation() uint64 {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	return s.gen
}

func (s *Service) bump() {
	s.fillMu.Lock()
	s.gen++
	s.fillMu.Unlock()
}

// fill memoizes data unless an invalidation happened since gen was read.
func (s *Service) fill(ctx context.Context, gen uint64, key string, data []byte) {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	if s.gen != gen {
		return
	}
	s.memo.Set(ctx, key, data)
}

func (s *Service) storeSubject(ctx context.Context, gen uint64, subj subject.Subject) {
	data, err := json.Marshal(subj)
	if err != nil {
		return
	}
	s.fill(ctx, gen, subjectKey(subj.ID), data)
}

func subjectKey(id int64) string {
	return subjectKeyPrefix + strconv.FormatInt(id, 10)
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/database"
	"github.com/kanjisync/kanjisync/internal/database/cursor"
	"github.com/kanjisync/kanjisync/internal/database/runs"
	"github.com/kanjisync/kanjisync/internal/database/settings"
	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/scheduler"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
	"github.com/kanjisync/kanjisync/internal/subject"
	"github.com/kanjisync/kanjisync/internal/subjectcache"
	"github.com/kanjisync/kanjisync/internal/wanikani"
)

const validTestToken = "abcd1234efgh5678"

// newUserServer answers /user like the WaniKani API: 200 for validTestToken,
// 500 for "outage" and 401 for anything else.
func newUserServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + validTestToken:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"user","data":{"username":"koichi","level":12}}`))
		case "Bearer outage":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stubSource serves a single page of subjects.
type stubSource struct {
	mu      sync.Mutex
	records []subject.Subject
	calls   int
}

func (s *stubSource) FetchSubjectsPage(_ context.Context, _ *time.Time, _ string) (*hydration.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	total := len(s.records)
	return &hydration.Page{Records: s.records, TotalCount: &total}, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testEnv struct {
	router    *gin.Engine
	db        *database.Database
	subjects  *subjects.Repository
	pipeline  *hydration.Pipeline
	scheduler *scheduler.HydrationScheduler
	settings  *settingsstore.SettingsStore
	source    *stubSource
}

func sampleSubjects() []subject.Subject {
	return []subject.Subject{
		{
			ID:                     1,
			Kind:                   subject.KindRadical,
			Characters:             "一",
			Slug:                   "ground",
			Level:                  1,
			LessonPosition:         0,
			Meanings:               []subject.Meaning{{Meaning: "Ground", Primary: true, AcceptedAnswer: true}},
			AmalgamationSubjectIDs: []int64{440},
		},
		{
			ID:                  440,
			Kind:                subject.KindKanji,
			Characters:          "一",
			Level:               1,
			LessonPosition:      1,
			Meanings:            []subject.Meaning{{Meaning: "One", Primary: true, AcceptedAnswer: true}},
			Readings:            []subject.Reading{{Reading: "いち", Primary: true, AcceptedAnswer: true, Type: subject.ReadingOnyomi}},
			ComponentSubjectIDs: []int64{1},
		},
		{
			ID:             2467,
			Kind:           subject.KindVocabulary,
			Characters:     "取る",
			Level:          2,
			LessonPosition: 5,
			Meanings:       []subject.Meaning{{Meaning: "To Take", Primary: true, AcceptedAnswer: true}},
			Readings:       []subject.Reading{{Reading: "とる", Primary: true, AcceptedAnswer: true}},
		},
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv(settingsstore.EnvHydrationEnabled, "")
	t.Setenv(settingsstore.EnvHydrationToken, "")
	t.Setenv(settingsstore.EnvHydrationSchedule, "")

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	subjectsRepo := subjects.NewRepository(db.DB)
	require.NoError(t, subjectsRepo.UpsertSubjects(context.Background(), sampleSubjects(), time.Now()))

	cache := subjectcache.NewService(subjectsRepo, subjectcache.WithMemo(subjectcache.NewLocalMemo(time.Minute, 100)))
	cursors := cursor.NewRepository(db.DB)
	history := runs.NewRepository(db.DB)
	store := settingsstore.New(settings.NewRepository(db.DB))

	source := &stubSource{records: sampleSubjects()[:1]}
	pipeline := hydration.NewPipeline(source, subjectsRepo, cursors,
		hydration.WithRunRecorder(history),
		hydration.WithInvalidator(cache),
	)
	sched := scheduler.NewHydrationScheduler(pipeline, store, time.Minute, nil)
	t.Cleanup(sched.Stop)
	client := wanikani.NewClient(newUserServer(t).URL, time.Second)

	router := NewRouter(RouterConfig{
		Version:   "test",
		Database:  db,
		Stats:     subjectsRepo,
		Subjects:  cache,
		Pipeline:  pipeline,
		Scheduler: sched,
		Cursors:   cursors,
		Runs:      history,
		Settings:  store,
		Tokens:    client,
	})

	return &testEnv{
		router:    router,
		db:        db,
		subjects:  subjectsRepo,
		pipeline:  pipeline,
		scheduler: sched,
		settings:  store,
		source:    source,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/hydration"
)

func TestNewClient(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	cfg := DefaultConfig()
	client, err := NewClient(dbPath, cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "tasks.db"), DefaultConfig(), nil)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

type recordingHydrator struct {
	triggers chan hydration.Trigger
	result   hydration.Result
	err      error
}

func (h *recordingHydrator) RunNow(_ context.Context, trigger hydration.Trigger) (hydration.Result, error) {
	h.triggers <- trigger
	return h.result, h.err
}

func TestHydrateSubjectsTask_Enqueue(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "tasks.db"), DefaultConfig(), nil)
	require.NoError(t, err)
	defer client.Close()

	h := &recordingHydrator{triggers: make(chan hydration.Trigger, 1)}
	client.Register(NewHydrateSubjectsQueue(h, DefaultConfig(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueHydration(ctx, hydration.TriggerManual)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case trigger := <-h.triggers:
		assert.Equal(t, hydration.TriggerManual, trigger)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}

	_, err = client.Status(ctx, id)
	assert.NoError(t, err)
}

func TestHydrateSubjectsProcessor(t *testing.T) {
	transient := &hydration.RunError{Phase: hydration.PhaseFetch, Page: 1, Err: errors.New("503")}
	persist := &hydration.RunError{Phase: hydration.PhasePersist, Page: 1, Err: errors.New("disk full")}

	tests := []struct {
		name    string
		result  hydration.Result
		err     error
		wantErr bool
	}{
		{"completed", hydration.Result{PagesFetched: 1}, nil, false},
		{"skipped", hydration.Result{Skipped: true, SkipReason: hydration.SkipAlreadyRunning}, nil, false},
		{"transient failure is retried", hydration.Result{}, transient, true},
		{"persist failure is not retried", hydration.Result{}, persist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHydrator{triggers: make(chan hydration.Trigger, 1), result: tt.result, err: tt.err}
			process := HydrateSubjectsProcessor(h, nil)

			err := process(context.Background(), HydrateSubjectsTask{})
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, hydration.TriggerManual, <-h.triggers, "empty trigger defaults to manual")
		})
	}
}

func TestHydrateSubjectsTaskConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 5
	NewHydrateSubjectsQueue(&recordingHydrator{}, cfg, nil)
	defer NewHydrateSubjectsQueue(&recordingHydrator{}, DefaultConfig(), nil)

	qc := HydrateSubjectsTask{}.Config()
	assert.Equal(t, HydrateSubjectsQueue, qc.Name)
	assert.Equal(t, 5, qc.MaxAttempts)
	assert.Equal(t, time.Minute, qc.Backoff)
	assert.Equal(t, 30*time.Minute, qc.Timeout)
	assert.NotNil(t, qc.Retention)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 30*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 45*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 3, TaskTimeout: time.Hour})

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, time.Hour, cfg.TaskTimeout)
	assert.Equal(t, 3, cfg.MaxRetries, "unset values keep defaults")
}

var _ backlite.Task = HydrateSubjectsTask{}

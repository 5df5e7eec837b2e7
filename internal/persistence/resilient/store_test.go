package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/persistence/memory"
	"example.com/fitness/internal/query"
)

type flakyStore struct {
	domain.Store
	err   error
	calls int
}

func (f *flakyStore) CountWorkouts(ctx context.Context, p query.Predicate) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.Store.CountWorkouts(ctx, p)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	flaky := &flakyStore{Store: memory.NewStore(), err: errors.New("connection reset")}
	store := Wrap(flaky, Settings{Name: "test", FailureThreshold: 3, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := store.CountWorkouts(context.Background(), query.Predicate{})
		require.ErrorIs(t, err, flaky.err)
	}
	require.Equal(t, "open", store.State())

	_, err := store.CountWorkouts(context.Background(), query.Predicate{})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 3, flaky.calls)
}

func TestCancelledCallsDoNotTrip(t *testing.T) {
	flaky := &flakyStore{Store: memory.NewStore(), err: context.Canceled}
	store := Wrap(flaky, Settings{FailureThreshold: 1, OpenTimeout: time.Minute})

	for i := 0; i < 5; i++ {
		_, err := store.CountWorkouts(context.Background(), query.Predicate{})
		require.ErrorIs(t, err, context.Canceled)
	}
	require.Equal(t, "closed", store.State())
}

func TestOpenBreakerSurfacesAsStoreError(t *testing.T) {
	flaky := &flakyStore{Store: memory.NewStore(), err: errors.New("timeout")}
	svc := domain.NewService(Wrap(flaky, Settings{FailureThreshold: 1, OpenTimeout: time.Minute}), nil)

	_, err := svc.ListWorkouts(context.Background(), query.RawOptions{})
	require.ErrorIs(t, err, domain.ErrStore)

	_, err = svc.ListWorkouts(context.Background(), query.RawOptions{})
	require.ErrorIs(t, err, domain.ErrStore)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestPassThroughReturnsValues(t *testing.T) {
	mem := memory.NewStore()
	w := mem.AddWorkout(domain.Workout{Title: "Row"})
	store := Wrap(mem, Settings{})
	ctx := context.Background()

	got, err := store.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, "Row", got.Title)

	missing, err := store.GetWorkout(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, missing)

	b, created, err := store.InsertBookmark(ctx, "u", w.ID)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, w.ID, b.WorkoutID)

	toggled, added, err := store.ToggleBookmark(ctx, "u", w.ID)
	require.NoError(t, err)
	require.False(t, added)
	require.Nil(t, toggled)
}

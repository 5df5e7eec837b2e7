package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/query"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	notFound := NotFoundError("GetWorkout", "workout")
	require.ErrorIs(t, notFound, ErrNotFound)
	require.NotErrorIs(t, notFound, ErrStore)
	require.Equal(t, "GetWorkout: workout not found", notFound.Error())

	wrapped := fmt.Errorf("handler: %w", StoreError("ListWorkouts", context.DeadlineExceeded))
	require.ErrorIs(t, wrapped, ErrStore)
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
	require.Equal(t, KindStore, KindOf(wrapped))
}

func TestStoreErrorKeepsExistingKind(t *testing.T) {
	err := StoreError("ToggleBookmark", NotFoundError("GetWorkout", "workout"))
	require.Equal(t, KindNotFound, KindOf(err))
	require.Nil(t, StoreError("noop", nil))
}

func TestKindOfQueryValidation(t *testing.T) {
	_, err := query.Normalize(query.ResourceWorkouts, query.RawOptions{SortBy: "nope"})
	require.Equal(t, KindValidation, KindOf(err))
	require.Equal(t, KindUnknown, KindOf(errors.New("other")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

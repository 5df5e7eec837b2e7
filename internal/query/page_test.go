package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginateMiddlePage(t *testing.T) {
	meta := Paginate(25, 2, 10)

	require.Equal(t, 2, meta.CurrentPage)
	require.Equal(t, 3, meta.TotalPages)
	require.EqualValues(t, 25, meta.TotalCount)
	require.Equal(t, 10, meta.Limit)
	require.True(t, meta.HasNextPage)
	require.True(t, meta.HasPrevPage)
	require.NotNil(t, meta.NextPage)
	require.Equal(t, 3, *meta.NextPage)
	require.NotNil(t, meta.PrevPage)
	require.Equal(t, 1, *meta.PrevPage)

	spec := Spec{Page: 2, Limit: 10}
	require.Equal(t, 10, spec.Offset())
}

func TestPaginateEmpty(t *testing.T) {
	meta := Paginate(0, 1, 10)

	require.Equal(t, 0, meta.TotalPages)
	require.False(t, meta.HasNextPage)
	require.False(t, meta.HasPrevPage)
	require.Nil(t, meta.NextPage)
	require.Nil(t, meta.PrevPage)
}

func TestPaginateLastAndBeyondLastPage(t *testing.T) {
	meta := Paginate(30, 3, 10)
	require.Equal(t, 3, meta.TotalPages)
	require.False(t, meta.HasNextPage)
	require.Nil(t, meta.NextPage)

	meta = Paginate(30, 7, 10)
	require.False(t, meta.HasNextPage)
	require.True(t, meta.HasPrevPage)
	require.Equal(t, 6, *meta.PrevPage)
}

func TestPaginateInvariants(t *testing.T) {
	for total := int64(0); total <= 57; total++ {
		for limit := 1; limit <= 12; limit++ {
			for page := 1; page <= 8; page++ {
				meta := Paginate(total, page, limit)

				expectedPages := int(total / int64(limit))
				if total%int64(limit) != 0 {
					expectedPages++
				}
				require.Equal(t, expectedPages, meta.TotalPages)
				require.Equal(t, page < meta.TotalPages, meta.HasNextPage)
				require.Equal(t, page > 1, meta.HasPrevPage)
				require.Equal(t, meta.HasNextPage, meta.NextPage != nil)
				require.Equal(t, meta.HasPrevPage, meta.PrevPage != nil)
				if meta.NextPage != nil {
					require.Equal(t, page+1, *meta.NextPage)
				}
				if meta.PrevPage != nil {
					require.Equal(t, page-1, *meta.PrevPage)
				}
				require.Equal(t, (page-1)*limit, Spec{Page: page, Limit: limit}.Offset())
			}
		}
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, 0, Spec{Page: 1, Limit: 10})
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
}

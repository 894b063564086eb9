package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sliceFetch(data []int, calls *int) FetchFunc[int] {
	return func(_ context.Context, offset, limit int) ([]int, error) {
		*calls++
		if offset >= len(data) {
			return nil, nil
		}
		end := offset + limit
		if end > len(data) {
			end = len(data)
		}
		return data[offset:end], nil
	}
}

func TestSourcePages(t *testing.T) {
	data := make([]int, 45)
	for i := range data {
		data[i] = i
	}
	calls := 0
	src := NewSource(sliceFetch(data, &calls), 0, nil, nil)
	ctx := context.Background()

	assert.Equal(t, DefaultPageSize, src.PageSize())

	tests := []struct {
		page     int
		wantLen  int
		wantNext bool
		first    int
	}{
		{page: 1, wantLen: 20, wantNext: true, first: 0},
		{page: 2, wantLen: 20, wantNext: true, first: 20},
		{page: 3, wantLen: 5, wantNext: false, first: 40},
		{page: 4, wantLen: 0, wantNext: false},
	}
	for _, tt := range tests {
		p, err := src.Page(ctx, tt.page)
		require.NoError(t, err)
		assert.Len(t, p.Items, tt.wantLen, "page %d", tt.page)
		assert.Equal(t, tt.wantNext, p.HasNext, "page %d", tt.page)
		assert.Equal(t, tt.page, p.Page)
		if tt.wantLen > 0 {
			assert.Equal(t, tt.first, p.Items[0])
		}
	}
	assert.Equal(t, 4, calls)
}

func TestSourceAllIsLazy(t *testing.T) {
	data := make([]int, 50)
	for i := range data {
		data[i] = i
	}
	calls := 0
	src := NewSource(sliceFetch(data, &calls), 10, nil, nil)

	var got []int
	for v, err := range src.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, v)
		if len(got) == 15 {
			break
		}
	}
	assert.Len(t, got, 15)
	assert.Equal(t, 2, calls, "only the pages reached should be fetched")
}

func TestSourceAllYieldsError(t *testing.T) {
	boom := errors.New("boom")
	src := NewSource(func(context.Context, int, int) ([]int, error) { return nil, boom }, 5, nil, nil)

	var errs []error
	for _, err := range src.All(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestSourceCloseReleasesOnce(t *testing.T) {
	released := 0
	sig := make(chan struct{})
	src := NewSource(func(context.Context, int, int) ([]int, error) { return nil, nil }, 5, sig, func() { released++ })

	assert.Equal(t, (<-chan struct{})(sig), src.Invalidated())
	src.Close()
	src.Close()
	assert.Equal(t, 1, released)
}

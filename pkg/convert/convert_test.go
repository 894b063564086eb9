package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrTo(t *testing.T) {
	assert.Equal(t, 12, StrTo(" 12 ").MustInt())
	assert.Equal(t, 0, StrTo("x").MustInt())
	assert.Equal(t, int64(1<<40), StrTo("1099511627776").MustInt64())

	v, err := StrTo("").OptionalInt64()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StrTo("7").OptionalInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), *v)

	_, err = StrTo("seven").OptionalInt64()
	assert.Error(t, err)

	assert.Nil(t, StrTo("").OptionalString())
	assert.Equal(t, " a ", *StrTo(" a ").OptionalString())
}

type srcNote struct {
	ID    int64
	Title *string
	Tags  []string
}

type dstNote struct {
	ID    int64    `json:"id"`
	Title *string  `json:"title,omitempty"`
	Tags  []string `json:"tags"`
}

func TestCopyIsDeep(t *testing.T) {
	title := "t"
	src := srcNote{ID: 3, Title: &title, Tags: []string{"a"}}
	var dst dstNote
	require.NoError(t, Copy(&dst, &src))

	assert.Equal(t, int64(3), dst.ID)
	assert.Equal(t, "t", *dst.Title)
	src.Tags[0] = "changed"
	*src.Title = "changed"
	assert.Equal(t, []string{"a"}, dst.Tags)
	assert.Equal(t, "t", *dst.Title)
}

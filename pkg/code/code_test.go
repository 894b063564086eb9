package code

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedCodesKeepIdentity(t *testing.T) {
	cause := errors.New("row missing")
	err := ErrorNoteNotFound.WithDetails("id: 3").WithCause(cause)

	assert.ErrorIs(t, err, ErrorNoteNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrorTagNotFound)
	assert.Equal(t, []string{"id: 3"}, err.Details())
	assert.Equal(t, "Note does not exist: row missing", err.Error())

	assert.False(t, ErrorNoteNotFound.HaveDetails(), "registered code is not mutated")
	assert.Nil(t, ErrorNoteNotFound.Unwrap())

	var c *Code
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &c))
	assert.Equal(t, 430, c.Code())
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code *Code
		want int
	}{
		{Success, http.StatusOK},
		{SuccessCreate, http.StatusOK},
		{ErrorInvalidParams, http.StatusBadRequest},
		{ErrorNoteNotFound, http.StatusNotFound},
		{ErrorTagNameExists, http.StatusConflict},
		{ErrorStorageRetryable, http.StatusServiceUnavailable},
		{ErrorServerInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code.Msg(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.StatusCode())
		})
	}
	assert.True(t, SuccessDelete.Status())
	assert.False(t, ErrorStorage.Status())
}

func TestWithDataClones(t *testing.T) {
	c := Success.WithData(map[string]int{"id": 1})
	assert.True(t, c.HaveData())
	assert.False(t, Success.HaveData())
	assert.Nil(t, c.Clone().Data())
}

func TestLanguage(t *testing.T) {
	t.Cleanup(func() { _ = SetGlobalDefaultLang("en") })

	assert.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "标签不存在", ErrorTagNotFound.Msg())

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, "en", GetGlobalDefaultLang())
	assert.Equal(t, "Tag does not exist", ErrorTagNotFound.Msg())
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	assert.Panics(t, func() { NewError(430, lang{en: "again"}, http.StatusNotFound) })
	assert.Panics(t, func() { NewSuss(1, lang{en: "again"}) })
}

package serializer

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr_DetailOnlyWhenEnabled(t *testing.T) {
	t.Cleanup(func() { ShowErrorDetail(false) })
	cause := errors.New("connection reset")

	res := DBErr("", cause)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "internal server error", res.Message)
	assert.Empty(t, res.Error)

	ShowErrorDetail(true)
	assert.Equal(t, "connection reset", DBErr("", cause).Error)
	assert.Equal(t, "bad id", ParamErr("", errors.New("bad id")).Error)

	ShowErrorDetail(false)
	assert.Empty(t, ParamErr("", cause).Error)
}

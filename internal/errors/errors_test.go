package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"haplocheck/domain/core"
)

func TestWrap_KeepsChain(t *testing.T) {
	err := Wrap(core.NewMarkerNotFoundError("rs9"), "indexing cohorts")
	assert.ErrorIs(t, err, core.ErrMarkerNotFound)
	assert.Equal(t, CodeDataShape, GetCode(err))
	assert.Contains(t, err.Error(), "indexing cohorts: ")
	assert.Nil(t, Wrap(nil, "x"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
		exit   int
	}{
		{nil, "", http.StatusInternalServerError, 0},
		{core.ErrInsufficientMarkers, CodeConfigInvalid, http.StatusBadRequest, 2},
		{core.NewPartialParametersError([]string{"CRP"}), CodeConfigInvalid, http.StatusBadRequest, 2},
		{fmt.Errorf("load: %w", core.NewMalformedError("bad")), CodeDataShape, http.StatusUnprocessableEntity, 3},
		{NotFound("run"), CodeNotFound, http.StatusNotFound, 1},
		{InvalidInput("no file"), CodeInvalidInput, http.StatusBadRequest, 2},
		{stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, Classify(tt.err), "%v", tt.err)
		if tt.err != nil {
			assert.Equal(t, tt.status, HTTPStatus(tt.err), "%v", tt.err)
		}
		assert.Equal(t, tt.exit, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("conn refused"))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nhc/pkg/domain-errors"
)

func TestWriteErrorMapsCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "startDate is required"), http.StatusBadRequest, "validation_error"},
		{"window closed", dErrors.New(dErrors.CodeWindowClosed, "closed").WithReason("NominationWindowClosed"), http.StatusBadRequest, "window_closed"},
		{"not found", dErrors.New(dErrors.CodeNotFound, "zone not found"), http.StatusNotFound, "not_found"},
		{"conflict", dErrors.New(dErrors.CodeConflict, "dup"), http.StatusConflict, "conflict"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Error)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Description)
			}
		})
	}
}

func TestWriteErrorIncludesReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeBadRequest, "cannot support yourself").WithReason("SelfSupportForbidden"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "SelfSupportForbidden", body.Reason)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"North"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "North", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nme":"North"}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	err = DecodeJSON(req, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?zoneId=not-a-uuid&eligible=true", nil)

	_, _, err := QueryUUID(req, "zoneId")
	assert.Error(t, err)

	v, ok, err := QueryBool(req, "eligible")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	_, err = RequireQueryUUID(req, "electionId")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

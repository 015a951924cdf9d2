package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade/campus-election/internal/election"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/vote", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestCastError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		// A constraint-level duplicate from a concurrent double cast
		// reaches castError as ErrAlreadyVoted and must surface as a
		// conflict, never a generic server error.
		{"already voted", election.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
		{"election inactive", election.ErrElectionInactive, http.StatusForbidden, "election_inactive"},
		{"department not participating", election.ErrDepartmentNotParticipating, http.StatusForbidden, "department_not_participating"},
		{"invalid reference", election.ErrInvalidReference, http.StatusBadRequest, "invalid office or candidate"},
		{"candidate office mismatch", election.ErrCandidateOfficeMismatch, http.StatusBadRequest, "candidate does not belong to this office"},
		{"cross department vote", election.ErrCrossDepartmentVote, http.StatusForbidden, "cannot vote for positions in other departments"},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError, "cast failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, castError(c, tc.err))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantError, decodeError(t, rec))
		})
	}
}

func TestGateStatus(t *testing.T) {
	t.Run("gate passed", func(t *testing.T) {
		c, rec := newTestContext(t)
		done, resp := gateStatus(c, nil)
		assert.False(t, done)
		assert.NoError(t, resp)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("election inactive", func(t *testing.T) {
		c, rec := newTestContext(t)
		done, resp := gateStatus(c, election.ErrElectionInactive)
		assert.True(t, done)
		require.NoError(t, resp)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "election_inactive", decodeError(t, rec))
	})

	t.Run("department not participating", func(t *testing.T) {
		c, rec := newTestContext(t)
		done, resp := gateStatus(c, election.ErrDepartmentNotParticipating)
		assert.True(t, done)
		require.NoError(t, resp)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "department_not_participating", body["error"])
		assert.Equal(t, false, body["allowedToVote"])
	})

	t.Run("unexpected error", func(t *testing.T) {
		c, rec := newTestContext(t)
		done, resp := gateStatus(c, errors.New("boom"))
		assert.True(t, done)
		require.NoError(t, resp)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/middleware"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/repository"
)

// PublicResultsHandler serves the unauthenticated results endpoint.
// Whether anything is returned depends on the configured visibility
// policy: "live" exposes tallies at any time, "post-election" only
// once the election is switched off, "hidden" keeps them admin-only.
type PublicResultsHandler struct {
	Votes       *repository.VoteRepo
	Offices     *repository.OfficeRepo
	Candidates  *repository.CandidateRepo
	Departments *repository.DepartmentRepo
	Settings    *repository.SettingsRepo
}

func NewPublicResultsHandler(v *repository.VoteRepo, o *repository.OfficeRepo, c *repository.CandidateRepo,
	d *repository.DepartmentRepo, s *repository.SettingsRepo) *PublicResultsHandler {
	if v == nil || o == nil || c == nil || d == nil || s == nil {
		panic("nil repository passed to NewPublicResultsHandler")
	}
	return &PublicResultsHandler{Votes: v, Offices: o, Candidates: c, Departments: d, Settings: s}
}

// Results handles GET /v1/results. It accepts the same `level` and
// `departmentId` query filters as the admin endpoint but enforces the
// visibility policy first.
func (h *PublicResultsHandler) Results(c echo.Context) error {
	filter, ok := resultsFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Only publicly visible "live" tallies may be cached: anything
	// else is role-dependent or must vanish as soon as an admin
	// flips visibility off.
	if settings.ResultVisibility != model.ResultsLive {
		c.Set(middleware.SkipCacheKey, true)
	}
	if !election.ResultsVisible(settings, isAdminRole(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "results_not_available"})
	}

	results, err := tallyResults(ctx, h.Votes, h.Offices, h.Candidates, h.Departments, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"electionActive": settings.IsElectionActive,
		"results":        results,
	})
}

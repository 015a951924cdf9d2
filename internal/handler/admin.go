package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/repository"
)

// AdminHandler groups the repositories needed by the admin console:
// department, office and candidate management, election settings,
// result tabulation and turnout statistics. All routes behind it
// require the ADMIN role.
type AdminHandler struct {
	Users       *repository.UserRepo
	Departments *repository.DepartmentRepo
	Offices     *repository.OfficeRepo
	Candidates  *repository.CandidateRepo
	Votes       *repository.VoteRepo
	Settings    *repository.SettingsRepo
}

func NewAdminHandler(u *repository.UserRepo, d *repository.DepartmentRepo, o *repository.OfficeRepo,
	c *repository.CandidateRepo, v *repository.VoteRepo, s *repository.SettingsRepo) *AdminHandler {
	if u == nil || d == nil || o == nil || c == nil || v == nil || s == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Departments: d, Offices: o, Candidates: c, Votes: v, Settings: s}
}

// ----- departments -----

type departmentReq struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	IsActive  *bool  `json:"isActive"`
}

// CreateDepartment handles POST /v1/admin/departments.
func (h *AdminHandler) CreateDepartment(c echo.Context) error {
	var req departmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dept := model.Department{Name: req.Name, ShortName: strings.TrimSpace(req.ShortName), IsActive: true}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := h.Departments.Create(ctx, &dept); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create department failed"})
	}
	return c.JSON(http.StatusCreated, dept)
}

// ListAllDepartments handles GET /v1/admin/departments, including
// inactive ones.
func (h *AdminHandler) ListAllDepartments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	departments, err := h.Departments.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"departments": departments})
}

// UpdateDepartment handles PUT /v1/admin/departments/:id.
func (h *AdminHandler) UpdateDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req departmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dept, err := h.Departments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		dept.Name = name
	}
	if short := strings.TrimSpace(req.ShortName); short != "" {
		dept.ShortName = short
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := h.Departments.Update(ctx, dept); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update department failed"})
	}
	return c.JSON(http.StatusOK, dept)
}

// DeleteDepartment handles DELETE /v1/admin/departments/:id. Deletion
// is destructive: dependent offices, candidates and eligibility rows
// are left dangling and read paths skip them.
func (h *AdminHandler) DeleteDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Departments.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete department failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "department deleted"})
}

// ----- offices -----

type officeReq struct {
	Title        string `json:"title"`
	Level        string `json:"level"`
	DepartmentID uint64 `json:"departmentId"`
	IsActive     *bool  `json:"isActive"`
	Order        *int   `json:"order"`
}

// validateOfficeScope enforces level/department consistency: a
// college office carries no department, a department office must
// reference an existing one.
func (h *AdminHandler) validateOfficeScope(ctx context.Context, level string, departmentID uint64) (string, error) {
	switch level {
	case election.LevelCollege:
		if departmentID != 0 {
			return "college office cannot have a department", nil
		}
	case election.LevelDepartment:
		if departmentID == 0 {
			return "department office requires departmentId", nil
		}
		if _, err := h.Departments.GetByID(ctx, departmentID); err != nil {
			if err == sql.ErrNoRows {
				return "unknown department", nil
			}
			return "", err
		}
	default:
		return "level must be college or department", nil
	}
	return "", nil
}

// CreateOffice handles POST /v1/admin/offices.
func (h *AdminHandler) CreateOffice(c echo.Context) error {
	var req officeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Level = strings.ToLower(strings.TrimSpace(req.Level))
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if msg, err := h.validateOfficeScope(ctx, req.Level, req.DepartmentID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	office := model.Office{Title: req.Title, Level: req.Level, DepartmentID: req.DepartmentID, IsActive: true}
	if req.IsActive != nil {
		office.IsActive = *req.IsActive
	}
	if req.Order != nil {
		office.Order = *req.Order
	}
	if err := h.Offices.Create(ctx, &office); err != nil {
		if err == repository.ErrOfficeExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "office already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create office failed"})
	}
	return c.JSON(http.StatusCreated, office)
}

// ListOffices handles GET /v1/admin/offices.
func (h *AdminHandler) ListOffices(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offices, err := h.Offices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"offices": offices})
}

// UpdateOffice handles PUT /v1/admin/offices/:id.
func (h *AdminHandler) UpdateOffice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req officeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	office, err := h.Offices.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		office.Title = title
	}
	if level := strings.ToLower(strings.TrimSpace(req.Level)); level != "" {
		office.Level = level
		office.DepartmentID = req.DepartmentID
	} else if req.DepartmentID != 0 {
		office.DepartmentID = req.DepartmentID
	}
	if req.IsActive != nil {
		office.IsActive = *req.IsActive
	}
	if req.Order != nil {
		office.Order = *req.Order
	}

	if msg, err := h.validateOfficeScope(ctx, office.Level, office.DepartmentID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	if err := h.Offices.Update(ctx, office); err != nil {
		if err == repository.ErrOfficeExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "office already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update office failed"})
	}
	return c.JSON(http.StatusOK, office)
}

// DeleteOffice handles DELETE /v1/admin/offices/:id.
func (h *AdminHandler) DeleteOffice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Offices.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete office failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "office deleted"})
}

// ----- candidates -----

type candidateReq struct {
	FullName  string `json:"fullName"`
	PhotoURL  string `json:"photoUrl"`
	OfficeID  uint64 `json:"officeId"`
	Manifesto string `json:"manifesto"`
	IsActive  *bool  `json:"isActive"`
}

// placeholderPhoto builds an avatar URL from the candidate's name for
// candidates registered without a portrait.
func placeholderPhoto(name string) string {
	return "https://ui-avatars.com/api/?background=random&name=" + url.QueryEscape(name)
}

// CreateCandidate handles POST /v1/admin/candidates. Level and
// department are stamped from the referenced office so the candidate
// can never disagree with it at creation time.
func (h *AdminHandler) CreateCandidate(c echo.Context) error {
	var req candidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" || req.OfficeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fullName and officeId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	office, err := h.Offices.GetByID(ctx, req.OfficeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown office"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	photo := strings.TrimSpace(req.PhotoURL)
	if photo == "" {
		photo = placeholderPhoto(req.FullName)
	}
	cand := model.Candidate{
		FullName:     req.FullName,
		PhotoURL:     photo,
		OfficeID:     office.ID,
		Level:        office.Level,
		DepartmentID: office.DepartmentID,
		Manifesto:    strings.TrimSpace(req.Manifesto),
		IsActive:     true,
	}
	if req.IsActive != nil {
		cand.IsActive = *req.IsActive
	}
	if err := h.Candidates.Create(ctx, &cand); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create candidate failed"})
	}
	return c.JSON(http.StatusCreated, cand)
}

// ListCandidates handles GET /v1/admin/candidates.
func (h *AdminHandler) ListCandidates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	candidates, err := h.Candidates.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"candidates": candidates})
}

// UpdateCandidate handles PUT /v1/admin/candidates/:id. Moving a
// candidate to a different office re-stamps level and department from
// the new office.
func (h *AdminHandler) UpdateCandidate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req candidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cand, err := h.Candidates.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "candidate not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		cand.FullName = name
	}
	if photo := strings.TrimSpace(req.PhotoURL); photo != "" {
		cand.PhotoURL = photo
	}
	if req.Manifesto != "" {
		cand.Manifesto = strings.TrimSpace(req.Manifesto)
	}
	if req.IsActive != nil {
		cand.IsActive = *req.IsActive
	}
	if req.OfficeID != 0 && req.OfficeID != cand.OfficeID {
		office, err := h.Offices.GetByID(ctx, req.OfficeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown office"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		cand.OfficeID = office.ID
		cand.Level = office.Level
		cand.DepartmentID = office.DepartmentID
	}

	if err := h.Candidates.Update(ctx, cand); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update candidate failed"})
	}
	return c.JSON(http.StatusOK, cand)
}

// DeleteCandidate handles DELETE /v1/admin/candidates/:id.
func (h *AdminHandler) DeleteCandidate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Candidates.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete candidate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "candidate deleted"})
}

// ----- settings -----

type settingsReq struct {
	IsElectionActive     *bool      `json:"isElectionActive"`
	StartDate            *time.Time `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
	AllowedDepartmentIDs *[]uint64  `json:"allowedDepartments"`
	ResultVisibility     string     `json:"resultVisibility"`
}

// GetSettings handles GET /v1/admin/settings.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, settingsResp(s))
}

// UpdateSettings handles PUT /v1/admin/settings. Fields left out of
// the request keep their current value; the allowed-departments set
// is replaced wholesale when present.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var req settingsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if req.IsElectionActive != nil {
		s.IsElectionActive = *req.IsElectionActive
	}
	if req.StartDate != nil {
		s.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		s.EndDate = req.EndDate
	}
	if req.AllowedDepartmentIDs != nil {
		s.AllowedDepartmentIDs = *req.AllowedDepartmentIDs
	}
	if req.ResultVisibility != "" {
		switch req.ResultVisibility {
		case model.ResultsHidden, model.ResultsLive, model.ResultsPostElection:
			s.ResultVisibility = req.ResultVisibility
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "resultVisibility must be hidden, live or post-election"})
		}
	}

	if err := h.Settings.Update(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update settings failed"})
	}
	updated, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, settingsResp(updated))
}

func settingsResp(s model.ElectionSettings) echo.Map {
	return echo.Map{
		"isElectionActive":   s.IsElectionActive,
		"startDate":          s.StartDate,
		"endDate":            s.EndDate,
		"allowedDepartments": s.AllowedDepartmentIDs,
		"resultVisibility":   s.ResultVisibility,
		"updatedAt":          s.UpdatedAt,
	}
}

// ----- results and statistics -----

// Results handles GET /v1/admin/results. Optional query parameters
// `level` and `departmentId` narrow the tally.
func (h *AdminHandler) Results(c echo.Context) error {
	filter, ok := resultsFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	results, err := tallyResults(ctx, h.Votes, h.Offices, h.Candidates, h.Departments, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// Statistics handles GET /v1/admin/statistics and returns the turnout
// overview with the per-department breakdown.
func (h *AdminHandler) Statistics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalVotes, err := h.Votes.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalCandidates, err := h.Candidates.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalOffices, err := h.Offices.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	departments, err := h.Departments.MapAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	stats := election.ComputeStatistics(users, totalVotes, totalCandidates, totalOffices, departments)
	return c.JSON(http.StatusOK, stats)
}

// resultsFilter parses the level/departmentId query parameters shared
// by the admin and public results endpoints.
func resultsFilter(c echo.Context) (election.Filter, bool) {
	var f election.Filter
	if level := c.QueryParam("level"); level != "" {
		if level != election.LevelCollege && level != election.LevelDepartment {
			return f, false
		}
		f.Level = level
	}
	if raw := c.QueryParam("departmentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return f, false
		}
		f.DepartmentID = id
	}
	return f, true
}

// tallyResults loads everything the aggregation needs and runs it.
func tallyResults(ctx context.Context, votes *repository.VoteRepo, offices *repository.OfficeRepo,
	candidates *repository.CandidateRepo, departments *repository.DepartmentRepo, f election.Filter) ([]election.OfficeResult, error) {
	allVotes, err := votes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	officeMap, err := offices.MapAll(ctx)
	if err != nil {
		return nil, err
	}
	candidateMap, err := candidates.MapAll(ctx)
	if err != nil {
		return nil, err
	}
	departmentMap, err := departments.MapAll(ctx)
	if err != nil {
		return nil, err
	}
	return election.Tally(allVotes, officeMap, candidateMap, departmentMap, f), nil
}

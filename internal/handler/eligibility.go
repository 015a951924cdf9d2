package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/repository"
)

// EligibilityHandler serves the admin endpoints managing both
// whitelist tiers: the college list gating platform access and the
// per-department lists gating department ballots.
type EligibilityHandler struct {
	Eligibility *repository.EligibilityRepo
	Departments *repository.DepartmentRepo
}

func NewEligibilityHandler(e *repository.EligibilityRepo, d *repository.DepartmentRepo) *EligibilityHandler {
	if e == nil || d == nil {
		panic("nil repository passed to NewEligibilityHandler")
	}
	return &EligibilityHandler{Eligibility: e, Departments: d}
}

// ----- college tier -----

type collegeEntryReq struct {
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
}

// ListCollege handles GET /v1/admin/eligibility/college.
func (h *EligibilityHandler) ListCollege(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Eligibility.ListCollege(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// AddCollege handles POST /v1/admin/eligibility/college.
func (h *EligibilityHandler) AddCollege(c echo.Context) error {
	var req collegeEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.StudentID = election.NormalizeStudentID(req.StudentID)
	req.Email = election.NormalizeEmail(req.Email)
	if req.StudentID == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "studentId and email are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Eligibility.AddCollege(ctx, req.StudentID, req.Email, strings.TrimSpace(req.FullName)); err != nil {
		if err == repository.ErrEligibilityExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add entry failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "entry added"})
}

// BulkAddCollege handles POST /v1/admin/eligibility/college/bulk.
// Rows colliding with existing entries are skipped rather than
// failing the upload; the response reports how many landed.
func (h *EligibilityHandler) BulkAddCollege(c echo.Context) error {
	var req struct {
		Entries []collegeEntryReq `json:"entries"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Entries) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entries required"})
	}

	entries := make([]model.CollegeEligibility, 0, len(req.Entries))
	for _, e := range req.Entries {
		sid := election.NormalizeStudentID(e.StudentID)
		email := election.NormalizeEmail(e.Email)
		if sid == "" || email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every entry needs studentId and email"})
		}
		entries = append(entries, model.CollegeEligibility{
			StudentID: sid, Email: email, FullName: strings.TrimSpace(e.FullName),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	added, err := h.Eligibility.BulkAddCollege(ctx, entries)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bulk add failed", "added": added})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"added":   added,
		"skipped": len(entries) - added,
	})
}

// RemoveCollege handles DELETE /v1/admin/eligibility/college/:studentId.
// The student's next login fails the eligibility re-check.
func (h *EligibilityHandler) RemoveCollege(c echo.Context) error {
	studentID := election.NormalizeStudentID(c.Param("studentId"))
	if studentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Eligibility.RemoveCollegeByStudentID(ctx, studentID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove entry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry removed"})
}

// ----- department tier -----

type departmentEntryReq struct {
	StudentID    string `json:"studentId"`
	DepartmentID uint64 `json:"departmentId"`
}

// ListDepartment handles GET /v1/admin/eligibility/department with an
// optional ?departmentId= filter.
func (h *EligibilityHandler) ListDepartment(c echo.Context) error {
	var departmentID uint64
	if raw := c.QueryParam("departmentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departmentId"})
		}
		departmentID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Eligibility.ListDepartment(ctx, departmentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// AddDepartment handles POST /v1/admin/eligibility/department.
func (h *EligibilityHandler) AddDepartment(c echo.Context) error {
	var req departmentEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.StudentID = election.NormalizeStudentID(req.StudentID)
	if req.StudentID == "" || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "studentId and departmentId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown department"})
	}
	if err := h.Eligibility.AddDepartment(ctx, req.StudentID, req.DepartmentID); err != nil {
		if err == repository.ErrEligibilityExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add entry failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "entry added"})
}

// BulkAddDepartment handles POST /v1/admin/eligibility/department/bulk,
// granting many students the same department ballot in one call.
func (h *EligibilityHandler) BulkAddDepartment(c echo.Context) error {
	var req struct {
		DepartmentID uint64   `json:"departmentId"`
		StudentIDs   []string `json:"studentIds"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DepartmentID == 0 || len(req.StudentIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departmentId and studentIds are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if _, err := h.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown department"})
	}
	added, err := h.Eligibility.BulkAddDepartment(ctx, req.StudentIDs, req.DepartmentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bulk add failed", "added": added})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"added":   added,
		"skipped": len(req.StudentIDs) - added,
	})
}

// RemoveDepartment handles DELETE /v1/admin/eligibility/department/:id.
func (h *EligibilityHandler) RemoveDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Eligibility.RemoveDepartmentByID(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove entry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry removed"})
}

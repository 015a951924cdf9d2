package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/config"
	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/repository"
	"github.com/kolade/campus-election/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and
// profile endpoints. Registration is gated by the college eligibility
// whitelist; login re-checks the same whitelist so access can be
// revoked after an account exists.
type AuthHandler struct {
	Cfg         config.Config
	Users       *repository.UserRepo
	Eligibility *repository.EligibilityRepo
	Departments *repository.DepartmentRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, e *repository.EligibilityRepo, d *repository.DepartmentRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Eligibility: e, Departments: d}
}

// ----- DTOs -----

type registerReq struct {
	StudentID    string `json:"studentId"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	DepartmentID uint64 `json:"departmentId"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID           uint64     `json:"id"`
	StudentID    string     `json:"studentId"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	DepartmentID uint64     `json:"departmentId"`
	HasVoted     bool       `json:"hasVoted"`
	VotedAt      *time.Time `json:"votedAt,omitempty"`
	Role         string     `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Session tokenPart `json:"session"`
}

func roleOf(isAdmin bool) string {
	if isAdmin {
		return utils.RoleAdmin
	}
	return utils.RoleStudent
}

// Register handles POST /v1/auth/register. Only students on the
// college eligibility whitelist may create an account, and the
// supplied email must match the whitelisted one. On success a
// department ballot grant for the student's own department is ensured
// as a side effect, and a session token is returned immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.StudentID = election.NormalizeStudentID(req.StudentID)
	req.Email = election.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.StudentID == "" || req.Email == "" || req.Password == "" || req.FullName == "" || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "studentId, email, password, fullName and departmentId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dept, err := h.Departments.GetByID(ctx, req.DepartmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown department"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !dept.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown department"})
	}

	rec, err := h.Eligibility.CollegeByStudentID(ctx, req.StudentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := election.CheckRegistration(rec, req.Email); err != nil {
		var mismatch *election.EmailMismatchError
		if errors.As(err, &mismatch) {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":         "email_mismatch",
				"expectedEmail": mismatch.Expected,
			})
		}
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":  "not_eligible",
			"reason": "not_in_college_eligibility_list",
		})
	}

	uid, err := h.Users.Create(ctx, req.StudentID, req.Email, req.Password, req.FullName, req.DepartmentID, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrUserExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Grant the department ballot for the student's own department.
	// Failure here must not lose the freshly created account; an
	// admin can add the grant manually.
	if err := h.Eligibility.EnsureDepartment(ctx, req.StudentID, req.DepartmentID); err != nil {
		log.Printf("register: ensure department eligibility for %s failed: %v", req.StudentID, err)
	}

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, utils.RoleStudent, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User: userPart{
			ID: uid, StudentID: req.StudentID, Email: req.Email,
			FullName: req.FullName, DepartmentID: req.DepartmentID,
			Role: utils.RoleStudent,
		},
		Session: tokenPart{Token: session.Token, Expires: session.Exp},
	})
}

// Login handles POST /v1/auth/login. Besides the credential check,
// non-admin users must still be on the college whitelist: removing or
// deactivating a student's entry locks them out even with a valid
// password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = election.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var rec *model.CollegeEligibility
	if !u.IsAdmin {
		rec, err = h.Eligibility.CollegeByStudentID(ctx, u.StudentID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if err := election.CheckLogin(u.IsAdmin, rec); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "eligibility_revoked"})
	}

	role := roleOf(u.IsAdmin)
	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, role, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User: userPart{
			ID: u.ID, StudentID: u.StudentID, Email: u.Email,
			FullName: u.FullName, DepartmentID: u.DepartmentID,
			HasVoted: u.HasVoted, VotedAt: u.VotedAt, Role: role,
		},
		Session: tokenPart{Token: session.Token, Expires: session.Exp},
	})
}

// Profile handles GET /v1/auth/me and returns the authenticated
// user's account details including voting status.
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, userPart{
		ID: u.ID, StudentID: u.StudentID, Email: u.Email,
		FullName: u.FullName, DepartmentID: u.DepartmentID,
		HasVoted: u.HasVoted, VotedAt: u.VotedAt, Role: roleOf(u.IsAdmin),
	})
}

// ListDepartments handles GET /v1/departments, the public list of
// active departments shown on the registration form.
func (h *AuthHandler) ListDepartments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	departments, err := h.Departments.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(departments))
	for _, d := range departments {
		out = append(out, echo.Map{
			"id":        d.ID,
			"name":      d.Name,
			"shortName": d.ShortName,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"departments": out})
}

package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/queue"
	"github.com/kolade/campus-election/internal/repository"
	queue_publisher "github.com/kolade/campus-election/internal/service"
)

// VoteHandler serves the voter-facing ballot endpoints: fetching the
// personalized voting data, casting the ballot and reading the
// receipt. Election settings are loaded fresh on every call and
// passed into the gate explicitly, so administrative changes apply to
// in-flight sessions immediately.
type VoteHandler struct {
	Users       *repository.UserRepo
	Eligibility *repository.EligibilityRepo
	Departments *repository.DepartmentRepo
	Offices     *repository.OfficeRepo
	Candidates  *repository.CandidateRepo
	Votes       *repository.VoteRepo
	Settings    *repository.SettingsRepo
}

func NewVoteHandler(u *repository.UserRepo, e *repository.EligibilityRepo, d *repository.DepartmentRepo,
	o *repository.OfficeRepo, cand *repository.CandidateRepo, v *repository.VoteRepo, s *repository.SettingsRepo) *VoteHandler {
	if u == nil || e == nil || d == nil || o == nil || cand == nil || v == nil || s == nil {
		panic("nil repository passed to NewVoteHandler")
	}
	return &VoteHandler{Users: u, Eligibility: e, Departments: d, Offices: o, Candidates: cand, Votes: v, Settings: s}
}

// ----- DTOs -----

type candidatePart struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Photo     string `json:"photo"`
	Manifesto string `json:"manifesto,omitempty"`
}

type ballotOffice struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Level        string          `json:"level"`
	DepartmentID uint64          `json:"departmentId,omitempty"`
	Candidates   []candidatePart `json:"candidates"`
}

type castReq struct {
	Selections []election.Selection `json:"selections"`
}

// gateStatus translates a gate failure into an HTTP response.
// Returns false when the gate passed.
func gateStatus(c echo.Context, err error) (bool, error) {
	switch err {
	case nil:
		return false, nil
	case election.ErrElectionInactive:
		return true, c.JSON(http.StatusForbidden, echo.Map{"error": "election_inactive", "allowedToVote": false})
	case election.ErrDepartmentNotParticipating:
		return true, c.JSON(http.StatusForbidden, echo.Map{"error": "department_not_participating", "allowedToVote": false})
	default:
		return true, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

// GetVotingData handles GET /v1/vote/data. For a voter who has not
// yet voted it returns the ballot: every active college-level office
// plus, when the voter holds a department ballot grant, the active
// offices of their own department, each with its active candidates.
// A voter who already voted gets their receipt instead of a ballot.
func (h *VoteHandler) GetVotingData(c echo.Context) error {
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

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if done, resp := gateStatus(c, election.CheckGate(settings, u.DepartmentID)); done {
		return resp
	}

	if u.HasVoted {
		receipt, err := h.Votes.ReceiptByVoter(ctx, u.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"hasVoted": true,
			"receipt":  receipt,
		})
	}

	offices, err := h.Offices.ListActiveCollege(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// The department ballot is an extra grant on top of the college
	// one; without it the voter still sees the college offices.
	deptRec, err := h.Eligibility.DepartmentFor(ctx, u.StudentID, u.DepartmentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	canVoteInDepartment := election.CanVoteInDepartment(deptRec)
	if canVoteInDepartment {
		deptOffices, err := h.Offices.ListActiveByDepartment(ctx, u.DepartmentID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		offices = append(offices, deptOffices...)
	}

	officeIDs := make([]uint64, 0, len(offices))
	for _, o := range offices {
		officeIDs = append(officeIDs, o.ID)
	}
	candidates, err := h.Candidates.ListActiveForOffices(ctx, officeIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	byOffice := make(map[uint64][]candidatePart, len(offices))
	for _, cand := range candidates {
		byOffice[cand.OfficeID] = append(byOffice[cand.OfficeID], candidatePart{
			ID: cand.ID, Name: cand.FullName, Photo: cand.PhotoURL, Manifesto: cand.Manifesto,
		})
	}

	ballot := make([]ballotOffice, 0, len(offices))
	for _, o := range offices {
		entry := ballotOffice{ID: o.ID, Title: o.Title, Level: o.Level, Candidates: byOffice[o.ID]}
		if o.Level == election.LevelDepartment {
			entry.DepartmentID = o.DepartmentID
		}
		if entry.Candidates == nil {
			entry.Candidates = []candidatePart{}
		}
		ballot = append(ballot, entry)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"hasVoted":            false,
		"allowedToVote":       true,
		"canVoteInDepartment": canVoteInDepartment,
		"userDepartment":      u.DepartmentID,
		"offices":             ballot,
	})
}

// CastVote handles POST /v1/vote. The ballot is all-or-nothing: every
// selection is validated first, and the vote rows plus the voter's
// has_voted flag are committed in one transaction. The unique
// (voter, office) index backstops concurrent double casts.
func (h *VoteHandler) CastVote(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req castReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Selections) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "selections required"})
	}
	seen := make(map[uint64]struct{}, len(req.Selections))
	for _, sel := range req.Selections {
		if sel.OfficeID == 0 || sel.CandidateID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid office or candidate"})
		}
		if _, dup := seen[sel.OfficeID]; dup {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate office in ballot"})
		}
		seen[sel.OfficeID] = struct{}{}
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
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	officeIDs := make([]uint64, 0, len(req.Selections))
	candidateIDs := make([]uint64, 0, len(req.Selections))
	for _, sel := range req.Selections {
		officeIDs = append(officeIDs, sel.OfficeID)
		candidateIDs = append(candidateIDs, sel.CandidateID)
	}
	offices, err := h.Offices.MapByIDs(ctx, officeIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	candidates, err := h.Candidates.MapByIDs(ctx, candidateIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	votes, err := election.ValidateBallot(u, settings, req.Selections, offices, candidates)
	if err != nil {
		return castError(c, err)
	}

	now := time.Now().UTC()
	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Votes.CreateBulkTx(ctx, tx, votes, now); err != nil {
		if err == repository.ErrDuplicateVote {
			return castError(c, election.ErrAlreadyVoted)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record votes"})
	}
	if err := h.Users.MarkVotedTx(ctx, tx, u.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record votes"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record votes"})
	}
	committed = true

	go h.publishBallotCast(u, len(votes), now)

	receipt, err := h.Votes.ReceiptByVoter(ctx, u.ID)
	if err != nil {
		// The ballot is committed; degrade to a receipt-less ack.
		log.Printf("cast: load receipt for voter %d failed: %v", u.ID, err)
		receipt = []repository.ReceiptRow{}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "ballot cast",
		"votedAt": now,
		"receipt": receipt,
	})
}

// castError maps ballot validation failures to HTTP responses.
func castError(c echo.Context, err error) error {
	switch err {
	case election.ErrAlreadyVoted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_voted"})
	case election.ErrElectionInactive:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "election_inactive"})
	case election.ErrDepartmentNotParticipating:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "department_not_participating"})
	case election.ErrInvalidReference:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid office or candidate"})
	case election.ErrCandidateOfficeMismatch:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "candidate does not belong to this office"})
	case election.ErrCrossDepartmentVote:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot vote for positions in other departments"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cast failed"})
	}
}

// publishBallotCast emits the audit event after commit. Broker
// failures are logged inside the publisher and never affect the
// response.
func (h *VoteHandler) publishBallotCast(u model.User, selections int, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deptName := ""
	if dept, err := h.Departments.GetByID(ctx, u.DepartmentID); err == nil {
		deptName = dept.Name
	}
	_ = queue_publisher.PublishBallotCast(ctx, queue.BallotCastEvent{
		VoterID:        u.ID,
		StudentID:      u.StudentID,
		DepartmentID:   u.DepartmentID,
		DepartmentName: deptName,
		Selections:     selections,
		CastAt:         at.Format(time.RFC3339),
	})
}

// GetReceipt handles GET /v1/vote/receipt and returns the voter's
// committed ballot receipt. 404 until the ballot has been cast.
func (h *VoteHandler) GetReceipt(c echo.Context) error {
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
	if !u.HasVoted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no ballot cast yet"})
	}

	receipt, err := h.Votes.ReceiptByVoter(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"votedAt": u.VotedAt,
		"receipt": receipt,
	})
}

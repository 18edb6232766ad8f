package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/core/services"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// Handler serves the plan routes
type Handler struct {
	database db.Database
	locker   lock.Locker
	logger   *zap.Logger
	settings services.Settings
}

func NewHandler(database db.Database, locker lock.Locker, logger *zap.Logger, settings services.Settings) *Handler {
	return &Handler{
		database: database,
		locker:   locker,
		logger:   logger,
		settings: settings,
	}
}

// GeneratePlanResponse is the body returned after a generation run
type GeneratePlanResponse struct {
	YearID        string            `json:"yearId"`
	DryRun        bool              `json:"dryRun"`
	AvailableDays int               `json:"availableDays"`
	Intervals     planner.Intervals `json:"intervals"`
	Quotas        map[string]int    `json:"quotas"`
	Assignments   []AssignmentBody  `json:"assignments"`
	ManualCount   int               `json:"manualCount"`
	Conflicts     []string          `json:"conflicts"`
	HardConflicts []string          `json:"hardConflicts"`
}

// AssignmentBody is the wire form of an assignment
type AssignmentBody struct {
	ID       string `json:"id,omitempty"`
	FamilyID string `json:"familyId"`
	Date     string `json:"date"`
	IsManual bool   `json:"isManual"`
}

// AssignRequest is the body of a manual assignment
type AssignRequest struct {
	FamilyID string `json:"familyId" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

// RebalanceResponse describes the outcome of a join or leave
type RebalanceResponse struct {
	Target    int            `json:"target,omitempty"`
	Moved     int            `json:"moved"`
	Deleted   int            `json:"deleted"`
	Transfers []TransferBody `json:"transfers"`
	Deletions []model.Date   `json:"deletions,omitempty"`
	Conflicts []string       `json:"conflicts"`
}

// TransferBody is the wire form of a moved duty
type TransferBody struct {
	Date model.Date `json:"date"`
	From string     `json:"from"`
	To   string     `json:"to"`
}

func (h *Handler) GetPlan(c *gin.Context) {
	view, err := services.ViewPlan(c.Request.Context(), h.database, h.logger, h.settings, c.Param("yearID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GeneratePlan(c *gin.Context) {
	dryRun := false
	if raw := c.Query("dryRun"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dryRun must be a boolean"})
			return
		}
		dryRun = parsed
	}

	result, err := services.GeneratePlan(c.Request.Context(), h.database, h.locker, h.logger, h.settings, c.Param("yearID"), dryRun)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := GeneratePlanResponse{
		YearID:        result.Year.ID,
		DryRun:        result.DryRun,
		AvailableDays: result.Plan.AvailableDays,
		Intervals:     result.Plan.Intervals,
		Quotas:        make(map[string]int, len(result.Plan.Quotas)),
		Assignments:   make([]AssignmentBody, 0, len(result.Assignments)),
		ManualCount:   result.ManualCount,
		Conflicts:     result.Plan.Conflicts,
		HardConflicts: result.HardConflicts(),
	}
	for id, quota := range result.Plan.Quotas {
		response.Quotas[string(id)] = quota
	}
	for _, a := range result.Assignments {
		response.Assignments = append(response.Assignments, assignmentBody(a))
	}

	status := http.StatusOK
	if !dryRun {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	deleted, err := services.DeletePlan(c.Request.Context(), h.database, h.locker, h.logger, c.Param("yearID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) JoinFamily(c *gin.Context) {
	result, err := services.AddFamilyToPlan(c.Request.Context(), h.database, h.locker, h.logger, h.settings, c.Param("yearID"), c.Param("familyID"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RebalanceResponse{
		Target:    result.Target,
		Moved:     result.Transferred,
		Transfers: transferBodies(result.Transfers),
		Conflicts: result.Conflicts,
	})
}

func (h *Handler) LeaveFamily(c *gin.Context) {
	result, err := services.RemoveFamilyFromPlan(c.Request.Context(), h.database, h.locker, h.logger, h.settings, c.Param("yearID"), c.Param("familyID"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RebalanceResponse{
		Moved:     result.Redistributed,
		Deleted:   result.Removed,
		Transfers: transferBodies(result.Reassignments),
		Deletions: result.Deletions,
		Conflicts: result.Conflicts,
	})
}

func (h *Handler) AssignManually(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.AssignManually(c.Request.Context(), h.database, h.locker, h.logger, h.settings, c.Param("yearID"), req.FamilyID, req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{"assignment": assignmentBody(result.Assignment)}
	if result.Replaced != nil {
		body["replaced"] = assignmentBody(*result.Replaced)
	}
	c.JSON(http.StatusCreated, body)
}

// respondError maps service sentinels onto status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lock.ErrLocked), errors.Is(err, services.ErrManualConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrYearNotFound), errors.Is(err, services.ErrFamilyNotFound), errors.Is(err, services.ErrNoActiveYear):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDateExcluded), errors.Is(err, services.ErrInvalidDate), errors.Is(err, planner.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func assignmentBody(a db.Assignment) AssignmentBody {
	return AssignmentBody{ID: a.ID, FamilyID: a.FamilyID, Date: a.Date, IsManual: a.IsManual}
}

func transferBodies(reassignments []planner.Reassignment) []TransferBody {
	bodies := make([]TransferBody, 0, len(reassignments))
	for _, r := range reassignments {
		bodies = append(bodies, TransferBody{Date: r.Date, From: string(r.From), To: string(r.To)})
	}
	return bodies
}

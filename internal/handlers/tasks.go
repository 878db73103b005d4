package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/owenmcgrath/todoist-projection/internal/dto"
	"github.com/owenmcgrath/todoist-projection/internal/service"

	"github.com/gin-gonic/gin"
)

type TasksHandler struct {
	svc *service.SnapshotService
}

func NewTasksHandler(svc *service.SnapshotService) *TasksHandler {
	return &TasksHandler{svc: svc}
}

// Get godoc
// @Summary      Current projection of projects, sections and tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TasksResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /tasks [get]
func (h *TasksHandler) Get(c *gin.Context) {
	v, err := h.svc.Current(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTasksResponse(v.Snapshot, v.Stale, v.LastError))
}

// Refresh godoc
// @Summary      Fetch a fresh snapshot now
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TasksResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /tasks/refresh [post]
func (h *TasksHandler) Refresh(c *gin.Context) {
	snap, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTasksResponse(snap, false, ""))
}

// History godoc
// @Summary      Recent refresh runs
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max runs (default 20, max 100)"
// @Success      200    {object}  dto.ListRefreshesResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /refreshes [get]
func (h *TasksHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		log.Printf("refresh history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.RefreshRunsToResponse(runs))
}

func upstreamError(c *gin.Context, err error) {
	log.Printf("serve snapshot: %v", err)
	if errors.Is(err, service.ErrFetchTimeout) {
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrFetchTimeout.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch data from Todoist"})
}

package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	dash, err := h.dashboardService.GetOrganizerDashboard(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Dashboard", dash)
}

func (h *DashboardHandler) EventDetails(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	dash, err := h.dashboardService.GetEventDashboard(c.Request.Context(), eventID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Event dashboard", dash)
}

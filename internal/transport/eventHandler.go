package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Event created", event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Event updated", event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id, userID(c)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Event deleted", nil)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Event", event)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.ListPublicEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Events", nonNil(events))
}

func (h *EventHandler) SearchEvents(c *gin.Context) {
	events, err := h.eventService.SearchEvents(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Events", nonNil(events))
}

func (h *EventHandler) FilterEvents(c *gin.Context) {
	var req service.EventFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	events, err := h.eventService.FilterEvents(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Events", nonNil(events))
}

func (h *EventHandler) GetEventsByCategory(c *gin.Context) {
	category := entity.EventCategory(c.Param("category"))

	events, err := h.eventService.GetEventsByCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Events", nonNil(events))
}

func (h *EventHandler) GetMyEvents(c *gin.Context) {
	events, err := h.eventService.GetEventsByCreator(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Events", nonNil(events))
}

func (h *EventHandler) GetEventBookings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bookings, err := h.eventService.GetEventBookings(c.Request.Context(), id, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if bookings == nil {
		bookings = []*entity.Booking{}
	}
	respond(c, http.StatusOK, "Bookings", bookings)
}

func nonNil(events []*entity.Event) []*entity.Event {
	if events == nil {
		return []*entity.Event{}
	}
	return events
}

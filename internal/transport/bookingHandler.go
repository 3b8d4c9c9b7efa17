package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) BookEvent(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.bookingService.BookEvent(c.Request.Context(), userID(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Ticket booked", ticket)
}

func (h *BookingHandler) ConfirmTicket(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.bookingService.ConfirmTicketAsOrganizer(c.Request.Context(), ticketID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Ticket confirmed", ticket)
}

func (h *BookingHandler) GetMyTickets(c *gin.Context) {
	tickets, err := h.bookingService.GetUserTickets(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tickets", tickets)
}

func (h *BookingHandler) GetTicket(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.bookingService.GetTicket(c.Request.Context(), ticketID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Ticket", ticket)
}

func (h *BookingHandler) TicketQRCode(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}

	png, err := h.bookingService.TicketQRCode(c.Request.Context(), ticketID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tripflow/booking/internal/domain"
	"github.com/tripflow/booking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerPayload struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Title          string `json:"title"`
	DateOfBirth    string `json:"date_of_birth"`
	PassportNumber string `json:"passport_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

type createBookingRequest struct {
	ItineraryID string             `json:"itinerary_id" binding:"required"`
	UserID      string             `json:"user_id" binding:"required"`
	Class       string             `json:"class"`
	AddOns      []string           `json:"add_ons"`
	Passengers  []passengerPayload `json:"passengers" binding:"required"`
}

type confirmBookingRequest struct {
	Method string `json:"method"`
}

type bookingResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ItineraryID  string             `json:"itinerary_id"`
	Class        string             `json:"class"`
	Status       string             `json:"status"`
	TotalCents   int64              `json:"total_cents"`
	Currency     string             `json:"currency"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	ExpiresAt    string             `json:"expires_at"`
	CreatedAt    string             `json:"created_at"`
	Passengers   []passengerPayload `json:"passengers,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.confirm)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := req.Class
	if class == "" {
		class = string(domain.CabinClassEconomy)
	}

	input := booking.CreateBookingInput{
		ItineraryID: req.ItineraryID,
		UserID:      req.UserID,
		Class:       domain.CabinClass(class),
		AddOns:      req.AddOns,
	}
	for _, p := range req.Passengers {
		passenger := booking.PassengerInput{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Title:          p.Title,
			PassportNumber: p.PassportNumber,
			Email:          p.Email,
			Phone:          p.Phone,
		}
		if p.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", p.DateOfBirth)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date_of_birth %q", p.DateOfBirth)})
				return
			}
			passenger.DateOfBirth = dob
		}
		input.Passengers = append(input.Passengers, passenger)
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out, "total": len(out)})
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req confirmBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("id"), req.Method)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	reason := c.Query("reason")
	if reason == "" {
		reason = "cancelled by user"
	}

	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		ItineraryID:  b.ItineraryID,
		Class:        string(b.Class),
		Status:       string(b.Status),
		TotalCents:   b.TotalCents,
		Currency:     b.Currency,
		CancelReason: b.CancelReason,
		ExpiresAt:    b.ExpiresAt.Format(time.RFC3339),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
	for _, p := range b.Passengers {
		dob := ""
		if !p.DateOfBirth.IsZero() {
			dob = p.DateOfBirth.Format("2006-01-02")
		}
		resp.Passengers = append(resp.Passengers, passengerPayload{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Title:          p.Title,
			DateOfBirth:    dob,
			PassportNumber: p.PassportNumber,
			Email:          p.Email,
			Phone:          p.Phone,
		})
	}
	return resp
}

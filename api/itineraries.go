package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tripflow/booking/internal/domain"
	"github.com/tripflow/booking/internal/service/itineraries"
)

type ItineraryHandler struct {
	service itineraries.ItineraryUseCase
}

type itineraryResponse struct {
	ID            string `json:"id"`
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	BaseCents     int64  `json:"base_cents"`
	SeatsEconomy  int    `json:"seats_economy"`
	SeatsBusiness int    `json:"seats_business"`
}

func NewItineraryHandler(service itineraries.ItineraryUseCase) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

func (h *ItineraryHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *ItineraryHandler) list(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]itineraryResponse, 0, len(items))
	for i := range items {
		out = append(out, toItineraryResponse(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": out, "total": len(out)})
}

func (h *ItineraryHandler) get(c *gin.Context) {
	it, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItineraryResponse(it))
}

func toItineraryResponse(it *domain.Itinerary) itineraryResponse {
	return itineraryResponse{
		ID:            it.ID,
		FlightNumber:  it.FlightNumber,
		Origin:        it.Origin,
		Destination:   it.Destination,
		DepartureTime: it.DepartureTime.Format(time.RFC3339),
		ArrivalTime:   it.ArrivalTime.Format(time.RFC3339),
		BaseCents:     it.BaseCents,
		SeatsEconomy:  it.SeatsEconomy,
		SeatsBusiness: it.SeatsBusiness,
	}
}

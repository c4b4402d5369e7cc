package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/handlers/booking"
	"innkeep/internal/app/queries"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

type RoomHandler struct {
	Queries queries.Bus
}

func (h RoomHandler) Reservations(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := booking.RoomReservationsQuery{RoomID: c.Param("id")}
	recs, err := queries.Ask[booking.RoomReservationsQuery, []*reservation.Reservation](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newReservationResponses(recs)})
}

func (h RoomHandler) RateCard(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := booking.RateCardQuery{RoomID: c.Param("id")}
	card, err := queries.Ask[booking.RateCardQuery, rates.Card](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRateCardResponse(card))
}

var _ RoomHTTP = RoomHandler{}

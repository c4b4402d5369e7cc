package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/handlers/booking"
	"innkeep/internal/domain/availability"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/stay"
	mongostore "innkeep/internal/infra/db/mongo"
)

// writeError maps domain failures onto HTTP statuses. Conflicts keep their
// structured detail in the body so the front desk can show which booking is
// in the way.
func writeError(c *gin.Context, err error) {
	var unavailable *availability.RoomUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "room unavailable",
			"room_id":        unavailable.RoomID,
			"conflicting_id": unavailable.ConflictingID,
		})
		return
	}
	var transition *reservation.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"from":  string(transition.From),
			"to":    string(transition.To),
		})
		return
	}
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var format *calendar.FormatError
	switch {
	case errors.As(err, &format),
		errors.Is(err, stay.ErrInvalidRange),
		errors.Is(err, booking.ErrCheckInInPast),
		errors.Is(err, rates.ErrMissingDayStayRate):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, rates.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, mongostore.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrCorruptedState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrStorage):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

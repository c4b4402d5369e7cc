package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/booking"
	"innkeep/internal/app/queries"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/reservation"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReservationRequest struct {
	RoomID    string        `json:"room_id"`
	GuestName string        `json:"guest_name"`
	Guests    int           `json:"guests"`
	CheckIn   calendar.Date `json:"check_in"`
	CheckOut  calendar.Date `json:"check_out"`
	DayStay   bool          `json:"day_stay"`
	ExtraBeds int           `json:"extra_beds"`
	ExtraWood int           `json:"extra_wood"`
	Discount  int64         `json:"discount"`
	TopUp     int64         `json:"top_up"`
	AsPending bool          `json:"as_pending"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := booking.ConfirmCommand{
		CommandID:       uuid.NewString(),
		RoomID:          req.RoomID,
		GuestName:       req.GuestName,
		Guests:          req.Guests,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		DayStay:         req.DayStay,
		ExtraBeds:       req.ExtraBeds,
		ExtraWood:       req.ExtraWood,
		Discount:        req.Discount,
		TopUp:           req.TopUp,
		AsPending:       req.AsPending,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[booking.ConfirmCommand, *booking.ConfirmResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := booking.ReservationByIDQuery{ReservationID: c.Param("id")}
	rec, err := queries.Ask[booking.ReservationByIDQuery, *reservation.Reservation](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rec))
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h ReservationHandler) ChangeStatus(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := booking.ChangeStatusCommand{
		ReservationID: c.Param("id"),
		NewStatus:     req.Status,
	}
	result, err := commands.Dispatch[booking.ChangeStatusCommand, *booking.ChangeStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type replaceAdjustmentsRequest struct {
	ExtraBeds int   `json:"extra_beds"`
	ExtraWood int   `json:"extra_wood"`
	Discount  int64 `json:"discount"`
	TopUp     int64 `json:"top_up"`
}

func (h ReservationHandler) ReplaceAdjustments(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req replaceAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := booking.RecomputeAdjustmentsCommand{
		ReservationID: c.Param("id"),
		ExtraBeds:     req.ExtraBeds,
		ExtraWood:     req.ExtraWood,
		Discount:      req.Discount,
		TopUp:         req.TopUp,
	}
	result, err := commands.Dispatch[booking.RecomputeAdjustmentsCommand, *booking.RecomputeAdjustmentsResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReservationHTTP = ReservationHandler{}

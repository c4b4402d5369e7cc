package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/handlers/booking"
	"innkeep/internal/app/queries"
	"innkeep/internal/domain/calendar"
)

type QuoteHandler struct {
	Queries queries.Bus
}

type quoteRequest struct {
	RoomID    string        `json:"room_id"`
	CheckIn   calendar.Date `json:"check_in"`
	CheckOut  calendar.Date `json:"check_out"`
	DayStay   bool          `json:"day_stay"`
	Guests    int           `json:"guests"`
	ExtraBeds int           `json:"extra_beds"`
	ExtraWood int           `json:"extra_wood"`
	Discount  int64         `json:"discount"`
	TopUp     int64         `json:"top_up"`
}

func (h QuoteHandler) Create(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := booking.QuoteQuery{
		RoomID:    req.RoomID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		DayStay:   req.DayStay,
		Guests:    req.Guests,
		ExtraBeds: req.ExtraBeds,
		ExtraWood: req.ExtraWood,
		Discount:  req.Discount,
		TopUp:     req.TopUp,
	}
	quote, err := queries.Ask[booking.QuoteQuery, *booking.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

var _ QuoteHTTP = QuoteHandler{}

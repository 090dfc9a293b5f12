package api

import (
	"errors"
	"net/http"
	"time"

	"medslot/internal/domain/capacity"
	reqdto "medslot/internal/handler/dto/request"
	resdto "medslot/internal/handler/dto/response"
	"medslot/internal/handler/httperr"
	"medslot/internal/pkg/errs"
	"medslot/internal/usecase/commands"
	"medslot/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create draft
// @Description Stage a booking request; no capacity is consumed until commit
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body reqdto.CreateDraftRequest true "Draft request"
// @Success 201 {object} resdto.DraftResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /drafts [post]
func (h *BookingHandler) CreateDraft(c *gin.Context) {
	var req reqdto.CreateDraftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	resource, spec, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	draft, err := h.bookingCommands.CreateDraft(c.Request.Context(), resource, spec, req.Quantity, req.RequesterRef)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrResourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Resource not found",
			})
		case errors.Is(err, errs.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromDraftView(draft))
}

// @Summary Commit draft
// @Description Atomically reserve capacity for a draft and record the booking
// @Tags bookings
// @Produce json
// @Param id path string true "Draft ID"
// @Success 201 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Failure 503 {object} map[string]string
// @Router /drafts/{id}/commit [post]
func (h *BookingHandler) CommitDraft(c *gin.Context) {
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid draft ID format",
		})
		return
	}

	view, err := h.bookingCommands.Commit(c.Request.Context(), draftID)
	if err != nil {
		var insufficient *capacity.InsufficientError
		switch {
		case errors.Is(err, errs.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Draft not found",
			})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient capacity",
				"detail": resdto.RejectionDetail{
					Key:       insufficient.Key.String(),
					Requested: insufficient.Requested,
					Remaining: insufficient.Remaining,
				},
			})
		case errors.Is(err, errs.ErrLedgerTimeout):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Ledger busy, retry the request",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}

// @Summary Discard draft
// @Description Forget a draft; never touches the ledger
// @Tags bookings
// @Produce json
// @Param id path string true "Draft ID"
// @Success 204
// @Router /drafts/{id} [delete]
func (h *BookingHandler) DiscardDraft(c *gin.Context) {
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid draft ID format",
		})
		return
	}

	if err := h.bookingCommands.Discard(c.Request.Context(), draftID); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get availability
// @Description Remaining bookable units for a resource and time descriptor
// @Tags bookings
// @Produce json
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Router /availability [get]
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	var q reqdto.AvailabilityQuery
	if bindErr := c.ShouldBindQuery(&q); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	resource, spec, err := q.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	remaining, err := h.bookingQueries.Availability(c.Request.Context(), resource, spec)
	if err != nil {
		if errors.Is(err, errs.ErrLedgerTimeout) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Ledger busy, retry the request",
			})
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.AvailabilityResponse{Remaining: remaining})
}

// @Summary List bookings
// @Description Committed bookings for a resource, ordered by commit time
// @Tags bookings
// @Produce json
// @Success 200 {array} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var q reqdto.ListBookingsQuery
	if bindErr := c.ShouldBindQuery(&q); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	cursor, err := parseCursor(q.AfterCommitted, q.AfterID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	views, err := h.bookingQueries.ListBookings(c.Request.Context(), q.Resource(), cursor, q.Limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

func parseCursor(afterCommitted, afterID *string) (*queries.Cursor, error) {
	if afterCommitted == nil && afterID == nil {
		return nil, nil
	}
	if afterCommitted == nil || afterID == nil {
		return nil, errors.New("after_committed_at and after_id must be provided together")
	}

	committedAt, err := time.Parse(time.RFC3339Nano, *afterCommitted)
	if err != nil {
		return nil, errors.New("after_committed_at must be RFC3339")
	}
	id, err := uuid.Parse(*afterID)
	if err != nil {
		return nil, errors.New("after_id must be a UUID")
	}
	return &queries.Cursor{CommittedAt: committedAt, ID: id}, nil
}

package response

import (
	"time"

	"medslot/internal/usecase/commands"
	"medslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type DraftResponse struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	ProviderID   string    `json:"providerId"`
	UnitID       string    `json:"unitId"`
	Buckets      []string  `json:"buckets"`
	Quantity     int       `json:"quantity"`
	RequesterRef string    `json:"requesterRef"`
}

type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	ProviderID   string    `json:"providerId"`
	UnitID       string    `json:"unitId"`
	Buckets      []string  `json:"buckets"`
	Quantity     int       `json:"quantity"`
	RequesterRef string    `json:"requesterRef"`
	CommittedAt  time.Time `json:"committedAt"`
}

type AvailabilityResponse struct {
	Remaining int `json:"remaining"`
}

type RejectionDetail struct {
	Key       string `json:"key"`
	Requested int    `json:"requested"`
	Remaining int    `json:"remaining"`
}

func FromDraftView(v *commands.DraftView) *DraftResponse {
	var resp DraftResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromBookingViews(views []*queries.BookingView) []*BookingResponse {
	out := make([]*BookingResponse, len(views))
	for i, v := range views {
		out[i] = FromBookingView(v)
	}
	return out
}

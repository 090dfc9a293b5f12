//go:build unit

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medslot/internal/domain/capacity"
	"medslot/internal/handler/api"
	"medslot/internal/pkg/errs"
	"medslot/internal/usecase/commands"
	"medslot/internal/usecase/queries"
	commandsmock "medslot/tests/mock/commands"
	queriesmock "medslot/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/api/drafts", s.handler.CreateDraft)
	s.router.POST("/api/drafts/:id/commit", s.handler.CommitDraft)
	s.router.DELETE("/api/drafts/:id", s.handler.DiscardDraft)
	s.router.GET("/api/availability", s.handler.GetAvailability)
	s.router.GET("/api/bookings", s.handler.ListBookings)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) perform(method, url string, body map[string]any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *BookingHandlerTestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func validDraftBody() map[string]any {
	return map[string]any{
		"category":      "bed",
		"provider_id":   "Ruby General Hospital",
		"unit_id":       "Surgical Wards",
		"from":          "2025-04-01",
		"to":            "2025-04-03",
		"quantity":      2,
		"requester_ref": "patient-42",
	}
}

func (s *BookingHandlerTestSuite) TestCreateDraft() {
	url := "/api/drafts"

	s.Run("returns 201 with the staged draft", func() {
		view := &commands.DraftView{
			ID:           uuid.New(),
			Category:     "bed",
			ProviderID:   "Ruby General Hospital",
			UnitID:       "Surgical Wards",
			Buckets:      []string{"day:2025-04-01", "day:2025-04-02", "day:2025-04-03"},
			Quantity:     2,
			RequesterRef: "patient-42",
		}
		s.mockCommands.EXPECT().
			CreateDraft(gomock.Any(), gomock.Any(), gomock.Any(), 2, "patient-42").
			Return(view, nil)

		rec := s.perform(http.MethodPost, url, validDraftBody())

		s.Equal(http.StatusCreated, rec.Code)
		body := s.decode(rec)
		s.Equal(view.ID.String(), body["id"])
		s.Len(body["buckets"], 3)
	})

	s.Run("validation failures return 400 before reaching the usecase", func() {
		mutations := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "unknown category", mutate: func(m map[string]any) { m["category"] = "clinic" }},
			{name: "missing provider", mutate: func(m map[string]any) { delete(m, "provider_id") }},
			{name: "missing quantity", mutate: func(m map[string]any) { delete(m, "quantity") }},
			{name: "no time spec", mutate: func(m map[string]any) { delete(m, "from"); delete(m, "to") }},
			{name: "range and slot together", mutate: func(m map[string]any) { m["slot"] = "morning" }},
			{name: "malformed date", mutate: func(m map[string]any) { m["from"] = "01/04/2025" }},
		}
		for _, tc := range mutations {
			s.Run(tc.name, func() {
				body := validDraftBody()
				tc.mutate(body)
				rec := s.perform(http.MethodPost, url, body)
				s.Equal(http.StatusBadRequest, rec.Code)
			})
		}
	})

	s.Run("inverted range from the domain returns 400", func() {
		body := validDraftBody()
		body["from"] = "2025-04-05"
		body["to"] = "2025-04-01"
		rec := s.perform(http.MethodPost, url, body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown resource returns 404", func() {
		s.mockCommands.EXPECT().
			CreateDraft(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrResourceNotFound)

		rec := s.perform(http.MethodPost, url, validDraftBody())
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *BookingHandlerTestSuite) TestCommitDraft() {
	draftID := uuid.New()
	url := "/api/drafts/" + draftID.String() + "/commit"

	s.Run("returns 201 with the committed booking", func() {
		view := &queries.BookingView{
			ID:           uuid.New(),
			Category:     "bed",
			ProviderID:   "Ruby General Hospital",
			UnitID:       "Surgical Wards",
			Buckets:      []string{"day:2025-04-01"},
			Quantity:     2,
			RequesterRef: "patient-42",
			CommittedAt:  time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		}
		s.mockCommands.EXPECT().Commit(gomock.Any(), draftID).Return(view, nil)

		rec := s.perform(http.MethodPost, url, nil)
		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(view.ID.String(), s.decode(rec)["id"])
	})

	s.Run("insufficiency returns 409 with the losing key", func() {
		day := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
		s.mockCommands.EXPECT().Commit(gomock.Any(), draftID).Return(nil, &capacity.InsufficientError{
			Key: capacity.Key{
				Resource: capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "Ruby General Hospital", UnitID: "Surgical Wards"},
				Bucket:   capacity.DayBucket(day),
			},
			Requested: 5,
			Remaining: 4,
		})

		rec := s.perform(http.MethodPost, url, nil)
		s.Equal(http.StatusConflict, rec.Code)

		body := s.decode(rec)
		detail, ok := body["detail"].(map[string]any)
		s.Require().True(ok)
		s.Equal("bed/Ruby General Hospital/Surgical Wards@day:2025-04-03", detail["key"])
		s.Equal(float64(5), detail["requested"])
		s.Equal(float64(4), detail["remaining"])
	})

	s.Run("unknown draft returns 404", func() {
		s.mockCommands.EXPECT().Commit(gomock.Any(), draftID).Return(nil, errs.ErrDraftNotFound)
		rec := s.perform(http.MethodPost, url, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("ledger timeout returns 503", func() {
		s.mockCommands.EXPECT().Commit(gomock.Any(), draftID).
			Return(nil, errs.Mark(errs.New("lock wait exceeded"), errs.ErrLedgerTimeout))
		rec := s.perform(http.MethodPost, url, nil)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("malformed draft id returns 400", func() {
		rec := s.perform(http.MethodPost, "/api/drafts/not-a-uuid/commit", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *BookingHandlerTestSuite) TestDiscardDraft() {
	draftID := uuid.New()

	s.Run("returns 204 even when the draft never existed", func() {
		s.mockCommands.EXPECT().Discard(gomock.Any(), draftID).Return(nil)
		rec := s.perform(http.MethodDelete, "/api/drafts/"+draftID.String(), nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *BookingHandlerTestSuite) TestGetAvailability() {
	s.Run("returns the remaining count", func() {
		s.mockQueries.EXPECT().
			Availability(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(4, nil)

		rec := s.perform(http.MethodGet,
			"/api/availability?category=bed&provider_id=H1&unit_id=W1&from=2025-04-01&to=2025-04-03", nil)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal(float64(4), s.decode(rec)["remaining"])
	})

	s.Run("missing time spec returns 400", func() {
		rec := s.perform(http.MethodGet, "/api/availability?category=bed&provider_id=H1&unit_id=W1", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *BookingHandlerTestSuite) TestListBookings() {
	resource := capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "H1", UnitID: "W1"}

	s.Run("lists without a cursor", func() {
		s.mockQueries.EXPECT().
			ListBookings(gomock.Any(), resource, nil, int32(50)).
			Return([]*queries.BookingView{}, nil)

		rec := s.perform(http.MethodGet, "/api/bookings?category=bed&provider_id=H1&unit_id=W1", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("passes a full cursor through", func() {
		after := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
		afterID := uuid.New()
		s.mockQueries.EXPECT().
			ListBookings(gomock.Any(), resource, &queries.Cursor{CommittedAt: after, ID: afterID}, int32(10)).
			Return([]*queries.BookingView{}, nil)

		url := "/api/bookings?category=bed&provider_id=H1&unit_id=W1&limit=10" +
			"&after_committed_at=" + after.Format(time.RFC3339) + "&after_id=" + afterID.String()
		rec := s.perform(http.MethodGet, url, nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("half a cursor returns 400", func() {
		rec := s.perform(http.MethodGet,
			"/api/bookings?category=bed&provider_id=H1&unit_id=W1&after_id="+uuid.New().String(), nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

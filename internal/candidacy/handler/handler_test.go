package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nhc/internal/candidacy/handler/mocks"
	"nhc/internal/candidacy/models"
	periodModels "nhc/internal/period/models"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type CandidacyHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestCandidacyHandlerSuite(t *testing.T) {
	suite.Run(t, new(CandidacyHandlerSuite))
}

func (s *CandidacyHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *CandidacyHandlerSuite) TestSubmit() {
	zoneID := uuid.New()
	req := models.SubmitRequest{PersonalID: "P-1", ZoneID: zoneID, Category: "President"}

	s.Run("created", func() {
		s.service.EXPECT().Submit(gomock.Any(), req).
			Return(&models.Candidacy{ID: uuid.New(), PersonalID: "P-1", Status: models.StatusPending}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/candidacies", req))
		s.Equal(http.StatusCreated, rr.Code)
		s.Equal(models.StatusPending, testutil.Decode[models.Candidacy](s.T(), rr).Status)
	})

	s.Run("no nomination scheduled", func() {
		s.service.EXPECT().Submit(gomock.Any(), req).Return(nil, periodModels.NotScheduled(periodModels.KindNomination))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/candidacies", req))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, periodModels.ReasonNoNominationScheduled)
	})

	s.Run("empty body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/candidacies", nil))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
	})
}

func (s *CandidacyHandlerSuite) TestSupport() {
	id := uuid.New()
	path := "/candidacies/" + id.String() + "/support"

	s.Run("recorded", func() {
		s.service.EXPECT().Support(gomock.Any(), id, "S-1").
			Return(&models.SupportResult{CandidacyID: id, SupportCount: 5, IsEligible: true}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, models.SupportRequest{SupporterPersonalID: " S-1 "}))
		s.Equal(http.StatusOK, rr.Code)
		res := testutil.Decode[models.SupportResult](s.T(), rr)
		s.True(res.IsEligible)
		s.Equal(5, res.SupportCount)
	})

	for _, tc := range []struct {
		reason string
		code   dErrors.Code
		status int
	}{
		{models.ReasonSelfSupportForbidden, dErrors.CodeBadRequest, http.StatusBadRequest},
		{models.ReasonDuplicateSupport, dErrors.CodeConflict, http.StatusConflict},
		{models.ReasonCategoryAlreadySupported, dErrors.CodeConflict, http.StatusConflict},
		{models.ReasonCandidacyNotFound, dErrors.CodeNotFound, http.StatusNotFound},
		{periodModels.ReasonNominationWindowClosed, dErrors.CodeWindowClosed, http.StatusBadRequest},
	} {
		s.Run(tc.reason, func() {
			s.service.EXPECT().Support(gomock.Any(), id, "S-1").Return(nil, dErrors.New(tc.code, "rejected").WithReason(tc.reason))

			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, models.SupportRequest{SupporterPersonalID: "S-1"}))
			testutil.AssertError(s.T(), rr, tc.status, tc.reason)
		})
	}

	s.Run("bad id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/candidacies/42/support", models.SupportRequest{SupporterPersonalID: "S-1"}))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
	})
}

func (s *CandidacyHandlerSuite) TestList() {
	zoneID := uuid.New()
	s.service.EXPECT().List(gomock.Any(), models.ListFilter{ZoneID: zoneID, EligibleOnly: true, SupporterPersonalID: "S-1"}).
		Return([]*models.View{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet,
		"/candidacies?zoneId="+zoneID.String()+"&eligible=true&supporterPersonalId=S-1", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq("[]", rr.Body.String())

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/candidacies", nil))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
}

func (s *CandidacyHandlerSuite) TestReports() {
	zoneID := uuid.New()
	q := "?zoneId=" + zoneID.String()
	s.service.EXPECT().Eligibility(gomock.Any(), zoneID).Return(&models.EligibilityReport{Candidacies: []*models.EligibilityEntry{}}, nil)
	s.service.EXPECT().Summary(gomock.Any(), zoneID).Return(&models.Summary{Total: 2, Eligible: 1}, nil)
	s.service.EXPECT().Supports(gomock.Any(), zoneID).Return([]*models.SupportRecord{}, nil)
	s.service.EXPECT().Stats(gomock.Any(), zoneID).Return(&models.SupportStats{SupportsCast: 3}, nil)

	for _, path := range []string{"/admin/candidacies/eligibility", "/admin/candidacies/summary", "/admin/supports", "/admin/support-stats"} {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, path+q, nil))
		s.Equal(http.StatusOK, rr.Code, path)
	}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/candidacies/summary", nil))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
}

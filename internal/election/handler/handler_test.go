package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nhc/internal/election/handler/mocks"
	"nhc/internal/election/models"
	periodModels "nhc/internal/period/models"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type ElectionHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestElectionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ElectionHandlerSuite))
}

func (s *ElectionHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *ElectionHandlerSuite) TestCast() {
	electionID, candidacyID := uuid.New(), uuid.New()
	body := map[string]any{"electionId": electionID, "voterPersonalId": "V-1", "candidacyId": candidacyID}

	s.Run("created", func() {
		s.service.EXPECT().
			Cast(gomock.Any(), models.CastRequest{ElectionID: electionID, VoterPersonalID: "V-1", CandidacyID: candidacyID}).
			Return(&models.Vote{ID: uuid.New(), ElectionID: electionID, CandidacyID: candidacyID}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/votes", body))
		s.Equal(http.StatusCreated, rr.Code)
		vote := testutil.Decode[models.Vote](s.T(), rr)
		s.Equal(electionID, vote.ElectionID)
	})

	s.Run("duplicate ballot is a conflict", func() {
		s.service.EXPECT().Cast(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "already voted").WithReason(models.ReasonAlreadyVoted))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/votes", body))
		testutil.AssertError(s.T(), rr, http.StatusConflict, models.ReasonAlreadyVoted)
	})

	s.Run("closed window is a bad request", func() {
		s.service.EXPECT().Cast(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeWindowClosed, "Voting is not open").WithReason(periodModels.ReasonVotingWindowClosed))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/votes", body))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, periodModels.ReasonVotingWindowClosed)
	})

	s.Run("unknown fields are rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/votes", map[string]any{"ballot": 1}))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
	})

	s.Run("internal errors do not leak", func() {
		s.service.EXPECT().Cast(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: connection refused"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/votes", body))
		out := testutil.AssertError(s.T(), rr, http.StatusInternalServerError, "")
		s.Equal("internal server error", out.Description)
	})
}

func (s *ElectionHandlerSuite) TestStats() {
	zoneID := uuid.New()

	s.Run("by zone", func() {
		s.service.EXPECT().Stats(gomock.Any(), gomock.Nil(), &zoneID).
			Return(&models.Stats{ZoneID: zoneID, Source: models.SourceLive}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/election-stats?zoneId="+zoneID.String(), nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(models.SourceLive, testutil.Decode[models.Stats](s.T(), rr).Source)
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/election-stats?electionId=nope", nil))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
	})
}

func (s *ElectionHandlerSuite) TestResults() {
	zoneID := uuid.New()

	s.service.EXPECT().Results(gomock.Any(), zoneID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "No election results found for this NHC").WithReason(models.ReasonNoResults))
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/election-results/"+zoneID.String(), nil))
	testutil.AssertError(s.T(), rr, http.StatusNotFound, models.ReasonNoResults)

	s.service.EXPECT().Results(gomock.Any(), zoneID).
		Return([]*models.ElectionResults{{ElectionID: uuid.New(), Positions: []models.CategoryStandings{{Category: "President"}}}}, nil)
	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/election-results/"+zoneID.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Len(testutil.Decode[[]models.ElectionResults](s.T(), rr), 1)
}

func (s *ElectionHandlerSuite) TestClose() {
	zoneID := uuid.New()
	s.service.EXPECT().Close(gomock.Any(), zoneID).
		Return(&models.CloseOutcome{ZoneID: zoneID, Policy: models.PolicyAllEligible, Winners: []models.Winner{{PersonalID: "P-1", Role: "President"}}}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, "/admin/election-window/"+zoneID.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	out := testutil.Decode[models.CloseOutcome](s.T(), rr)
	s.Require().Len(out.Winners, 1)
	s.Equal("President", out.Winners[0].Role)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, "/admin/election-window/not-a-uuid", nil))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
}

func (s *ElectionHandlerSuite) TestVoteAudit() {
	electionID, candidacyID := uuid.New(), uuid.New()
	s.service.EXPECT().Votes(gomock.Any(), electionID).Return([]*models.VoteRecord{}, nil)
	s.service.EXPECT().CandidacyVotes(gomock.Any(), candidacyID).Return([]*models.VoteRecord{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/votes?electionId="+electionID.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/candidacies/"+candidacyID.String()+"/votes", nil))
	s.Equal(http.StatusOK, rr.Code)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/votes", nil))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "")
}

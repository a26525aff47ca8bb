package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	memberService "nhc/internal/member/service"
	"nhc/internal/request"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
	"nhc/pkg/testutil"
)

type RequestSuite struct {
	suite.Suite
	ctx      context.Context
	council  *testutil.Council
	notified *testutil.Notifications
	svc      *request.Service
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestSuite))
}

func (s *RequestSuite) SetupTest() {
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.council = testutil.NewCouncil(s.T(), now)
	s.notified = &testutil.Notifications{}
	s.svc = request.NewService(s.council.Store, testutil.MemoryTx[request.Store]{Store: s.council.Store},
		request.WithNotifier(s.notified))
}

func (s *RequestSuite) TestFileAndAssign() {
	other := s.council.AddZone("Ward 2")
	s.council.AddMember("P-1")

	r, err := s.svc.File(s.ctx, request.FileRequest{PersonalID: "P-1", Location: "Block C"})
	s.Require().NoError(err)
	s.Equal(request.StatusPending, r.Status)

	pending, err := s.svc.List(s.ctx, "Pending")
	s.Require().NoError(err)
	s.Len(pending, 1)

	assigned, err := s.svc.Assign(s.ctx, r.ID, other.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusCreated, assigned.Status)
	s.Equal(other.ID, *assigned.AssignedZoneID)

	m, err := s.council.Store.FindMemberByPersonalID(s.ctx, "P-1")
	s.Require().NoError(err)
	s.True(m.InZone(other.ID))
	s.Require().Len(s.notified.Sent["P-1"], 1)
	s.Contains(s.notified.Sent["P-1"][0], "Ward 2")

	pending, err = s.svc.List(s.ctx, "Pending")
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *RequestSuite) TestRejections() {
	s.council.AddMember("P-1")

	_, err := s.svc.File(s.ctx, request.FileRequest{PersonalID: "P-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.File(s.ctx, request.FileRequest{PersonalID: "ghost", Description: "help"})
	s.True(dErrors.HasReason(err, memberService.ReasonMemberNotFound))

	_, err = s.svc.List(s.ctx, "Archived")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.svc.Assign(s.ctx, uuid.New(), s.council.Zone.ID)
	s.True(dErrors.HasReason(err, request.ReasonRequestNotFound))

	r, err := s.svc.File(s.ctx, request.FileRequest{PersonalID: "P-1", Description: "help"})
	s.Require().NoError(err)
	_, err = s.svc.Assign(s.ctx, r.ID, uuid.New())
	s.True(dErrors.HasReason(err, zone.ReasonZoneNotFound))

	s.Require().NoError(s.svc.Delete(s.ctx, r.ID))
	s.True(dErrors.HasReason(s.svc.Delete(s.ctx, r.ID), request.ReasonRequestNotFound))
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"nhc/internal/member/models"
	"nhc/internal/member/service"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
	"nhc/pkg/testutil"
)

type MemberSuite struct {
	suite.Suite
	ctx     context.Context
	council *testutil.Council
	svc     *service.Service
}

func TestMemberSuite(t *testing.T) {
	suite.Run(t, new(MemberSuite))
}

func (s *MemberSuite) SetupTest() {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.council = testutil.NewCouncil(s.T(), now)
	s.svc = service.New(s.council.Store, service.WithBcryptCost(bcrypt.MinCost))
}

func (s *MemberSuite) signup() *models.Profile {
	p, err := s.svc.Signup(s.ctx, models.SignupRequest{
		PersonalID: " 35202-1 ",
		FirstName:  "Ayesha",
		LastName:   "Khan",
		Email:      "Ayesha@Example.com",
		Password:   "s3cret",
	})
	s.Require().NoError(err)
	return p
}

func (s *MemberSuite) TestSignup() {
	p := s.signup()
	s.Equal("35202-1", p.PersonalID)
	s.Equal("ayesha@example.com", p.Email)
	s.Equal(models.RoleUser, p.Role)
	s.Nil(p.ZoneID)
	s.NotEqual("s3cret", p.PasswordHash)

	_, err := s.svc.Signup(s.ctx, models.SignupRequest{PersonalID: "35202-1", FirstName: "Dup", Password: "x"})
	s.True(dErrors.HasReason(err, service.ReasonDuplicatePersonalID))

	_, err = s.svc.Signup(s.ctx, models.SignupRequest{PersonalID: "35202-2", FirstName: "NoPassword"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MemberSuite) TestLogin() {
	s.signup()

	p, err := s.svc.Login(s.ctx, models.LoginRequest{PersonalID: "35202-1", Password: "s3cret"})
	s.Require().NoError(err)
	s.Equal("Ayesha", p.FirstName)

	for _, req := range []models.LoginRequest{
		{PersonalID: "35202-1", Password: "wrong"},
		{PersonalID: "unknown", Password: "s3cret"},
		{PersonalID: "35202-1"},
	} {
		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasReason(err, service.ReasonInvalidCredentials), req.PersonalID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *MemberSuite) TestProfileAndUpdate() {
	s.council.AddMember("P-1")

	p, err := s.svc.Get(s.ctx, "P-1")
	s.Require().NoError(err)
	s.Equal(s.council.Zone.Name, p.ZoneName)

	phone := " 0300-1234567 "
	empty := " "
	p, err = s.svc.Update(s.ctx, "P-1", models.UpdateRequest{Phone: &phone})
	s.Require().NoError(err)
	s.Equal("0300-1234567", p.Phone)

	_, err = s.svc.Update(s.ctx, "P-1", models.UpdateRequest{FirstName: &empty})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Get(s.ctx, "nobody")
	s.True(dErrors.HasReason(err, service.ReasonMemberNotFound))
	_, err = s.svc.Get(s.ctx, " ")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *MemberSuite) TestList() {
	other := s.council.AddZone("Ward 2")
	s.council.AddMember("P-1")
	s.council.AddMemberIn("P-2", other.ID)
	s.signup()

	all, err := s.svc.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	inWard2, err := s.svc.List(s.ctx, &other.ID)
	s.Require().NoError(err)
	s.Require().Len(inWard2, 1)
	s.Equal("Ward 2", inWard2[0].ZoneName)
}

func (s *MemberSuite) TestRolesNeedsMember() {
	_, err := s.svc.Roles(s.ctx, "nobody")
	s.True(dErrors.HasReason(err, service.ReasonMemberNotFound))

	s.council.AddMember("P-1")
	roles, err := s.svc.Roles(s.ctx, "P-1")
	s.Require().NoError(err)
	s.Empty(roles)
}

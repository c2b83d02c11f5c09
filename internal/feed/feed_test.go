package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"snapfeed/internal/db"
	"snapfeed/internal/models"

	"github.com/stretchr/testify/suite"
)

type FeedTestSuite struct {
	suite.Suite
	db      *db.DB
	service *Service
	ctx     context.Context
	alice   models.Identity
	bob     models.Identity
}

func (s *FeedTestSuite) SetupTest() {
	s.ctx = context.Background()
	database, err := db.Init(s.ctx, "sqlite3", filepath.Join(s.T().TempDir(), "feed.db"))
	s.Require().NoError(err)
	s.db = database
	s.service = NewService(database)

	s.alice = s.user("alice")
	s.bob = s.user("bob")
}

func (s *FeedTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *FeedTestSuite) user(name string) models.Identity {
	u, err := s.db.CreateUser(s.ctx, name, "x")
	s.Require().NoError(err)
	return models.Identity{UserID: u.ID, Username: u.Username}
}

func (s *FeedTestSuite) TestPrivateUpload() {
	created, err := s.service.Create(s.ctx, s.alice, "hi", "", false)
	s.Require().NoError(err)
	s.Equal("alice", created.Username)

	dashboard, err := s.service.Dashboard(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(dashboard, 1)
	s.Equal("hi", dashboard[0].Message)

	public, err := s.service.PublicFeed(s.ctx)
	s.Require().NoError(err)
	s.Empty(public)
}

func (s *FeedTestSuite) TestPublicUpload() {
	_, err := s.service.Create(s.ctx, s.alice, "hi", "", true)
	s.Require().NoError(err)

	public, err := s.service.PublicFeed(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(public, 1)
	s.Equal("alice", public[0].Username)
	s.Equal("hi", public[0].Message)
}

func (s *FeedTestSuite) TestEmptyUploadAllowed() {
	created, err := s.service.Create(s.ctx, s.bob, "", "", false)
	s.Require().NoError(err)
	s.NotZero(created.ID)
}

// Every combination of owner and visibility, checked against both views.
func (s *FeedTestSuite) TestVisibilityProperties() {
	owners := []models.Identity{s.alice, s.bob}
	for i := 0; i < 12; i++ {
		owner := owners[i%2]
		isPublic := i%3 == 0
		_, err := s.service.Create(s.ctx, owner, fmt.Sprintf("post %d", i), "", isPublic)
		s.Require().NoError(err)
	}

	public, err := s.service.PublicFeed(s.ctx)
	s.Require().NoError(err)
	s.Len(public, 4)
	for _, u := range public {
		s.True(u.IsPublic, "private upload %d leaked into the public feed", u.ID)
	}

	for _, owner := range owners {
		dashboard, err := s.service.Dashboard(s.ctx, owner)
		s.Require().NoError(err)
		s.Len(dashboard, 6)
		for _, u := range dashboard {
			s.Equal(owner.UserID, u.UserID)
			s.Equal(owner.Username, u.Username)
		}
	}
}

func (s *FeedTestSuite) TestOrderIsCreationOrder() {
	for i := 0; i < 5; i++ {
		_, err := s.service.Create(s.ctx, s.alice, fmt.Sprintf("%d", i), "", true)
		s.Require().NoError(err)
	}

	public, err := s.service.PublicFeed(s.ctx)
	s.Require().NoError(err)
	for i := 1; i < len(public); i++ {
		s.Less(public[i-1].ID, public[i].ID)
	}
}

func TestFeedTestSuite(t *testing.T) {
	suite.Run(t, new(FeedTestSuite))
}

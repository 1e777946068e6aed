package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/repository"
	"github.com/vytor/wordflow/internal/repository/sqlite"
	"github.com/vytor/wordflow/internal/testutil"
)

type ReviewLogRepositorySuite struct {
	suite.Suite
	db     *sqlx.DB
	states repository.ReviewStateRepository
	repo   repository.ReviewLogRepository
}

func (s *ReviewLogRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.states = sqlite.NewReviewStateRepository(s.db)
	s.repo = sqlite.NewReviewLogRepository(s.db)
}

func (s *ReviewLogRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

// record enrolls the item if needed and appends one rating at ratedAt.
func (s *ReviewLogRepositorySuite) record(itemID, collectionID string, r models.Rating, ratedAt time.Time) {
	ctx := context.Background()
	_, err := s.states.Insert(ctx, newState("ana", itemID, collectionID, t0))
	s.Require().NoError(err)
	st, err := s.states.Get(ctx, "ana", itemID)
	s.Require().NoError(err)

	entry := models.ReviewLogEntry{LearnerID: "ana", ItemID: itemID, CollectionID: collectionID, RatedAt: ratedAt, Rating: r}
	s.Require().NoError(s.states.SaveReview(ctx, *st, st.Version, entry))
}

func (s *ReviewLogRepositorySuite) TestTally() {
	s.record("a", "es", models.Good, t0)
	s.record("a", "es", models.Easy, t0.Add(time.Minute))
	s.record("b", "es", models.Again, t0.Add(2*time.Minute))
	s.record("c", "fr", models.Hard, t0.Add(3*time.Minute))
	s.record("c", "fr", models.Good, t0.Add(-48*time.Hour))

	tally, err := s.repo.Tally(context.Background(), models.ReviewLogFilter{LearnerID: "ana", From: t0, To: t0.Add(time.Hour)})
	s.Require().NoError(err)
	s.Assert().Equal(models.Tally{Again: 1, Hard: 1, Good: 1, Easy: 1}, tally)

	tally, err = s.repo.Tally(context.Background(), models.ReviewLogFilter{LearnerID: "ana", CollectionID: "es"})
	s.Require().NoError(err)
	s.Assert().Equal(3, tally.Total())
}

func (s *ReviewLogRepositorySuite) TestListFilterByRating() {
	s.record("a", "es", models.Easy, t0)
	s.record("a", "es", models.Again, t0.Add(time.Minute))
	s.record("b", "es", models.Easy, t0.Add(2*time.Minute))

	entries, err := s.repo.List(context.Background(), models.ReviewLogFilter{LearnerID: "ana", Rating: models.Easy})
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Assert().Equal("a", entries[0].ItemID)
	s.Assert().Equal("b", entries[1].ItemID)
}

func (s *ReviewLogRepositorySuite) TestLearnedItems() {
	for i := 0; i < 3; i++ {
		s.record("gato", "es", models.Easy, t0.Add(time.Duration(i)*time.Hour))
	}
	s.record("perro", "es", models.Easy, t0)
	s.record("perro", "es", models.Easy, t0.Add(time.Hour))
	s.record("perro", "es", models.Good, t0.Add(2*time.Hour))
	for i := 0; i < 3; i++ {
		s.record("chat", "fr", models.Easy, t0.Add(time.Duration(i)*time.Hour))
	}

	learned, err := s.repo.LearnedItems(context.Background(), "ana", "", 3)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"chat", "gato"}, learned)

	learned, err = s.repo.LearnedItems(context.Background(), "ana", "es", 3)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"gato"}, learned)
}

func TestReviewLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewLogRepositorySuite))
}

package integration_testing

import (
	"context"

	"github.com/nutritiontrax/nutritiontrax/internal/goals"
)

func (s *RepoTestSuite) addGoal(ctx context.Context, goal goals.Goal) int {
	goalID, err := s.goalsRepo.Add(ctx, goal)
	s.Require().NoError(err)
	return goalID
}

func (s *RepoTestSuite) TestGoals_AddAndList() {
	ctx := context.Background()

	runID := s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Run 10k", Type: goals.TypeGTE,
		TargetValue: 10, MetricType: goals.MetricNumeric,
	})
	endDate := "2030-01-01"
	benchID := s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Bench 100kg", Type: goals.TypeGTE,
		TargetValue: 100, EndDate: &endDate, MetricType: goals.MetricNumeric,
	})
	s.addGoal(ctx, goals.Goal{
		UserID: userMare, Name: "Lose 5kg", Type: goals.TypeLTE,
		TargetValue: 80, MetricType: goals.MetricNumeric,
	})

	list, err := s.goalsRepo.List(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	// newest first
	s.Equal(benchID, list[0].ID)
	s.Equal(runID, list[1].ID)
	s.Equal("Bench 100kg", list[0].Name)
	s.Equal(goals.StatusNone, list[0].ChallengeStatus)
	s.Require().NotNil(list[0].EndDate)
	s.Equal(endDate, *list[0].EndDate)
	// no metric logged yet
	s.Nil(list[0].CurrentValue)
	s.Nil(list[0].MetricUnit)

	filtered, err := s.goalsRepo.List(ctx, userMiksa, "10k")
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(runID, filtered[0].ID)
}

func (s *RepoTestSuite) TestGoals_ListSkipsExpiredAndUnansweredChallenges() {
	ctx := context.Background()

	visibleID := s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Run 10k", Type: goals.TypeGTE,
		TargetValue: 10, MetricType: goals.MetricNumeric,
	})

	expired := "2020-01-01"
	s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Old Goal", Type: goals.TypeGTE,
		TargetValue: 1, EndDate: &expired, MetricType: goals.MetricNumeric,
	})

	pendingID, err := s.goalsRepo.CreateChallenge(ctx, userMare, goals.Goal{
		UserID: userMiksa, Name: "Pending Challenge", Type: goals.TypeGTE,
		TargetValue: 5, MetricType: goals.MetricNumeric,
	})
	s.Require().NoError(err)

	declinedID, err := s.goalsRepo.CreateChallenge(ctx, userMare, goals.Goal{
		UserID: userMiksa, Name: "Declined Challenge", Type: goals.TypeGTE,
		TargetValue: 5, MetricType: goals.MetricNumeric,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.goalsRepo.DeclineChallenge(ctx, userMiksa, declinedID))

	acceptedID, err := s.goalsRepo.CreateChallenge(ctx, userMare, goals.Goal{
		UserID: userMiksa, Name: "Accepted Challenge", Type: goals.TypeGTE,
		TargetValue: 5, MetricType: goals.MetricNumeric,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.goalsRepo.AcceptChallenge(ctx, userMiksa, acceptedID))

	list, err := s.goalsRepo.List(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	listedIDs := []int{list[0].ID, list[1].ID}
	s.Contains(listedIDs, visibleID)
	s.Contains(listedIDs, acceptedID)
	s.NotContains(listedIDs, pendingID)
	s.NotContains(listedIDs, declinedID)
}

func (s *RepoTestSuite) TestGoals_LogProgress() {
	ctx := context.Background()

	goalID := s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Bench 100kg", Type: goals.TypeGTE,
		TargetValue: 100, MetricType: goals.MetricNumeric,
	})

	s.Require().NoError(s.goalsRepo.LogProgress(ctx, goalID, 90, "kg", false))

	list, err := s.goalsRepo.List(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].CurrentValue)
	s.Equal(90.0, *list[0].CurrentValue)
	s.Require().NotNil(list[0].MetricUnit)
	s.Equal("kg", *list[0].MetricUnit)
	s.False(list[0].Complete)

	s.Require().NoError(s.goalsRepo.LogProgress(ctx, goalID, 102.5, "kg", true))

	goal, err := s.goalsRepo.Get(ctx, userMiksa, goalID)
	s.Require().NoError(err)
	s.True(goal.Complete)

	// the latest metric wins
	list, err = s.goalsRepo.List(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].CurrentValue)
	s.Equal(102.5, *list[0].CurrentValue)
}

func (s *RepoTestSuite) TestGoals_LogProgressUnknownGoal() {
	err := s.goalsRepo.LogProgress(context.Background(), 4242, 1, "None", false)
	s.Require().ErrorIs(err, goals.ErrGoalNotFound)
}

func (s *RepoTestSuite) TestGoals_DeleteCascadesMetrics() {
	ctx := context.Background()

	goalID := s.addGoal(ctx, goals.Goal{
		UserID: userMiksa, Name: "Run 10k", Type: goals.TypeGTE,
		TargetValue: 10, MetricType: goals.MetricNumeric,
	})
	s.Require().NoError(s.goalsRepo.LogProgress(ctx, goalID, 5, "km", false))

	s.Require().NoError(s.goalsRepo.Delete(ctx, userMiksa, goalID))
	s.Require().ErrorIs(s.goalsRepo.Delete(ctx, userMiksa, goalID), goals.ErrGoalNotFound)

	var metricsCount int
	s.Require().NoError(s.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM goal_metrics WHERE goal_id = $1;`,
		goalID,
	).Scan(&metricsCount))
	s.Equal(0, metricsCount)
}

func (s *RepoTestSuite) TestGoals_ChallengeLifecycle() {
	ctx := context.Background()

	goalID, err := s.goalsRepo.CreateChallenge(ctx, userMare, goals.Goal{
		UserID: userMiksa, Name: "Run 10k", Type: goals.TypeGTE,
		TargetValue: 10, MetricType: goals.MetricNumeric,
	})
	s.Require().NoError(err)

	pending, err := s.goalsRepo.PendingChallenges(ctx, userMiksa)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(goalID, pending[0].GoalID)
	s.Equal(userMare, pending[0].FromUserID)
	s.Equal("mare", pending[0].FromUsername)

	// only the challenged user can answer
	s.Require().ErrorIs(
		s.goalsRepo.AcceptChallenge(ctx, userMare, goalID),
		goals.ErrChallengeNotFound,
	)

	s.Require().NoError(s.goalsRepo.AcceptChallenge(ctx, userMiksa, goalID))

	pending, err = s.goalsRepo.PendingChallenges(ctx, userMiksa)
	s.Require().NoError(err)
	s.Empty(pending)

	list, err := s.goalsRepo.List(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(goalID, list[0].ID)

	// an answered challenge cannot be answered again
	s.Require().ErrorIs(
		s.goalsRepo.DeclineChallenge(ctx, userMiksa, goalID),
		goals.ErrChallengeNotFound,
	)
}

package integration_testing

import (
	"context"

	"github.com/nutritiontrax/nutritiontrax/internal/calories"
	"github.com/nutritiontrax/nutritiontrax/internal/workouts"
)

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func stringPtr(str string) *string {
	return &str
}

func (s *RepoTestSuite) TestWorkouts_TemplateLifecycle() {
	ctx := context.Background()

	created, err := s.workoutsRepo.CreateTemplate(
		ctx,
		workouts.Workout{UserID: userMiksa, Name: "Push Day", Notes: "chest focus"},
		[]workouts.TemplateExercise{
			{ExerciseID: exerciseBenchPress},
			{ExerciseID: exerciseRunning, DurationMinutes: 20},
		},
	)
	s.Require().NoError(err)
	s.Require().NotNil(created)
	s.True(created.IsTemplate)

	templates, err := s.workoutsRepo.Templates(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(templates, 1)
	s.Equal("Push Day", templates[0].Name)

	templates, err = s.workoutsRepo.Templates(ctx, userMiksa, "pull")
	s.Require().NoError(err)
	s.Empty(templates)

	exercises, err := s.workoutsRepo.Exercises(ctx, userMiksa, created.ID)
	s.Require().NoError(err)
	s.Require().Len(exercises, 2)

	byID := make(map[int]workouts.WorkoutExercise)
	for _, e := range exercises {
		byID[e.ExerciseID] = e
	}
	s.Equal("Bench Press", byID[exerciseBenchPress].Name)
	s.Equal(calories.CategoryChest, byID[exerciseBenchPress].Category)
	s.Equal(4.8, byID[exerciseBenchPress].CaloriesPerKg)
	s.Equal(20.0, byID[exerciseRunning].DurationMinutes)

	// the template belongs to its owner only
	_, err = s.workoutsRepo.Exercises(ctx, userMare, created.ID)
	s.Require().ErrorIs(err, workouts.ErrWorkoutNotFound)

	// rename, drop running, add squats, re-adding bench keeps the first link
	err = s.workoutsRepo.UpdateTemplate(ctx, workouts.UpdateTemplateParams{
		UserID:     userMiksa,
		TemplateID: created.ID,
		Name:       stringPtr("Push Day v2"),
		AddExercises: []workouts.TemplateExercise{
			{ExerciseID: exerciseBenchPress},
			{ExerciseID: exerciseSquats},
		},
		RemoveExercises: []int{exerciseRunning},
	})
	s.Require().NoError(err)

	templates, err = s.workoutsRepo.Templates(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Require().Len(templates, 1)
	s.Equal("Push Day v2", templates[0].Name)

	exercises, err = s.workoutsRepo.Exercises(ctx, userMiksa, created.ID)
	s.Require().NoError(err)
	s.Require().Len(exercises, 2)

	s.Require().NoError(s.workoutsRepo.DeleteTemplate(ctx, userMiksa, created.ID))
	s.Require().ErrorIs(
		s.workoutsRepo.UpdateTemplate(ctx, workouts.UpdateTemplateParams{
			UserID:     userMiksa,
			TemplateID: created.ID,
			Name:       stringPtr("gone"),
		}),
		workouts.ErrWorkoutNotFound,
	)
}

func (s *RepoTestSuite) TestWorkouts_LogAndFilters() {
	ctx := context.Background()

	entries := []calories.Entry{
		{
			ExerciseID:    exerciseBenchPress,
			Name:          "Bench Press",
			Category:      calories.CategoryChest,
			CaloriesPerKg: 4.8,
			Sets:          intPtr(3),
			Reps:          intPtr(10),
			Weight:        floatPtr(80),
			Intensity:     1,
		},
		{
			ExerciseID:      exerciseRunning,
			Name:            "Running",
			Category:        calories.CategoryCardio,
			CaloriesPerKg:   7.8,
			Distance:        floatPtr(5),
			DurationMinutes: 30,
			Intensity:       1.2,
		},
	}
	perEntryKcal := []float64{120.5, 200.25}

	workoutID, err := s.workoutsRepo.Log(
		ctx,
		workouts.Workout{
			UserID:          userMiksa,
			Name:            "Morning Session",
			Notes:           "felt good",
			DurationMinutes: 60,
			WorkoutDate:     stringPtr("2026-08-30"),
			TotalCalories:   floatPtr(320.75),
		},
		entries,
		perEntryKcal,
	)
	s.Require().NoError(err)

	logged, err := s.workoutsRepo.Logged(ctx, workouts.LoggedFilter{UserID: userMiksa})
	s.Require().NoError(err)
	s.Require().Len(logged, 1)
	s.Equal(workoutID, logged[0].ID)
	s.Require().NotNil(logged[0].WorkoutDate)
	s.Equal("2026-08-30", *logged[0].WorkoutDate)
	s.Require().NotNil(logged[0].TotalCalories)
	s.Equal(320.75, *logged[0].TotalCalories)

	// logged workouts never show up as templates
	templates, err := s.workoutsRepo.Templates(ctx, userMiksa, "")
	s.Require().NoError(err)
	s.Empty(templates)

	logged, err = s.workoutsRepo.Logged(ctx, workouts.LoggedFilter{UserID: userMiksa, Name: "morning"})
	s.Require().NoError(err)
	s.Len(logged, 1)

	logged, err = s.workoutsRepo.Logged(ctx, workouts.LoggedFilter{UserID: userMiksa, Date: "2026-08-30"})
	s.Require().NoError(err)
	s.Len(logged, 1)

	logged, err = s.workoutsRepo.Logged(ctx, workouts.LoggedFilter{UserID: userMiksa, Date: "2026-08-29"})
	s.Require().NoError(err)
	s.Empty(logged)

	exercises, err := s.workoutsRepo.Exercises(ctx, userMiksa, workoutID)
	s.Require().NoError(err)
	s.Require().Len(exercises, 2)

	byID := make(map[int]workouts.WorkoutExercise)
	for _, e := range exercises {
		byID[e.ExerciseID] = e
	}
	s.Require().NotNil(byID[exerciseBenchPress].CaloriesBurned)
	s.Equal(120.5, *byID[exerciseBenchPress].CaloriesBurned)
	s.Require().NotNil(byID[exerciseRunning].CaloriesBurned)
	s.Equal(200.25, *byID[exerciseRunning].CaloriesBurned)
	s.Require().NotNil(byID[exerciseRunning].Intensity)
	s.Equal(1.2, *byID[exerciseRunning].Intensity)

	s.Require().NoError(s.workoutsRepo.DeleteLogged(ctx, userMiksa, workoutID))
	s.Require().ErrorIs(
		s.workoutsRepo.DeleteLogged(ctx, userMiksa, workoutID),
		workouts.ErrWorkoutNotFound,
	)
}

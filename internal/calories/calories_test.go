package calories

import (
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func validStrengthEntry() Entry {
	return Entry{
		ExerciseID:    1,
		Name:          "Bench Press",
		Category:      CategoryChest,
		CaloriesPerKg: 4.5,
		Sets:          intPtr(3),
		Reps:          intPtr(10),
		Weight:        floatPtr(135),
		Intensity:     IntensityModerate,
	}
}

func validCardioEntry() Entry {
	return Entry{
		ExerciseID:      2,
		Name:            "Running",
		Category:        CategoryCardio,
		CaloriesPerKg:   7.8,
		Distance:        floatPtr(5),
		DurationMinutes: 30,
		Intensity:       IntensityModerate,
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	parsed, err := ParseCategory("cardio")
	require.NoError(t, err)
	assert.Equal(t, CategoryCardio, parsed)

	parsed, err = ParseCategory("  Legs ")
	require.NoError(t, err)
	assert.Equal(t, CategoryLegs, parsed)

	_, err = ParseCategory("YOGA")
	require.Error(t, err)

	assert.True(t, CategoryBack.IsStrength())
	assert.False(t, CategoryCardio.IsStrength())
	assert.False(t, Category("YOGA").Valid())
}

func TestEstimateTotal_StrengthFormula(t *testing.T) {
	// 4.5 * 150 * (3*10/18) / 60 = 18.75
	total := EstimateTotal([]Entry{validStrengthEntry()}, 150)
	assert.InDelta(t, 18.75, total, 0.0001)
}

func TestEstimateTotal_CardioFormula(t *testing.T) {
	// (30/60) * 7.8 * (150/0.453592) / 200 = 6.4485...
	total := EstimateTotal([]Entry{validCardioEntry()}, 150)
	assert.InDelta(t, 6.44853, total, 0.0001)
}

func TestEstimateTotal_IntensityScalesTheBurn(t *testing.T) {
	moderate := validStrengthEntry()

	vigorous := validStrengthEntry()
	vigorous.Intensity = IntensityVigorous

	light := validStrengthEntry()
	light.Intensity = IntensityLight

	assert.InDelta(t, 18.75, EstimateTotal([]Entry{moderate}, 150), 0.0001)
	assert.InDelta(t, 18.75*1.2, EstimateTotal([]Entry{vigorous}, 150), 0.0001)
	assert.InDelta(t, 18.75*0.8, EstimateTotal([]Entry{light}, 150), 0.0001)
}

func TestEstimateTotal_MissingIntensityDefaultsToModerate(t *testing.T) {
	e := validStrengthEntry()
	e.Intensity = 0
	assert.Equal(t,
		EstimateTotal([]Entry{validStrengthEntry()}, 150),
		EstimateTotal([]Entry{e}, 150),
	)
}

func TestEstimateTotal_MaxWeightNeverFactorsIn(t *testing.T) {
	withMax := validStrengthEntry()
	withMax.MaxWeight = floatPtr(500)
	assert.Equal(t,
		EstimateTotal([]Entry{validStrengthEntry()}, 150),
		EstimateTotal([]Entry{withMax}, 150),
	)
}

func TestEstimateTotal_InvalidEntriesContributeZero(t *testing.T) {
	incomplete := validStrengthEntry()
	incomplete.Weight = nil

	unknownCategory := validStrengthEntry()
	unknownCategory.Category = "YOGA"

	validOnly := EstimateTotal([]Entry{validStrengthEntry(), validCardioEntry()}, 150)
	withInvalid := EstimateTotal(
		[]Entry{validStrengthEntry(), incomplete, unknownCategory, validCardioEntry()}, 150,
	)
	assert.Equal(t, validOnly, withInvalid)

	assert.Zero(t, EstimateTotal([]Entry{incomplete}, 150))
	assert.Zero(t, EstimateTotal(nil, 150))
}

func TestEstimateTotal_OrderIndependentAndPure(t *testing.T) {
	entries := []Entry{validStrengthEntry(), validCardioEntry()}
	for i := 0; i < 10; i++ {
		e := validStrengthEntry()
		e.Name = gofakeit.Noun()
		e.Sets = intPtr(rand.Intn(5) + 1)
		e.Reps = intPtr(rand.Intn(15) + 1)
		entries = append(entries, e)
	}

	expected := EstimateTotal(entries, 180)

	// same input, same total
	assert.Equal(t, expected, EstimateTotal(entries, 180))

	shuffled := make([]Entry, len(entries))
	copy(shuffled, entries)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	assert.InDelta(t, expected, EstimateTotal(shuffled, 180), 0.000001)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(nil))
	require.NoError(t, Validate([]Entry{validStrengthEntry(), validCardioEntry()}))

	noReps := validStrengthEntry()
	noReps.Name = "Deadlift"
	noReps.Reps = nil

	noDistance := validCardioEntry()
	noDistance.Name = "Cycling"
	noDistance.Distance = nil

	// the first invalid entry in submission order wins
	err := Validate([]Entry{validCardioEntry(), noReps, noDistance})
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Deadlift", vErr.ExerciseName)
	assert.Equal(t, `Strength exercise "Deadlift" requires sets, reps, and weight`, err.Error())

	err = Validate([]Entry{noDistance, noReps})
	require.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Cycling", vErr.ExerciseName)
	assert.Equal(t, `Cardio exercise "Cycling" requires distance and duration`, err.Error())
}

func TestValidate_ZeroValuesAreInvalid(t *testing.T) {
	zeroSets := validStrengthEntry()
	zeroSets.Sets = intPtr(0)
	require.Error(t, Validate([]Entry{zeroSets}))

	zeroDuration := validCardioEntry()
	zeroDuration.DurationMinutes = 0
	require.Error(t, Validate([]Entry{zeroDuration}))
}

func TestNormalize_Idempotent(t *testing.T) {
	entries := []Entry{
		validStrengthEntry(),
		validCardioEntry(),
		{Name: "bare", Category: CategoryCore},
		{Name: "negative duration", Category: CategoryCardio, DurationMinutes: -10},
	}

	for _, e := range entries {
		once := Normalize(e)
		twice := Normalize(once)
		assert.Equal(t, once, twice)
	}

	bare := Normalize(Entry{Name: "bare", Category: CategoryCore})
	assert.Equal(t, DefaultIntensity, bare.Intensity)
	assert.Zero(t, bare.DurationMinutes)
	assert.Nil(t, bare.Sets)
	assert.Nil(t, bare.Reps)
	assert.Nil(t, bare.Weight)
	assert.Nil(t, bare.Distance)
}

package triage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

type spyClassifier struct {
	mu    sync.Mutex
	calls int
	inner Classifier
}

func (s *spyClassifier) Classify(text string) model.ClinicalProfile {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Classify(text)
}

func baseInput(text string) model.TriageInput {
	return model.TriageInput{
		SymptomsText: text,
		PainScore:    3,
		Duration:     "1 hour",
		Age:          30,
		Gender:       "Female",
		Language:     model.LanguageEnglish,
	}
}

func TestEvaluateScenarioChestPain(t *testing.T) {
	e := NewEngine(nil)
	res, err := e.Evaluate(model.TriageInput{
		SymptomsText: "severe chest pain and sweating",
		PainScore:    9,
		HasChestPain: true,
		Age:          55,
		Gender:       "Male",
		Duration:     "20 mins",
		Language:     model.LanguageEnglish,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ESIEmergent, res.ESILevel)
	assert.Equal(t, model.CategoryCardiac, res.Category)
	assert.Equal(t, []string{"Cardiac Symptoms", FlagHighRisk, FlagRedChestPain}, res.Flags)
	assert.Equal(t, "HIGH RISK: CARDIAC symptoms with age factor. Potential for rapid deterioration.", res.Reasoning)
	assert.Equal(t, recECG, res.SBAR.Recommendation)
	assert.Equal(t, "Patient reports severe chest pain and sweating. Pain score 9/10. Duration: 20 mins. Category: CARDIAC.", res.SBAR.Situation)
	assert.Equal(t, "Male, Age 55. Age puts patient in higher risk bracket.", res.SBAR.Background)
	assert.Equal(t, model.SourceRules, res.Source)
	assert.True(t, res.SBAR.Complete())
}

func TestEvaluateScenarioCodeBlue(t *testing.T) {
	e := NewEngine(nil)
	for _, pain := range []int{0, 5, 10} {
		for _, age := range []int{5, 40, 90} {
			in := baseInput("patient is unconscious and not breathing")
			in.PainScore = pain
			in.Age = age
			res, err := e.Evaluate(in)
			require.NoError(t, err)
			assert.Equal(t, model.ESIResuscitation, res.ESILevel)
			assert.Contains(t, res.Flags, FlagCodeBlue)
			assert.Equal(t, recCodeBlue, res.SBAR.Recommendation)
		}
	}
}

func TestEvaluateScenarioNonMedical(t *testing.T) {
	spy := &spyClassifier{inner: NewRuleClassifier()}
	e := NewEngine(spy)

	res, err := e.Evaluate(baseInput("tell me a joke"))
	assert.ErrorIs(t, err, ErrNonMedicalIntent)
	assert.Nil(t, res)
	assert.Equal(t, 0, spy.calls)
}

func TestEvaluateChestPainFlagForcesEmergent(t *testing.T) {
	e := NewEngine(nil)
	for _, text := range []string{"stomach ache", "small cut on finger", "feeling tired"} {
		in := baseInput(text)
		in.HasChestPain = true
		res, err := e.Evaluate(in)
		require.NoError(t, err)
		assert.LessOrEqual(t, int(res.ESILevel), int(model.ESIEmergent), text)
		assert.Contains(t, res.Flags, FlagRedChestPain, text)
	}
}

func TestEvaluateLevels(t *testing.T) {
	e := NewEngine(nil)
	tests := []struct {
		name  string
		input func() model.TriageInput
		want  model.ESILevel
		flags []string
	}{
		{
			name:  "neuro always emergent",
			input: func() model.TriageInput { return baseInput("sudden weakness in my arm") },
			want:  model.ESIEmergent,
			flags: []string{"Neurological Deficit", FlagHighRisk},
		},
		{
			name: "breathing issue flag",
			input: func() model.TriageInput {
				in := baseInput("feeling off")
				in.HasBreathingIssue = true
				return in
			},
			want:  model.ESIEmergent,
			flags: []string{"General Malaise", FlagHighRisk},
		},
		{
			name:  "young cardiac low pain is urgent",
			input: func() model.TriageInput { return baseInput("my heart is racing") },
			want:  model.ESIUrgent,
			flags: []string{"Cardiac Symptoms"},
		},
		{
			name: "senior general complaint",
			input: func() model.TriageInput {
				in := baseInput("feeling tired")
				in.Age = 75
				return in
			},
			want:  model.ESIUrgent,
			flags: []string{"General Malaise"},
		},
		{
			name:  "minor trauma",
			input: func() model.TriageInput { return baseInput("small cut on finger") },
			want:  model.ESILessUrgent,
			flags: []string{"Trauma/Injury"},
		},
		{
			name:  "minor illness",
			input: func() model.TriageInput { return baseInput("runny nose") },
			want:  model.ESINonUrgent,
			flags: []string{"General Malaise"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Evaluate(tt.input())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.ESILevel)
			assert.Equal(t, tt.flags, res.Flags)
		})
	}
}

func TestEvaluateHighPainNeverWorsens(t *testing.T) {
	e := NewEngine(nil)
	texts := []string{"runny nose", "small cut on finger", "my heart is racing", "short of breath", "feeling tired"}
	for _, text := range texts {
		for _, age := range []int{20, 60, 80} {
			low := baseInput(text)
			low.Age = age
			low.PainScore = 5
			high := low
			high.PainScore = 9

			lowRes, err := e.Evaluate(low)
			require.NoError(t, err)
			highRes, err := e.Evaluate(high)
			require.NoError(t, err)

			assert.LessOrEqual(t, int(highRes.ESILevel), int(lowRes.ESILevel), "%s age %d", text, age)
			assert.LessOrEqual(t, int(highRes.ESILevel), int(model.ESIUrgent), "%s age %d", text, age)
		}
	}
}

func TestEvaluateClampsOutOfRange(t *testing.T) {
	e := NewEngine(nil)
	in := baseInput("runny nose")
	in.PainScore = 15
	in.Language = "xx"

	res, err := e.Evaluate(in)
	require.NoError(t, err)
	assert.Contains(t, res.SBAR.Situation, "Pain score 10/10")
	assert.Equal(t, model.ESIUrgent, res.ESILevel)

	in.PainScore = -4
	res, err = e.Evaluate(in)
	require.NoError(t, err)
	assert.Contains(t, res.SBAR.Situation, "Pain score 0/10")
}

func TestEvaluateHindi(t *testing.T) {
	e := NewEngine(nil)
	in := baseInput("sudden weakness in my arm")
	in.Language = model.LanguageHindi

	res, err := e.Evaluate(in)
	require.NoError(t, err)
	assert.Contains(t, res.SBAR.Situation, "रोगी की रिपोर्ट")
	assert.Contains(t, res.SBAR.Assessment, "ESI स्तर 2")
	assert.Equal(t, recHindiUrgent, res.SBAR.Recommendation)
}

func TestEvaluateConcurrent(t *testing.T) {
	e := NewEngine(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Evaluate(baseInput("short of breath"))
			assert.NoError(t, err)
			assert.Equal(t, model.ESIEmergent, res.ESILevel)
		}()
	}
	wg.Wait()
}

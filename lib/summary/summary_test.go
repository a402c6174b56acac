package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/lib/salesforce"
	"crmsync/lib/transcript"
)

func quarterScores(scores ...float64) []PeriodScore {
	out := make([]PeriodScore, len(scores))
	for i, s := range scores {
		out[i] = PeriodScore{Score: s}
	}
	return out
}

func TestClassifyCurve(t *testing.T) {
	// [2,5,6,8] -> [2, 5.5, 8]: 2 <= 4.5 and 5.5 < 8.
	assert.Equal(t, CurveS, classifyCurve(quarterScores(2, 5, 6, 8)))
	// [8,5,4,2] -> [8, 4.5, 2]: 8 >= 5.5 and 4.5 > 2.
	assert.Equal(t, CurveZ, classifyCurve(quarterScores(8, 5, 4, 2)))
	// Flat line.
	assert.Equal(t, CurveOther, classifyCurve(quarterScores(5, 5, 5, 5)))
	// Trend too shallow for either label.
	assert.Equal(t, CurveOther, classifyCurve(quarterScores(4, 4.5, 4.5, 5)))
	// No quarterly data: no curve at all, not Other.
	assert.Equal(t, "", classifyCurve(nil))
	assert.Equal(t, "", classifyCurve(quarterScores(1, 2, 3)))
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func fullCharacteristics() *Characteristics {
	return &Characteristics{
		Sentiment: &SentimentBlock{
			OverallSentiment: map[string]float64{"CUSTOMER": -1.5, "AGENT": 2.0},
			SentimentByPeriod: map[string]map[string][]PeriodScore{
				"QUARTER": {"CUSTOMER": quarterScores(2, 5, 6, 8)},
			},
		},
		Interruptions: &InterruptionsBlock{TotalCount: intPtr(3)},
		NonTalkTime:   &DurationBlock{TotalTimeMillis: floatPtr(12345)},
		TalkSpeed: &TalkSpeedBlock{DetailsByParticipant: map[string]TalkSpeedDetail{
			"CUSTOMER": {AverageWordsPerMinute: 150},
			"AGENT":    {AverageWordsPerMinute: 130},
		}},
		TalkTime: &TalkTimeBlock{
			TotalTimeMillis: floatPtr(300000),
			DetailsByParticipant: map[string]DurationDetail{
				"CUSTOMER": {TotalTimeMillis: 180500},
				"AGENT":    {TotalTimeMillis: 119500},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	categories := &Categories{MatchedCategories: []string{"cancellation", "escalation"}}

	s := Summarize(fullCharacteristics(), categories, nil, nil)

	require.NotNil(t, s.CustomerSentiment)
	assert.Equal(t, -1.5, *s.CustomerSentiment)
	require.NotNil(t, s.AgentSentiment)
	assert.Equal(t, 2.0, *s.AgentSentiment)
	require.NotNil(t, s.Interruptions)
	assert.Equal(t, 3, *s.Interruptions)
	require.NotNil(t, s.NonTalkTime)
	assert.Equal(t, 12.35, *s.NonTalkTime)
	require.NotNil(t, s.TalkTimeTotal)
	assert.Equal(t, 300.0, *s.TalkTimeTotal)
	require.NotNil(t, s.TalkTimeCustomer)
	assert.Equal(t, 180.5, *s.TalkTimeCustomer)
	require.NotNil(t, s.MatchedCategories)
	assert.Equal(t, "cancellation, escalation", *s.MatchedCategories)
	assert.Equal(t, CurveS, s.SentimentCurve)
}

func TestSummarizeAbsentFieldsStayAbsent(t *testing.T) {
	s := Summarize(&Characteristics{}, nil, nil, nil)

	assert.Nil(t, s.CustomerSentiment)
	assert.Nil(t, s.AgentSentiment)
	assert.Nil(t, s.Interruptions)
	assert.Nil(t, s.NonTalkTime)
	assert.Nil(t, s.TalkTimeTotal)
	assert.Nil(t, s.MatchedCategories)
	assert.Equal(t, "", s.SentimentCurve)
}

func TestSummarizeNoQuarterlyDataNoCurve(t *testing.T) {
	ch := &Characteristics{
		Sentiment: &SentimentBlock{
			OverallSentiment: map[string]float64{"CUSTOMER": 1.0},
		},
	}

	s := Summarize(ch, nil, nil, nil)
	assert.Equal(t, "", s.SentimentCurve)
	require.NotNil(t, s.CustomerSentiment)
}

func TestPayloadOmitsAbsentFields(t *testing.T) {
	fields := salesforce.NewFieldMap("vendor__", FieldNames()...)

	s := Summarize(&Characteristics{
		NonTalkTime: &DurationBlock{TotalTimeMillis: floatPtr(2000)},
	}, nil, nil, nil)
	payload := s.Payload(fields)

	assert.Equal(t, 2.0, payload["vendor__ContactLensNonTalkTime__c"])
	assert.NotContains(t, payload, "vendor__ContactLensCustomerSentiment__c")
	assert.NotContains(t, payload, "vendor__ContactLensSentimentCurve__c")
	assert.NotContains(t, payload, "vendor__ContactLensInterruptions__c")
}

func TestPayloadFull(t *testing.T) {
	fields := salesforce.NewFieldMap("", FieldNames()...)

	s := Summarize(fullCharacteristics(), &Categories{MatchedCategories: []string{"churn-risk"}}, nil, nil)
	payload := s.Payload(fields)

	assert.Equal(t, "S", payload["ContactLensSentimentCurve__c"])
	assert.Equal(t, 3, payload["ContactLensInterruptions__c"])
	assert.Equal(t, 130.0, payload["ContactLensTalkSpeedAgent__c"])
	assert.Equal(t, "churn-risk", payload["ContactLensMatchedCategories__c"])
}

func TestComposeTranscript(t *testing.T) {
	customer := []transcript.Utterance{
		{StartTime: 1.8, Content: "My order is late."},
	}
	agent := []transcript.Utterance{
		{StartTime: 0.0, Content: "Thanks for calling."},
		{StartTime: 4.2, Content: "Let me check that."},
	}

	s := Summarize(nil, nil, customer, agent)

	assert.Equal(t,
		"AGENT: Thanks for calling.\nCUSTOMER: My order is late.\nAGENT: Let me check that.",
		s.Transcript)
}

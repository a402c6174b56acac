// Package summary reduces conversation-analytics output into the flat
// metrics record synced to the CRM, including the customer sentiment curve
// classification.
package summary

// Characteristics is the per-conversation analytics payload. Every block is
// optional; absent blocks stay absent in the summary rather than defaulting.
type Characteristics struct {
	Sentiment     *SentimentBlock     `json:"Sentiment,omitempty"`
	Interruptions *InterruptionsBlock `json:"Interruptions,omitempty"`
	NonTalkTime   *DurationBlock      `json:"NonTalkTime,omitempty"`
	TalkSpeed     *TalkSpeedBlock     `json:"TalkSpeed,omitempty"`
	TalkTime      *TalkTimeBlock      `json:"TalkTime,omitempty"`
}

type SentimentBlock struct {
	OverallSentiment map[string]float64 `json:"OverallSentiment,omitempty"`
	// SentimentByPeriod is keyed by period kind (QUARTER), then participant
	// role, giving the chronological per-period average scores.
	SentimentByPeriod map[string]map[string][]PeriodScore `json:"SentimentByPeriod,omitempty"`
}

type PeriodScore struct {
	Score             float64 `json:"Score"`
	BeginOffsetMillis float64 `json:"BeginOffsetMillis"`
	EndOffsetMillis   float64 `json:"EndOffsetMillis"`
}

type InterruptionsBlock struct {
	TotalCount *int `json:"TotalCount,omitempty"`
}

type DurationBlock struct {
	TotalTimeMillis *float64 `json:"TotalTimeMillis,omitempty"`
}

type TalkSpeedBlock struct {
	DetailsByParticipant map[string]TalkSpeedDetail `json:"DetailsByParticipant,omitempty"`
}

type TalkSpeedDetail struct {
	AverageWordsPerMinute float64 `json:"AverageWordsPerMinute"`
}

type TalkTimeBlock struct {
	TotalTimeMillis      *float64                  `json:"TotalTimeMillis,omitempty"`
	DetailsByParticipant map[string]DurationDetail `json:"DetailsByParticipant,omitempty"`
}

type DurationDetail struct {
	TotalTimeMillis float64 `json:"TotalTimeMillis"`
}

// Categories carries the rule categories the analytics engine matched.
type Categories struct {
	MatchedCategories []string `json:"MatchedCategories,omitempty"`
}

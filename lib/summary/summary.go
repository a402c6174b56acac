package summary

import (
	"math"
	"sort"
	"strings"

	"crmsync/lib/salesforce"
	"crmsync/lib/transcript"
)

const periodQuarter = "QUARTER"

// Summary is the flat per-conversation metrics record. Pointer fields are nil
// when the analytics payload did not carry the source value; nil fields are
// omitted from the CRM payload instead of being defaulted. Durations are
// seconds, rounded to two decimals.
type Summary struct {
	CustomerSentiment *float64
	AgentSentiment    *float64
	Interruptions     *int
	NonTalkTime       *float64
	TalkSpeedCustomer *float64
	TalkSpeedAgent    *float64
	TalkTimeTotal     *float64
	TalkTimeCustomer  *float64
	TalkTimeAgent     *float64
	MatchedCategories *string
	// SentimentCurve is empty when the customer has no quarterly data.
	SentimentCurve string
	// Transcript is the full conversation text in time order.
	Transcript string
}

// Summarize reduces the characteristics payload and the reconstructed
// utterances into a Summary.
func Summarize(ch *Characteristics, categories *Categories, customer, agent []transcript.Utterance) *Summary {
	s := &Summary{Transcript: composeTranscript(customer, agent)}
	if ch == nil {
		return s
	}

	if ch.Sentiment != nil {
		if score, ok := ch.Sentiment.OverallSentiment[transcript.SpeakerRoleCustomer]; ok {
			s.CustomerSentiment = &score
		}
		if score, ok := ch.Sentiment.OverallSentiment[transcript.SpeakerRoleAgent]; ok {
			s.AgentSentiment = &score
		}
		s.SentimentCurve = classifyCurve(ch.Sentiment.SentimentByPeriod[periodQuarter][transcript.SpeakerRoleCustomer])
	}

	if ch.Interruptions != nil && ch.Interruptions.TotalCount != nil {
		count := *ch.Interruptions.TotalCount
		s.Interruptions = &count
	}

	if ch.NonTalkTime != nil && ch.NonTalkTime.TotalTimeMillis != nil {
		s.NonTalkTime = seconds(*ch.NonTalkTime.TotalTimeMillis)
	}

	if ch.TalkSpeed != nil {
		if detail, ok := ch.TalkSpeed.DetailsByParticipant[transcript.SpeakerRoleCustomer]; ok {
			wpm := detail.AverageWordsPerMinute
			s.TalkSpeedCustomer = &wpm
		}
		if detail, ok := ch.TalkSpeed.DetailsByParticipant[transcript.SpeakerRoleAgent]; ok {
			wpm := detail.AverageWordsPerMinute
			s.TalkSpeedAgent = &wpm
		}
	}

	if ch.TalkTime != nil {
		if ch.TalkTime.TotalTimeMillis != nil {
			s.TalkTimeTotal = seconds(*ch.TalkTime.TotalTimeMillis)
		}
		if detail, ok := ch.TalkTime.DetailsByParticipant[transcript.SpeakerRoleCustomer]; ok {
			s.TalkTimeCustomer = seconds(detail.TotalTimeMillis)
		}
		if detail, ok := ch.TalkTime.DetailsByParticipant[transcript.SpeakerRoleAgent]; ok {
			s.TalkTimeAgent = seconds(detail.TotalTimeMillis)
		}
	}

	if categories != nil && len(categories.MatchedCategories) > 0 {
		joined := strings.Join(categories.MatchedCategories, ", ")
		s.MatchedCategories = &joined
	}

	return s
}

// FieldNames are the logical CRM field names the summary payload uses, for
// declaring the field map once at startup.
func FieldNames() []string {
	return []string{
		"ContactLensCustomerSentiment",
		"ContactLensAgentSentiment",
		"ContactLensInterruptions",
		"ContactLensNonTalkTime",
		"ContactLensTalkSpeedCustomer",
		"ContactLensTalkSpeedAgent",
		"ContactLensTalkTimeTotal",
		"ContactLensTalkTimeCustomer",
		"ContactLensTalkTimeAgent",
		"ContactLensMatchedCategories",
		"ContactLensSentimentCurve",
	}
}

// Payload renders the summary as a CRM field map. Nil fields are left out
// entirely; the transcript travels as an attachment, not a field.
func (s *Summary) Payload(fields salesforce.FieldMap) map[string]interface{} {
	payload := map[string]interface{}{}

	setFloat := func(logical string, value *float64) {
		if value != nil {
			payload[fields.Wire(logical)] = *value
		}
	}

	setFloat("ContactLensCustomerSentiment", s.CustomerSentiment)
	setFloat("ContactLensAgentSentiment", s.AgentSentiment)
	setFloat("ContactLensNonTalkTime", s.NonTalkTime)
	setFloat("ContactLensTalkSpeedCustomer", s.TalkSpeedCustomer)
	setFloat("ContactLensTalkSpeedAgent", s.TalkSpeedAgent)
	setFloat("ContactLensTalkTimeTotal", s.TalkTimeTotal)
	setFloat("ContactLensTalkTimeCustomer", s.TalkTimeCustomer)
	setFloat("ContactLensTalkTimeAgent", s.TalkTimeAgent)

	if s.Interruptions != nil {
		payload[fields.Wire("ContactLensInterruptions")] = *s.Interruptions
	}
	if s.MatchedCategories != nil {
		payload[fields.Wire("ContactLensMatchedCategories")] = *s.MatchedCategories
	}
	if s.SentimentCurve != "" {
		payload[fields.Wire("ContactLensSentimentCurve")] = s.SentimentCurve
	}

	return payload
}

// composeTranscript interleaves both speakers' utterances by start time into
// one readable conversation text.
func composeTranscript(customer, agent []transcript.Utterance) string {
	type line struct {
		start   float64
		speaker string
		content string
	}

	lines := make([]line, 0, len(customer)+len(agent))
	for _, u := range customer {
		lines = append(lines, line{u.StartTime, transcript.SpeakerRoleCustomer, u.Content})
	}
	for _, u := range agent {
		lines = append(lines, line{u.StartTime, transcript.SpeakerRoleAgent, u.Content})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].start < lines[j].start })

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l.speaker)
		b.WriteString(": ")
		b.WriteString(l.content)
	}
	return b.String()
}

func seconds(millis float64) *float64 {
	rounded := math.Round(millis/1000*100) / 100
	return &rounded
}

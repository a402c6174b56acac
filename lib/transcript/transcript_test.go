package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(start, end, content string) Token {
	return Token{
		StartTime:    start,
		EndTime:      end,
		Type:         "pronunciation",
		Alternatives: []Alternative{{Confidence: "0.99", Content: content}},
	}
}

func punctuation(mark string) Token {
	return Token{
		Type:         "punctuation",
		Alternatives: []Alternative{{Confidence: "0.0", Content: mark}},
	}
}

func TestReconstructMergesWithinGap(t *testing.T) {
	utterances := Reconstruct([]Token{
		word("0.0", "1.0", "Hello"),
		word("1.5", "2.0", "world"),
	})

	require.Len(t, utterances, 1)
	assert.Equal(t, "Hello world", utterances[0].Content)
	assert.Equal(t, 0.0, utterances[0].StartTime)
	assert.Equal(t, 2.0, utterances[0].EndTime)
}

func TestReconstructSplitsOnLargeGap(t *testing.T) {
	utterances := Reconstruct([]Token{
		word("0.0", "1.0", "Hello"),
		word("3.0", "3.5", "again"),
	})

	require.Len(t, utterances, 2)
	assert.Equal(t, "Hello", utterances[0].Content)
	assert.Equal(t, "again", utterances[1].Content)
	assert.Equal(t, 3.0, utterances[1].StartTime)
}

func TestReconstructSplitsAfterTerminalPunctuation(t *testing.T) {
	utterances := Reconstruct([]Token{
		word("0.0", "0.5", "Hi"),
		punctuation("."),
		word("0.8", "1.2", "There"),
	})

	require.Len(t, utterances, 2)
	assert.Equal(t, "Hi.", utterances[0].Content)
	assert.Equal(t, "There", utterances[1].Content)
}

func TestPunctuationAttachment(t *testing.T) {
	utterances := Reconstruct([]Token{
		word("0.0", "0.5", "Hello"),
		punctuation("."),
		// Already terminal, the second mark is dropped.
		punctuation("."),
	})

	require.Len(t, utterances, 1)
	assert.Equal(t, "Hello.", utterances[0].Content)
}

func TestLeadingPunctuationDropped(t *testing.T) {
	utterances := Reconstruct([]Token{
		punctuation("."),
		word("0.0", "0.5", "Hello"),
	})

	require.Len(t, utterances, 1)
	assert.Equal(t, "Hello", utterances[0].Content)
}

func TestPunctuationOnlyInputYieldsNothing(t *testing.T) {
	utterances := Reconstruct([]Token{punctuation("."), punctuation("?")})
	assert.Empty(t, utterances)
}

func TestBestAlternativeHighestConfidence(t *testing.T) {
	utterances := Reconstruct([]Token{{
		StartTime: "0.0",
		EndTime:   "0.5",
		Type:      "pronunciation",
		Alternatives: []Alternative{
			{Confidence: "0.41", Content: "flower"},
			{Confidence: "0.87", Content: "flour"},
			{Confidence: "0.12", Content: "floor"},
		},
	}})

	require.Len(t, utterances, 1)
	assert.Equal(t, "flour", utterances[0].Content)
}

func TestBestAlternativeTieKeepsFirst(t *testing.T) {
	utterances := Reconstruct([]Token{{
		StartTime: "0.0",
		EndTime:   "0.5",
		Type:      "pronunciation",
		Alternatives: []Alternative{
			{Confidence: "0.50", Content: "their"},
			{Confidence: "0.50", Content: "there"},
		},
	}})

	require.Len(t, utterances, 1)
	assert.Equal(t, "their", utterances[0].Content)
}

func TestSplitByRole(t *testing.T) {
	segments := []Segment{
		{ParticipantID: "P1", BeginOffsetMillis: 0, EndOffsetMillis: 1540, Content: "Thanks for calling", Sentiment: "NEUTRAL"},
		{ParticipantID: "P2", BeginOffsetMillis: 1800, EndOffsetMillis: 3125, Content: "My order is late", Sentiment: "NEGATIVE"},
		{ParticipantID: "P3", BeginOffsetMillis: 3500, EndOffsetMillis: 4000, Content: "ignored"},
	}
	participants := []Participant{
		{ParticipantID: "P1", ParticipantRole: SpeakerRoleAgent},
		{ParticipantID: "P2", ParticipantRole: SpeakerRoleCustomer},
		{ParticipantID: "P3", ParticipantRole: "SUPERVISOR"},
	}

	customer, agent := SplitByRole(segments, participants)

	require.Len(t, agent, 1)
	assert.Equal(t, 0.0, agent[0].StartTime)
	assert.Equal(t, 1.54, agent[0].EndTime)
	assert.Equal(t, "Thanks for calling", agent[0].Content)

	require.Len(t, customer, 1)
	assert.Equal(t, 1.8, customer[0].StartTime)
	assert.Equal(t, 3.13, customer[0].EndTime)
	assert.Equal(t, "NEGATIVE", customer[0].Sentiment)
}

func TestSplitByRoleFallsBackToID(t *testing.T) {
	segments := []Segment{
		{ParticipantID: "CUSTOMER", BeginOffsetMillis: 0, EndOffsetMillis: 1000, Content: "Hello"},
	}

	customer, agent := SplitByRole(segments, nil)
	require.Len(t, customer, 1)
	assert.Empty(t, agent)
}

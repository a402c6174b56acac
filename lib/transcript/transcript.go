// Package transcript reconstructs coherent utterances from speech-recognition
// output. Two input shapes are supported: raw recognition tokens (words with
// scored alternatives plus timeless punctuation marks) and pre-segmented
// analytics-engine utterances that only need reshaping.
package transcript

import (
	"math"
	"strconv"
	"strings"
)

// mergeGapSeconds is the largest start-to-start gap across which adjacent
// word tokens still belong to one utterance. Contractual, do not re-tune.
const mergeGapSeconds = 2.0

const terminalPunctuation = ".,?:!"

// Token is one item of a raw recognition result. Word tokens carry timings
// and one or more scored alternatives; punctuation tokens carry neither
// timing. Numeric fields are strings on the wire.
type Token struct {
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one recognition hypothesis for a token.
type Alternative struct {
	Confidence string `json:"confidence"`
	Content    string `json:"content"`
}

// Utterance is a reconstructed, time-bounded span of speech. Immutable once
// emitted; utterances for one speaker are ordered by ascending start time.
type Utterance struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Content   string  `json:"content"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// Reconstruct merges raw recognition tokens into utterances:
//
//   - each word token contributes its highest-confidence alternative;
//   - a word extends the previous utterance when it starts within
//     mergeGapSeconds of that utterance's start and the utterance is not
//     already terminally punctuated, otherwise it opens a new one;
//   - timeless punctuation attaches (without a space) to a preceding
//     utterance that is not yet terminally punctuated, and is dropped
//     otherwise.
func Reconstruct(tokens []Token) []Utterance {
	var utterances []Utterance

	for _, token := range tokens {
		if token.StartTime == "" {
			if token.Type == "punctuation" && len(utterances) > 0 {
				last := &utterances[len(utterances)-1]
				if !terminallyPunctuated(last.Content) && len(token.Alternatives) > 0 {
					last.Content += token.Alternatives[0].Content
				}
			}
			continue
		}

		start := parseFloat(token.StartTime)
		end := parseFloat(token.EndTime)
		content := bestAlternative(token.Alternatives)

		if len(utterances) > 0 {
			last := &utterances[len(utterances)-1]
			if start-last.StartTime <= mergeGapSeconds && !terminallyPunctuated(last.Content) {
				last.Content += " " + content
				last.EndTime = end
				continue
			}
		}

		utterances = append(utterances, Utterance{StartTime: start, EndTime: end, Content: content})
	}

	return utterances
}

// bestAlternative picks the highest-confidence alternative; ties resolve to
// the first maximum in input order.
func bestAlternative(alternatives []Alternative) string {
	best := ""
	bestScore := math.Inf(-1)
	for _, alt := range alternatives {
		score := parseFloat(alt.Confidence)
		if score > bestScore {
			bestScore = score
			best = alt.Content
		}
	}
	return best
}

func terminallyPunctuated(content string) bool {
	if content == "" {
		return false
	}
	return strings.ContainsRune(terminalPunctuation, rune(content[len(content)-1]))
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

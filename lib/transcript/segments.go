package transcript

import "math"

// Segment is one pre-segmented utterance from the conversation-analytics
// engine. No merging is needed; offsets are milliseconds.
type Segment struct {
	ParticipantID     string  `json:"ParticipantId"`
	BeginOffsetMillis float64 `json:"BeginOffsetMillis"`
	EndOffsetMillis   float64 `json:"EndOffsetMillis"`
	Content           string  `json:"Content"`
	Sentiment         string  `json:"Sentiment"`
}

// Participant maps a segment's participant id to its role.
type Participant struct {
	ParticipantID   string `json:"ParticipantId"`
	ParticipantRole string `json:"ParticipantRole"`
}

// SpeakerRoleAgent and SpeakerRoleCustomer are the two roles the analytics
// engine attributes speech to.
const (
	SpeakerRoleAgent    = "AGENT"
	SpeakerRoleCustomer = "CUSTOMER"
)

// SplitByRole maps pre-segmented utterances into per-role utterance lists,
// converting offsets to seconds. Segments whose participant resolves to
// neither role are dropped. When a participant id is absent from the role
// list, the id itself is treated as the role (older analytics files name
// participants by role directly).
func SplitByRole(segments []Segment, participants []Participant) (customer, agent []Utterance) {
	roles := make(map[string]string, len(participants))
	for _, p := range participants {
		roles[p.ParticipantID] = p.ParticipantRole
	}

	for _, segment := range segments {
		role, ok := roles[segment.ParticipantID]
		if !ok {
			role = segment.ParticipantID
		}

		utterance := Utterance{
			StartTime: roundSeconds(segment.BeginOffsetMillis),
			EndTime:   roundSeconds(segment.EndOffsetMillis),
			Content:   segment.Content,
			Sentiment: segment.Sentiment,
		}

		switch role {
		case SpeakerRoleCustomer:
			customer = append(customer, utterance)
		case SpeakerRoleAgent:
			agent = append(agent, utterance)
		}
	}

	return customer, agent
}

func roundSeconds(millis float64) float64 {
	return math.Round(millis/1000*100) / 100
}

// Package models holds the wire shapes shared by the Lambda handlers:
// conversation analytics files, transcription job output, and the event
// envelopes the contact center delivers.
package models

import (
	"crmsync/lib/summary"
	"crmsync/lib/transcript"
)

// AnalyticsFile is the post-call conversation analytics file written to S3,
// holding the per-segment transcript plus the conversation characteristics.
type AnalyticsFile struct {
	LanguageCode                string                   `json:"LanguageCode"`
	CustomerMetadata            CustomerMetadata         `json:"CustomerMetadata"`
	Participants                []transcript.Participant `json:"Participants"`
	Transcript                  []transcript.Segment     `json:"Transcript"`
	ConversationCharacteristics *summary.Characteristics `json:"ConversationCharacteristics"`
	Categories                  *summary.Categories      `json:"Categories"`
}

type CustomerMetadata struct {
	ContactID  string `json:"ContactId"`
	InputS3URI string `json:"InputS3Uri"`
}

// AnalyticsEvent is the payload that triggers analytics processing, pointing
// at the analytics file for one contact.
type AnalyticsEvent struct {
	AnalyticsFileURI string `json:"ContactLensFileUri"`
}

// TranscriptionFile is the transcription job output document. Calls are
// recorded with the customer on channel 0 and the agent on channel 1.
type TranscriptionFile struct {
	Results struct {
		ChannelLabels struct {
			Channels []struct {
				ChannelLabel string             `json:"channel_label"`
				Items        []transcript.Token `json:"items"`
			} `json:"channels"`
		} `json:"channel_labels"`
	} `json:"results"`
}

// TranscriptionEvent is the step function payload carrying a finished
// transcription job.
type TranscriptionEvent struct {
	TranscriptionJob struct {
		TranscriptionJobName string `json:"TranscriptionJobName"`
		LanguageCode         string `json:"LanguageCode"`
		Transcript           struct {
			TranscriptFileURI string `json:"TranscriptFileUri"`
		} `json:"Transcript"`
	} `json:"TranscriptionJob"`
}

// RecordEvent wraps one base64-encoded contact trace record relayed from the
// event stream.
type RecordEvent struct {
	Record string `json:"record"`
}

// JobStatusRequest asks for the state of one transcription job.
type JobStatusRequest struct {
	TranscriptionJobName string `json:"TranscriptionJobName"`
}

// JobStatus is the serializable view of a transcription job, with timestamps
// rendered as strings so the payload survives JSON round-trips between
// state machine steps.
type JobStatus struct {
	TranscriptionJobName   string `json:"TranscriptionJobName"`
	TranscriptionJobStatus string `json:"TranscriptionJobStatus"`
	LanguageCode           string `json:"LanguageCode,omitempty"`
	CreationTime           string `json:"CreationTime,omitempty"`
	StartTime              string `json:"StartTime,omitempty"`
	CompletionTime         string `json:"CompletionTime,omitempty"`
	FailureReason          string `json:"FailureReason,omitempty"`
	Transcript             struct {
		TranscriptFileURI string `json:"TranscriptFileUri,omitempty"`
	} `json:"Transcript"`
}

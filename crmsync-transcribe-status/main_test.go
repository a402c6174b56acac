package main

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	transcribetypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/lib/models"
)

type mockTranscribe struct {
	job transcribetypes.TranscriptionJob
}

func (m *mockTranscribe) GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error) {
	return &transcribe.GetTranscriptionJobOutput{TranscriptionJob: &m.job}, nil
}

func TestHandlerFormatsTimestamps(t *testing.T) {
	// Arrange
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	completed := created.Add(3 * time.Minute)
	transcribeClient = &mockTranscribe{job: transcribetypes.TranscriptionJob{
		TranscriptionJobName:   aws.String("contact-1_recording"),
		TranscriptionJobStatus: transcribetypes.TranscriptionJobStatusCompleted,
		LanguageCode:           transcribetypes.LanguageCodeEnUs,
		CreationTime:           &created,
		CompletionTime:         &completed,
		Transcript: &transcribetypes.Transcript{
			TranscriptFileUri: aws.String("https://s3.us-east-1.amazonaws.com/bucket/contact-1_recording.json"),
		},
	}}

	// Act
	status, err := Handler(context.Background(), models.JobStatusRequest{TranscriptionJobName: "contact-1_recording"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "contact-1_recording", status.TranscriptionJobName)
	assert.Equal(t, "COMPLETED", status.TranscriptionJobStatus)
	assert.Equal(t, "en-US", status.LanguageCode)
	assert.Equal(t, "2024-01-15T10:00:00Z", status.CreationTime)
	assert.Equal(t, "2024-01-15T10:03:00Z", status.CompletionTime)
	assert.Equal(t, "", status.StartTime)
	assert.Equal(t, "https://s3.us-east-1.amazonaws.com/bucket/contact-1_recording.json", status.Transcript.TranscriptFileURI)
}

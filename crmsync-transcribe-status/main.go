package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"crmsync/lib/clients"
	"crmsync/lib/models"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/sirupsen/logrus"
)

// TranscribeAPI is the slice of the transcription client this handler uses.
type TranscribeAPI interface {
	GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

// Global variables for Lambda cold start optimization
var (
	logger           *logrus.Logger
	isLocal          bool
	transcribeClient TranscribeAPI
)

// Handler reports the state of a transcription job. The state machine polls
// this until the job finishes, so timestamps are rendered as strings that
// survive the JSON round-trip between steps.
func Handler(ctx context.Context, request models.JobStatusRequest) (*models.JobStatus, error) {
	out, err := transcribeClient.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(request.TranscriptionJobName),
	})
	if err != nil {
		logger.WithError(err).WithField("job_name", request.TranscriptionJobName).Error("Error fetching transcription job")
		return nil, err
	}

	job := out.TranscriptionJob
	status := &models.JobStatus{
		TranscriptionJobName:   aws.ToString(job.TranscriptionJobName),
		TranscriptionJobStatus: string(job.TranscriptionJobStatus),
		LanguageCode:           string(job.LanguageCode),
		CreationTime:           formatTime(job.CreationTime),
		StartTime:              formatTime(job.StartTime),
		CompletionTime:         formatTime(job.CompletionTime),
		FailureReason:          aws.ToString(job.FailureReason),
	}
	if job.Transcript != nil {
		status.Transcript.TranscriptFileURI = aws.ToString(job.Transcript.TranscriptFileUri)
	}

	logger.WithFields(logrus.Fields{
		"job_name": status.TranscriptionJobName,
		"status":   status.TranscriptionJobStatus,
	}).Info("Transcription job status")
	return status, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func init() {
	isLocal = parseIsLocal()
	logger = setupLogger(isLocal)
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))

	transcribeClient = clients.NewTranscribeClient(isLocal)
}

func main() {
	lambda.Start(Handler)
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}

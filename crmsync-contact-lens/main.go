package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"crmsync/lib/clients"
	"crmsync/lib/config"
	"crmsync/lib/models"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/summary"
	"crmsync/lib/transcript"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// lockMetadataAnalyticsID is the lock metadata key carrying the analytics
// record id once an earlier pipeline stage created it. S3 lower-cases
// metadata keys.
const lockMetadataAnalyticsID = "accontactchannelanalyticsid"

// Global variables for Lambda cold start optimization
var (
	logger            *logrus.Logger
	isLocal           bool
	cfg               *config.Config
	sfClient          *salesforce.Client
	s3Client          clients.S3ClientInterface
	fields            salesforce.FieldMap
	transcriptsBucket string
)

// Handler processes one post-call conversation analytics file: it rebuilds
// the per-speaker transcripts, summarizes the conversation characteristics,
// writes the analytics record, and attaches the transcript files.
func Handler(ctx context.Context, event models.AnalyticsEvent) (map[string]bool, error) {
	bucket, key := util.SplitS3Path(event.AnalyticsFileURI)
	log := logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"key":    key,
	})
	log.Info("Processing conversation analytics file")

	var file models.AnalyticsFile
	if err := s3Client.GetJSONObject(ctx, bucket, key, &file); err != nil {
		log.WithError(err).Error("Error retrieving analytics file")
		return nil, err
	}

	contactID := file.CustomerMetadata.ContactID
	log = log.WithField("contact_id", contactID)

	metadata, err := s3Client.GetLockMetadata(ctx, transcriptsBucket, contactID)
	if err != nil {
		log.WithError(err).Error("Error reading lock metadata")
		return nil, err
	}

	customer, agent := transcript.SplitByRole(file.Transcript, file.Participants)
	sum := summary.Summarize(file.ConversationCharacteristics, file.Categories, customer, agent)

	analyticsID, err := writeAnalyticsRecord(ctx, contactID, metadata[lockMetadataAnalyticsID], sum)
	if err != nil {
		log.WithError(err).Error("Error writing analytics record")
		return nil, err
	}

	if err := attachTranscripts(ctx, analyticsID, customer, agent); err != nil {
		log.WithError(err).Error("Error attaching transcripts")
		return nil, err
	}

	if err := s3Client.UpdateLock(ctx, transcriptsBucket, contactID, metadata); err != nil {
		log.WithError(err).Error("Error updating lock file")
		return nil, err
	}

	log.Info("Conversation analytics processed")
	return map[string]bool{"Done": true}, nil
}

// writeAnalyticsRecord updates the existing analytics record when a prior
// stage already created one, otherwise creates it. Returns the record id.
func writeAnalyticsRecord(ctx context.Context, contactID, existingID string, sum *summary.Summary) (string, error) {
	payload := sum.Payload(fields)
	payload[fields.Wire("ContactId")] = contactID
	sobject := fields.Object("AC_ContactChannelAnalytics")

	if existingID != "" {
		if _, err := sfClient.Update(ctx, sobject, existingID, payload); err != nil {
			return "", err
		}
		return existingID, nil
	}
	return sfClient.Create(ctx, sobject, payload)
}

func attachTranscripts(ctx context.Context, parentID string, customer, agent []transcript.Utterance) error {
	if err := attachSide(ctx, parentID, "CustomerTranscripts.json", "Call Recording Transcription - Customer Side", customer); err != nil {
		return err
	}
	return attachSide(ctx, parentID, "AgentTranscripts.json", "Call Recording Transcription - Agent Side", agent)
}

func attachSide(ctx context.Context, parentID, name, description string, utterances []transcript.Utterance) error {
	if len(utterances) == 0 {
		return nil
	}
	body, err := util.Base64JSON(utterances)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	_, err = sfClient.AttachFile(ctx, name, "application/json", description, parentID, body)
	return err
}

func init() {
	isLocal = parseIsLocal()
	logger = setupLogger(isLocal)

	var err error
	cfg, err = config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	util.SetLogLevel(logger, cfg.LogLevel)
	fields = salesforce.NewFieldMap(cfg.NamespacePrefix(), summary.FieldNames()...)

	transcriptsBucket = os.Getenv("TRANSCRIPTS_DESTINATION")
	if transcriptsBucket == "" {
		logger.Fatal("TRANSCRIPTS_DESTINATION environment variable is required")
	}

	s3Client = clients.NewS3Client(isLocal)

	store := &secrets.SecretsManagerStore{
		Client: clients.NewSecretsManagerClient(isLocal),
		Logger: logger,
	}
	session, err := salesforce.NewSession(context.Background(), cfg, store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing CRM session")
	}
	sfClient = salesforce.NewClient(session, logger)
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

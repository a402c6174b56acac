package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crmsync/lib/clients"
	awscomprehend "crmsync/lib/comprehend"
	"crmsync/lib/config"
	"crmsync/lib/models"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/transcript"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Lock metadata keys. S3 lower-cases metadata keys.
const (
	lockMetadataAnalyticsID = "accontactchannelanalyticsid"
	lockMetadataAnalysis    = "postcalltranscribecomprehendanalysis"
)

// Global variables for Lambda cold start optimization
var (
	logger   *logrus.Logger
	isLocal  bool
	cfg      *config.Config
	sfClient *salesforce.Client
	s3Client clients.S3ClientInterface
	analyzer *awscomprehend.Analyzer
	fields   salesforce.FieldMap
)

// Handler processes a finished transcription job: it reconstructs the
// customer and agent transcripts from the channel token streams, runs the
// language analysis the contact flow asked for, writes the analytics record,
// and attaches the transcript files.
func Handler(ctx context.Context, event models.TranscriptionEvent) (map[string]bool, error) {
	job := event.TranscriptionJob
	bucket, key := util.SplitS3URI(job.Transcript.TranscriptFileURI)
	contactID := strings.SplitN(job.TranscriptionJobName, "_", 2)[0]
	languageCode := strings.SplitN(job.LanguageCode, "-", 2)[0]

	log := logger.WithFields(logrus.Fields{
		"contact_id": contactID,
		"job_name":   job.TranscriptionJobName,
	})
	log.Info("Processing transcription result")

	metadata, err := s3Client.GetLockMetadata(ctx, bucket, contactID)
	if err != nil {
		log.WithError(err).Error("Error reading lock metadata")
		return nil, err
	}

	var file models.TranscriptionFile
	if err := s3Client.GetJSONObject(ctx, bucket, key, &file); err != nil {
		log.WithError(err).Error("Error retrieving transcription file")
		return nil, err
	}

	customer, agent, err := channelTranscripts(&file)
	if err != nil {
		log.WithError(err).Error("Error reconstructing transcripts")
		return nil, err
	}

	analysis, err := runAnalysis(ctx, customer, languageCode, metadata[lockMetadataAnalysis])
	if err != nil {
		log.WithError(err).Error("Error running language analysis")
		return nil, err
	}

	analyticsID, err := writeAnalyticsRecord(ctx, contactID, metadata[lockMetadataAnalyticsID], analysis)
	if err != nil {
		log.WithError(err).Error("Error writing analytics record")
		return nil, err
	}

	if err := attachTranscripts(ctx, analyticsID, customer, agent); err != nil {
		log.WithError(err).Error("Error attaching transcripts")
		return nil, err
	}

	if err := s3Client.UpdateLock(ctx, bucket, contactID, metadata); err != nil {
		log.WithError(err).Error("Error updating lock file")
		return nil, err
	}

	log.Info("Transcription result processed")
	return map[string]bool{"Done": true}, nil
}

// channelTranscripts rebuilds both speakers' utterances. The customer is
// recorded on channel 0 and the agent on channel 1.
func channelTranscripts(file *models.TranscriptionFile) (customer, agent []transcript.Utterance, err error) {
	channels := file.Results.ChannelLabels.Channels
	if len(channels) < 2 {
		return nil, nil, fmt.Errorf("transcription file has %d channels, expected 2", len(channels))
	}
	return transcript.Reconstruct(channels[0].Items), transcript.Reconstruct(channels[1].Items), nil
}

// runAnalysis executes the analysis kinds requested in the lock metadata
// (comma-separated: snt, kw, ne) over the customer's side of the call.
func runAnalysis(ctx context.Context, customer []transcript.Utterance, languageCode, requested string) (map[string]string, error) {
	results := map[string]string{}
	if len(customer) == 0 || requested == "" {
		return results, nil
	}

	var parts []string
	for _, u := range customer {
		parts = append(parts, u.Content)
	}
	text := strings.Join(parts, " ")

	for _, kind := range strings.Split(requested, ",") {
		switch strings.TrimSpace(kind) {
		case "snt":
			sentiment, err := analyzer.Sentiment(ctx, text, languageCode)
			if err != nil {
				return nil, err
			}
			results["Sentiment"] = sentiment
		case "kw":
			keywords, err := analyzer.KeyPhrases(ctx, text, languageCode)
			if err != nil {
				return nil, err
			}
			results["Keywords"] = keywords
		case "ne":
			entities, err := analyzer.Entities(ctx, text, languageCode)
			if err != nil {
				return nil, err
			}
			results["NamedEntities"] = entities
		}
	}
	return results, nil
}

func writeAnalyticsRecord(ctx context.Context, contactID, existingID string, analysis map[string]string) (string, error) {
	payload := map[string]interface{}{
		fields.Wire("ContactId"): contactID,
	}
	for logical, value := range analysis {
		payload[fields.Wire(logical)] = value
	}
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
	fields = salesforce.NewFieldMap(cfg.NamespacePrefix(), "ContactId", "Sentiment", "Keywords", "NamedEntities")

	s3Client = clients.NewS3Client(isLocal)
	analyzer = awscomprehend.NewAnalyzer(clients.NewComprehendClient(isLocal), logger)

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

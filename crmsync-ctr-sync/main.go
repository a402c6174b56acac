package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"crmsync/lib/clients"
	"crmsync/lib/config"
	"crmsync/lib/ctr"
	"crmsync/lib/models"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger   *logrus.Logger
	isLocal  bool
	cfg      *config.Config
	sfClient *salesforce.Client
	fields   salesforce.FieldMap
)

// Handler imports one contact trace record into the CRM. Records arrive
// base64-encoded from the event stream relay; only contacts whose flow set
// postcallCTRImportEnabled are imported.
func Handler(ctx context.Context, event models.RecordEvent) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(event.Record)
	if err != nil {
		logger.WithError(err).Error("Error decoding contact trace record")
		return "", fmt.Errorf("decoding record: %w", err)
	}

	var record ctr.Record
	if err := json.Unmarshal(decoded, &record); err != nil {
		logger.WithError(err).Error("Error parsing contact trace record")
		return "", fmt.Errorf("parsing record: %w", err)
	}

	log := logger.WithField("contact_id", record.ContactID)
	if !record.ImportEnabled() {
		log.Info("Contact trace record import not enabled for this contact, skipping")
		return "Skipped", nil
	}

	err = sfClient.UpsertByExternalID(ctx,
		fields.Object("AC_ContactTraceRecord"),
		fields.Wire("ContactId"),
		record.ContactID,
		record.Payload(fields),
	)
	if err != nil {
		log.WithError(err).Error("Error importing contact trace record")
		return "", err
	}

	log.Info("Contact trace record imported")
	return "Done", nil
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
	fields = salesforce.NewFieldMap(cfg.NamespacePrefix())

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

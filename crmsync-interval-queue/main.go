package main

import (
	"context"
	"net/url"
	"os"
	"strconv"

	"crmsync/lib/clients"
	"crmsync/lib/config"
	"crmsync/lib/interval"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger   *logrus.Logger
	isLocal  bool
	cfg      *config.Config
	sfClient *salesforce.Client
	s3Client clients.S3ClientInterface
	fields   salesforce.FieldMap
)

// Handler imports a scheduled queue historical metrics report. Each CSV row
// is upserted by its record id so a re-exported report overwrites the
// earlier rows.
func Handler(ctx context.Context, event events.S3Event) error {
	record := event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		logger.WithError(err).Error("Error decoding object key")
		return err
	}

	log := logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"key":    key,
	})
	log.Info("Importing queue metrics report")

	data, err := s3Client.GetObjectString(ctx, bucket, key)
	if err != nil {
		log.WithError(err).Error("Error retrieving report")
		return err
	}

	rows, err := interval.ParseQueueReport(data, record.EventTime.Format("2006-01-02T15:04:05Z"), fields)
	if err != nil {
		log.WithError(err).Error("Error parsing report")
		return err
	}

	sobject := fields.Object("AC_HistoricalQueueMetrics")
	// Deployments with the region field on the metrics object get per-region
	// record ids so multiple regions can report side by side.
	multiRegion, err := sfClient.FieldExists(ctx, sobject, fields.Wire("Region"))
	if err != nil {
		log.WithError(err).Error("Error describing metrics object")
		return err
	}
	region := os.Getenv("AWS_REGION")

	for _, row := range rows {
		recordID := row.RecordID
		if multiRegion {
			row.Fields[fields.Wire("Region")] = region
			recordID += region
		}
		if err := sfClient.UpsertByExternalID(ctx, sobject, fields.Wire("AC_Record_Id"), recordID, row.Fields); err != nil {
			log.WithError(err).WithField("record_id", recordID).Error("Error upserting report row")
			return err
		}
	}

	log.WithField("rows", len(rows)).Info("Queue metrics report imported")
	return nil
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

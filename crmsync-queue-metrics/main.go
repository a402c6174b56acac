package main

import (
	"context"
	"os"
	"strconv"

	"crmsync/lib/clients"
	"crmsync/lib/config"
	"crmsync/lib/queuemetrics"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger    *logrus.Logger
	isLocal   bool
	cfg       *config.Config
	sfClient  *salesforce.Client
	collector *queuemetrics.Collector
	fields    salesforce.FieldMap
)

// Handler snapshots the real-time metrics of every standard queue and
// upserts one CRM record per queue, keyed by queue id.
func Handler(ctx context.Context) error {
	logger.WithField("instance_id", collector.InstanceID).Info("Snapshotting queue metrics")

	records, err := collector.Collect(ctx)
	if err != nil {
		logger.WithError(err).Error("Error collecting queue metrics")
		return err
	}

	sobject := fields.Object("AC_QueueMetrics")
	// Deployments with the region field on the metrics object get per-region
	// record ids so multiple regions can report side by side.
	multiRegion, err := sfClient.FieldExists(ctx, sobject, fields.Wire("Region"))
	if err != nil {
		logger.WithError(err).Error("Error describing metrics object")
		return err
	}
	region := os.Getenv("AWS_REGION")

	for _, record := range records {
		payload := record.Payload(fields)
		queueID := record.QueueID
		if multiRegion {
			payload[fields.Wire("Region")] = region
			queueID += "-" + region
		}

		if err := sfClient.UpsertByExternalID(ctx, sobject, fields.Wire("Queue_Id"), queueID, payload); err != nil {
			logger.WithError(err).WithField("queue_id", record.QueueID).Error("Error upserting queue metrics")
			return err
		}
	}

	logger.WithField("queues", len(records)).Info("Queue metrics snapshot complete")
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

	instanceID := os.Getenv("AMAZON_CONNECT_INSTANCE_ID")
	if instanceID == "" {
		logger.Fatal("AMAZON_CONNECT_INSTANCE_ID environment variable is required")
	}
	collector = &queuemetrics.Collector{
		API:              clients.NewConnectClient(isLocal),
		Logger:           logger,
		InstanceID:       instanceID,
		QueueMaxResults:  parseMaxResults("AMAZON_CONNECT_QUEUE_MAX_RESULT"),
		MetricMaxResults: parseMaxResults("AMAZON_CONNECT_QUEUEMETRICS_MAX_RESULT"),
	}

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

func parseMaxResults(name string) int32 {
	value, err := strconv.Atoi(os.Getenv(name))
	if err != nil || value <= 0 {
		logger.WithField("variable", name).Fatal("A positive integer environment variable is required")
	}
	return int32(value)
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

package main

import (
	"context"
	"os"
	"strconv"

	"crmsync/lib/clients"
	"crmsync/lib/config"
	"crmsync/lib/flowapi"
	"crmsync/lib/salesforce"
	"crmsync/lib/secrets"
	"crmsync/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger     *logrus.Logger
	isLocal    bool
	cfg        *config.Config
	dispatcher *flowapi.Dispatcher
)

// Handler executes one CRM operation on behalf of a contact flow. The
// operation name arrives in the sf_operation parameter; the remaining
// parameters are operation-specific.
func Handler(ctx context.Context, event events.ConnectEvent) (map[string]interface{}, error) {
	log := logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"contact_id": event.Details.ContactData.ContactID,
	})

	params := map[string]string{}
	for key, value := range event.Details.Parameters {
		params[key] = value
	}
	operation := params["sf_operation"]
	delete(params, "sf_operation")

	log.WithField("sf_operation", operation).Info("Executing CRM operation")

	result, err := dispatcher.Dispatch(ctx, operation, params)
	if err != nil {
		log.WithError(err).Error("CRM operation failed")
		return nil, err
	}

	log.WithField("sf_operation", operation).Info("CRM operation completed")
	return result, nil
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

	store := &secrets.SecretsManagerStore{
		Client: clients.NewSecretsManagerClient(isLocal),
		Logger: logger,
	}
	session, err := salesforce.NewSession(context.Background(), cfg, store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing CRM session")
	}
	dispatcher = &flowapi.Dispatcher{
		SF:     salesforce.NewClient(session, logger),
		Logger: logger,
	}
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

package clients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
)

const localstackEndpoint = "http://localhost:4566"

func loadAWSConfig(isLocal bool) aws.Config {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		panic(err)
	}

	if isLocal {
		cfg.BaseEndpoint = aws.String(localstackEndpoint)
	}

	return cfg
}

func NewSecretsManagerClient(isLocal bool) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(loadAWSConfig(isLocal))
}

func NewConnectClient(isLocal bool) *connect.Client {
	return connect.NewFromConfig(loadAWSConfig(isLocal))
}

func NewTranscribeClient(isLocal bool) *transcribe.Client {
	return transcribe.NewFromConfig(loadAWSConfig(isLocal))
}

func NewComprehendClient(isLocal bool) *comprehend.Client {
	return comprehend.NewFromConfig(loadAWSConfig(isLocal))
}

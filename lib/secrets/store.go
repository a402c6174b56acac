package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/sirupsen/logrus"
)

// ErrVersionLimit marks a Put rejected because the secret has accumulated too
// many staged versions. The store prunes old versions on its own, so callers
// treat this as benign: the freshly minted token stays valid in memory and the
// next successful Put catches the blob up.
var ErrVersionLimit = errors.New("secret version limit reached")

// Credentials is the secret blob shared with every process that talks to the
// CRM. AuthToken and TokenExpiry are written back whenever a new bearer token
// is minted; concurrent writers are tolerated, last writer wins.
type Credentials struct {
	Password       string `json:"Password"`
	AccessToken    string `json:"AccessToken"`
	ConsumerKey    string `json:"ConsumerKey"`
	ConsumerSecret string `json:"ConsumerSecret"`
	AuthToken      string `json:"AuthToken,omitempty"`
	InstanceURL    string `json:"InstanceUrl,omitempty"`
	TokenExpiry    string `json:"TokenExpiry,omitempty"`
}

// Store is the credential blob store contract.
type Store interface {
	Get(ctx context.Context, secretID string) (*Credentials, error)
	Put(ctx context.Context, secretID string, creds *Credentials) error
}

// SecretsManagerAPI is the slice of the Secrets Manager client the store uses.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

type SecretsManagerStore struct {
	Client SecretsManagerAPI
	Logger *logrus.Logger
}

func (s *SecretsManagerStore) Get(ctx context.Context, secretID string) (*Credentials, error) {
	out, err := s.Client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("reading credential secret: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("decoding credential secret: %w", err)
	}
	return &creds, nil
}

func (s *SecretsManagerStore) Put(ctx context.Context, secretID string, creds *Credentials) error {
	blob, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credential secret: %w", err)
	}

	_, err = s.Client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(secretID),
		SecretString: aws.String(string(blob)),
	})
	if err != nil {
		if isVersionLimit(err) {
			return fmt.Errorf("%w: %s", ErrVersionLimit, err.Error())
		}
		return fmt.Errorf("storing credential secret: %w", err)
	}
	return nil
}

func isVersionLimit(err error) bool {
	var limitErr *smtypes.LimitExceededException
	if errors.As(err, &limitErr) {
		return true
	}
	// The service occasionally surfaces the condition as an invalid-request
	// complaint about staged versions rather than a limit error.
	var invalidErr *smtypes.InvalidRequestException
	return errors.As(err, &invalidErr) && strings.Contains(err.Error(), "staged")
}

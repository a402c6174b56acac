package clients

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientInterface covers the object operations the processing Lambdas use:
// analytics/transcript file retrieval, attachment payloads, and the per-contact
// lock files that carry processing metadata between pipeline stages.
type S3ClientInterface interface {
	GetJSONObject(ctx context.Context, bucket, key string, v interface{}) error
	GetObjectString(ctx context.Context, bucket, key string) (string, error)
	GetObjectBase64(ctx context.Context, bucket, key string) (string, error)
	GetLockMetadata(ctx context.Context, bucket, contactID string) (map[string]string, error)
	UpdateLock(ctx context.Context, bucket, contactID string, metadata map[string]string) error
}

type S3Client struct {
	svc *s3.Client
}

// NewS3Client creates the S3 client, pointed at LocalStack when running locally.
func NewS3Client(isLocal bool) S3ClientInterface {
	cfg := loadAWSConfig(isLocal)

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = isLocal
	})

	return &S3Client{svc: svc}
}

// GetJSONObject reads an object and decodes it into v.
func (client *S3Client) GetJSONObject(ctx context.Context, bucket, key string, v interface{}) error {
	out, err := client.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if err := json.NewDecoder(out.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// GetObjectString reads an object body as text, used for the CSV interval
// reports.
func (client *S3Client) GetObjectString(ctx context.Context, bucket, key string) (string, error) {
	out, err := client.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return string(body), nil
}

// GetObjectBase64 reads an object and returns its base64-encoded body, the
// form attachment uploads expect.
func (client *S3Client) GetObjectBase64(ctx context.Context, bucket, key string) (string, error) {
	out, err := client.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

// GetLockMetadata returns the user metadata of the contact's lock file.
// S3 lower-cases metadata keys, so callers look up lower-cased names.
func (client *S3Client) GetLockMetadata(ctx context.Context, bucket, contactID string) (map[string]string, error) {
	out, err := client.svc.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(lockKey(contactID)),
	})
	if err != nil {
		return nil, fmt.Errorf("reading lock metadata for contact %s: %w", contactID, err)
	}

	metadata := map[string]string{}
	for key, value := range out.Metadata {
		metadata[strings.ToLower(key)] = value
	}
	return metadata, nil
}

// UpdateLock marks the contact's lock file COMPLETED, preserving metadata.
func (client *S3Client) UpdateLock(ctx context.Context, bucket, contactID string, metadata map[string]string) error {
	_, err := client.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(lockKey(contactID)),
		Body:     strings.NewReader("COMPLETED"),
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("updating lock for contact %s: %w", contactID, err)
	}
	return nil
}

func lockKey(contactID string) string {
	return "locks/" + contactID + ".lock"
}

package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
)

// StorageService interface for execution artifact storage
type StorageService interface {
	SaveArtifact(ctx context.Context, key string, data []byte) error
	GetArtifact(ctx context.Context, key string) ([]byte, error)
	DeleteArtifact(ctx context.Context, key string) error
}

// LocalStorageService implements StorageService using local filesystem
type LocalStorageService struct {
	basePath string
}

func NewLocalStorageService(basePath string) (*LocalStorageService, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}
	return &LocalStorageService{basePath: basePath}, nil
}

func (s *LocalStorageService) SaveArtifact(ctx context.Context, key string, data []byte) error {
	fullPath := filepath.Join(s.basePath, key)

	// Create directory if needed
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, data, 0644)
}

func (s *LocalStorageService) GetArtifact(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.basePath, key))
}

func (s *LocalStorageService) DeleteArtifact(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.basePath, key))
}

// S3StorageService implements StorageService using AWS S3
type S3StorageService struct {
	client *s3.Client
	bucket string
}

func NewS3StorageService(bucket string) (*S3StorageService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}

	// Instrument AWS SDK v2 with X-Ray for automatic S3 operation tracing
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)

	client := s3.NewFromConfig(cfg)
	return &S3StorageService{client: client, bucket: bucket}, nil
}

func (s *S3StorageService) SaveArtifact(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(data)),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *S3StorageService) GetArtifact(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()

	return io.ReadAll(output.Body)
}

func (s *S3StorageService) DeleteArtifact(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// NewStorageService creates appropriate storage service based on environment
func NewStorageService(storageType, pathOrBucket string) (StorageService, error) {
	switch storageType {
	case "s3":
		return NewS3StorageService(pathOrBucket)
	case "local":
		return NewLocalStorageService(pathOrBucket)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// EnvelopeArtifactKey returns the archive key for a run's input envelope
func EnvelopeArtifactKey(executionID string) string {
	return fmt.Sprintf("runs/%s/envelope.json", executionID)
}

// ResultArtifactKey returns the archive key for a run's enriched result
func ResultArtifactKey(executionID string) string {
	return fmt.Sprintf("runs/%s/result.json", executionID)
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	appconfig "github.com/thinkbeforeclick/platform/internal/config"
)

// Store provides DynamoDB-backed persistence for all five record
// collections. One table per collection, each keyed by its natural id,
// with a CompanyIndex GSI for per-company queries.
//
// All methods are safe for concurrent use; a Store is a thin wrapper over
// the SDK client and holds no mutable state.
type Store struct {
	db  *dynamodb.Client
	cfg appconfig.StoreConfig
}

// New creates a DynamoDB-backed store.
func New(ctx context.Context, cfg appconfig.StoreConfig) (*Store, error) {
	var awsCfg aws.Config
	var err error

	if profile := cfg.GetAWSProfile(); profile != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Store{
		db:  dynamodb.NewFromConfig(awsCfg),
		cfg: cfg,
	}, nil
}

// NewWithClient creates a store around an existing DynamoDB client.
// Used by the Lambda entrypoint, which shares one SDK config across
// all collaborators.
func NewWithClient(db *dynamodb.Client, cfg appconfig.StoreConfig) *Store {
	return &Store{db: db, cfg: cfg}
}

// ErrorCode extracts the AWS service error code from err, or "" if err is
// not an AWS API error. Handlers expose this code (never the full error)
// when mapping downstream failures to 500/502 responses.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

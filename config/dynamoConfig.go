package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

var (
	dynamoClient  *dynamodb.Client
	dynamoInitErr error
	dynamoOnce    sync.Once
)

// InitDynamoClient builds the process-wide DynamoDB client on first use and
// returns the same client (or the same error) on every later call.
func InitDynamoClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	dynamoOnce.Do(func() {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			dynamoInitErr = fmt.Errorf("unable to load SDK config: %w", err)
			return
		}

		dynamoClient = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		zap.L().Info("DynamoDB client initialized",
			zap.String("table", cfg.DynamoDBTable),
			zap.String("endpoint", cfg.DynamoDBEndpoint),
		)
	})
	return dynamoClient, dynamoInitErr
}

package seed

import (
	"context"
	"fmt"
	"time"

	"CapIot.telemetryAPI/models"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BatchSize is the most items one BatchWriteItem call accepts.
const BatchSize = 25

// maxBatchAttempts bounds the resubmission of unprocessed items.
const maxBatchAttempts = 5

// maxBatchBackoff caps the wait before a resubmission.
const maxBatchBackoff = 5 * time.Second

// Backoff computes the wait before resubmission number attempt (1-based).
type Backoff interface {
	BackoffDelay(attempt int, err error) (time.Duration, error)
}

// batchBackoff is exponential with full jitter, as recommended for
// BatchWriteItem throttling.
var batchBackoff Backoff = retry.NewExponentialJitterBackoff(maxBatchBackoff)

// BatchWriter is the part of the DynamoDB client Load uses.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// WriteRequests marshals the records into PutRequests.
func WriteRequests(records []models.TelemetryRecord) ([]types.WriteRequest, error) {
	reqs := make([]types.WriteRequest, 0, len(records))
	for _, rec := range records {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s@%s: %w", rec.DeviceID, rec.Timestamp, err)
		}
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	return reqs, nil
}

// Chunk splits requests into slices of at most BatchSize.
func Chunk(reqs []types.WriteRequest) [][]types.WriteRequest {
	var chunks [][]types.WriteRequest
	for len(reqs) > BatchSize {
		chunks = append(chunks, reqs[:BatchSize])
		reqs = reqs[BatchSize:]
	}
	if len(reqs) > 0 {
		chunks = append(chunks, reqs)
	}
	return chunks
}

// Load writes the records to table in batches, resubmitting unprocessed
// items a bounded number of times.
func Load(ctx context.Context, client BatchWriter, table string, records []models.TelemetryRecord) error {
	reqs, err := WriteRequests(records)
	if err != nil {
		return err
	}

	for i, chunk := range Chunk(reqs) {
		pending := map[string][]types.WriteRequest{table: chunk}
		for attempt := 1; len(pending) > 0; attempt++ {
			if attempt > maxBatchAttempts {
				return fmt.Errorf("batch %d: %d items still unprocessed after %d attempts", i, len(pending[table]), maxBatchAttempts)
			}
			if attempt > 1 {
				if err := wait(ctx, attempt-1); err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
			}
			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			pending = out.UnprocessedItems
			if len(pending) > 0 {
				zap.L().Debug("Unprocessed items returned", zap.Int("batch", i), zap.Int("attempt", attempt), zap.Int("count", len(pending[table])))
			}
		}
	}
	zap.L().Info("Records loaded into DynamoDB", zap.String("table", table), zap.Int("count", len(records)))
	return nil
}

// wait sleeps for the backoff of the given retry or until ctx is done.
func wait(ctx context.Context, retryNumber int) error {
	delay, err := batchBackoff.BackoffDelay(retryNumber, nil)
	if err != nil {
		return err
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BatchWriteFile renders the records in the request-items format of
// `aws dynamodb batch-write-item --request-items file://...`, one document per
// chunk of BatchSize.
func BatchWriteFile(table string, records []models.TelemetryRecord) ([]map[string][]map[string]any, error) {
	reqs, err := WriteRequests(records)
	if err != nil {
		return nil, err
	}

	var docs []map[string][]map[string]any
	for _, chunk := range Chunk(reqs) {
		puts := make([]map[string]any, 0, len(chunk))
		for _, req := range chunk {
			item, err := wireItem(req.PutRequest.Item)
			if err != nil {
				return nil, err
			}
			puts = append(puts, map[string]any{"PutRequest": map[string]any{"Item": item}})
		}
		docs = append(docs, map[string][]map[string]any{table: puts})
	}
	return docs, nil
}

// wireItem converts an item to DynamoDB's JSON wire form, e.g. {"S": "x"}.
func wireItem(item map[string]types.AttributeValue) (map[string]any, error) {
	out := make(map[string]any, len(item))
	for k, av := range item {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			out[k] = map[string]string{"S": v.Value}
		case *types.AttributeValueMemberN:
			out[k] = map[string]string{"N": v.Value}
		case *types.AttributeValueMemberNULL:
			out[k] = map[string]bool{"NULL": v.Value}
		case *types.AttributeValueMemberBOOL:
			out[k] = map[string]bool{"BOOL": v.Value}
		default:
			return nil, fmt.Errorf("attribute %s: unsupported type %T", k, av)
		}
	}
	return out, nil
}

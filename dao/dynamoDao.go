package dao

import (
	"context"
	"fmt"

	"CapIot.telemetryAPI/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoAPI is the part of the DynamoDB client the store uses.
type DynamoAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore reads telemetry from a DynamoDB table keyed by
// (device_id, timestamp) with a room_id/timestamp secondary index.
type DynamoStore struct {
	client    DynamoAPI
	table     string
	roomIndex string
}

// NewDynamoStore creates a new DynamoStore.
func NewDynamoStore(client DynamoAPI, table, roomIndex string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		table:     table,
		roomIndex: roomIndex,
	}
}

// Execute runs a Query when the plan has a key condition and a Scan
// otherwise. Only the first page is returned.
func (s *DynamoStore) Execute(ctx context.Context, plan AccessPlan) ([]models.Item, error) {
	expr, hasExpr, err := buildExpression(plan)
	if err != nil {
		return nil, queryFailed(err)
	}

	if plan.IsScan() {
		input := &dynamodb.ScanInput{TableName: aws.String(s.table)}
		if hasExpr {
			input.FilterExpression = expr.Filter()
			input.ProjectionExpression = expr.Projection()
			input.ExpressionAttributeNames = expr.Names()
			input.ExpressionAttributeValues = expr.Values()
		}
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			zap.L().Error("DynamoDB scan failed", zap.String("table", s.table), zap.Error(err))
			return nil, queryFailed(err)
		}
		return decodeItems(out.Items)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if plan.Index == IndexRoom {
		input.IndexName = aws.String(s.roomIndex)
	}
	out, err := s.client.Query(ctx, input)
	if err != nil {
		zap.L().Error("DynamoDB query failed",
			zap.String("table", s.table),
			zap.Stringer("index", plan.Index),
			zap.Error(err),
		)
		return nil, queryFailed(err)
	}
	return decodeItems(out.Items)
}

// buildExpression turns the plan into SDK expressions. The second return is
// false for a bare scan, which needs no expression at all.
func buildExpression(plan AccessPlan) (expression.Expression, bool, error) {
	builder := expression.NewBuilder()
	used := false

	if plan.Key != nil {
		builder = builder.WithKeyCondition(keyCondition(*plan.Key))
		used = true
	}
	if cond, ok := filterCondition(plan.Filters); ok {
		builder = builder.WithFilter(cond)
		used = true
	}
	if len(plan.Projection) > 0 {
		names := make([]expression.NameBuilder, 0, len(plan.Projection))
		for _, attr := range plan.Projection {
			names = append(names, expression.Name(attr))
		}
		builder = builder.WithProjection(expression.NamesList(names[0], names[1:]...))
		used = true
	}

	if !used {
		return expression.Expression{}, false, nil
	}
	expr, err := builder.Build()
	if err != nil {
		return expression.Expression{}, false, fmt.Errorf("building expression: %w", err)
	}
	return expr, true, nil
}

func keyCondition(key KeyCondition) expression.KeyConditionBuilder {
	cond := expression.Key(key.PartitionKey).Equal(expression.Value(key.PartitionValue))
	r := key.Range
	switch {
	case r.Start != "" && r.End != "":
		cond = cond.And(expression.Key(models.AttrTimestamp).Between(expression.Value(r.Start), expression.Value(r.End)))
	case r.Start != "":
		cond = cond.And(expression.Key(models.AttrTimestamp).GreaterThanEqual(expression.Value(r.Start)))
	case r.End != "":
		cond = cond.And(expression.Key(models.AttrTimestamp).LessThanEqual(expression.Value(r.End)))
	}
	return cond
}

func filterCondition(filters []Filter) (expression.ConditionBuilder, bool) {
	if len(filters) == 0 {
		return expression.ConditionBuilder{}, false
	}
	conds := make([]expression.ConditionBuilder, 0, len(filters))
	for _, f := range filters {
		conds = append(conds, expression.Name(f.Attribute).Equal(expression.Value(f.Value)))
	}
	if len(conds) == 1 {
		return conds[0], true
	}
	return expression.And(conds[0], conds[1], conds[2:]...), true
}

// decodeItems keeps numbers as attributevalue.Number so that the response
// layer decides how to render them.
func decodeItems(raw []map[string]types.AttributeValue) ([]models.Item, error) {
	items := make([]models.Item, 0, len(raw))
	err := attributevalue.UnmarshalListOfMapsWithOptions(raw, &items, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, queryFailed(fmt.Errorf("decoding items: %w", err))
	}
	return items, nil
}

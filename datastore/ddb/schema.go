/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/modelstore/storagemodels"
)

const metaItemKey = "schema"

type metaItem struct {
	PK         string                                   `dynamodbav:"pk"`
	Version    int                                      `dynamodbav:"version"`
	Partitions map[string]storagemodels.PartitionConfig `dynamodbav:"partitions"`
}

func (m metaItem) schema(db string) storagemodels.Schema {
	parts := make(map[string]storagemodels.PartitionConfig, len(m.Partitions))
	for name, p := range m.Partitions {
		parts[name] = p
	}
	return storagemodels.Schema{Database: db, Version: m.Version, Partitions: parts}
}

// ensureTable creates a table keyed by the synthetic hash key unless it exists,
// then waits for it to become active.
func (s *Store) ensureTable(ctx context.Context, table string) error {
	_, err := s.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !stderrors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table %s: %w", table, err)
	}

	_, err = s.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(hashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !stderrors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	waiter := sdk.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(table)}, s.tableWait); err != nil {
		return fmt.Errorf("table %s did not become active: %w", table, err)
	}
	s.logger.Info("table created", "table", table)
	return nil
}

func (s *Store) readMeta(ctx context.Context, db string) (metaItem, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(metaTable(db)),
		Key:            map[string]types.AttributeValue{hashKey: &types.AttributeValueMemberS{Value: metaItemKey}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return metaItem{}, fmt.Errorf("failed to read schema: %w", err)
	}
	var m metaItem
	if out.Item == nil {
		return m, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return metaItem{}, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return m, nil
}

// writeMeta stores next, conditioned on the schema still being at the version read.
func (s *Store) writeMeta(ctx context.Context, db string, stored metaItem, next storagemodels.Schema) error {
	item, err := attributevalue.MarshalMap(metaItem{PK: metaItemKey, Version: next.Version, Partitions: next.Partitions})
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	in := &sdk.PutItemInput{
		TableName:           aws.String(metaTable(db)),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	}
	if stored.PK != "" {
		in.ConditionExpression = aws.String("#v = :old")
		in.ExpressionAttributeNames = map[string]string{"#v": "version"}
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":old": &types.AttributeValueMemberN{Value: strconv.Itoa(stored.Version)},
		}
	}
	_, err = s.client.PutItem(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

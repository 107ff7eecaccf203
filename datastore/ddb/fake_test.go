/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the handful of DynamoDB calls the
// store makes. It understands only the condition expressions the store emits.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	calls  map[string]int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables: make(map[string]map[string]map[string]types.AttributeValue),
		calls:  make(map[string]int),
	}
}

func hashOf(key map[string]types.AttributeValue) string {
	return key[hashKey].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) table(name string) (map[string]map[string]types.AttributeValue, error) {
	t, ok := f.tables[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table " + name + " not found")}
	}
	return t, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetItem"]++
	t, err := f.table(*in.TableName)
	if err != nil {
		return nil, err
	}
	return &sdk.GetItemOutput{Item: t[hashOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutItem"]++
	t, err := f.table(*in.TableName)
	if err != nil {
		return nil, err
	}
	h := hashOf(in.Item)
	if !check(t[h], in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	t[h] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Scan"]++
	t, err := f.table(*in.TableName)
	if err != nil {
		return nil, err
	}
	out := &sdk.ScanOutput{}
	for _, item := range t {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, in *sdk.TransactWriteItemsInput, _ ...func(*sdk.Options)) (*sdk.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["TransactWriteItems"]++

	type apply func()
	var applies []apply
	for _, ti := range in.TransactItems {
		switch {
		case ti.Put != nil:
			p := ti.Put
			t, err := f.table(*p.TableName)
			if err != nil {
				return nil, err
			}
			h := hashOf(p.Item)
			if !check(t[h], p.ConditionExpression, p.ExpressionAttributeNames, p.ExpressionAttributeValues) {
				return nil, &types.TransactionCanceledException{Message: aws.String("ConditionalCheckFailed")}
			}
			applies = append(applies, func() { t[h] = p.Item })
		case ti.Delete != nil:
			d := ti.Delete
			t, err := f.table(*d.TableName)
			if err != nil {
				return nil, err
			}
			h := hashOf(d.Key)
			if !check(t[h], d.ConditionExpression, d.ExpressionAttributeNames, d.ExpressionAttributeValues) {
				return nil, &types.TransactionCanceledException{Message: aws.String("ConditionalCheckFailed")}
			}
			applies = append(applies, func() { delete(t, h) })
		case ti.Update != nil:
			u := ti.Update
			t, err := f.table(*u.TableName)
			if err != nil {
				return nil, err
			}
			h := hashOf(u.Key)
			if !check(t[h], u.ConditionExpression, u.ExpressionAttributeNames, u.ExpressionAttributeValues) {
				return nil, &types.TransactionCanceledException{Message: aws.String("ConditionalCheckFailed")}
			}
			name, value, err := parseSet(*u.UpdateExpression, u.ExpressionAttributeNames, u.ExpressionAttributeValues)
			if err != nil {
				return nil, err
			}
			applies = append(applies, func() {
				item := map[string]types.AttributeValue{}
				for k, v := range t[h] {
					item[k] = v
				}
				for k, v := range u.Key {
					item[k] = v
				}
				item[name] = value
				t[h] = item
			})
		}
	}
	for _, a := range applies {
		a()
	}
	return &sdk.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateTable"]++
	if _, ok := f.tables[*in.TableName]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists")}
	}
	f.tables[*in.TableName] = make(map[string]map[string]types.AttributeValue)
	return &sdk.CreateTableOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.table(*in.TableName); err != nil {
		return nil, err
	}
	return &sdk.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func check(item map[string]types.AttributeValue, cond *string, names map[string]string, values map[string]types.AttributeValue) bool {
	if cond == nil {
		return true
	}
	switch expr := *cond; {
	case expr == "attribute_exists(pk)":
		return item != nil
	case expr == "attribute_not_exists(pk)":
		return item == nil
	case strings.Contains(expr, " = "):
		parts := strings.SplitN(expr, " = ", 2)
		if item == nil {
			return false
		}
		got, ok := item[names[parts[0]]].(*types.AttributeValueMemberN)
		want, ok2 := values[parts[1]].(*types.AttributeValueMemberN)
		return ok && ok2 && got.Value == want.Value
	default:
		panic("fakeDynamo: unsupported condition " + expr)
	}
}

func parseSet(expr string, names map[string]string, values map[string]types.AttributeValue) (string, types.AttributeValue, error) {
	rest, ok := strings.CutPrefix(expr, "SET ")
	if !ok {
		return "", nil, fmt.Errorf("unsupported update expression %q", expr)
	}
	parts := strings.SplitN(rest, " = ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("unsupported update expression %q", expr)
	}
	return names[parts[0]], values[parts[1]], nil
}

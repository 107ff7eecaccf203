//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/datastore/datastoretest"
)

func integrationClient(t *testing.T) *sdk.Client {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		t.Skip("AWS_REGION not set")
	}
	client, err := NewClient(context.Background(), ClientConfig{
		Region:    region,
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Endpoint:  os.Getenv("MODELSTORE_DDB_ENDPOINT"),
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

// Tables created here are left behind; point MODELSTORE_DDB_ENDPOINT at
// DynamoDB Local to keep the run disposable.
func TestDynamoStoreContract_Integration(t *testing.T) {
	client := integrationClient(t)
	datastoretest.RunBackendContract(t, func(t *testing.T) datastoretest.Opener {
		return func() datastore.Backend {
			return New(client, WithTableWait(time.Minute))
		}
	})
}

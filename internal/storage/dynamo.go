// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/goccy/go-json"
	"github.com/guregu/dynamo"
)

// DynamoOptions configures a DynamoStore.
type DynamoOptions struct {
	Table    string
	Region   string
	Endpoint string
}

// dynamoItem is one row of the rooms table. The record is stored as a JSON
// blob so the aggregate shape can evolve without a table migration.
type dynamoItem struct {
	Key       string    `dynamo:"key,hash"`
	Version   uint64    `dynamo:"version"`
	Payload   []byte    `dynamo:"payload"`
	UpdatedAt time.Time `dynamo:"updated_at"`
}

// DynamoStore persists records in a DynamoDB table keyed by "key".
type DynamoStore struct {
	table dynamo.Table
	name  string
}

// OpenDynamo creates a DynamoStore using the default AWS credential chain.
func OpenDynamo(opts DynamoOptions) (*DynamoStore, error) {
	cfg := aws.NewConfig()
	if opts.Region != "" {
		cfg = cfg.WithRegion(opts.Region)
	}
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewDynamoStore(dynamodb.New(sess), opts.Table), nil
}

// NewDynamoStore wraps an existing DynamoDB client.
func NewDynamoStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	db := dynamo.NewFromIface(client)
	return &DynamoStore{table: db.Table(table), name: table}
}

// Load implements Store.
func (s *DynamoStore) Load(ctx context.Context, key string) (*Record, error) {
	var item dynamoItem
	err := s.table.Get("key", key).OneWithContext(ctx, &item)
	if errors.Is(err, dynamo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(item.Payload, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	rec.Version = item.Version
	return &rec, nil
}

// Save implements Store with a conditional put on the version attribute.
func (s *DynamoStore) Save(ctx context.Context, key string, rec *Record) error {
	if err := checkSave(rec); err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	put := s.table.Put(dynamoItem{
		Key:       key,
		Version:   rec.Version,
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	})
	if rec.Version == 1 {
		put = put.If("attribute_not_exists($)", "key")
	} else {
		put = put.If("$ = ?", "version", rec.Version-1)
	}

	if err := put.RunWithContext(ctx); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("%w: writing %d", ErrVersionConflict, rec.Version)
		}
		return fmt.Errorf("dynamodb put %s: %w", key, err)
	}
	return nil
}

// Ping implements Store by describing the table.
func (s *DynamoStore) Ping(ctx context.Context) error {
	if _, err := s.table.Describe().RunWithContext(ctx); err != nil {
		return fmt.Errorf("describe table %s: %w", s.name, err)
	}
	return nil
}

// Name implements Store.
func (s *DynamoStore) Name() string { return "dynamodb" }

// Close implements Store. The AWS client holds no resources to release.
func (s *DynamoStore) Close() error { return nil }

func isConditionFailed(err error) bool {
	var ccf *dynamodb.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}

var _ Store = (*DynamoStore)(nil)

package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

// DynamoDB attribute names. expiration holds unix seconds so it can be the
// table's TTL attribute.
const (
	attrEventID    = "eventId"
	attrStarted    = "started"
	attrStopped    = "stopped"
	attrExpiration = "expiration"
)

// dynamoAPI is the subset of *dynamodb.Client the store calls.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBStore keeps dedup records in a table keyed by eventId.
type DynamoDBStore struct {
	client dynamoAPI
	table  string
}

// DynamoDBConfig selects the table and, for local development, an endpoint
// override such as DynamoDB Local.
type DynamoDBConfig struct {
	Table    string
	Region   string
	Endpoint string
}

// NewDynamoDBStore builds a client from the default AWS credential chain.
func NewDynamoDBStore(ctx context.Context, cfg DynamoDBConfig) (*DynamoDBStore, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DynamoDBStore{client: client, table: cfg.Table}, nil
}

func (d *DynamoDBStore) key(eventID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrEventID: &types.AttributeValueMemberS{Value: eventID},
	}
}

func (d *DynamoDBStore) Get(ctx context.Context, eventID string) (*dedup.Record, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            d.key(eventID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", eventID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return recordFromItem(out.Item)
}

func (d *DynamoDBStore) Put(ctx context.Context, rec dedup.Record) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      itemFromRecord(rec),
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %s: %w", rec.EventID, err)
	}
	return nil
}

func (d *DynamoDBStore) Delete(ctx context.Context, eventID string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(eventID),
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete %s: %w", eventID, err)
	}
	return nil
}

// Ping checks that the table exists and is reachable.
func (d *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	return err
}

func itemFromRecord(rec dedup.Record) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		attrEventID:    &types.AttributeValueMemberS{Value: rec.EventID},
		attrStarted:    millis(rec.StartedAt),
		attrExpiration: &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.ExpiresAt.Unix(), 10)},
	}
	if rec.StoppedAt != nil {
		item[attrStopped] = millis(*rec.StoppedAt)
	}
	return item
}

func recordFromItem(item map[string]types.AttributeValue) (*dedup.Record, error) {
	id, ok := item[attrEventID].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("dynamodb item missing %s", attrEventID)
	}
	rec := &dedup.Record{EventID: id.Value}

	started, err := numberAttr(item, attrStarted)
	if err != nil {
		return nil, err
	}
	rec.StartedAt = time.UnixMilli(started).UTC()

	expiration, err := numberAttr(item, attrExpiration)
	if err != nil {
		return nil, err
	}
	rec.ExpiresAt = time.Unix(expiration, 0).UTC()

	if _, present := item[attrStopped]; present {
		stopped, err := numberAttr(item, attrStopped)
		if err != nil {
			return nil, err
		}
		t := time.UnixMilli(stopped).UTC()
		rec.StoppedAt = &t
	}
	return rec, nil
}

func millis(t time.Time) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.UnixMilli(), 10)}
}

func numberAttr(item map[string]types.AttributeValue, name string) (int64, error) {
	n, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("dynamodb item missing numeric %s", name)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dynamodb attribute %s: %w", name, err)
	}
	return v, nil
}

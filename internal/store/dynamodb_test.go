package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

type fakeDynamo struct {
	items     map[string]map[string]types.AttributeValue
	lastTable string
	err       error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(key map[string]types.AttributeValue) string {
	return key[attrEventID].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastTable = aws.ToString(in.TableName)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastTable = aws.ToString(in.TableName)
	if f.err != nil {
		return nil, f.err
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastTable = aws.ToString(in.TableName)
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.lastTable = aws.ToString(in.TableName)
	return &dynamodb.DescribeTableOutput{}, f.err
}

func TestDynamoDBStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	st := &DynamoDBStore{client: fake, table: "idpsync-events"}

	started := time.Date(2024, 5, 1, 10, 0, 0, 123e6, time.UTC)
	rec := dedup.Record{EventID: "evt-1", StartedAt: started, ExpiresAt: started.Add(6 * time.Hour).Truncate(time.Second)}
	require.NoError(t, st.Put(ctx, rec))
	assert.Equal(t, "idpsync-events", fake.lastTable)

	item := fake.items["evt-1"]
	assert.Equal(t, "1714557600123", item[attrStarted].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "1714579200", item[attrExpiration].(*types.AttributeValueMemberN).Value)
	assert.NotContains(t, item, attrStopped)

	got, err := st.Get(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, &rec, got)

	stopped := started.Add(time.Second)
	rec.StoppedAt = &stopped
	require.NoError(t, st.Put(ctx, rec))
	got, err = st.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, got.StoppedAt)
	assert.True(t, stopped.Equal(*got.StoppedAt))

	require.NoError(t, st.Delete(ctx, "evt-1"))
	got, err = st.Get(ctx, "evt-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDynamoDBStore_Errors(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = errors.New("throttled")
	st := &DynamoDBStore{client: fake, table: "t"}

	_, err := st.Get(context.Background(), "evt-1")
	assert.ErrorIs(t, err, fake.err)
	assert.ErrorIs(t, st.Put(context.Background(), dedup.Record{EventID: "evt-1"}), fake.err)
	assert.Error(t, st.Ping(context.Background()))
}

func TestRecordFromItem_Malformed(t *testing.T) {
	_, err := recordFromItem(map[string]types.AttributeValue{
		attrEventID: &types.AttributeValueMemberS{Value: "evt-1"},
		attrStarted: &types.AttributeValueMemberS{Value: "yesterday"},
	})
	assert.Error(t, err)
}

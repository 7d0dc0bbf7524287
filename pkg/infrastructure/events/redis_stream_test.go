package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

type fakeStreamClient struct {
	calls []*redis.XAddArgs
	err   error
}

func (c *fakeStreamClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	c.calls = append(c.calls, a)
	return redis.NewStringResult("1700000000000-0", c.err)
}

func TestRedisStreamPublisher_Handle(t *testing.T) {
	client := &fakeStreamClient{}
	pub := NewRedisStreamPublisher(client, "baleyard:events", 1000, nil)
	at := time.Date(2024, 2, 2, 9, 30, 0, 0, time.UTC)

	bale := entities.Bale{BaleID: "B1", TruckID: "T1", Decision: entities.DecisionFail}
	require.NoError(t, pub.Handle(NewBaleRecordedEvent(bale, "SUP001", at)))

	require.Len(t, client.calls, 1)
	args := client.calls[0]
	assert.Equal(t, "baleyard:events", args.Stream)
	assert.Equal(t, int64(1000), args.MaxLen)
	assert.True(t, args.Approx)

	values := args.Values.(map[string]interface{})
	assert.Equal(t, BaleRecordedEvent, values["type"])
	assert.Equal(t, "T1", values["stream_id"])
	assert.Equal(t, "2024-02-02T09:30:00Z", values["timestamp"])

	var payload BaleRecorded
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &payload))
	assert.Equal(t, "SUP001", payload.Supplier)
	assert.Equal(t, entities.DecisionFail, payload.Decision)
}

func TestRedisStreamPublisher_PropagatesErrors(t *testing.T) {
	client := &fakeStreamClient{err: errors.New("connection refused")}
	pub := NewRedisStreamPublisher(client, "s", 0, nil)

	err := pub.Handle(NewEvent(ConfigUpdatedEvent, "config", nil, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Zero(t, client.calls[0].MaxLen)
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"garita/pkg/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestSinkAppendKeysByUser(t *testing.T) {
	fake := &fakeProducer{}
	sink := &Sink{client: fake, topic: "garita.audit", logger: slog.Default()}

	err := sink.Append(context.Background(), audit.Event{
		Action: audit.ActionExitRegistered,
		UserID: audit.ID(9),
	})
	require.NoError(t, err)
	require.Len(t, fake.records, 1)
	assert.Equal(t, "garita.audit", fake.records[0].Topic)
	assert.Equal(t, []byte("9"), fake.records[0].Key)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(fake.records[0].Value, &decoded))
	assert.Equal(t, audit.ActionExitRegistered, decoded.Action)
}

func TestSinkAppendNilUserHasNoKey(t *testing.T) {
	fake := &fakeProducer{}
	sink := &Sink{client: fake, topic: "garita.audit", logger: slog.Default()}

	err := sink.Append(context.Background(), audit.Event{Action: audit.ActionBadgeOverdue})
	require.NoError(t, err)
	require.Len(t, fake.records, 1)
	assert.Nil(t, fake.records[0].Key)
}

func TestSinkAppendPropagatesProduceError(t *testing.T) {
	fake := &fakeProducer{err: errors.New("broker down")}
	sink := &Sink{client: fake, topic: "garita.audit", logger: slog.Default()}

	err := sink.Append(context.Background(), audit.Event{Action: audit.ActionUserLogin})
	assert.Error(t, err)
}

func TestSinkClose(t *testing.T) {
	fake := &fakeProducer{}
	sink := &Sink{client: fake, topic: "garita.audit", logger: slog.Default()}
	sink.Close()
	assert.True(t, fake.closed)
}

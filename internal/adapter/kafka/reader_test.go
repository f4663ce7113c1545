package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher hands out queued messages, then fails with err if set or
// blocks until the fetch context ends.
type fakeFetcher struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	err       error
	committed []kafkago.Message
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return msg, nil
	}
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return kafkago.Message{}, err
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeFetcher) Close() error { return nil }

func messages(n int) []kafkago.Message {
	out := make([]kafkago.Message, n)
	for i := range out {
		out[i] = kafkago.Message{Topic: "flight-wx-requests", Offset: int64(i), Key: []byte{byte('a' + i)}}
	}
	return out
}

func newTestReader(f *fakeFetcher, flush time.Duration) *Reader {
	return &Reader{
		reader:        f,
		topic:         "flight-wx-requests",
		flushInterval: flush,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExtractBatch_FullBatch(t *testing.T) {
	f := &fakeFetcher{queue: messages(5)}
	r := newTestReader(f, time.Second)

	batch, err := r.ExtractBatch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(0), batch[0].Offset)
	assert.Equal(t, int64(2), batch[2].Offset)
	assert.Len(t, f.queue, 2, "messages past the batch size stay unfetched")
}

func TestExtractBatch_PartialBatchOnFlushDeadline(t *testing.T) {
	f := &fakeFetcher{queue: messages(2)}
	r := newTestReader(f, 20*time.Millisecond)

	start := time.Now()
	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExtractBatch_EmptyOnQuietTopic(t *testing.T) {
	r := newTestReader(&fakeFetcher{}, 10*time.Millisecond)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestExtractBatch_ParentCanceled(t *testing.T) {
	f := &fakeFetcher{queue: messages(1)}
	r := newTestReader(f, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	batch, err := r.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, batch, 1, "messages fetched before shutdown are returned")
}

func TestExtractBatch_FetchError(t *testing.T) {
	boom := errors.New("broker unreachable")
	f := &fakeFetcher{queue: messages(1), err: boom}
	r := newTestReader(f, time.Second)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch message")
	assert.Len(t, batch, 1)
}

func TestExtractBatch_CommitCallback(t *testing.T) {
	f := &fakeFetcher{queue: messages(2)}
	r := newTestReader(f, time.Second)

	batch, err := r.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.NotNil(t, batch[1].Commit)

	require.NoError(t, batch[1].Commit(context.Background()))
	require.Len(t, f.committed, 1)
	assert.Equal(t, int64(1), f.committed[0].Offset)
}

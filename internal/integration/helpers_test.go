//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
)

// startKafka runs a single-node KRaft broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("wx-trigger-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// evalNow pins every integration evaluation to the mock TAF's issue day.
var evalNow = time.Date(2026, 3, 19, 17, 30, 0, 0, time.UTC)

const mockTAF = `TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250
  FM192100 27015G25KT P6SM BKN015
  TEMPO 1922/2002 3SM -SHRA BKN008
  FM200600 30010KT P6SM SCT100`

// mockRequests builds n requests alternating between a clear arrival and
// one inside the BKN015 segment.
func mockRequests(t *testing.T, n int) [][]byte {
	t.Helper()
	out := make([][]byte, n)
	for i := range n {
		eta := "1900"
		if i%2 == 1 {
			eta = "2200"
		}
		req := domain.EvaluationRequest{
			Flight: domain.Flight{
				ID:       "f-" + strconv.Itoa(i),
				Dest:     "KDEN",
				Alt1:     "KCOS",
				ETA:      eta,
				Duration: "120",
			},
			Weather: map[string]domain.Weather{"KDEN": {TAF: mockTAF}},
		}
		data, err := json.Marshal(req)
		require.NoError(t, err)
		out[i] = data
	}
	return out
}

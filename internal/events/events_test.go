package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return r.err
}

func (r *recordingInvalidator) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestSubscriber_Handle(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"single conversation", `{"conversation_id":"CH1"}`, []string{"CH1"}},
		{"clear all", `{"conversation_id":""}`, []string{""}},
		{"from another instance", `{"conversation_id":"CH2","origin":"other"}`, []string{"CH2"}},
		{"own echo", `{"conversation_id":"CH3","origin":"self"}`, nil},
		{"malformed", `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			s := NewSubscriber(nil, "test.invalidate", "self", inv, zap.NewNop())

			s.handle(&nats.Msg{Data: []byte(tt.payload)})
			assert.Equal(t, tt.want, inv.seen())
		})
	}
}

func TestSubscriber_HandleInvalidatorError(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	s := NewSubscriber(nil, "test.invalidate", "self", inv, zap.NewNop())

	assert.NotPanics(t, func() {
		s.handle(&nats.Msg{Data: []byte(`{"conversation_id":"CH1"}`)})
	})
	assert.Equal(t, []string{"CH1"}, inv.seen())
}

func TestInvalidation_Encode(t *testing.T) {
	data, err := Invalidation{ConversationID: "CH1"}.encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"conversation_id":"CH1"}`, string(data))
}

func setupNATS(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping NATS container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func TestPublishSubscribe(t *testing.T) {
	url := setupNATS(t)
	logger := zap.NewNop()
	const subject = "wainbox.test.invalidate"

	pubConn, err := Connect(url, logger)
	require.NoError(t, err)
	t.Cleanup(pubConn.Close)

	subConn, err := Connect(url, logger)
	require.NoError(t, err)
	t.Cleanup(subConn.Close)

	local := &recordingInvalidator{}
	remote := &recordingInvalidator{}

	self := NewSubscriber(pubConn, subject, "instance-a", local, logger)
	peer := NewSubscriber(subConn, subject, "instance-b", remote, logger)
	require.NoError(t, self.Start())
	require.NoError(t, peer.Start())
	assert.ErrorIs(t, peer.Start(), ErrAlreadySubscribed)
	require.NoError(t, pubConn.Flush())
	require.NoError(t, subConn.Flush())

	publisher := NewPublisher(pubConn, subject, "instance-a")
	require.NoError(t, publisher.PublishInvalidation(context.Background(), "CH1"))

	assert.Eventually(t, func() bool {
		return len(remote.seen()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"CH1"}, remote.seen())
	assert.Empty(t, local.seen())

	require.NoError(t, self.Stop())
	require.NoError(t, peer.Stop())
}

package nats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type mockAckableMsg struct {
	mock.Mock
}

func (m *mockAckableMsg) Subject() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockAckableMsg) Data() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *mockAckableMsg) Ack() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockAckableMsg) Nak() error {
	args := m.Called()
	return args.Error(0)
}

const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func Test_handleMessage(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	testCases := []struct {
		name        string
		payload     string
		handlerErr  error
		expectAck   bool
		expectCalls int
	}{
		{
			name:        "valid message is acked",
			payload:     `{"kind":"producto","id":"1","associations_removed":2}`,
			expectAck:   true,
			expectCalls: 1,
		},
		{
			name:        "invalid message is nacked without calling the handler",
			payload:     "invalid data",
			expectCalls: 0,
		},
		{
			name:        "handler failure is nacked",
			payload:     `{"kind":"tienda","id":"9"}`,
			handlerErr:  errors.New("terminal closed"),
			expectCalls: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			msg := new(mockAckableMsg)
			msg.On("Subject").Return("catalog.productos.deleted").Once()
			msg.On("Data").Return([]byte(tc.payload)).Once()
			if tc.expectAck {
				msg.On("Ack").Return(nil).Once()
			} else {
				msg.On("Nak").Return(nil).Once()
			}
			var calls int
			handle := func(_ context.Context, subject string, data []byte) error {
				calls++
				assert.Equal(t, "catalog.productos.deleted", subject)
				assert.JSONEq(t, tc.payload, string(data))
				return tc.handlerErr
			}

			// when
			handleMessage(context.Background(), msg, handle, logger)

			// then
			msg.AssertExpectations(t)
			assert.Equal(t, tc.expectCalls, calls)
		})
	}
}

func Test_handleMessage_ExtractsTraceContext(t *testing.T) {
	// given
	otel.SetTextMapPropagator(propagation.TraceContext{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	msg := new(mockAckableMsg)
	msg.On("Subject").Return("catalog.asociaciones.created")
	msg.On("Data").Return([]byte(`{"carrier":{"traceparent":"` + traceparent + `"},"product_id":"1","store_id":"9"}`))
	msg.On("Ack").Return(nil).Once()
	var got trace.SpanContext

	// when
	handleMessage(context.Background(), msg, func(ctx context.Context, _ string, _ []byte) error {
		got = trace.SpanContextFromContext(ctx)
		return nil
	}, logger)

	// then
	msg.AssertExpectations(t)
	assert.True(t, got.IsRemote())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID().String())
}

func Test_handleMessage_NilMessage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.NotPanics(t, func() {
		handleMessage(context.Background(), nil, func(context.Context, string, []byte) error {
			t.Fatal("handler must not run")
			return nil
		}, logger)
	})
}

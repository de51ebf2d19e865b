package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "CATALOGD_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, "catalog-test", 5*time.Second)
	require.NoError(s.T(), err)
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err)
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublish_StoredInStream() {
	// given
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, "CATALOG", messaging.SubjectWildcard))
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, "CATALOG", messaging.SubjectWildcard), "second call is a no-op")
	publisher := NewNatsPublisher(s.js)
	event := events.AssociationEvent{ProductID: "p1", StoreID: "s1", At: time.Now().UTC()}

	// when
	err := publisher.Publish(s.ctx, event)

	// then
	require.NoError(s.T(), err)
	stream, err := s.js.Stream(s.ctx, "CATALOG")
	require.NoError(s.T(), err)
	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.AssociationCreatedSubject)
	require.NoError(s.T(), err)
	var got events.AssociationEvent
	require.NoError(s.T(), json.Unmarshal(msg.Data, &got))
	s.Equal("p1", got.ProductID)
	s.Equal("s1", got.StoreID)
}

func (s *PublisherSuite) TestPublish_NoStreamFails() {
	publisher := NewNatsPublisher(s.js)
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	err := publisher.Publish(ctx, stubEvent{subject: "nostream.subject"})

	s.Error(err)
}

func (s *PublisherSuite) TestSubscribe_ReceivesPublishedEvents() {
	// given
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, "CATALOG", messaging.SubjectWildcard))
	publisher := NewNatsPublisher(s.js)
	event := events.EntityDeletedEvent{Kind: "tienda", ID: "s9", Associations: 3, At: time.Now().UTC()}
	require.NoError(s.T(), publisher.Publish(s.ctx, event))
	cfg := config.SubscriberConfig{
		Subject:   messaging.StoreDeletedSubject,
		FromStart: true,
		Batch:     5,
		Timeout:   500 * time.Millisecond,
		Interval:  100 * time.Millisecond,
		Workers:   1,
	}
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	received := make(chan events.EntityDeletedEvent, 1)

	// when
	err := Subscribe(ctx, s.js, "CATALOG", cfg, func(_ context.Context, subject string, data []byte) error {
		var got events.EntityDeletedEvent
		if err := json.Unmarshal(data, &got); err != nil {
			return err
		}
		if got.ID == "s9" {
			received <- got
			cancel()
		}
		return nil
	}, s.logger)

	// then
	s.ErrorIs(err, context.Canceled)
	select {
	case got := <-received:
		s.Equal(int64(3), got.Associations)
	default:
		s.Fail("event was not delivered")
	}
}

type stubEvent struct{ subject string }

func (e stubEvent) Subject() string { return e.subject }
func (e stubEvent) Payload() ([]byte, error) { return []byte(`{}`), nil }

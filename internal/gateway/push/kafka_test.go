package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"service-shop-delivery/internal/domain"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestGateway(t *testing.T) (*KafkaGateway, *mocks.SyncProducer) {
	t.Helper()

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	p := mocks.NewSyncProducer(t, cfg)
	g := NewKafkaGateway(p, "push.notifications")
	require.NotNil(t, g)
	g.now = func() time.Time { return fixedNow }
	return g, p
}

func decodePayload(b []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(b, &p)
	return p, err
}

func TestNewKafkaGateway_NilWhenUnconfigured(t *testing.T) {
	t.Parallel()

	require.Nil(t, NewKafkaGateway(nil, "topic"))

	p := mocks.NewSyncProducer(t, nil)
	require.Nil(t, NewKafkaGateway(p, " "))
	require.NoError(t, p.Close())
}

func TestKafkaGateway_Broadcast_PublishesChannelPayload(t *testing.T) {
	t.Parallel()

	g, p := newTestGateway(t)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(b []byte) error {
		got, err := decodePayload(b)
		if err != nil {
			return err
		}
		if got.Channel != "services" || got.Title != "warning" || got.UserID != "" || !got.CreatedAt.Equal(fixedNow) {
			return errors.New("unexpected payload")
		}
		return nil
	})

	err := g.Broadcast(context.Background(), domain.TopicServices, "warning", "The Order Has been Approved by delivery")
	require.NoError(t, err)
	require.NoError(t, g.Close())
}

func TestKafkaGateway_RecordForUser_CarriesUserFields(t *testing.T) {
	t.Parallel()

	g, p := newTestGateway(t)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(b []byte) error {
		got, err := decodePayload(b)
		if err != nil {
			return err
		}
		if got.Channel != "usersU1" || got.UserID != "U1" || got.PageID != "none" || got.PageName != "refreshorderpending" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	err := g.RecordForUser(context.Background(), domain.NotificationRecord{
		Title:        "success",
		Body:         "Your order is on the way",
		TargetUserID: "U1",
		Topic:        domain.UserTopic("U1"),
		PageID:       "none",
		PageName:     "refreshorderpending",
	})
	require.NoError(t, err)
	require.NoError(t, g.Close())
}

func TestKafkaGateway_SendErrors(t *testing.T) {
	t.Parallel()

	g, p := newTestGateway(t)
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p.ExpectSendMessageAndFail(sarama.ErrMessageSizeTooLarge)

	err := g.Broadcast(context.Background(), domain.TopicDelivery, "t", "b")
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.True(t, isRetryable(err))

	err = g.Broadcast(context.Background(), domain.TopicDelivery, "t", "b")
	require.ErrorIs(t, err, sarama.ErrMessageSizeTooLarge)
	require.False(t, isRetryable(err))

	require.NoError(t, g.Close())
}

func TestKafkaGateway_CancelledContext_DoesNotPublish(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, g.Broadcast(ctx, domain.TopicServices, "t", "b"), context.Canceled)
	require.NoError(t, g.Close())
}

func TestProducerConfig_TimeoutBoundsSend(t *testing.T) {
	t.Parallel()

	cfg := producerConfig(750 * time.Millisecond)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 750*time.Millisecond, cfg.Net.DialTimeout)
	require.Equal(t, 750*time.Millisecond, cfg.Net.ReadTimeout)
	require.Equal(t, 750*time.Millisecond, cfg.Net.WriteTimeout)
	require.Equal(t, 750*time.Millisecond, cfg.Metadata.Timeout)
	require.Equal(t, 750*time.Millisecond, cfg.Producer.Timeout)
	require.True(t, cfg.Producer.Return.Successes)
	require.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	require.Zero(t, cfg.Producer.Retry.Max)
}

func TestProducerConfig_ZeroTimeoutKeepsDefaults(t *testing.T) {
	t.Parallel()

	def := sarama.NewConfig()
	cfg := producerConfig(0)
	require.NoError(t, cfg.Validate())
	require.Equal(t, def.Net.DialTimeout, cfg.Net.DialTimeout)
	require.Equal(t, def.Net.ReadTimeout, cfg.Net.ReadTimeout)
	require.Equal(t, def.Producer.Timeout, cfg.Producer.Timeout)
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const deliveryRequestJSON = `{"sales_order_id":"SO-1","operator_id":"op-7","items":[{"product_id":"P1","warehouse_id":"W1","production_date":"2024-01-15","quantity":2}]}`

// fakeGroup реализует sarama.ConsumerGroup без брокера.
type fakeGroup struct {
	consume  func(ctx context.Context) error
	errs     chan error
	closeErr error
	calls    atomic.Int32
}

func newFakeGroup(consume func(ctx context.Context) error) *fakeGroup {
	return &fakeGroup{consume: consume, errs: make(chan error, 1)}
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
	g.calls.Add(1)
	if g.consume != nil {
		return g.consume(ctx)
	}
	<-ctx.Done()
	return nil
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	close(g.errs)
	return g.closeErr
}

func (g *fakeGroup) Pause(map[string][]int32)  {}
func (g *fakeGroup) Resume(map[string][]int32) {}
func (g *fakeGroup) PauseAll()                 {}
func (g *fakeGroup) ResumeAll()                {}

type fakeSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "fulfillment-1" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

// claimOf возвращает закрытую claim с готовыми сообщениями.
func claimOf(msgs ...*sarama.ConsumerMessage) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(msgs))
	for _, msg := range msgs {
		ch <- msg
	}
	close(ch)
	return &fakeClaim{messages: ch}
}

func (c *fakeClaim) Topic() string                            { return TopicDeliveryRequests }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func requestMessage(offset int64, headers ...*sarama.RecordHeader) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:   TopicDeliveryRequests,
		Offset:  offset,
		Key:     []byte("SO-1"),
		Value:   []byte(deliveryRequestJSON),
		Headers: headers,
	}
}

func newTestConsumer(handler MessageHandler, opts ...ConsumerOption) *Consumer {
	base := []ConsumerOption{
		WithConsumerLogger(log.WithField("test", "consumer")),
		WithRetryDelay(0),
	}
	return newConsumer(nil, []string{TopicDeliveryRequests}, handler, append(base, opts...)...)
}

// failing возвращает handler, который падает first раз, а затем отвечает nil.
func failing(first int, err error) (MessageHandler, *atomic.Int32) {
	var calls atomic.Int32
	return func(context.Context, *sarama.ConsumerMessage) error {
		if int(calls.Add(1)) <= first {
			return err
		}
		return nil
	}, &calls
}

func TestNewConsumer_UnreachableBroker(t *testing.T) {
	_, err := NewConsumer([]string{"127.0.0.1:1"}, "fulfillment", []string{TopicDeliveryRequests},
		func(context.Context, *sarama.ConsumerMessage) error { return nil })
	require.Error(t, err)
}

func TestConsumer_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group := newFakeGroup(nil)
	group.errs <- errors.New("rebalance in progress")
	consumer := newConsumer(group, []string{TopicDeliveryRequests}, nil, WithConsumerLogger(log.WithField("test", "start")))

	require.NoError(t, consumer.Start(ctx))
	require.Eventually(t, func() bool { return group.calls.Load() > 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, consumer.Stop())
}

func TestConsumer_StartStopsOnClosedGroup(t *testing.T) {
	group := newFakeGroup(func(context.Context) error { return sarama.ErrClosedConsumerGroup })
	consumer := newConsumer(group, nil, nil, WithConsumerLogger(log.WithField("test", "closed")))

	require.NoError(t, consumer.Start(context.Background()))
	require.NoError(t, consumer.Stop())
	require.EqualValues(t, 1, group.calls.Load())
}

func TestConsumer_StopError(t *testing.T) {
	group := newFakeGroup(nil)
	group.closeErr = errors.New("close failed")
	consumer := newConsumer(group, nil, nil, WithConsumerLogger(log.WithField("test", "stop")))

	require.ErrorContains(t, consumer.Stop(), "close failed")
}

func TestConsumer_SetupCleanup(t *testing.T) {
	consumer := &Consumer{}
	require.NoError(t, consumer.Setup(nil))
	require.NoError(t, consumer.Cleanup(nil))
}

func TestConsumeClaim_MarksHandledMessages(t *testing.T) {
	var seen []string
	consumer := newTestConsumer(func(_ context.Context, msg *sarama.ConsumerMessage) error {
		request, err := ParseDeliveryRequest(msg)
		if err != nil {
			return err
		}
		seen = append(seen, request.SalesOrderID)
		return nil
	})

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.ConsumeClaim(session, claimOf(requestMessage(1), requestMessage(2))))
	require.Equal(t, []int64{1, 2}, session.marked)
	require.Equal(t, []string{"SO-1", "SO-1"}, seen)
}

func TestConsumeClaim_UnhandledMessageIsNotMarked(t *testing.T) {
	handler, _ := failing(10, errors.New("postgres unavailable"))
	consumer := newTestConsumer(handler, WithMaxRetries(1))

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.ConsumeClaim(session, claimOf(requestMessage(1))))
	require.Empty(t, session.marked, "without DLQ the message must be redelivered")
}

func TestConsumeClaim_StopsOnSessionDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := newTestConsumer(func(context.Context, *sarama.ConsumerMessage) error { return nil })
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage)}

	done := make(chan error, 1)
	go func() { done <- consumer.ConsumeClaim(&fakeSession{ctx: ctx}, claim) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ConsumeClaim did not return after the session ended")
	}
}

func TestHandleMessageWithRetry(t *testing.T) {
	t.Run("transient failures are retried in process", func(t *testing.T) {
		handler, calls := failing(2, errors.New("serialization failure"))
		consumer := newTestConsumer(handler, WithMaxRetries(3))

		require.NoError(t, consumer.handleMessageWithRetry(context.Background(), requestMessage(1)))
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("retry header counts towards the limit", func(t *testing.T) {
		handler, calls := failing(10, errors.New("serialization failure"))
		consumer := newTestConsumer(handler, WithMaxRetries(3))
		msg := requestMessage(1, &sarama.RecordHeader{Key: []byte(HeaderRetryCount), Value: []byte("1")})

		require.Error(t, consumer.handleMessageWithRetry(context.Background(), msg))
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("business rejection goes straight to the DLQ", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)
		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			value, _ := msg.Value.Encode()
			switch {
			case msg.Topic != TopicDeadLetterQueue:
				return fmt.Errorf("unexpected topic %s", msg.Topic)
			case string(value) != deliveryRequestJSON:
				return fmt.Errorf("dlq must carry the original request, got %s", value)
			case headerOf(msg, HeaderOriginalTopic) != TopicDeliveryRequests:
				return fmt.Errorf("missing original topic header")
			case headerOf(msg, HeaderIdempotencyKey) != "req-42":
				return fmt.Errorf("idempotency key must be preserved")
			case headerOf(msg, HeaderRetryCount) != "0":
				return fmt.Errorf("unexpected retry count %q", headerOf(msg, HeaderRetryCount))
			case headerOf(msg, HeaderFailureKind) != FailureKindPermanent:
				return fmt.Errorf("rejection must be marked permanent, got %q", headerOf(msg, HeaderFailureKind))
			}
			return nil
		})

		handler, calls := failing(10, Permanent(errors.New("insufficient stock")))
		consumer := newTestConsumer(handler, WithMaxRetries(5), WithDLQ(producer, ""))
		msg := requestMessage(1, &sarama.RecordHeader{Key: []byte(HeaderIdempotencyKey), Value: []byte("req-42")})

		require.NoError(t, consumer.handleMessageWithRetry(context.Background(), msg))
		require.EqualValues(t, 1, calls.Load(), "permanent errors are not retried")
	})

	t.Run("exhausted retries are marked transient", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)
		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if kind := headerOf(msg, HeaderFailureKind); kind != FailureKindTransient {
				return fmt.Errorf("exhausted retries must be marked transient, got %q", kind)
			}
			return nil
		})

		handler, calls := failing(10, errors.New("postgres unavailable"))
		consumer := newTestConsumer(handler, WithMaxRetries(1), WithDLQ(producer, ""))

		require.NoError(t, consumer.handleMessageWithRetry(context.Background(), requestMessage(1)))
		require.EqualValues(t, 2, calls.Load())
	})

	t.Run("exhausted retries with DLQ failure", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)
		mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		handler, _ := failing(10, errors.New("postgres unavailable"))
		consumer := newTestConsumer(handler, WithMaxRetries(0), WithDLQ(producer, "fulfillment.dlq.custom"))

		err := consumer.handleMessageWithRetry(context.Background(), requestMessage(1))
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	})

	t.Run("canceled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		handler, calls := failing(10, errors.New("postgres unavailable"))
		consumer := newTestConsumer(handler, WithMaxRetries(5))

		require.Error(t, consumer.handleMessageWithRetry(ctx, requestMessage(1)))
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestGetRetryCount(t *testing.T) {
	consumer := &Consumer{}
	for value, want := range map[string]int{"5": 5, "bad": 0, "-2": 0, "": 0} {
		msg := requestMessage(1, &sarama.RecordHeader{Key: []byte(HeaderRetryCount), Value: []byte(value)})
		require.Equal(t, want, consumer.getRetryCount(msg), "header %q", value)
	}
}

func TestFailureKind(t *testing.T) {
	require.Equal(t, FailureKindPermanent, FailureKind(fmt.Errorf("wrap: %w", Permanent(errors.New("bad date")))))
	require.Equal(t, FailureKindTransient, FailureKind(errors.New("connection refused")))

	msg := requestMessage(1, &sarama.RecordHeader{Key: []byte(HeaderFailureKind), Value: []byte(FailureKindTransient)})
	require.Equal(t, FailureKindTransient, HeaderValue(msg, HeaderFailureKind))
	require.Empty(t, HeaderValue(nil, HeaderFailureKind))
}

func TestPermanent(t *testing.T) {
	require.NoError(t, Permanent(nil))

	base := errors.New("sales order not found")
	err := fmt.Errorf("handle delivery request: %w", Permanent(base))
	require.True(t, IsPermanent(err))
	require.ErrorIs(t, err, base)
	require.False(t, IsPermanent(base))
}

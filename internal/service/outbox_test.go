package service_test

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/pkg/kafka"
	"github.com/sakashimaa/product-catalog/pkg/outbox/worker"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *IntegrationTestSuite) TestOutbox_PublishesCommittedEvents() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)
	s.Require().NoError(s.ProductService.Patch(s.Ctx, id, &domain.UpdateProductInput{
		Price:        ptr(decimal.NewFromInt(40)),
		Availability: ptr(domain.OutOfStock),
	}))

	published, err := s.Processor.ProcessBatch(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(2, published)

	messages := s.Producer.Messages()
	s.Require().Len(messages, 2)

	for _, m := range messages {
		s.Require().Equal(domain.ProductEventsTopic, m.Topic)
		s.Require().Equal(strconv.FormatInt(id, 10), m.Key)
	}

	first, ok := messages[0].Message.(map[string]any)
	s.Require().True(ok)
	s.Require().Equal(domain.EventProductCreated, first["event"])
	s.Require().Contains(first, "event_id")

	second, ok := messages[1].Message.(map[string]any)
	s.Require().True(ok)
	s.Require().Equal(domain.EventProductPatched, second["event"])

	payload, ok := second["payload"].(map[string]any)
	s.Require().True(ok)
	s.Require().Equal([]any{"availability", "price"}, payload["columns"])

	published, err = s.Processor.ProcessBatch(s.Ctx)
	s.Require().NoError(err)
	s.Require().Zero(published)
}

type countingRecorder struct {
	published int
	failed    int
}

func (r *countingRecorder) EventPublished() { r.published++ }
func (r *countingRecorder) EventFailed()    { r.failed++ }

func (s *IntegrationTestSuite) TestOutbox_FailedPublishIsRetried() {
	recorder := &countingRecorder{}
	s.Processor.WithRecorder(recorder)

	_, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	s.Producer.err = errors.New("broker unavailable")

	published, err := s.Processor.ProcessBatch(s.Ctx)
	s.Require().NoError(err)
	s.Require().Zero(published)

	var (
		attempts  int
		lastError *string
	)
	err = s.DbPool.QueryRow(s.Ctx, "SELECT attempts, last_error FROM outbox").Scan(&attempts, &lastError)
	s.Require().NoError(err)
	s.Require().Equal(1, attempts)
	s.Require().NotNil(lastError)
	s.Require().Equal("broker unavailable", *lastError)

	s.Producer.err = nil

	published, err = s.Processor.ProcessBatch(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, published)

	s.Require().Equal(1, recorder.failed)
	s.Require().Equal(1, recorder.published)
}

func (s *IntegrationTestSuite) TestOutbox_RelaysToKafka() {
	producer, err := kafka.NewProducer(s.KafkaBrokers, zap.NewNop())
	s.Require().NoError(err)
	defer producer.Close()

	processor := worker.NewOutboxProcessor(s.DbPool, s.OutboxRepo, producer, zap.NewNop(), 10, time.Second)

	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	published, err := processor.ProcessBatch(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, published)

	consumer, err := sarama.NewConsumer(s.KafkaBrokers, sarama.NewConfig())
	s.Require().NoError(err)
	defer consumer.Close()

	partitions, err := consumer.Partitions(domain.ProductEventsTopic)
	s.Require().NoError(err)
	s.Require().NotEmpty(partitions)

	for _, partition := range partitions {
		pc, err := consumer.ConsumePartition(domain.ProductEventsTopic, partition, sarama.OffsetOldest)
		s.Require().NoError(err)

		select {
		case msg := <-pc.Messages():
			s.Require().Equal(strconv.FormatInt(id, 10), string(msg.Key))

			var body map[string]any
			s.Require().NoError(json.Unmarshal(msg.Value, &body))
			s.Require().Equal(domain.EventProductCreated, body["event"])

			_ = pc.Close()
			return
		case <-time.After(10 * time.Second):
			_ = pc.Close()
		}
	}

	s.Fail("no message consumed from product_events")
}

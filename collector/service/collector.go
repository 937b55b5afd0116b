package service

import (
	"encoding/json"

	"github.com/go-errors/errors"
	logger "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"crashview/collector/cfg"
	"crashview/common/task"
)

// Publisher puts a task message on the processing queue.
type Publisher interface {
	Publish(msg []byte) error
}

type RabbitClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queue      amqp.Queue
}

func (r *RabbitClient) Publish(msg []byte) error {
	return r.channel.Publish("",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         msg,
		})
}

func (r *RabbitClient) Close() error {
	return r.connection.Close()
}

type CollectorService struct {
	publisher Publisher
}

func (s *CollectorService) AddEvent(path, eventID string) error {
	return s.publish(task.CreateEventTask(path, eventID))
}

func (s *CollectorService) AddDebugFile(path, uuid, fileType, project string) error {
	return s.publish(task.CreateDebugFileTask(path, uuid, fileType, project))
}

func (s *CollectorService) publish(t interface{}) error {
	msg, err := json.Marshal(t)
	if err != nil {
		logger.WithError(err).Error("Can't serialize message")
		return errors.Wrap(err, 0)
	}
	if err := s.publisher.Publish(msg); err != nil {
		logger.WithError(err).Error("Can't publish task")
		return errors.WrapPrefix(err, "publish task", 0)
	}
	return nil
}

func newRabbitClient(conf cfg.Config) (*RabbitClient, error) {
	conn, err := amqp.Dial(conf.RabbitServer())
	if err != nil {
		logger.WithError(err).Error("Failed to connect to RabbitMQ")
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Error("Failed to open a channel")
		conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		conf.RabbitQueue(),
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		logger.WithError(err).Error("Failed to declare a queue")
		conn.Close()
		return nil, err
	}

	return &RabbitClient{conn, ch, q}, nil
}

func NewCollector(c cfg.Config) (*CollectorService, error) {
	client, err := newRabbitClient(c)
	if err != nil {
		logger.Error("Can't connect to rabbit")
		return nil, errors.WrapPrefix(err, "Can't connect to rabbit", 0)
	}

	return &CollectorService{client}, nil
}

func NewCollectorWithPublisher(p Publisher) *CollectorService {
	return &CollectorService{p}
}

package service

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"crashview/common/data/base"
	"crashview/common/format/event"
	"crashview/common/task"
	"crashview/processor/cfg"
)

const (
	SIGHUP  = syscall.SIGHUP
	SIGTERM = syscall.SIGTERM
)

// Publisher forwards processed reports to the post-processing exchange.
type Publisher interface {
	Publish(body []byte) error
}

type RabbitClient struct {
	connection  *amqp.Connection
	taskChannel *amqp.Channel
	taskQueue   amqp.Queue
	messages    <-chan amqp.Delivery
}

type postExchange struct {
	channel  *amqp.Channel
	exchange string
}

func (e *postExchange) Publish(body []byte) error {
	return e.channel.Publish(
		e.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

type ProcessorService struct {
	config     cfg.Config
	rabbit     *RabbitClient
	post       Publisher
	sig        <-chan os.Signal
	reload     <-chan struct{}
	repository *base.Repository
	events     *EventProcessor
	debugFiles *DebugFileProcessor
	metrics    *Metrics
}

func newRabbitClient(conf cfg.Config) (*RabbitClient, error) {
	conn, err := amqp.Dial(conf.RabbitServer())
	if err != nil {
		return nil, errors.WrapPrefix(err, "Failed to connect to RabbitMQ", 0)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.WrapPrefix(err, "Failed to open a taskChannel", 0)
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
		conn.Close()
		return nil, errors.WrapPrefix(err, "Failed to declare a taskQueue", 0)
	}

	err = ch.Qos(
		1,
		0,
		false,
	)
	if err != nil {
		conn.Close()
		return nil, errors.WrapPrefix(err, "Failed to set QoS", 0)
	}

	msgs, err := ch.Consume(
		q.Name, // taskQueue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		conn.Close()
		return nil, errors.WrapPrefix(err, "Failed to register a consumer", 0)
	}

	return &RabbitClient{connection: conn,
		taskChannel: ch,
		taskQueue:   q,
		messages:    msgs,
	}, nil
}

func (p *ProcessorService) Init(ctx context.Context, config cfg.Config) error {
	p.config = config
	p.metrics = NewMetrics()

	rabbit, err := newRabbitClient(p.config)
	if err != nil {
		return err
	}
	p.rabbit = rabbit

	if err := p.createPostProcessingExchange(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, SIGHUP, SIGTERM)
	p.sig = sig

	if len(cfg.GlobalConfigPath) != 0 {
		reload, err := cfg.Watch(ctx, cfg.GlobalConfigPath)
		if err != nil {
			log.WithError(err).Warning("Can't watch configuration file")
		} else {
			p.reload = reload
		}
	}

	if err := os.MkdirAll(p.config.DebugFilesPath(), 0777); err != nil {
		return errors.WrapPrefix(err, "Can't create debug files dir", 0)
	}

	cache, err := base.NewCache(p.config.Memcache(),
		p.config.RedisAddres(),
		p.config.RedisPassword())
	if err != nil {
		return errors.WrapPrefix(err, "Can't create cache", 0)
	}

	rep, err := base.NewRepository(p.config.ElasticUrl(), cache)
	if err != nil {
		log.WithError(err).Error("Can't create repository")
		return err
	}
	if err := rep.EnsureIndex(ctx); err != nil {
		return errors.WrapPrefix(err, "Can't prepare index", 0)
	}
	p.repository = rep

	p.events = NewEventProcessor(p.repository,
		p.repository,
		base.NewGroupStore(),
		p.config.FrameBlackList(),
		p.metrics)
	p.debugFiles = NewDebugFileProcessor(p.config.DebugFilesPath(),
		p.repository,
		p.metrics)

	if addr := p.config.MetricsAddress(); addr != "" {
		go p.serveMetrics(addr)
	}

	return nil
}

func (p *ProcessorService) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.metrics.Registry(), promhttp.HandlerOpts{}))
	log.WithField("address", addr).Info("Serve metrics on")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics server stopped")
	}
}

// Loop consumes tasks until ctx is done or SIGTERM arrives.
func (p *ProcessorService) Loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-p.rabbit.messages:
			if !ok {
				log.Error("Task channel closed")
				return
			}
			if p.handleTask(ctx, msg.Body) == nil {
				msg.Ack(false)
			} else {
				msg.Nack(false, true)
			}
		case <-p.reload:
			p.reloadConfiguration()
		case sig := <-p.sig:
			if !p.handleSignal(sig) {
				return
			}
		}
	}
}

func (p *ProcessorService) Close() {
	if p.rabbit != nil {
		p.rabbit.connection.Close()
	}
}

// handleTask returns an error only when the task should be redelivered.
func (p *ProcessorService) handleTask(ctx context.Context, message []byte) error {
	t := task.FromJson(message)
	if t == nil {
		log.WithField("message", string(message)).Warning("Invalid task")
		return nil
	}

	switch t := t.(type) {
	case *task.Event:
		r, err := p.events.HandleEvent(ctx, t)
		if err != nil {
			log.WithField("task", t).WithError(err).Error("Can't process event")
			return err
		}
		p.sendNext(r)
	case *task.DebugFile:
		if err := p.debugFiles.HandleDebugFile(ctx, t); err != nil {
			log.WithField("task", t).WithError(err).Error("Can't process debug file")
			return err
		}
	}

	return nil
}

// handleSignal reports whether the loop should keep running.
func (p *ProcessorService) handleSignal(sig os.Signal) bool {
	log.WithField("signal", sig.String()).
		Info("Catch")

	switch sig {
	case SIGHUP:
		p.reloadConfiguration()
	case SIGTERM:
		return false
	}
	return true
}

func (p *ProcessorService) createPostProcessingExchange() error {
	if len(p.config.RabbitPostExchange()) == 0 {
		p.post = nil
		return nil
	}

	ch, err := p.rabbit.connection.Channel()
	if err != nil {
		return errors.WrapPrefix(err, "Failed to open a post channel", 0)
	}
	err = ch.ExchangeDeclare(
		p.config.RabbitPostExchange(),
		p.config.RabbitPostType(),
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.WrapPrefix(err, "Failed to declare an exchange", 0)
	}
	p.post = &postExchange{channel: ch, exchange: p.config.RabbitPostExchange()}
	return nil
}

func (p *ProcessorService) sendNext(report *event.Report) {
	if p.post == nil || report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		log.WithError(err).
			Error("Can't serialize report")
		return
	}

	err = p.post.Publish(data)
	if err != nil {
		log.WithError(err).
			Error("Can't send report to next stage")
	}
}

func (p *ProcessorService) reloadConfiguration() {
	cfg.GlobalConfigMutex.Lock()
	defer cfg.GlobalConfigMutex.Unlock()

	log.Info("Try to reload configuration")
	if len(cfg.GlobalConfigPath) == 0 {
		return
	}
	conf, err := cfg.FromFile(cfg.GlobalConfigPath)
	if err != nil {
		log.WithError(err).
			Error("Error reading configuration file")
		return
	}
	p.applyConfiguration(conf)
}

// applyConfiguration applies the settings that can change without reconnecting: log level and
// frame blacklist.
func (p *ProcessorService) applyConfiguration(conf cfg.Config) {
	if conf.LogLevel() != p.config.LogLevel() {
		if err := p.changeLevel(conf.LogLevel()); err != nil {
			return
		}
	}

	if !equalStrings(conf.FrameBlackList(), p.config.FrameBlackList()) {
		p.events.SetBlackList(conf.FrameBlackList())
	}

	cfg.GlobalConfig = conf
	p.config = conf
	log.Info("Reloaded configuration")
}

func (p *ProcessorService) changeLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		log.WithError(err).
			Warn("Can't parse level")
		return err
	}

	log.WithFields(log.Fields{
		"old level": p.config.LogLevel(),
		"new level": l,
	}).
		Info("Change log level")
	log.SetLevel(level)
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package service

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashview/common/data/base"
	"crashview/common/format/event"
	"crashview/common/stacktrace"
	"crashview/common/task"
	"crashview/processor/pipeline"
)

type ReportStorage interface {
	AddReport(ctx context.Context, r *event.Report) (string, error)
	GetGroup(ctx context.Context, id string) (*base.Group, error)
	SaveGroup(ctx context.Context, g *base.Group) error
}

// EventProcessor turns spooled events into stored, grouped reports.
type EventProcessor struct {
	storage  ReportStorage
	groups   *base.GroupStore
	detector *stacktrace.ProguardDetector
	metrics  *Metrics

	mu    sync.RWMutex
	pline []pipeline.Stage
}

func NewEventProcessor(storage ReportStorage, lookup stacktrace.MappingLookup, groups *base.GroupStore, blacklist []string, m *Metrics) *EventProcessor {
	if groups == nil {
		groups = base.NewGroupStore()
	}
	if m == nil {
		m = NewMetrics()
	}
	s := &EventProcessor{
		storage:  storage,
		groups:   groups,
		detector: stacktrace.NewProguardDetector(lookup),
		metrics:  m,
	}
	s.SetBlackList(blacklist)
	return s
}

// SetBlackList rebuilds the pipeline with a new signature frame blacklist.
func (s *EventProcessor) SetBlackList(blacklist []string) {
	pline := []pipeline.Stage{
		&pipeline.Title{},
		&pipeline.ThreadResolution{},
		&pipeline.RawStacktrace{},
		&pipeline.Proguard{Detector: s.detector},
		pipeline.NewRx(blacklist),
		&pipeline.SignatureAndSource{},
	}
	s.mu.Lock()
	s.pline = pline
	s.mu.Unlock()
}

// HandleEvent processes one spooled event. A nil report with a nil error means the event was
// dropped. Storage errors are returned and leave the spool file in place for redelivery.
func (s *EventProcessor) HandleEvent(ctx context.Context, t *task.Event) (*event.Report, error) {
	started := time.Now()
	defer func() {
		s.metrics.ProcessingSeconds.Observe(time.Since(started).Seconds())
	}()

	data, err := os.ReadFile(t.Path)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  t.Path,
			"error": err,
		}).Error("Can't read spooled event")
		s.metrics.EventsTotal.WithLabelValues("dropped").Inc()
		return nil, nil
	}

	ev, err := event.Parse(data)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  t.Path,
			"error": err,
		}).Warning("Can't parse spooled event")
		s.metrics.EventsTotal.WithLabelValues("dropped").Inc()
		removeFile(t.Path)
		return nil, nil
	}

	report := event.NewReport(ev, t.Time)
	report.Payload = data
	s.mu.RLock()
	pline := s.pline
	s.mu.RUnlock()
	pipeline.Run(ctx, pline, report)

	for _, d := range report.Diagnostics {
		s.metrics.DiagnosticsTotal.WithLabelValues(d.Type).Inc()
	}

	report.GroupID = base.GroupID(report.Platform, report.Signature)
	if _, err := s.storage.AddReport(ctx, report); err != nil {
		s.metrics.EventsTotal.WithLabelValues("failed").Inc()
		return nil, errors.WrapPrefix(err, "store report", 0)
	}
	if err := s.updateGroup(ctx, report); err != nil {
		// the report is stored, a redelivery would duplicate it
		log.WithFields(log.Fields{
			"group_id": report.GroupID,
			"error":    err,
		}).Error("Can't update group")
	}

	log.WithFields(log.Fields{
		"id":        report.ID,
		"platform":  report.Platform,
		"signature": report.Signature,
		"group_id":  report.GroupID,
	}).Debug("Stored report")
	s.metrics.EventsTotal.WithLabelValues("stored").Inc()
	removeFile(t.Path)
	return report, nil
}

func (s *EventProcessor) updateGroup(ctx context.Context, report *event.Report) error {
	g, ok := s.groups.Get(report.GroupID)
	if !ok {
		stored, err := s.storage.GetGroup(ctx, report.GroupID)
		if err != nil {
			return errors.WrapPrefix(err, "load group", 0)
		}
		if stored != nil {
			g = *stored
		}
	}

	g.Add(report)
	if err := s.storage.SaveGroup(ctx, &g); err != nil {
		return errors.WrapPrefix(err, "save group", 0)
	}
	s.groups.Add(g)
	return nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Warning("Can't remove file")
	}
}

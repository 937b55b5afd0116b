package service

import (
	"bufio"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-errors/errors"
	"github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"crashview/common/data/base"
	"crashview/common/format/event"
	"crashview/common/task"
)

const MappingFileName = "mapping.txt"

type DebugFileStorage interface {
	GetDebugFile(ctx context.Context, id string) (*base.DebugFile, error)
	AddDebugFile(ctx context.Context, f *base.DebugFile) error
}

// DebugFileProcessor validates uploaded ProGuard mappings and moves them into the debug file
// store.
type DebugFileProcessor struct {
	root      string
	storage   DebugFileStorage
	metrics   *Metrics
	mappingRx *regexp.Regexp
}

func NewDebugFileProcessor(root string, storage DebugFileStorage, m *Metrics) *DebugFileProcessor {
	if m == nil {
		m = NewMetrics()
	}
	return &DebugFileProcessor{
		root:    root,
		storage: storage,
		metrics: m,
		// class line: `com.example.Main -> a.b:`
		mappingRx: regexp.MustCompile(`^\S+ -> \S+:$`),
	}
}

// HandleDebugFile stores one spooled debug file. Invalid uploads are dropped; storage errors are
// returned and keep the spool file for redelivery.
func (s *DebugFileProcessor) HandleDebugFile(ctx context.Context, t *task.DebugFile) error {
	logger := log.WithFields(log.Fields{
		"uuid": t.UUID,
		"path": t.Path,
	})

	fileType := t.FileType
	if fileType == "" {
		fileType = event.ImageTypeProguard
	}
	if fileType != event.ImageTypeProguard {
		logger.WithField("type", fileType).Warning("Unsupported debug file type")
		return s.drop(t)
	}

	id, err := uuid.FromString(t.UUID)
	if err != nil {
		logger.WithError(err).Warning("Invalid debug file uuid")
		return s.drop(t)
	}

	if err := s.validateMapping(t.Path); err != nil {
		logger.WithError(err).Warning("It isn't a proguard mapping file")
		return s.drop(t)
	}

	sum, size, err := fileSha1(t.Path)
	if err != nil {
		logger.WithError(err).Error("Can't calculate sha1 for file")
		return s.drop(t)
	}

	existing, err := s.storage.GetDebugFile(ctx, id.String())
	if err != nil {
		s.metrics.DebugFilesTotal.WithLabelValues("failed").Inc()
		return errors.WrapPrefix(err, "look up debug file", 0)
	}
	if existing != nil && existing.Sha1 == sum {
		logger.Debug("Debug file already exists")
		s.metrics.DebugFilesTotal.WithLabelValues("duplicate").Inc()
		removeFile(t.Path)
		return nil
	}

	dirPath := filepath.Join(s.root, fileType, id.String())
	if err := os.MkdirAll(dirPath, 0777); err != nil {
		s.metrics.DebugFilesTotal.WithLabelValues("failed").Inc()
		return errors.WrapPrefix(err, "create debug file dir", 0)
	}
	target := filepath.Join(dirPath, MappingFileName)
	if err := os.Rename(t.Path, target); err != nil {
		s.metrics.DebugFilesTotal.WithLabelValues("failed").Inc()
		return errors.WrapPrefix(err, "move debug file", 0)
	}

	err = s.storage.AddDebugFile(ctx, &base.DebugFile{
		UUID:      id.String(),
		Type:      fileType,
		Path:      target,
		Sha1:      sum,
		Size:      size,
		Project:   t.Project,
		DateAdded: t.Time,
	})
	if err != nil {
		s.metrics.DebugFilesTotal.WithLabelValues("failed").Inc()
		// the file is already moved; put it back so a redelivery finds it
		if rerr := os.Rename(target, t.Path); rerr != nil {
			logger.WithError(rerr).Error("Can't restore spooled debug file")
		}
		return errors.WrapPrefix(err, "store debug file", 0)
	}

	logger.WithField("target", target).Info("Stored debug file")
	s.metrics.DebugFilesTotal.WithLabelValues("stored").Inc()
	return nil
}

func (s *DebugFileProcessor) drop(t *task.DebugFile) error {
	s.metrics.DebugFilesTotal.WithLabelValues("dropped").Inc()
	removeFile(t.Path)
	return nil
}

// validateMapping checks the first class line of a mapping file. Comments and blank lines are
// skipped.
func (s *DebugFileProcessor) validateMapping(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !s.mappingRx.MatchString(line) {
			return fmt.Errorf("unexpected line %q", line)
		}
		return nil
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("empty mapping file")
}

func fileSha1(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return strings.ToUpper(fmt.Sprintf("%x", h.Sum(nil))), n, nil
}

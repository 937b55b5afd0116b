// Package task holds the envelopes the collector queues for the processor.
package task

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	PROCESS_EVENT = 1 << iota
	PROCESS_DEBUG_FILE
)

// Event points at a spooled event payload.
type Event struct {
	Type    uint   `json:"type"`
	Path    string `json:"event"`
	EventID string `json:"event_id,omitempty"`
	Time    string `json:"time,omitempty"`
}

// DebugFile points at a spooled debug file upload.
type DebugFile struct {
	Type     uint   `json:"type"`
	Path     string `json:"debug_file"`
	UUID     string `json:"uuid"`
	FileType string `json:"file_type"`
	Project  string `json:"project,omitempty"`
	Time     string `json:"time,omitempty"`
}

// FromJson decodes a queued task, or returns nil for unknown or malformed messages.
func FromJson(data []byte) interface{} {
	type Test struct {
		Type uint `json:"type"`
	}

	var t Test
	if err := json.Unmarshal(data, &t); err != nil {
		log.WithError(err).Error("Can't parse task")
		return nil
	}
	switch t.Type {
	case PROCESS_EVENT:
		var e Event
		err := json.Unmarshal(data, &e)
		if err != nil {
			log.WithError(err).Error("Can't parse event task")
			return nil
		}

		if len(e.Time) == 0 {
			e.Time = getTimeStamp()
		}

		return &e
	case PROCESS_DEBUG_FILE:
		var d DebugFile
		err := json.Unmarshal(data, &d)
		if err != nil {
			log.WithError(err).Error("Can't parse debug file task")
			return nil
		}

		if len(d.Time) == 0 {
			d.Time = getTimeStamp()
		}

		return &d
	default:
		return nil
	}
}

func CreateEventTask(path, eventID string) *Event {
	return &Event{Type: PROCESS_EVENT,
		Path:    path,
		EventID: eventID,
		Time:    getTimeStamp()}
}

func CreateDebugFileTask(path, uuid, fileType, project string) *DebugFile {
	return &DebugFile{Type: PROCESS_DEBUG_FILE,
		Path:     path,
		UUID:     uuid,
		FileType: fileType,
		Project:  project,
		Time:     getTimeStamp()}
}

func getTimeStamp() string {
	t := time.Now()
	return t.Format(time.RFC3339)
}

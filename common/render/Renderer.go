// Package render turns an event into display sections, one per entry, dispatching on the entry
// type through an explicit table.
package render

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

// ErrorMessage replaces the content of a section that failed to render.
const ErrorMessage = "There was an error rendering this data."

// Context is what an entry renderer sees besides its own entry.
type Context struct {
	Event  *event.Event
	Prefs  stacktrace.DisplayPreferences
	Images []event.DebugImage

	// ThreadException is the exception entry resolved by the best thread, if any. The threads
	// section renders it and the exception section is then skipped.
	ThreadException *event.Exception
}

// EntryRenderer renders one entry. A nil section with a nil error means the entry has nothing to
// show.
type EntryRenderer func(c *Context, entry *event.Entry) (*Section, error)

type Renderer struct {
	entries map[event.EntryType]EntryRenderer
	Logger  log.FieldLogger
}

// NewRenderer returns a renderer with every known entry type registered.
func NewRenderer() *Renderer {
	r := &Renderer{
		entries: make(map[event.EntryType]EntryRenderer),
		Logger:  log.StandardLogger(),
	}
	r.Register(event.EntryException, renderException)
	r.Register(event.EntryThreads, renderThreads)
	r.Register(event.EntryStacktrace, renderStacktrace)
	r.Register(event.EntryMessage, renderData("Message"))
	r.Register(event.EntryDebugMeta, renderData("Images Loaded"))
	r.Register(event.EntryRequest, renderData("Request"))
	r.Register(event.EntryBreadcrumbs, renderData("Breadcrumbs"))
	return r
}

func (r *Renderer) Register(t event.EntryType, fn EntryRenderer) {
	r.entries[t] = fn
}

func (r *Renderer) Has(t event.EntryType) bool {
	_, ok := r.entries[t]
	return ok
}

// Render renders every entry of ev in payload order. Entries of unregistered types are skipped.
// A failing entry yields an error section and never aborts the others.
func (r *Renderer) Render(ev *event.Event, prefs stacktrace.DisplayPreferences) []Section {
	if ev == nil {
		return nil
	}
	c := &Context{
		Event:  ev,
		Prefs:  prefs,
		Images: ev.DebugImages(),
	}
	if threads := ev.Threads(); threads != nil {
		c.ThreadException = stacktrace.FindThreadException(ev, stacktrace.FindBestThread(threads.Values))
	}

	sections := make([]Section, 0, len(ev.Entries))
	for i := range ev.Entries {
		entry := &ev.Entries[i]
		fn, ok := r.entries[entry.Type]
		if !ok {
			continue
		}
		section := r.renderEntry(c, entry, fn)
		if section != nil {
			sections = append(sections, *section)
		}
	}
	return sections
}

func (r *Renderer) renderEntry(c *Context, entry *event.Entry, fn EntryRenderer) (section *Section) {
	logger := r.logger().WithFields(log.Fields{
		"event_id": c.Event.ID,
		"entry":    entry.Type,
	})
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithField("panic", rec).Error("Entry renderer panicked")
			section = errorSection(entry.Type)
		}
	}()

	if entry.DecodeErr != nil {
		logger.WithError(entry.DecodeErr).Warning("Can't decode entry")
		return errorSection(entry.Type)
	}
	section, err := fn(c, entry)
	if err != nil {
		logger.WithError(err).Warning("Can't render entry")
		return errorSection(entry.Type)
	}
	if section != nil {
		section.Type = entry.Type
	}
	return section
}

func (r *Renderer) logger() log.FieldLogger {
	if r.Logger == nil {
		return log.StandardLogger()
	}
	return r.Logger
}

func errorSection(t event.EntryType) *Section {
	return &Section{Type: t, Title: string(t), Error: ErrorMessage}
}

func unexpectedData(entry *event.Entry) error {
	return fmt.Errorf("unexpected %s entry data %T", entry.Type, entry.Data)
}

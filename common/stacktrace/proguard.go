package stacktrace

import (
	"context"
	"regexp"

	log "github.com/sirupsen/logrus"

	"crashview/common/format/event"
)

// minifiedModuleRx matches module names ProGuard/R8 produce when obfuscating: `a.b`, `a.bc`,
// `ab.c.d`, optionally followed by more segments.
var minifiedModuleRx = regexp.MustCompile(`^(([\w$]\.[\w$]{1,2})|([\w$]{2}\.[\w$]\.[\w$]))(\.|$)`)

// IsMinifiedModule reports whether a Java module name looks obfuscated.
func IsMinifiedModule(module string) bool {
	return minifiedModuleRx.MatchString(module)
}

// MappingFile is an uploaded ProGuard mapping matching a debug image uuid.
type MappingFile struct {
	UUID string
	Path string
}

// MappingLookup finds uploaded ProGuard mapping files by uuid.
type MappingLookup interface {
	FindMappingFiles(ctx context.Context, uuid string) ([]MappingFile, error)
}

const (
	missingMappingMessage = "A proguard mapping file was missing."
	misconfiguredMessage  = "Some frames appear to be minified. Did you configure the Sentry Gradle Plugin?"
)

// ProguardDetector produces ProGuard diagnostics for Java events.
type ProguardDetector struct {
	Lookup MappingLookup
	Logger log.FieldLogger
}

func NewProguardDetector(lookup MappingLookup) *ProguardDetector {
	return &ProguardDetector{Lookup: lookup, Logger: log.StandardLogger()}
}

// Check returns the ProGuard warnings for an event.
//
// When the proguard image names a uuid the SDK's Gradle plugin ran, so the only question is
// whether the mapping was uploaded. A proguard image without uuid is a broken integration and is
// logged. Otherwise the frames are scanned for obfuscated module names.
func (d *ProguardDetector) Check(ctx context.Context, ev *event.Event) []event.EventError {
	if ev == nil || ev.Platform != "java" || ev.HasError(event.ErrProguardMissingMapping) {
		return nil
	}

	var image *event.DebugImage
	images := ev.DebugImages()
	for i := range images {
		if images[i].Type == event.ImageTypeProguard {
			image = &images[i]
			break
		}
	}

	if image != nil && image.UUID != "" {
		return d.checkMapping(ctx, image.UUID)
	}

	if image != nil {
		fields := log.Fields{"event_id": ev.ID}
		if ev.SDK != nil {
			fields["offending.event.sdk.name"] = ev.SDK.Name
			fields["offending.event.sdk.version"] = ev.SDK.Version
		}
		d.logger().WithFields(fields).Warning("Event contains proguard image but not uuid")
	}

	if HasMinifiedFrames(ev) {
		return []event.EventError{{
			Type:    event.ErrProguardPotentiallyMisconfiguredPlugin,
			Message: misconfiguredMessage,
		}}
	}
	return nil
}

func (d *ProguardDetector) checkMapping(ctx context.Context, uuid string) []event.EventError {
	if d.Lookup == nil {
		return nil
	}
	files, err := d.Lookup.FindMappingFiles(ctx, uuid)
	if err != nil {
		d.logger().WithFields(log.Fields{
			"mapping_uuid": uuid,
			"error":        err,
		}).Warning("Can't look up proguard mapping files")
		return nil
	}
	if len(files) != 0 {
		return nil
	}
	return []event.EventError{{
		Type:    event.ErrProguardMissingMapping,
		Message: missingMappingMessage,
		Data:    map[string]interface{}{"mapping_uuid": uuid},
	}}
}

func (d *ProguardDetector) logger() log.FieldLogger {
	if d.Logger == nil {
		return log.StandardLogger()
	}
	return d.Logger
}

// HasMinifiedFrames scans the frames of the best thread's exception, else the best thread's own
// trace, or the exception entry when the event has no threads.
func HasMinifiedFrames(ev *event.Event) bool {
	var best *event.Thread
	if threads := ev.Threads(); threads != nil {
		best = FindBestThread(threads.Values)
	}

	if best == nil {
		return exceptionHasMinifiedFrames(ev.Exception())
	}
	if exc := FindThreadException(ev, best); exc != nil {
		return exceptionHasMinifiedFrames(exc)
	}
	return stacktraceHasMinifiedFrames(best.Stacktrace)
}

func exceptionHasMinifiedFrames(exc *event.Exception) bool {
	if exc == nil {
		return false
	}
	for i := range exc.Values {
		if stacktraceHasMinifiedFrames(exc.Values[i].Stacktrace) {
			return true
		}
	}
	return false
}

func stacktraceHasMinifiedFrames(st *event.Stacktrace) bool {
	if st == nil {
		return false
	}
	for i := range st.Frames {
		if IsMinifiedModule(st.Frames[i].Module) {
			return true
		}
	}
	return false
}

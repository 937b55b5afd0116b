package pipeline

import (
	"context"
	"regexp"

	log "github.com/sirupsen/logrus"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

// Regular Expression Descent
//
// Rx skips frames whose function or module matches a blacklist expression when picking the
// signature frame. It stops the pipeline once it found one.
type Rx struct {
	Regexps []*regexp.Regexp
}

func (r *Rx) Process(_ context.Context, report *event.Report) bool {
	if len(r.Regexps) == 0 {
		// to next stage
		return false
	}

	frames := stacktrace.ResolveTrace(&report.Event, false).Frames(false)
	frame := relevantFrame(frames, r.blacklisted)
	if frame == nil {
		// every frame is blacklisted, go to next stage
		return false
	}

	setSignature(report, frame)
	return true
}

func (r *Rx) blacklisted(frame *event.Frame) bool {
	for _, rx := range r.Regexps {
		if rx.MatchString(frame.Function) || (frame.Module != "" && rx.MatchString(frame.Module)) {
			return true
		}
	}
	return false
}

func NewRx(regs []string) *Rx {
	var rxSlice []*regexp.Regexp
	for _, reg := range regs {
		rx, err := regexp.Compile(reg)
		log.WithField("regexp", reg).
			Debug("Rx stage: compile regexp")
		if err == nil {
			rxSlice = append(rxSlice, rx)
		} else {
			log.WithError(err).
				Error("Can't compile regular expression")
		}
	}

	return &Rx{
		Regexps: rxSlice,
	}
}

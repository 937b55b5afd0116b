package stacktrace

import (
	"net/url"
	"strconv"
	"strings"
)

type StackView string

const (
	ViewApp  StackView = "app"
	ViewFull StackView = "full"
	ViewRaw  StackView = "raw"
)

type StackType string

const (
	TypeOriginal StackType = "original"
	TypeMinified StackType = "minified"
)

// DisplayPreferences carries every stack trace display toggle in one value.
type DisplayPreferences struct {
	View                 StackView
	Type                 StackType
	NewestFirst          bool
	ShowAbsoluteAddress  bool
	ShowFullFunctionName bool
	// MaxDepth keeps only the innermost rows when positive.
	MaxDepth int
	// GroupingCurrentLevel forces frames whose minGroupingLevel is at or below it to show.
	GroupingCurrentLevel *int
	// ExpandedRuns marks native boundary frames (by frame index) whose hidden run is expanded.
	ExpandedRuns map[int]bool
}

func DefaultPreferences() DisplayPreferences {
	return DisplayPreferences{
		View:        ViewApp,
		Type:        TypeOriginal,
		NewestFirst: true,
	}
}

func (p DisplayPreferences) IncludeSystemFrames() bool {
	return p.View == ViewFull
}

func (p DisplayPreferences) Minified() bool {
	return p.Type == TypeMinified
}

// WithExpandedRun returns a copy with the run ending at frame index idx toggled.
func (p DisplayPreferences) WithExpandedRun(idx int, expanded bool) DisplayPreferences {
	runs := make(map[int]bool, len(p.ExpandedRuns)+1)
	for k, v := range p.ExpandedRuns {
		runs[k] = v
	}
	runs[idx] = expanded
	p.ExpandedRuns = runs
	return p
}

// ParsePreferences reads display toggles from query parameters. Unknown or malformed values
// keep their defaults.
//
//	view=app|full|raw type=original|minified newest_first=bool absolute_addresses=bool
//	full_function_names=bool max_depth=int grouping_level=int expanded=1,5,9
func ParsePreferences(q url.Values) DisplayPreferences {
	p := DefaultPreferences()
	switch StackView(q.Get("view")) {
	case ViewApp, ViewFull, ViewRaw:
		p.View = StackView(q.Get("view"))
	}
	switch StackType(q.Get("type")) {
	case TypeOriginal, TypeMinified:
		p.Type = StackType(q.Get("type"))
	}
	p.NewestFirst = parseBool(q.Get("newest_first"), p.NewestFirst)
	p.ShowAbsoluteAddress = parseBool(q.Get("absolute_addresses"), false)
	p.ShowFullFunctionName = parseBool(q.Get("full_function_names"), false)
	if n, err := strconv.Atoi(q.Get("max_depth")); err == nil && n > 0 {
		p.MaxDepth = n
	}
	if n, err := strconv.Atoi(q.Get("grouping_level")); err == nil {
		p.GroupingCurrentLevel = &n
	}
	if raw := q.Get("expanded"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if idx, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				p = p.WithExpandedRun(idx, true)
			}
		}
	}
	return p
}

func parseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package stacktrace

import (
	"strconv"
	"strings"

	"crashview/common/format/event"
	"crashview/common/utils"
)

type frameFormatter func(frame *event.Frame, idx int) string

// frameFormatters maps a platform onto its native traceback line format. Platforms missing
// from the table use the python format.
var frameFormatters = map[string]frameFormatter{
	"javascript": func(f *event.Frame, _ int) string { return javaScriptFrame(f) },
	"node":       func(f *event.Frame, _ int) string { return javaScriptFrame(f) },
	"ruby":       func(f *event.Frame, _ int) string { return rubyFrame(f) },
	"php":        phpFrame,
	"python":     func(f *event.Frame, _ int) string { return pythonFrame(f) },
	"java":       func(f *event.Frame, _ int) string { return javaFrame(f) },
	"objc":       func(f *event.Frame, _ int) string { return nativeFrame(f) },
	"cocoa":      func(f *event.Frame, _ int) string { return nativeFrame(f) },
	"native":     func(f *event.Frame, _ int) string { return nativeFrame(f) },
}

// FormatFrame renders one frame. The frame's own platform overrides the given one.
func FormatFrame(frame *event.Frame, idx int, platform string) string {
	if frame.Platform != "" {
		platform = frame.Platform
	}
	if format, ok := frameFormatters[platform]; ok {
		return format(frame, idx)
	}
	return pythonFrame(frame)
}

// RawContent renders a stack trace as the text of the platform's native traceback. Frames are
// listed newest first except for python, whose tracebacks already read oldest first. When an
// exception is given its `Type: value` line heads the text.
func RawContent(st *event.Stacktrace, platform string, exception *event.ExceptionValue) string {
	var lines []string
	if st != nil {
		lines = make([]string, 0, len(st.Frames)+1)
		// php numbers frames from the innermost one
		for i := range st.Frames {
			lines = append(lines, FormatFrame(&st.Frames[i], len(st.Frames)-1-i, platform))
		}
	}
	if platform != "python" {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	if exception != nil {
		lines = append([]string{preamble(exception, platform)}, lines...)
	}
	return strings.Join(lines, "\n")
}

// RawExceptionContent renders every exception value, separated by blank lines.
func RawExceptionContent(exc *event.Exception, platform string, minified bool) string {
	if exc == nil {
		return ""
	}
	parts := make([]string, 0, len(exc.Values))
	for i := range exc.Values {
		v := &exc.Values[i]
		parts = append(parts, RawContent(ValueStacktrace(v, minified), platform, v))
	}
	return strings.Join(parts, "\n\n")
}

// RawTraceContent renders the authoritative trace of an event as text.
func RawTraceContent(ev *event.Event, minified bool) string {
	trace := ResolveTrace(ev, minified)
	if trace.Exception != nil {
		return RawExceptionContent(trace.Exception, ev.Platform, minified)
	}
	return RawContent(trace.Stacktrace, ev.Platform, nil)
}

func preamble(exc *event.ExceptionValue, platform string) string {
	line := exc.Type
	if exc.Value != "" {
		line += ": " + utils.Trim(exc.Value)
	}
	if platform == "java" && exc.Module != "" {
		line = exc.Module + "." + line
	}
	return line
}

func writeLineCol(b *strings.Builder, f *event.Frame) {
	if line, ok := f.Line(); ok {
		b.WriteString(":" + strconv.Itoa(line))
	}
	if col, ok := f.Column(); ok {
		b.WriteString(":" + strconv.Itoa(col))
	}
}

func javaScriptFrame(f *event.Frame) string {
	var b strings.Builder
	if f.Function != "" {
		b.WriteString("  at " + f.Function + "(")
	} else {
		b.WriteString("  at ? (")
	}
	if f.Filename != "" {
		b.WriteString(f.Filename)
	} else if f.Module != "" {
		b.WriteString(f.Module)
	}
	writeLineCol(&b, f)
	b.WriteString(")")
	return b.String()
}

func rubyFrame(f *event.Frame) string {
	var b strings.Builder
	b.WriteString("  from ")
	switch {
	case f.Filename != "":
		b.WriteString(f.Filename)
	case f.Module != "":
		b.WriteString("(" + f.Module + ")")
	default:
		b.WriteString("?")
	}
	writeLineCol(&b, f)
	if f.Function != "" {
		b.WriteString(":in `" + f.Function + "'")
	}
	return b.String()
}

func phpFrame(f *event.Frame, idx int) string {
	function := f.Function
	if function == "" || function == "null" {
		function = "{main}"
	}
	location := f.Filename
	if location == "" {
		location = f.Module
	}
	line := ""
	if f.LineNo != nil {
		line = strconv.Itoa(*f.LineNo)
	}
	return "#" + strconv.Itoa(idx) + " " + location + "(" + line + "): " + function
}

func pythonFrame(f *event.Frame) string {
	var b strings.Builder
	switch {
	case f.Filename != "":
		b.WriteString(`  File "` + f.Filename + `"`)
	case f.Module != "":
		b.WriteString(`  Module "` + f.Module + `"`)
	default:
		b.WriteString("  ?")
	}
	if line, ok := f.Line(); ok {
		b.WriteString(", line " + strconv.Itoa(line))
	}
	if col, ok := f.Column(); ok {
		b.WriteString(", col " + strconv.Itoa(col))
	}
	if f.Function != "" {
		b.WriteString(", in " + f.Function)
	}
	if line, ok := f.Line(); ok {
		for _, ctx := range f.Context {
			if ctx.Line == line {
				b.WriteString("\n    " + strings.TrimSpace(ctx.Text))
			}
		}
	}
	return b.String()
}

func javaFrame(f *event.Frame) string {
	var b strings.Builder
	b.WriteString("    at")
	if f.Module != "" {
		b.WriteString(" " + f.Module + ".")
	}
	b.WriteString(f.Function)
	if f.Filename != "" {
		b.WriteString("(" + f.Filename)
		if line, ok := f.Line(); ok {
			b.WriteString(":" + strconv.Itoa(line))
		}
		b.WriteString(")")
	}
	return b.String()
}

func nativeFrame(f *event.Frame) string {
	var b strings.Builder
	b.WriteString("  ")
	if f.Package != "" {
		b.WriteString(utils.LeftJust(utils.TrimPackage(f.Package), 20))
	}
	if f.InstructionAddr != "" {
		b.WriteString(utils.LeftJust(f.InstructionAddr, 12))
	}
	function := f.Function
	if function == "" {
		function = f.SymbolAddr
	}
	b.WriteString(" " + function)
	if f.Filename != "" {
		b.WriteString(" (" + f.Filename)
		if line, ok := f.Line(); ok && line > 0 {
			b.WriteString(":" + strconv.Itoa(line))
		}
		b.WriteString(")")
	}
	return b.String()
}

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"crashview/common/render"
	"crashview/common/stacktrace"
)

const (
	VIEW         = `view`
	TYPE         = `type`
	NEWEST_FIRST = `newest_first`
	ABSOLUTE     = `absolute_addresses`
	FULL_NAMES   = `full_function_names`
	MAX_DEPTH    = `max_depth`
	RAW          = `raw`
)

func RenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render an event file as display sections",
		ArgsUsage: "[event.json|-]",
		Action:    renderEvent,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: VIEW, Value: string(stacktrace.ViewApp), Usage: "app, full or raw"},
			&cli.StringFlag{Name: TYPE, Value: string(stacktrace.TypeOriginal), Usage: "original or minified"},
			&cli.BoolFlag{Name: NEWEST_FIRST, Value: true},
			&cli.BoolFlag{Name: ABSOLUTE},
			&cli.BoolFlag{Name: FULL_NAMES},
			&cli.IntFlag{Name: MAX_DEPTH},
			&cli.BoolFlag{Name: RAW, Usage: "print the raw text of the event's trace instead"},
		},
	}
}

// preferences reads the display flags through the same parser the HTTP API uses.
func preferences(c *cli.Context) stacktrace.DisplayPreferences {
	q := url.Values{}
	q.Set(VIEW, c.String(VIEW))
	q.Set(TYPE, c.String(TYPE))
	q.Set(NEWEST_FIRST, strconv.FormatBool(c.Bool(NEWEST_FIRST)))
	q.Set(ABSOLUTE, strconv.FormatBool(c.Bool(ABSOLUTE)))
	q.Set(FULL_NAMES, strconv.FormatBool(c.Bool(FULL_NAMES)))
	if c.Int(MAX_DEPTH) > 0 {
		q.Set(MAX_DEPTH, strconv.Itoa(c.Int(MAX_DEPTH)))
	}
	return stacktrace.ParsePreferences(q)
}

func renderEvent(c *cli.Context) error {
	ev, err := readEvent(c)
	if err != nil {
		return err
	}
	prefs := preferences(c)

	if c.Bool(RAW) {
		_, err = fmt.Fprintln(c.App.Writer, stacktrace.RawTraceContent(ev, prefs.Type == stacktrace.TypeMinified))
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(render.NewRenderer().Render(ev, prefs))
}

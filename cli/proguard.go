package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"crashview/common/stacktrace"
)

const (
	LOOKUP = `lookup`
)

func ProguardCommand() *cli.Command {
	return &cli.Command{
		Name:      "proguard",
		Usage:     "report minified frames and missing mapping files of a java event",
		ArgsUsage: "[event.json|-]",
		Action:    checkProguard,
		Flags: append([]cli.Flag{
			urlFlag(),
			&cli.BoolFlag{
				Name:  LOOKUP,
				Usage: "look up uploaded mapping files in elasticsearch",
			},
		}, cacheFlags()...),
	}
}

func checkProguard(c *cli.Context) error {
	ev, err := readEvent(c)
	if err != nil {
		return err
	}

	detector := stacktrace.NewProguardDetector(nil)
	if c.Bool(LOOKUP) {
		repo, err := openRepository(c)
		if err != nil {
			return err
		}
		detector.Lookup = repo
	}

	fmt.Fprintf(c.App.Writer, "minified frames: %t\n", stacktrace.HasMinifiedFrames(ev))
	for _, diag := range detector.Check(context.Background(), ev) {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", diag.Type, diag.Message)
	}
	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"crashview/common/stacktrace"
)

func ThreadsCommand() *cli.Command {
	return &cli.Command{
		Name:      "threads",
		Usage:     "list the threads of an event, marking the one shown by default",
		ArgsUsage: "[event.json|-]",
		Action:    listThreads,
	}
}

func listThreads(c *cli.Context) error {
	ev, err := readEvent(c)
	if err != nil {
		return err
	}
	threads := ev.Threads()
	if threads == nil || len(threads.Values) == 0 {
		_, err = fmt.Fprintln(c.App.Writer, "no threads")
		return err
	}

	best := stacktrace.FindBestThread(threads.Values)
	for i := range threads.Values {
		t := &threads.Values[i]
		marker := " "
		if t == best {
			marker = "*"
		}

		fields := []string{marker, "#" + string(t.ID)}
		if t.Name != "" {
			fields = append(fields, t.Name)
		}
		if state := stacktrace.ThreadState(t.State); state != "" {
			fields = append(fields, "["+string(state)+"]")
		}
		if t.Crashed {
			fields = append(fields, "crashed")
		}
		if reason := stacktrace.LockReason(t.HeldLocks); reason != "" {
			fields = append(fields, "("+reason+")")
		}
		if _, err := fmt.Fprintln(c.App.Writer, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}

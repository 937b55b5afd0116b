package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"crashview/common/data/base"
	"crashview/common/stacktrace"
)

const (
	AGE     = `older`
	PROJECT = `project`
	SIZE    = `count`
	SHOW    = `show_only`
)

type repository interface {
	stacktrace.MappingLookup
	SearchDebugFiles(ctx context.Context, filter base.DebugFileFilter) ([]base.DebugFile, error)
	DeleteDebugFile(ctx context.Context, id string) error
}

type Callback func(c *cli.Context, repo repository) error

var rmCallbacks = map[string]Callback{
	"debug-files": rmDebugFiles,
}

func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "remove stored data older than a given age",
		ArgsUsage: "debug-files",
		Action:    remove,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  AGE,
				Value: "16d",
			},
			&cli.StringFlag{
				Name:  PROJECT,
				Value: ".*autotests", //Regular expression
			},
			urlFlag(),
			&cli.IntFlag{
				Name:  SIZE,
				Value: 1000,
			},
			&cli.BoolFlag{
				Name: SHOW,
			},
		}, cacheFlags()...),
	}
}

func remove(c *cli.Context) error {
	if c.NArg() == 0 {
		fmt.Fprintln(c.App.Writer, "Empty task, available values:\n\tdebug-files")
		return fmt.Errorf("Empty task")
	}

	task := c.Args().First()
	cb, ok := rmCallbacks[task]
	if !ok {
		fmt.Fprintf(c.App.Writer, "Unknown task %s\n", task)
		return fmt.Errorf("Unknown task %s", task)
	}

	repo, err := openRepository(c)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"url":   c.String(URL),
		}).Error("Can't create ElasticSearch client")
		return err
	}
	return cb(c, repo)
}

func rmDebugFiles(c *cli.Context, repo repository) error {
	ctx := context.Background()
	files, err := repo.SearchDebugFiles(ctx, base.DebugFileFilter{
		OlderThan: c.String(AGE),
		Project:   c.String(PROJECT),
		Size:      c.Int(SIZE),
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if c.Bool(SHOW) {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\n", f.UUID, f.Project, f.DateAdded, f.Path)
			continue
		}

		if err := repo.DeleteDebugFile(ctx, f.UUID); err != nil {
			log.WithFields(log.Fields{
				"error": err,
				"uuid":  f.UUID,
			}).Error("Can't remove document in Elastic")
			return err
		}

		// mapping files live alone in a directory named after their uuid
		if err := os.RemoveAll(filepath.Dir(f.Path)); err != nil {
			log.WithFields(log.Fields{
				"error": err,
				"path":  f.Path,
			}).Error("Can't remove directory")
			return err
		}

		log.WithFields(log.Fields{
			"uuid":    f.UUID,
			"project": f.Project,
			"path":    f.Path,
		}).Info("Removed debug file")
	}
	return nil
}

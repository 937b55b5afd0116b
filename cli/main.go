package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"crashview/common/data/base"
	"crashview/common/format/event"
)

const (
	URL            = `url`
	MEMCACHE       = `memcache`
	REDIS          = `redis`
	REDIS_PASSWORD = `redis_password`
)

var Version string

func init() {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "crashview-cli",
		Usage:   "command line utils for crashview",
		Version: Version,
		Commands: []*cli.Command{
			RenderCommand(),
			ThreadsCommand(),
			ProguardCommand(),
			RemoveCommand(),
		},
	}
}

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  URL,
		Usage: "elasticsearch address",
		Value: "http://127.0.0.1:9200",
	}
}

// cacheFlags select the mapping cache the processor uses, so removals evict its entries.
func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: MEMCACHE, Usage: "memcache servers"},
		&cli.StringFlag{Name: REDIS, Usage: "redis address"},
		&cli.StringFlag{Name: REDIS_PASSWORD},
	}
}

var openRepository = func(c *cli.Context) (repository, error) {
	cache, err := base.NewCache(c.StringSlice(MEMCACHE), c.String(REDIS), c.String(REDIS_PASSWORD))
	if err != nil {
		return nil, err
	}
	return base.NewRepository(c.String(URL), cache)
}

// readEvent parses the event named by the first argument, or standard input when the
// argument is missing or "-".
func readEvent(c *cli.Context) (*event.Event, error) {
	var (
		data []byte
		err  error
	)
	path := c.Args().First()
	if path == "" || path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return event.Parse(data)
}

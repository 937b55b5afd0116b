package cfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const jsonConfig = `{
  "debug_files_pathname": "/var/lib/crashview/debug-files",
  "rabbit_cfg": {"server": "amqp://localhost", "queue": "crashview", "post-exchange": "reports", "post-type": "fanout"},
  "cache": {"redis": {"address": "localhost:6379"}},
  "elastic": "http://localhost:9200",
  "log": {"level": "debug"},
  "frame_blacklist": ["^java\\.lang\\."]
}`

const yamlConfig = `
debug_files_pathname: /var/lib/crashview/debug-files
rabbit_cfg:
  server: amqp://localhost
  queue: crashview
cache:
  memcache: ["127.0.0.1:11211"]
elastic: http://localhost:9200
frame_blacklist:
  - ^dalvik\.
metrics_addr: ":9102"
`

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFileJSON(t *testing.T) {
	c, err := FromFile(writeConfig(t, "processor.json", jsonConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.DebugFilesPath() != "/var/lib/crashview/debug-files" || c.RabbitPostExchange() != "reports" {
		t.Errorf("config = %+v", c)
	}
	if c.RedisAddres() != "localhost:6379" || len(c.Memcache()) != 0 || c.LogLevel() != "debug" {
		t.Errorf("cache/log = %+v", c)
	}
	if bl := c.FrameBlackList(); len(bl) != 1 || bl[0] != `^java\.lang\.` {
		t.Errorf("blacklist = %v", bl)
	}
}

func TestFromFileYAML(t *testing.T) {
	c, err := FromFile(writeConfig(t, "processor.yaml", yamlConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.RabbitQueue() != "crashview" || c.MetricsAddress() != ":9102" {
		t.Errorf("config = %+v", c)
	}
	if m := c.Memcache(); len(m) != 1 || m[0] != "127.0.0.1:11211" {
		t.Errorf("memcache = %v", m)
	}
	if c.LogLevel() != "info" {
		t.Errorf("default log level = %q", c.LogLevel())
	}
}

func TestFromFileValidates(t *testing.T) {
	for name, body := range map[string]string{
		"no-path.json":   `{"rabbit_cfg": {"server": "amqp://x", "queue": "q"}}`,
		"no-rabbit.json": `{"debug_files_pathname": "/tmp"}`,
		"broken.json":    `{`,
	} {
		if _, err := FromFile(writeConfig(t, name, body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("missing file should fail")
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "processor.json", jsonConfig)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(jsonConfig), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

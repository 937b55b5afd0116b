package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFile(t *testing.T) {
	c, err := FromFile(writeConfig(t, "collector.yml", `
temprory_dirs:
  debug_files: /tmp/debug-files
  events: /tmp/events
web_server:
  port: 9000
monitoring:
  enable: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Port() != 9000 || c.EventsTmpDir() != "/tmp/events" || c.DebugFilesTmpDir() != "/tmp/debug-files" {
		t.Errorf("config = %+v", c)
	}
	if !c.MonitoringEnable() || c.MetricsPath() != "/metrics" {
		t.Errorf("monitoring = %v %q", c.MonitoringEnable(), c.MetricsPath())
	}
	if c.MaxEventSize() != defaultMaxEventSize || c.LogLevel() != "info" {
		t.Errorf("defaults = %d %q", c.MaxEventSize(), c.LogLevel())
	}

	c, err = FromFile(writeConfig(t, "collector.json",
		`{"temprory_dirs": {"debug_files": "/a", "events": "/b"}, "web_server": {"max_event_size": 1024}, "log": {"level": "warn"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxEventSize() != 1024 || c.LogLevel() != "warn" || c.Port() != 0 {
		t.Errorf("config = %+v", c)
	}
}

func TestFromFileValidates(t *testing.T) {
	if _, err := FromFile(writeConfig(t, "c.json", `{"temprory_dirs": {"events": "/b"}}`)); err == nil {
		t.Errorf("missing debug files dir should fail")
	}
	if _, err := FromFile(writeConfig(t, "c.json", `{"temprory_dirs": {"debug_files": "/a"}}`)); err == nil {
		t.Errorf("missing events dir should fail")
	}
}

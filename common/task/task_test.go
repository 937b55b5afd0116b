package task

import (
	"encoding/json"
	"testing"
)

func TestFromJson(t *testing.T) {
	data, err := json.Marshal(CreateEventTask("/spool/e1.json", "e1"))
	if err != nil {
		t.Fatal(err)
	}
	ev, ok := FromJson(data).(*Event)
	if !ok || ev.Path != "/spool/e1.json" || ev.EventID != "e1" || ev.Time == "" {
		t.Fatalf("event task = %+v", ev)
	}

	data, err = json.Marshal(CreateDebugFileTask("/spool/m.txt", "u-1", "proguard", "android"))
	if err != nil {
		t.Fatal(err)
	}
	df, ok := FromJson(data).(*DebugFile)
	if !ok || df.UUID != "u-1" || df.FileType != "proguard" || df.Project != "android" {
		t.Fatalf("debug file task = %+v", df)
	}
}

func TestFromJsonFillsTime(t *testing.T) {
	ev, ok := FromJson([]byte(`{"type": 1, "event": "/spool/e.json"}`)).(*Event)
	if !ok || ev.Time == "" {
		t.Fatalf("event task = %+v", ev)
	}
}

func TestFromJsonRejects(t *testing.T) {
	for _, msg := range []string{`{"type": 64}`, `not json`, `{"type": 2, "uuid": 5}`} {
		if v := FromJson([]byte(msg)); v != nil {
			t.Errorf("FromJson(%s) = %+v, want nil", msg, v)
		}
	}
}

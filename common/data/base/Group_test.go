package base

import (
	"sync"
	"testing"

	"crashview/common/format/event"
)

func report(id, signature, date string) *event.Report {
	r := event.NewReport(&event.Event{ID: id, Platform: "java", Title: "E: " + id}, date)
	r.Signature = signature
	r.Culprit = "com.example in " + signature
	return r
}

func TestGroupID(t *testing.T) {
	a := GroupID("java", "onCreate")
	if a != GroupID("java", "onCreate") {
		t.Fatalf("group id is not stable")
	}
	if a == GroupID("python", "onCreate") || a == GroupID("java", "onResume") {
		t.Fatalf("group ids collide")
	}
}

func TestGroupAdd(t *testing.T) {
	var g Group
	g.Add(report("r1", "onCreate", "2024-01-01T00:00:00Z"))
	g.Add(report("r2", "onCreate", "2024-01-02T00:00:00Z"))

	if g.ID != GroupID("java", "onCreate") || g.Count != 2 {
		t.Fatalf("group = %+v", g)
	}
	if g.FirstSeen != "2024-01-01T00:00:00Z" || g.LastSeen != "2024-01-02T00:00:00Z" {
		t.Errorf("seen = %s..%s", g.FirstSeen, g.LastSeen)
	}
	if g.LastReportID != "r2" || g.Title != "E: r2" {
		t.Errorf("latest report not applied: %+v", g)
	}
}

func TestGroupStore(t *testing.T) {
	s := NewGroupStore()
	var seen []string
	stop := s.Listen(func(g Group) { seen = append(seen, g.ID) })

	s.Add(Group{ID: "a", LastSeen: "2024-01-01"})
	s.Add(Group{ID: "b", LastSeen: "2024-01-03"})
	s.Add(Group{ID: "a", LastSeen: "2024-01-02", Count: 5})

	if g, ok := s.Get("a"); !ok || g.Count != 5 {
		t.Fatalf("last writer should win, got %+v", g)
	}
	items := s.Items()
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("items = %+v", items)
	}
	if len(seen) != 3 {
		t.Fatalf("listener calls = %v", seen)
	}

	stop()
	s.Add(Group{ID: "c"})
	if len(seen) != 3 {
		t.Fatalf("listener still called after unregistering")
	}

	if !s.Remove("a") || s.Remove("a") {
		t.Fatalf("Remove should report presence once")
	}
	s.Reset()
	if len(s.Items()) != 0 {
		t.Fatalf("Reset left %v", s.Items())
	}
}

func TestGroupStoreConcurrent(t *testing.T) {
	s := NewGroupStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(Group{ID: "g", Count: uint64(j)})
				s.Get("g")
				s.Items()
			}
		}(i)
	}
	wg.Wait()
	if _, ok := s.Get("g"); !ok {
		t.Fatalf("group missing")
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewCache(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("k"); err != ErrCacheMiss {
		t.Fatalf("expected miss, got %v", err)
	}
	c.Set("k", "v")
	if v, err := c.Get("k"); err != nil || v != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	c.Delete("k")
	if _, err := c.Get("k"); err != ErrCacheMiss {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

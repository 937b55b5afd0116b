package base

import (
	"sort"
	"sync"

	"github.com/satori/go.uuid"

	"crashview/common/format/event"
)

var groupNamespace = uuid.NewV5(uuid.NamespaceURL, "crashview/group")

// Group aggregates reports sharing a platform and signature.
type Group struct {
	ID           string `json:"id"`
	Signature    string `json:"signature"`
	Title        string `json:"title"`
	Culprit      string `json:"culprit"`
	Platform     string `json:"platform"`
	Count        uint64 `json:"count"`
	FirstSeen    string `json:"first_seen"`
	LastSeen     string `json:"last_seen"`
	LastReportID string `json:"last_report_id"`
}

// GroupID is the stable id of the group a signature falls into.
func GroupID(platform, signature string) string {
	return uuid.NewV5(groupNamespace, platform+"\n"+signature).String()
}

// Add counts a report into the group. Title and culprit follow the latest report.
func (g *Group) Add(r *event.Report) {
	if g.ID == "" {
		g.ID = GroupID(r.Platform, r.Signature)
		g.Signature = r.Signature
		g.Platform = r.Platform
	}
	if g.FirstSeen == "" {
		g.FirstSeen = r.DateAdded
	}
	g.Count++
	g.Title = r.Title
	g.Culprit = r.Culprit
	g.LastSeen = r.DateAdded
	g.LastReportID = r.ID
}

type GroupListener func(g Group)

// GroupStore keeps recently seen groups in memory. Writes replace the stored value; the last
// writer wins.
type GroupStore struct {
	mu        sync.RWMutex
	items     map[string]Group
	listeners map[int]GroupListener
	nextID    int
}

func NewGroupStore() *GroupStore {
	return &GroupStore{
		items:     make(map[string]Group),
		listeners: make(map[int]GroupListener),
	}
}

func (s *GroupStore) Add(g Group) {
	s.mu.Lock()
	s.items[g.ID] = g
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(g)
	}
}

func (s *GroupStore) Get(id string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.items[id]
	return g, ok
}

func (s *GroupStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *GroupStore) Reset() {
	s.mu.Lock()
	s.items = make(map[string]Group)
	s.mu.Unlock()
}

// Items returns the stored groups, most recently seen first.
func (s *GroupStore) Items() []Group {
	s.mu.RLock()
	items := make([]Group, 0, len(s.items))
	for _, g := range s.items {
		items = append(items, g)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].LastSeen != items[j].LastSeen {
			return items[i].LastSeen > items[j].LastSeen
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Listen registers fn to be called after every Add. The returned func unregisters it.
func (s *GroupStore) Listen(fn GroupListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *GroupStore) snapshotListeners() []GroupListener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]GroupListener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

package base

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/olivere/elastic.v5"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

const (
	IndexName     = "crashview"
	reportType    = "report"
	debugFileType = "debug_file"
	groupType     = "group"

	mappingKeyPrefix = "mapping:"
)

const indexMapping = `{
  "mappings": {
    "report": {"properties": {
      "id": {"type": "keyword"},
      "platform": {"type": "keyword"},
      "group_id": {"type": "keyword"},
      "signature": {"type": "keyword"},
      "date_added": {"type": "date"},
      "entries": {"type": "object", "enabled": false},
      "payload": {"type": "object", "enabled": false}
    }},
    "debug_file": {"properties": {
      "uuid": {"type": "keyword"},
      "type": {"type": "keyword"},
      "project": {"type": "keyword"},
      "sha1": {"type": "keyword"},
      "date_added": {"type": "date"}
    }},
    "group": {"properties": {
      "id": {"type": "keyword"},
      "platform": {"type": "keyword"},
      "signature": {"type": "keyword"},
      "first_seen": {"type": "date"},
      "last_seen": {"type": "date"}
    }}
  }
}`

// DebugFile is an uploaded debug information file. Only ProGuard mappings are stored today.
type DebugFile struct {
	UUID      string `json:"uuid"`
	Type      string `json:"type"`
	Path      string `json:"path"`
	Sha1      string `json:"sha1"`
	Size      int64  `json:"size"`
	Project   string `json:"project,omitempty"`
	DateAdded string `json:"date_added"`
}

// DebugFileFilter selects debug files for maintenance. OlderThan is an elastic date math
// duration such as "16d"; Project is a regular expression.
type DebugFileFilter struct {
	OlderThan string
	Project   string
	Size      int
}

type Repository struct {
	db    *elastic.Client
	cache Cashe
}

func (r *Repository) EnsureIndex(ctx context.Context) error {
	exists, err := r.db.IndexExists(IndexName).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = r.db.CreateIndex(IndexName).BodyString(indexMapping).Do(ctx)
	if err != nil {
		log.WithError(err).Error("Can't create index")
	}
	return err
}

// AddReport stores a processed report under its event id, or a fresh id when it has none.
func (r *Repository) AddReport(ctx context.Context, report *event.Report) (string, error) {
	id := report.ID
	if id == "" {
		id = uuid.NewV4().String()
		report.ID = id
	}

	_, err := r.db.
		Index().
		Index(IndexName).
		Type(reportType).
		Id(id).
		BodyJson(report).
		Refresh("true").
		Do(ctx)

	if err != nil {
		log.WithError(err).Error("Can't insert report")
	}

	return id, err
}

// GetReport returns nil without error when the report does not exist.
func (r *Repository) GetReport(ctx context.Context, id string) (*event.Report, error) {
	var report event.Report
	found, err := r.get(ctx, reportType, id, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

func (r *Repository) AddDebugFile(ctx context.Context, f *DebugFile) error {
	_, err := r.db.
		Index().
		Index(IndexName).
		Type(debugFileType).
		Id(f.UUID).
		BodyJson(f).
		Refresh("true").
		Do(ctx)

	if err == nil {
		r.putInCacheMapping(f.UUID, f.Path)
	}

	return err
}

// GetDebugFile returns nil without error when no file has the uuid.
func (r *Repository) GetDebugFile(ctx context.Context, id string) (*DebugFile, error) {
	var f DebugFile
	found, err := r.get(ctx, debugFileType, id, &f)
	if err != nil || !found {
		return nil, err
	}
	return &f, nil
}

// FindMappingFiles looks up uploaded ProGuard mappings by uuid, through the cache.
func (r *Repository) FindMappingFiles(ctx context.Context, id string) ([]stacktrace.MappingFile, error) {
	if path := r.getFromCacheMapping(id); path != "" {
		return []stacktrace.MappingFile{{UUID: id, Path: path}}, nil
	}

	f, err := r.GetDebugFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil || f.Type != event.ImageTypeProguard {
		return nil, nil
	}
	r.putInCacheMapping(f.UUID, f.Path)
	return []stacktrace.MappingFile{{UUID: f.UUID, Path: f.Path}}, nil
}

func (r *Repository) SearchDebugFiles(ctx context.Context, filter DebugFileFilter) ([]DebugFile, error) {
	query := elastic.NewBoolQuery()
	if filter.OlderThan != "" {
		query.Must(elastic.NewRangeQuery("date_added").Lte(fmt.Sprintf("now-%s", filter.OlderThan)))
	}
	if filter.Project != "" {
		query.Must(elastic.NewRegexpQuery("project", filter.Project))
	}
	size := filter.Size
	if size <= 0 {
		size = 100
	}

	searchRes, err := r.db.Search().
		Index(IndexName).
		Type(debugFileType).
		Query(query).
		Sort("date_added", true).
		Size(size).
		Do(ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"older":   filter.OlderThan,
			"project": filter.Project,
			"error":   err,
		}).Error("Can't search debug files")
		return nil, err
	}

	var typ DebugFile
	var files []DebugFile
	for _, item := range searchRes.Each(reflect.TypeOf(typ)) {
		files = append(files, item.(DebugFile))
	}
	return files, nil
}

func (r *Repository) DeleteDebugFile(ctx context.Context, id string) error {
	_, err := r.db.Delete().
		Index(IndexName).
		Type(debugFileType).
		Id(id).
		Refresh("true").
		Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return err
	}
	if err := r.cache.Delete(mappingKeyPrefix + id); err != nil {
		log.WithError(err).Warning("Can't remove debug file from cache")
	}
	return nil
}

// GetGroup returns nil without error when the group does not exist.
func (r *Repository) GetGroup(ctx context.Context, id string) (*Group, error) {
	var g Group
	found, err := r.get(ctx, groupType, id, &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) SaveGroup(ctx context.Context, g *Group) error {
	_, err := r.db.
		Index().
		Index(IndexName).
		Type(groupType).
		Id(g.ID).
		BodyJson(g).
		Do(ctx)
	return err
}

func (r *Repository) get(ctx context.Context, typ, id string, v interface{}) (bool, error) {
	res, err := r.db.Get().
		Index(IndexName).
		Type(typ).
		Id(id).
		Do(ctx)
	if elastic.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !res.Found || res.Source == nil {
		return false, nil
	}
	if err := json.Unmarshal(*res.Source, v); err != nil {
		log.WithFields(log.Fields{
			"type":  typ,
			"id":    id,
			"error": err,
		}).Error("Can't deserialize document")
		return false, err
	}
	return true, nil
}

func (r *Repository) putInCacheMapping(id, path string) {
	if err := r.cache.Set(mappingKeyPrefix+id, path); err != nil {
		log.WithError(err).Warning("Can't put mapping file in cache")
	}
}

func (r *Repository) getFromCacheMapping(id string) string {
	v, err := r.cache.Get(mappingKeyPrefix + id)
	if err != nil {
		return ""
	}
	return v
}

func NewRepository(connectionUrl string, c Cashe) (*Repository, error) {
	b, err := elastic.NewClient(elastic.SetURL(connectionUrl), elastic.SetSniff(false))
	if c == nil {
		c = NewMemory()
	}
	return &Repository{
		db:    b,
		cache: c,
	}, err
}

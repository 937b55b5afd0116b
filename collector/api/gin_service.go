package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"crashview/collector/cfg"
	"crashview/collector/service"
	"crashview/common/format/event"
	"crashview/common/render"
	"crashview/common/stacktrace"
)

type BaseReply struct {
	Status string `json:"status"`
}

type EventReply struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type RenderReply struct {
	ID          string             `json:"id"`
	Platform    string             `json:"platform"`
	Sections    []render.Section   `json:"sections"`
	Diagnostics []event.EventError `json:"diagnostics,omitempty"`
}

type GinCollectorService struct {
	engine   *gin.Engine
	conf     cfg.Config
	service  *service.CollectorService
	metrics  *Metrics
	renderer *render.Renderer
	proguard *stacktrace.ProguardDetector
}

type UploadParams struct {
	context *gin.Context
	param   string
	prefix  string
	tmpDir  string
}

func (m *GinCollectorService) Init() error {
	cfg.GlobalConfigMutex.Lock()
	conf := cfg.GlobalConfig
	cfg.GlobalConfigMutex.Unlock()

	svc, err := service.NewCollector(conf)
	if err != nil {
		return err
	}
	m.setup(conf, svc)
	return nil
}

// NewGinCollectorService builds the HTTP service around an existing collector.
func NewGinCollectorService(conf cfg.Config, svc *service.CollectorService) *GinCollectorService {
	m := &GinCollectorService{}
	m.setup(conf, svc)
	return m
}

func (m *GinCollectorService) setup(conf cfg.Config, svc *service.CollectorService) {
	m.conf = conf
	m.service = svc
	m.metrics = NewMetrics()
	m.renderer = render.NewRenderer()
	// no mapping store on this side: only the minified-frame heuristic runs
	m.proguard = stacktrace.NewProguardDetector(nil)

	m.engine = gin.New()
	m.engine.Use(gin.Logger(), gin.Recovery())
	if m.conf.MonitoringEnable() {
		m.engine.Use(m.metrics.Middleware())
	}

	os.MkdirAll(m.conf.EventsTmpDir(), 0777)
	os.MkdirAll(m.conf.DebugFilesTmpDir(), 0777)

	m.applyRoutes()
}

func (m *GinCollectorService) Engine() *gin.Engine {
	return m.engine
}

func (m *GinCollectorService) setSuccessStatus(c *gin.Context) {
	rMsg := &BaseReply{"success"}
	c.JSON(http.StatusOK, rMsg)
}

func (m *GinCollectorService) setServerError(descr string, c *gin.Context) {
	rMsg := &BaseReply{fmt.Sprintf("error: %s", descr)}
	c.JSON(http.StatusInternalServerError, rMsg)
}

func (m *GinCollectorService) setBadRequest(descr string, c *gin.Context) {
	rMsg := &BaseReply{fmt.Sprintf("error: %s", descr)}
	c.JSON(http.StatusBadRequest, rMsg)
}

func (m *GinCollectorService) Start() error {
	addres := fmt.Sprintf("%s:%d", m.conf.Host(), m.conf.Port())
	log.WithField("address", addres).Info("Run on")
	return m.engine.Run(addres)
}

func (m *GinCollectorService) applyRoutes() {
	api := m.engine.Group("/api")
	api.POST("/events", m.PostEvent())
	api.POST("/debug-files", m.PostDebugFile())
	api.POST("/render", m.PostRender())
	api.POST("/raw", m.PostRaw())
	if m.conf.MonitoringEnable() {
		m.engine.GET(m.conf.MetricsPath(), m.metrics.Handler())
	}
}

// readEvent decodes the request body as an event and also returns the body itself. It writes
// the error reply itself and returns nil on failure.
func (m *GinCollectorService) readEvent(c *gin.Context) (*event.Event, []byte) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, m.conf.MaxEventSize()))
	if err != nil {
		m.setBadRequest("Can't read request body", c)
		return nil, nil
	}

	ev, err := event.Parse(body)
	if err != nil {
		log.WithError(err).Debug("Invalid event payload")
		m.metrics.EventsTotal.WithLabelValues("invalid", "").Inc()
		m.setBadRequest("Invalid event", c)
		return nil, nil
	}
	return ev, body
}

// spoolPayload is the request body with the id and receive date filled in. Fields the event
// model does not know are kept.
func spoolPayload(body []byte, ev *event.Event) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	id, err := json.Marshal(ev.ID)
	if err != nil {
		return nil, err
	}
	date, err := json.Marshal(ev.DateReceived)
	if err != nil {
		return nil, err
	}
	payload["id"] = id
	payload["dateReceived"] = date
	return payload, nil
}

func (m *GinCollectorService) PostEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, body := m.readEvent(c)
		if ev == nil {
			return
		}
		if ev.ID == "" {
			ev.ID = strings.Replace(uuid.NewV4().String(), "-", "", -1)
		}
		if ev.DateReceived == "" {
			ev.DateReceived = time.Now().UTC().Format(time.RFC3339)
		}

		payload, err := spoolPayload(body, ev)
		if err != nil {
			m.setBadRequest("Invalid event", c)
			return
		}

		tmpEvent, err := os.CreateTemp(m.conf.EventsTmpDir(), m.prefix("event_"))
		if err != nil {
			log.WithError(err).Error("Could not create temporary event file")
			m.setServerError("Could not create temporary file", c)
			return
		}

		err = writeJSON(tmpEvent, payload)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
				"file":  tmpEvent.Name(),
			}).Error("Can't write event to file")
			os.Remove(tmpEvent.Name())
			m.setServerError("Could not write temporary file", c)
			return
		}

		err = m.service.AddEvent(tmpEvent.Name(), ev.ID)
		if err != nil {
			os.Remove(tmpEvent.Name())
			m.setServerError("Can't add new task to process event", c)
			return
		}

		m.metrics.EventsTotal.WithLabelValues("accepted", ev.Platform).Inc()
		c.JSON(http.StatusOK, &EventReply{Status: "success", ID: ev.ID})
	}
}

func (m *GinCollectorService) PostDebugFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.FromString(c.PostForm("uuid"))
		if err != nil {
			m.setBadRequest("Missing or invalid parameter 'uuid'", c)
			return
		}

		fileType := c.DefaultPostForm("type", event.ImageTypeProguard)
		if fileType != event.ImageTypeProguard {
			m.setBadRequest(fmt.Sprintf("Unsupported debug file type '%s'", fileType), c)
			return
		}

		path, err := m.uploadFile(UploadParams{
			context: c,
			param:   "file",
			prefix:  m.prefix("debug_file_"),
			tmpDir:  m.conf.DebugFilesTmpDir(),
		})
		if err != nil {
			m.setBadRequest("Can't upload 'file'", c)
			return
		}

		err = m.service.AddDebugFile(path, id.String(), fileType, c.PostForm("project"))
		if err != nil {
			os.Remove(path)
			m.setServerError("Can't add new task to process debug file", c)
			return
		}

		log.WithFields(log.Fields{
			"uuid": id.String(),
			"type": fileType,
			"path": path,
		}).Debug("Send debug file to processor")
		m.setSuccessStatus(c)
	}
}

func (m *GinCollectorService) PostRender() gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, _ := m.readEvent(c)
		if ev == nil {
			return
		}

		prefs := stacktrace.ParsePreferences(c.Request.URL.Query())
		c.JSON(http.StatusOK, &RenderReply{
			ID:          ev.ID,
			Platform:    ev.Platform,
			Sections:    m.renderer.Render(ev, prefs),
			Diagnostics: m.proguard.Check(c.Request.Context(), ev),
		})
	}
}

// PostRaw returns the clipboard text of the event's authoritative trace.
func (m *GinCollectorService) PostRaw() gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, _ := m.readEvent(c)
		if ev == nil {
			return
		}
		if platform := c.Query("platform"); platform != "" {
			ev.Platform = platform
		}
		minified := stacktrace.StackType(c.Query("type")) == stacktrace.TypeMinified
		c.String(http.StatusOK, stacktrace.RawTraceContent(ev, minified))
	}
}

func (m *GinCollectorService) prefix(p string) string {
	dt := time.Now()
	return fmt.Sprintf("%04d%02d%02d%02d%02d-%s", dt.Year(),
		dt.Month(),
		dt.Day(),
		dt.Hour(),
		dt.Minute(),
		p)
}

func (m *GinCollectorService) uploadFile(args UploadParams) (string, error) {
	file, _, err := args.context.Request.FormFile(args.param)
	if err != nil {
		log.WithField("param", args.param).
			Warning("Upload file: missing parameter")
		return "", err
	}
	defer file.Close()

	tmpFile, err := os.CreateTemp(args.tmpDir,
		m.prefix(args.prefix))

	if err != nil {
		log.WithError(err).Error("Could not create temporary file")
		return "", err
	}

	defer tmpFile.Close()

	_, err = io.Copy(tmpFile, file)
	if err != nil {
		defer os.Remove(tmpFile.Name())
		log.WithError(err).
			Error("Could not write temporary file")
		return "", err
	}

	tmpFile.Close()
	return tmpFile.Name(), nil
}

func writeJSON(f *os.File, v interface{}) error {
	defer f.Close()
	return json.NewEncoder(f).Encode(v)
}

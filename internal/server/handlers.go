package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/console"
	"github.com/mxa-live/mxa/internal/session"
	"github.com/mxa-live/mxa/level"
	"github.com/mxa-live/mxa/routing"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, level.ErrMappingNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, routing.ErrInvalidConfig),
		errors.Is(err, routing.ErrToggleMismatch),
		errors.Is(err, console.ErrNoEndpoint):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"session":  sess,
		"endpoint": s.cfg.ResolveEndpoint(sess.Routing.Console),
	})
}

func (s *Server) handlePutRouting(c *gin.Context) {
	var body routing.Config
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetRouting(body); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s.store.Snapshot()})
}

func (s *Server) handleGetToggles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"live": s.store.Snapshot().Live})
}

func (s *Server) handlePutToggles(c *gin.Context) {
	var body routing.Toggles
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetToggles(body); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"live": s.store.Snapshot().Live})
}

// applyRequest is the body of /api/preview and /api/send. Live defaults to the
// stored toggles.
type applyRequest struct {
	Live *routing.Toggles `json:"live"`
}

// plan builds a batch from the stored routing and the requested toggles.
func (s *Server) plan(c *gin.Context) (*console.Batch, routing.Toggles, bool) {
	var body applyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, routing.Toggles{}, false
		}
	}

	sess := s.store.Snapshot()
	live := sess.Live
	if body.Live != nil {
		live = *body.Live
	}
	cfg := sess.Routing
	cfg.Console = s.cfg.ResolveEndpoint(cfg.Console)

	b, err := s.driver.Plan(&cfg, live)
	if err != nil {
		s.fail(c, err)
		return nil, routing.Toggles{}, false
	}
	return b, live, true
}

func (s *Server) handlePreview(c *gin.Context) {
	b, _, ok := s.plan(c)
	if !ok {
		return
	}
	lines, bad := console.Transcript(b.Endpoint, b.Frames)
	c.JSON(http.StatusOK, gin.H{
		"batch_id":   b.ID,
		"total":      len(b.Frames),
		"transcript": lines,
		"lines":      renderLines(lines),
		"errors":     errorStrings(bad),
	})
}

func (s *Server) handleSend(c *gin.Context) {
	b, live, ok := s.plan(c)
	if !ok {
		return
	}

	rep, err := s.driver.Send(b)
	if err != nil {
		if rep != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    err.Error(),
				"batch_id": rep.BatchID,
				"sent":     rep.Sent,
				"total":    rep.Total,
			})
			return
		}
		s.fail(c, err)
		return
	}

	if err := s.store.SetToggles(live); err != nil {
		// Routing changed between plan and send.
		s.logger.Warn("toggles not saved after send", zap.Stringer("batch", b.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id":   rep.BatchID,
		"sent":       rep.Sent,
		"total":      rep.Total,
		"transcript": rep.Transcript,
		"lines":      renderLines(rep.Transcript),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	name := s.store.Snapshot().Name
	if name == "" {
		name = "session"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := s.store.Export(c.Writer); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}

func (s *Server) handleImport(c *gin.Context) {
	sess, err := session.Decode(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Replace(sess); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s.store.Snapshot()})
}

func (s *Server) handleGetLevels(c *gin.Context) {
	keys := s.levels.Keys()
	entries := make([]gin.H, 0, len(keys))
	for _, k := range keys {
		v, _ := s.levels.Map(float64(k))
		entries = append(entries, gin.H{"db": k, "level": v})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(keys),
		"entries": entries,
		"skipped": s.levels.Skipped(),
	})
}

func renderLines(lines []console.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// Package server exposes profiles over a JSON http API.
//
// TOTAL is served like any other profile but is read only: writes to it
// answer 403.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/renderer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the profiles of an accounting system.
type Handler struct {
	System *accounting.System
	Logger *zap.Logger
}

// New returns a gin engine serving s.
func New(s *accounting.System, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	h := &Handler{System: s, Logger: logger}
	engine.Use(h.logRequests())
	h.Register(engine)
	return engine
}

// Register adds the routes of h to r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	p := r.Group("/profiles")
	p.GET("", h.list)
	p.GET("/:name", h.report)
	p.PUT("/:name", h.save)
	p.GET("/:name/groups/:dimension", h.groups)
	p.GET("/:name/groups/:dimension/chart", h.groupsChart)
	p.GET("/:name/history", h.history)
	p.POST("/:name/history", h.record)
	p.GET("/:name/history/chart", h.historyChart)
	p.GET("/:name/sales", h.sales)
}

func (h *Handler) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if h.Logger == nil {
			return
		}
		h.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// profile returns the name parameter, answering 404 for unknown profiles.
func (h *Handler) profile(c *gin.Context) (string, bool) {
	name := c.Param("name")
	known, err := h.System.Known(name)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return "", false
	}
	if !known {
		fail(c, http.StatusNotFound, errors.New("no such profile "+name))
		return "", false
	}
	return name, true
}

func (h *Handler) list(c *gin.Context) {
	names, err := h.System.Profiles(c.Request.Context())
	if err != nil {
		fail(c, status(err), err)
		return
	}
	ok(c, names)
}

func (h *Handler) report(c *gin.Context) {
	name, found := h.profile(c)
	if !found {
		return
	}
	v, err := h.System.Value(c.Request.Context(), name)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	r := renderer.NewReport(v, h.System.Date())
	if c.Query("format") == "md" {
		c.String(http.StatusOK, renderer.RenderReport(r))
		return
	}
	ok(c, r)
}

func (h *Handler) save(c *gin.Context) {
	name := c.Param("name")
	if err := portfoy.CheckWritable(name); err != nil {
		fail(c, http.StatusForbidden, err)
		return
	}
	var holdings []portfoy.Holding
	if err := c.ShouldBindJSON(&holdings); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if _, err := h.System.SaveHoldings(name, holdings); err != nil {
		fail(c, status(err), err)
		return
	}
	ok(c, gin.H{"profile": name, "holdings": len(holdings)})
}

func (h *Handler) newGroups(c *gin.Context) (*renderer.Groups, bool) {
	name, found := h.profile(c)
	if !found {
		return nil, false
	}
	collapse := true
	if v := c.Query("collapse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return nil, false
		}
		collapse = b
	}
	dimension := c.Param("dimension")
	if _, valid := portfoy.ParseDimension(dimension); !valid {
		fail(c, http.StatusBadRequest, errors.New("unknown dimension "+dimension))
		return nil, false
	}
	g, err := h.System.NewGroups(c.Request.Context(), name, dimension, collapse)
	if err != nil {
		fail(c, status(err), err)
		return nil, false
	}
	return g, true
}

func (h *Handler) groups(c *gin.Context) {
	if g, valid := h.newGroups(c); valid {
		ok(c, g)
	}
}

func (h *Handler) groupsChart(c *gin.Context) {
	g, valid := h.newGroups(c)
	if !valid {
		return
	}
	png, err := renderer.AllocationChart(g)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) newHistory(c *gin.Context) (*renderer.History, bool) {
	name, found := h.profile(c)
	if !found {
		return nil, false
	}
	series, err := h.System.Series(c.Request.Context(), name)
	if err != nil {
		fail(c, status(err), err)
		return nil, false
	}
	series, err = accounting.Narrow(series, h.System.Date(), c.Query("period"), c.Query("in"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return nil, false
	}
	return renderer.NewHistory(name, series), true
}

func (h *Handler) history(c *gin.Context) {
	if hist, valid := h.newHistory(c); valid {
		ok(c, hist)
	}
}

func (h *Handler) historyChart(c *gin.Context) {
	hist, valid := h.newHistory(c)
	if !valid {
		return
	}
	png, err := renderer.HistoryChart(hist, h.System.Display)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) record(c *gin.Context) {
	name := c.Param("name")
	if err := portfoy.CheckWritable(name); err != nil {
		fail(c, http.StatusForbidden, err)
		return
	}
	if _, found := h.profile(c); !found {
		return
	}
	if _, err := h.System.Record(c.Request.Context(), name); err != nil {
		fail(c, status(err), err)
		return
	}
	h.history(c)
}

func (h *Handler) sales(c *gin.Context) {
	name, found := h.profile(c)
	if !found {
		return
	}
	sales, err := h.System.Sales(name)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	if sales == nil {
		sales = []portfoy.Sale{}
	}
	ok(c, sales)
}

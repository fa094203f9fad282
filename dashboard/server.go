package dashboard

import (
	goctx "context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meshnetframework/meshnet/benchmark"
	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/rl"
	"github.com/meshnetframework/meshnet/types"
)

// DefaultAddr is the default address of the report server
const DefaultAddr = "0.0.0.0:7074"

// ReportServer runs a HTTP server exposing comparison reports and
// training results for inspection while long runs are in progress.
type ReportServer struct {
	router *gin.Engine
	server *http.Server
	addr   string

	lock     sync.RWMutex
	report   *benchmark.ComparisonReport
	training *rl.TrainingResult
	history  *types.Map[string, *benchmark.ComparisonReport]

	*types.BaseService
}

// NewReportServer instantiates ReportServer
func NewReportServer(addr string, logger *log.Logger) *ReportServer {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.DefaultLogger
	}

	srv := &ReportServer{
		addr:        addr,
		history:     types.NewMap[string, *benchmark.ComparisonReport](),
		BaseService: types.NewBaseService("ReportServer", logger),
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(srv.logMiddleware)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/report")
	})
	router.GET("/health", srv.handleHealth)
	router.GET("/report", srv.handleReport)
	router.GET("/report/markdown", srv.handleReportMarkdown)
	router.GET("/report/scenarios/:scenario", srv.handleScenario)
	router.GET("/reports", srv.handleHistory)
	router.GET("/reports/:id", srv.handleHistoryGet)
	router.GET("/algorithms", srv.handleAlgorithms)
	router.GET("/training", srv.handleTraining)

	srv.router = router
	srv.server = &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return srv
}

// SetReport publishes a comparison report as the latest one and keeps
// it in the history keyed by its timestamp.
func (s *ReportServer) SetReport(report *benchmark.ComparisonReport) {
	s.lock.Lock()
	s.report = report
	s.lock.Unlock()
	s.history.Add(report.Timestamp.Format(time.RFC3339), report)
}

// SetTrainingResult publishes a training run summary on the server.
func (s *ReportServer) SetTrainingResult(result *rl.TrainingResult) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.training = result
}

func (s *ReportServer) logMiddleware(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path
	raw := c.Request.URL.RawQuery

	c.Next()

	end := time.Now()
	if raw != "" {
		path = path + "?" + raw
	}
	s.Logger.With(log.LogParams{
		"timestamp":   end,
		"latency":     end.Sub(start).String(),
		"client_ip":   c.ClientIP(),
		"method":      c.Request.Method,
		"status_code": c.Writer.Status(),
		"error":       c.Errors.ByType(gin.ErrorTypePrivate).String(),
		"body_size":   c.Writer.Size(),
		"path":        path,
	}).Debug("Handled request")
}

func (s *ReportServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *ReportServer) handleReport(c *gin.Context) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no comparison report available"})
		return
	}
	c.JSON(http.StatusOK, s.report)
}

func (s *ReportServer) handleReportMarkdown(c *gin.Context) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no comparison report available"})
		return
	}
	c.String(http.StatusOK, s.report.RenderMarkdown())
}

func (s *ReportServer) handleScenario(c *gin.Context) {
	name := c.Param("scenario")

	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no comparison report available"})
		return
	}
	results, ok := s.report.ScenarioResults[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such scenario"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *ReportServer) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": s.history.Keys()})
}

func (s *ReportServer) handleHistoryGet(c *gin.Context) {
	report, ok := s.history.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *ReportServer) handleAlgorithms(c *gin.Context) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no comparison report available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"algorithms": s.report.Algorithms,
		"overall":    s.report.OverallComparison,
	})
}

func (s *ReportServer) handleTraining(c *gin.Context) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.training == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no training result available"})
		return
	}
	c.JSON(http.StatusOK, s.training)
}

var _ types.Service = &ReportServer{}

// Start starts the ReportServer and implements Service
func (s *ReportServer) Start() error {
	s.StartRunning()
	go func() {
		s.Logger.With(log.LogParams{
			"addr": s.addr,
		}).Info("Report server starting!")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.With(log.LogParams{
				"addr": s.addr,
				"err":  err,
			}).Fatal("Report server closed!")
		}
	}()
	return nil
}

// Stop stops the ReportServer and implements Service
func (s *ReportServer) Stop() error {
	s.StopRunning()
	ctx, cancel := goctx.WithTimeout(goctx.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.Logger.Error("Report server forcefully shutdown")
		return err
	}
	s.Logger.Info("Report server stopped!")
	return nil
}

// Package server exposes the pipeline and stored runs over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harlequix/infopipe/config"
	log "github.com/harlequix/infopipe/log"
	"github.com/harlequix/infopipe/pipeline"
	"github.com/harlequix/infopipe/store"
	"github.com/pkg/errors"
)

var samples = map[string]string{
	"simple":      "Hello World! This is a sample text for Huffman encoding demonstration.",
	"info_theory": "Information theory is a mathematical study of information storage and communication. It was originally proposed by Claude Shannon in 1948 to find fundamental limits on signal processing and communication operations.",
	"lorem":       "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
	"mixed":       "The quick brown fox jumps over the lazy dog. 1234567890!@#$%^&*()_+{}[]|\\:;\"<>?,./'",
}

// ProcessResponse is the body of a successful POST /api/process.
type ProcessResponse struct {
	Success      bool   `json:"success"`
	RunDirectory string `json:"run_directory,omitempty"`
	*pipeline.Report

	EncodedBits          string             `json:"encoded_bits"`
	HammingBits          string             `json:"hamming_bits"`
	CorruptedBits        string             `json:"corrupted_bits"`
	RecoveredBits        string             `json:"recovered_bits"`
	CorruptedDecodedText string             `json:"corrupted_decoded_text"`
	RecoveredDecodedText string             `json:"recovered_decoded_text"`
	Codes                map[string]string  `json:"codes"`
	Probabilities        map[string]float64 `json:"probabilities"`
	ErrorInterval        int                `json:"error_interval"`
}

type Server struct {
	config *config.Config
	store  *store.Store
	logger *log.Logger
	http   *http.Server
}

// New builds a server. runs may be nil, in which case nothing is persisted
// and the run endpoints answer 404.
func New(cfg *config.Config, runs *store.Store) *Server {
	s := &Server{
		config: cfg,
		store:  runs,
		logger: log.NewLogger("Server"),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), cors())

	api := r.Group("/api")
	api.POST("/upload", s.upload)
	api.POST("/process", s.process)
	api.GET("/sample-text", s.sampleText)
	api.GET("/runs", s.listRuns)
	api.GET("/runs/:id", s.getRun)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.http.Addr).Info("listening")
		errc <- s.http.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(s.http.Shutdown(shutdown), "shutting down")
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start)).
			Info("request")
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) process(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxTextBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	text, interval, err := s.parseRequest(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := pipeline.Run(text, interval)
	if err != nil {
		s.logger.WithError(err).Error("pipeline failed")
		fail(c, http.StatusInternalServerError, "Processing failed: "+err.Error())
		return
	}

	resp := &ProcessResponse{
		Success:              true,
		Report:               pipeline.NewReport(text, res, s.config.PreviewBits, s.config.PreviewText),
		EncodedBits:          res.EncodedBits,
		HammingBits:          res.HammingBits,
		CorruptedBits:        res.CorruptedBits,
		RecoveredBits:        res.RecoveredBits,
		CorruptedDecodedText: res.CorruptedDecodedText,
		RecoveredDecodedText: res.RecoveredDecodedText,
		Codes:                res.Codes,
		Probabilities:        res.Probabilities,
		ErrorInterval:        interval,
	}
	if s.store != nil && s.config.Persist {
		run, err := s.store.Save(text, res)
		if err != nil {
			s.logger.WithError(err).Error("saving run")
			fail(c, http.StatusInternalServerError, "Processing failed: "+err.Error())
			return
		}
		resp.RunDirectory = run.Directory
	}
	c.JSON(http.StatusOK, resp)
}

// parseRequest validates a process request body and applies the default
// error interval.
func (s *Server) parseRequest(raw []byte) (string, int, error) {
	fields := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return "", 0, errors.New("Request body must be a JSON object")
		}
	}

	var text string
	if msg, ok := fields["text"]; ok {
		if err := json.Unmarshal(msg, &text); err != nil {
			return "", 0, errors.New("'text' must be a non-empty string")
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, errors.New("'text' must be a non-empty string")
	}

	interval := s.config.ErrorInterval
	if msg, ok := fields["error_interval"]; ok && string(msg) != "null" {
		n, err := parseInterval(msg)
		if err != nil {
			return "", 0, errors.New("'error_interval' must be an integer")
		}
		interval = n
	}
	if interval < 1 {
		return "", 0, errors.New("'error_interval' must be >= 1")
	}
	return text, interval, nil
}

func parseInterval(msg json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(msg, &n); err == nil {
		return n, nil
	}
	var str string
	if err := json.Unmarshal(msg, &str); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(str))
}

// upload stores a .txt file under the uploads directory and returns its
// leading content.
func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxTextBytes)
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if file.Filename == "" {
		fail(c, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.HasSuffix(file.Filename, ".txt") {
		fail(c, http.StatusBadRequest, "Invalid file format. Please upload a .txt file")
		return
	}

	if err := os.MkdirAll(s.config.UploadsDir, 0o755); err != nil {
		s.logger.WithError(err).Error("creating uploads directory")
		fail(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}
	name := "upload_" + time.Now().Format("20060102_150405") + "_" + uuid.New().String()[:8] + ".txt"
	dst := filepath.Join(s.config.UploadsDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.logger.WithError(err).Error("saving upload")
		fail(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		s.logger.WithError(err).Error("reading upload")
		fail(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}
	content := string(raw)

	s.logger.WithField("file", file.Filename).WithField("path", dst).Info("stored upload")
	c.JSON(http.StatusOK, gin.H{
		"filename":    file.Filename,
		"size":        utf8.RuneCountInString(content),
		"content":     store.Truncate(content, store.PreviewLimit),
		"upload_path": dst,
	})
}

func (s *Server) sampleText(c *gin.Context) {
	kind := c.DefaultQuery("type", "simple")
	content, ok := samples[kind]
	if !ok {
		content = samples["simple"]
	}
	c.JSON(http.StatusOK, gin.H{"content": content, "type": kind})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []*store.Run{}})
		return
	}
	runs, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Error("listing runs")
		fail(c, http.StatusInternalServerError, "Failed to list runs: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.store == nil {
		fail(c, http.StatusNotFound, "Run not found")
		return
	}
	detail, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Cause(err) == store.ErrRunNotFound {
			fail(c, http.StatusNotFound, "Run not found")
			return
		}
		s.logger.WithError(err).Error("loading run")
		fail(c, http.StatusInternalServerError, "Failed to load run data: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, detail)
}

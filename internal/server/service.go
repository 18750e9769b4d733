package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medview/labreport/constants"
	"github.com/medview/labreport/internal/common"
	"github.com/medview/labreport/internal/pipeline"
)

const version = "1.0.0"

// Server wires the pipeline orchestrator to the HTTP surface. The
// handlers are presentation only: every processing decision lives in
// the pipeline.
type Server struct {
	logger *slog.Logger
	cfg    *common.Config
	orch   *pipeline.Orchestrator
}

func New(logger *slog.Logger, cfg *common.Config, orch *pipeline.Orchestrator) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, cfg: cfg, orch: orch}
}

// Register mounts all routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.health)
	e.POST("/process-text", s.processText)
	e.POST("/process-image", s.processImage)
	e.POST("/debug-pipeline", s.debugPipeline)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "version": version})
}

type textInput struct {
	Text string `json:"text"`
}

func (s *Server) processText(c echo.Context) error {
	var in textInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.logger.Info("server.process_text", "text_len", len(in.Text))
	outcome := s.orch.ProcessText(c.Request().Context(), in.Text)
	return c.JSON(http.StatusOK, outcome)
}

func (s *Server) processImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}
	if fh.Size > s.cfg.MaxFileSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large")
	}

	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported file extension: %q", ext))
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read file")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			s.logger.Warn("server.upload.close_failed", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxFileSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read file")
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large")
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") && mime != "application/pdf" {
		return echo.NewHTTPError(http.StatusBadRequest, "file is not a valid image or PDF")
	}

	// The extraction engine works on files; hand the upload over on disk.
	tmp, err := os.CreateTemp("", "labreport-*."+ext)
	if err != nil {
		s.logger.Error("server.upload.tempfile_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	defer func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			s.logger.Warn("server.upload.cleanup_failed", "path", tmp.Name(), "error", rerr)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.logger.Error("server.upload.write_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error("server.upload.close_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	s.logger.Info("server.process_image", "filename", fh.Filename, "bytes", len(data), "mime", mime)
	outcome := s.orch.ProcessFile(c.Request().Context(), tmp.Name())
	return c.JSON(http.StatusOK, outcome)
}

func (s *Server) debugPipeline(c echo.Context) error {
	var in textInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	trace := s.orch.DebugRun(c.Request().Context(), in.Text)
	return c.JSON(http.StatusOK, trace)
}

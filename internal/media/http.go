package media

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/abduss/mediavault/internal/auth"
	"github.com/abduss/mediavault/internal/journal"
	"github.com/abduss/mediavault/internal/logger"
	"github.com/abduss/mediavault/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

// RouteOptions configures the HTTP handlers.
type RouteOptions struct {
	Journal  journal.Recorder
	MaxFiles int
}

// RegisterRoutes mounts the public file server on public and the upload,
// catalog and delete endpoints on protected.
func RegisterRoutes(public, protected gin.IRoutes, service *Service, opts RouteOptions) {
	if opts.Journal == nil {
		opts.Journal = journal.Nop{}
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 30
	}
	handler := &httpHandler{service: service, journal: opts.Journal, maxFiles: opts.MaxFiles}

	public.GET(FilesPrefix+"*path", handler.serveFile)
	public.HEAD(FilesPrefix+"*path", handler.serveFile)

	protected.POST("/files", handler.upload)
	protected.GET("/media", handler.list)
	protected.DELETE("/media", handler.delete)
	protected.GET("/media/events", handler.events)
}

type httpHandler struct {
	service  *Service
	journal  journal.Recorder
	maxFiles int
}

func (h *httpHandler) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	defer form.RemoveAll()

	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) > h.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many files, at most " + strconv.Itoa(h.maxFiles) + " per request"})
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		uploads = append(uploads, Upload{
			OriginalName: fh.Filename,
			MimeType:     declaredMimeType(fh),
			Size:         fh.Size,
			Open:         func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	results, err := h.service.Ingest(c.Request.Context(), uploads)
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	principal := auth.Principal(c)
	status := 0
	for _, res := range results {
		outcome := "stored"
		switch {
		case res.Err() != nil:
			outcome = "failed"
			if status == 0 {
				status = StatusFor(res.Err())
			}
		case res.Dedup:
			outcome = "dedup"
		}
		metrics.ObserveIngest(outcome)
		if res.Err() == nil {
			status = http.StatusCreated
		}

		evStatus := outcome
		if res.Err() != nil {
			evStatus = StatusError
		}
		h.record(c, journal.Event{
			Kind:         journal.KindIngest,
			Principal:    principal,
			Path:         res.Path,
			Hash:         res.Hash,
			OriginalName: res.OriginalName,
			Dedup:        res.Dedup,
			Status:       evStatus,
			Message:      res.Error,
		})
	}
	if status == 0 {
		status = http.StatusCreated
	}

	c.JSON(status, results)
}

func (h *httpHandler) list(c *gin.Context) {
	params, verrs := ValidateListQuery(c.Query("page"), c.Query("limit"), c.Query("q"))
	if len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "fields": verrs})
		return
	}

	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		logger.FromContext(c).Error("list media", zap.Error(err))
		c.JSON(StatusFor(err), gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *httpHandler) delete(c *gin.Context) {
	var refs []string
	if err := c.ShouldBindJSON(&refs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array of strings"})
		return
	}
	if verrs := ValidateDeleteRefs(refs); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "fields": verrs})
		return
	}

	results, err := h.service.Delete(c.Request.Context(), refs)
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	principal := auth.Principal(c)
	for _, res := range results {
		metrics.ObserveDelete(res.Status)
		path := res.Path
		if path == "" {
			path = res.Input
		}
		h.record(c, journal.Event{
			Kind:      journal.KindDelete,
			Principal: principal,
			Path:      path,
			Status:    res.Status,
			Message:   res.Message,
		})
	}

	c.JSON(http.StatusOK, results)
}

func (h *httpHandler) events(c *gin.Context) {
	limit := defaultEventsLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxEventsLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "fields": ValidationErrors{
				{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxEventsLimit)},
			}})
			return
		}
		limit = parsed
	}

	events, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.FromContext(c).Error("list journal events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *httpHandler) serveFile(c *gin.Context) {
	// Use the escaped path so the core decodes exactly once.
	rel := strings.TrimPrefix(c.Request.URL.EscapedPath(), FilesPrefix)

	stream, err := h.service.ServeRange(c.Request.Context(), rel, c.GetHeader("Range"))
	if err != nil {
		if KindOf(err) == KindStorage && !errors.Is(err, context.Canceled) {
			logger.FromContext(c).Error("serve file", zap.String("path", rel), zap.Error(err))
		}
		metrics.ObserveServe(StatusFor(err), 0)
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	defer stream.Close()

	for key, values := range stream.Header() {
		for _, v := range values {
			c.Writer.Header().Set(key, v)
		}
	}
	c.Status(stream.Status)
	c.Writer.WriteHeaderNow()

	if c.Request.Method == http.MethodHead {
		metrics.ObserveServe(stream.Status, 0)
		return
	}

	written, err := stream.WriteTo(c.Request.Context(), c.Writer)
	metrics.ObserveServe(stream.Status, written)
	if err != nil {
		logger.FromContext(c).Warn("stream aborted",
			zap.String("path", stream.Path),
			zap.Int64("written", written),
			zap.Error(err),
		)
	}
}

// record writes a journal event. Journal failures never fail the request.
func (h *httpHandler) record(c *gin.Context, ev journal.Event) {
	if err := h.journal.Record(c.Request.Context(), ev); err != nil {
		logger.FromContext(c).Warn("record journal event", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

// declaredMimeType trusts the part's Content-Type unless it is missing or
// generic, in which case the leading bytes are sniffed.
func declaredMimeType(fh *multipart.FileHeader) string {
	declared := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if declared != "" && declared != defaultMimeType {
		return declared
	}

	f, err := fh.Open()
	if err != nil {
		return declared
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil || detected.Is(defaultMimeType) {
		return declared
	}
	return detected.String()
}

package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/document/service"
	"github.com/talqs/talqs/backend/go-services/internal/qa"
	"github.com/talqs/talqs/backend/go-services/internal/summarize"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 64 << 10

// DocumentHandler serves the upload-then-ask flow.
type DocumentHandler struct {
	docs       service.Service
	summarizer *summarize.Service
	qa         *qa.Service
	maxUpload  int64
}

func NewDocumentHandler(docs service.Service, summarizer *summarize.Service, qaSvc *qa.Service, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, summarizer: summarizer, qa: qaSvc, maxUpload: maxUpload}
}

// Register routes under /api
func (h *DocumentHandler) Register(rg gin.IRouter) {
	a := rg.Group("/api")
	a.POST("/upload", h.Upload)
	a.POST("/qa", h.Ask)
	a.GET("/questions", h.Questions)
	a.GET("/document", h.Current)
}

// Upload accepts a multipart "file", stores it for the caller's session and
// returns a summary of it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	content, filename, err := h.readUpload(c)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues("rejected").Inc()
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	d, err := h.docs.Put(ctx, middleware.Slot(c), content, filename)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues("rejected").Inc()
		writeError(c, err)
		return
	}
	metrics.DocumentUploads.WithLabelValues("stored").Inc()

	sum, err := h.summarizer.Summarize(ctx, d.Content, summarize.DefaultOptions())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"filename": d.Filename, "fileSize": d.Size(), "summary": sum.Text}
	if sum.Fallback {
		resp["warning"] = summaryFallbackWarning
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) readUpload(c *gin.Context) (string, string, error) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			return "", "", apperrors.Validation("File too large")
		case errors.Is(err, http.ErrMissingFile) && c.Request.MultipartForm != nil:
			// a part named "file" without a filename is kept as a plain value
			if _, ok := c.Request.MultipartForm.Value["file"]; ok {
				return "", "", apperrors.Validation("No selected file")
			}
		}
		return "", "", apperrors.Validation("No file part")
	}
	if fh.Filename == "" {
		return "", "", apperrors.Validation("No selected file")
	}
	if err := h.docs.CheckFilename(fh.Filename); err != nil {
		return "", "", err
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return "", "", apperrors.Validation("File too large")
	}
	raw, err := readFileHeader(fh)
	if err != nil {
		return "", "", apperrors.Internal(err, "read upload")
	}
	if !utf8.Valid(raw) {
		return "", "", apperrors.Validation("File must be UTF-8 text")
	}
	return string(raw), fh.Filename, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type askRequest struct {
	Question        string `json:"question"`
	DocumentContent string `json:"documentContent"`
}

// Ask answers a question against the supplied documentContent or, when that
// is empty, the caller's uploaded document.
func (h *DocumentHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "No data provided")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		badRequest(c, "No question provided")
		return
	}

	ctx := c.Request.Context()
	text := req.DocumentContent
	if strings.TrimSpace(text) == "" {
		d, err := h.docs.Get(ctx, middleware.Slot(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				badRequest(c, "No document has been uploaded")
				return
			}
			writeError(c, err)
			return
		}
		text = d.Content
	}

	ans, err := h.qa.Answer(ctx, text, req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"question": ans.Question, "answer": ans.Answer}
	if ans.Fallback {
		resp["warning"] = answerFallbackWarning
	}
	c.JSON(http.StatusOK, resp)
}

// Questions returns the default question battery of the upload flow.
func (h *DocumentHandler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.qa.Questions()})
}

// Current describes the caller's uploaded document without its content.
func (h *DocumentHandler) Current(c *gin.Context) {
	d, err := h.docs.Get(c.Request.Context(), middleware.Slot(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No document has been uploaded"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": d.Filename, "fileSize": d.Size(), "uploadedAt": d.UploadedAt})
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talqs/talqs/backend/go-services/internal/qa"
	"github.com/talqs/talqs/backend/go-services/internal/summarize"
)

// GenerationHandler serves the standalone model-server endpoints. Either
// service may be nil, in which case its routes are not registered.
type GenerationHandler struct {
	summarizer *summarize.Service
	qa         *qa.Service
}

func NewGenerationHandler(summarizer *summarize.Service, qaSvc *qa.Service) *GenerationHandler {
	return &GenerationHandler{summarizer: summarizer, qa: qaSvc}
}

func (h *GenerationHandler) Register(rg gin.IRouter) {
	if h.summarizer != nil {
		rg.POST("/summarize", h.Summarize)
	}
	if h.qa != nil {
		rg.POST("/answer", h.Answer)
		rg.POST("/answer_bulk", h.AnswerBulk)
	}
}

// RegisterPublic registers the routes that never need a token.
func (h *GenerationHandler) RegisterPublic(rg gin.IRouter) {
	if h.qa != nil {
		rg.GET("/questions", h.Questions)
	}
}

type summarizeRequest struct {
	Text      *string `json:"text"`
	MaxLength *int    `json:"max_length"`
	MinLength *int    `json:"min_length"`
}

func (h *GenerationHandler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		badRequest(c, "No text provided")
		return
	}
	opts := summarize.DefaultOptions()
	if req.MaxLength != nil {
		opts.MaxLength = *req.MaxLength
	}
	if req.MinLength != nil {
		opts.MinLength = *req.MinLength
	}

	sum, err := h.summarizer.Summarize(c.Request.Context(), *req.Text, opts)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"summary": sum.Text}
	if sum.Fallback {
		resp["warning"] = summaryFallbackWarning
	}
	c.JSON(http.StatusOK, resp)
}

type answerRequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
}

func (h *GenerationHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "No data provided")
		return
	}
	ans, err := h.qa.Answer(c.Request.Context(), req.Context, req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"answer": ans.Answer}
	if ans.Fallback {
		resp["warning"] = answerFallbackWarning
	}
	c.JSON(http.StatusOK, resp)
}

type bulkRequest struct {
	Text string `json:"text"`
}

func (h *GenerationHandler) AnswerBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		badRequest(c, "No text provided")
		return
	}
	answers, err := h.qa.AnswerBulk(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"qa_results": answers}
	if qa.AnyFallback(answers) {
		resp["warning"] = bulkFallbackWarning
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"default_questions": h.qa.Questions()})
}

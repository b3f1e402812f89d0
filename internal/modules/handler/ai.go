package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type AIHandler struct {
	svc service.AIService
}

func NewAIHandler(s service.AIService) *AIHandler {
	return &AIHandler{svc: s}
}

type SuggestionsReq struct {
	Prompt     string `json:"prompt"`
	DesignType string `json:"designType"`
}

type GenerateComponentReq struct {
	Description string `json:"description" binding:"required"`
	Framework   string `json:"framework" example:"react"`
	Style       string `json:"style" example:"tailwind"`
}

type ExportReq struct {
	Target string `json:"target" example:"vue"`
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return false
	}
	return true
}

// Suggestions godoc
//
//	@Summary	Design suggestions
//	@Tags		ai
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.SuggestionsReq	false	"Prompt"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]service.Suggestion}
//	@Router		/ai/suggestions [post]
func (h *AIHandler) Suggestions(c *gin.Context) {
	req := SuggestionsReq{}
	if !bindOptional(c, &req) {
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"suggestions": h.svc.Suggestions(req.Prompt)}})
}

// GenerateComponent godoc
//
//	@Summary	Generate component
//	@Tags		ai
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.GenerateComponentReq	true	"Component description"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=service.GeneratedComponent}
//	@Router		/ai/generate-component [post]
func (h *AIHandler) GenerateComponent(c *gin.Context) {
	req := GenerateComponentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	out := h.svc.GenerateComponent(req.Description, req.Framework, req.Style)
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"component": out}})
}

func (h *AIHandler) AutoLayout(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"layouts": h.svc.AutoLayout()}})
}

func (h *AIHandler) Accessibility(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"suggestions": h.svc.Accessibility()}})
}

// Export godoc
//
//	@Summary	Export design as code
//	@Tags		ai
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.ExportReq	false	"Export target"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=service.ExportBundle}
//	@Router		/ai/export [post]
func (h *AIHandler) Export(c *gin.Context) {
	req := ExportReq{}
	if !bindOptional(c, &req) {
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"export": h.svc.Export(req.Target)}})
}

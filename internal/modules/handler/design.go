package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type DesignHandler struct {
	svc service.DesignService
}

func NewDesignHandler(s service.DesignService) *DesignHandler {
	return &DesignHandler{svc: s}
}

type CreateDesignReq struct {
	ProjectID   uuid.UUID     `json:"projectId" binding:"required" format:"uuid"`
	Name        string        `json:"name" binding:"required" example:"Homepage"`
	Description string        `json:"description"`
	Canvas      *model.Canvas `json:"canvas"`
	Tags        []string      `json:"tags"`
}

type UpdateDesignReq struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Canvas      *model.Canvas         `json:"canvas"`
	Layers      *[]model.Layer        `json:"layers"`
	Components  *[]model.Component    `json:"components"`
	Styles      *model.Styles         `json:"styles"`
	Status      *model.DesignStatus   `json:"status" example:"in-review"`
	Tags        *[]string             `json:"tags"`
	Metadata    *model.DesignMetadata `json:"metadata"`
}

type CreateVersionReq struct {
	Name        string `json:"name" example:"Before review"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// designOp resolves the caller and the :id design parameter.
func designOp(c *gin.Context) (user, id uuid.UUID, ok bool) {
	if user, ok = caller(c); !ok {
		return
	}
	id, ok = paramUUID(c, "id")
	return
}

// ListProjectDesigns godoc
//
//	@Summary	List designs of a project
//	@Tags		design
//	@Produce	json
//	@Param		projectId	path	string	true	"Project ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.Design}
//	@Router		/designs/project/{projectId} [get]
func (h *DesignHandler) ListProjectDesigns(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	projectID, ok := paramUUID(c, "projectId")
	if !ok {
		return
	}
	out, err := h.svc.ListByProject(c.Request.Context(), user, projectID)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetDesign godoc
//
//	@Summary	Get design
//	@Tags		design
//	@Produce	json
//	@Param		id	path	string	true	"Design ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Design}
//	@Router		/designs/{id} [get]
func (h *DesignHandler) GetDesign(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), user, id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

// CreateDesign godoc
//
//	@Summary		Create design
//	@Description	Requires editor on the parent project
//	@Tags			design
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateDesignReq	true	"CreateDesign payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Design}
//	@Router			/designs [post]
func (h *DesignHandler) CreateDesign(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	req := CreateDesignReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	d, err := h.svc.Create(c.Request.Context(), user, service.CreateDesignInput{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Canvas:      req.Canvas,
		Tags:        req.Tags,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

// UpdateDesign godoc
//
//	@Summary		Update design
//	@Description	Requires editor. Settings are changed through /designs/{id}/settings
//	@Tags			design
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string					true	"Design ID"	format(uuid)
//	@Param			payload	body	handler.UpdateDesignReq	true	"UpdateDesign payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Design}
//	@Router			/designs/{id} [put]
func (h *DesignHandler) UpdateDesign(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	req := UpdateDesignReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	d, err := h.svc.Update(c.Request.Context(), user, id, service.UpdateDesignInput{
		Name:        req.Name,
		Description: req.Description,
		Canvas:      req.Canvas,
		Layers:      req.Layers,
		Components:  req.Components,
		Styles:      req.Styles,
		Status:      req.Status,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

// UpdateDesignSettings godoc
//
//	@Summary	Update design settings
//	@Tags		design
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string					true	"Design ID"	format(uuid)
//	@Param		payload	body	model.DesignSettings	true	"Settings"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Design}
//	@Router		/designs/{id}/settings [put]
func (h *DesignHandler) UpdateDesignSettings(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	settings := model.DesignSettings{}
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	d, err := h.svc.UpdateSettings(c.Request.Context(), user, id, settings)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

// DeleteDesign godoc
//
//	@Summary		Delete design
//	@Description	Only the design's creator or the project owner may delete it
//	@Tags			design
//	@Produce		json
//	@Param			id	path	string	true	"Design ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/designs/{id} [delete]
func (h *DesignHandler) DeleteDesign(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user, id); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "design deleted"})
}

// CreateVersion godoc
//
//	@Summary		Save version
//	@Description	Snapshot the design as the next version number
//	@Tags			design
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string						true	"Design ID"	format(uuid)
//	@Param			payload	body	handler.CreateVersionReq	false	"Version label"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.DesignVersion}
//	@Router			/designs/{id}/versions [post]
func (h *DesignHandler) CreateVersion(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	req := CreateVersionReq{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
	}

	v, err := h.svc.CreateVersion(c.Request.Context(), user, id, service.CreateVersionInput{
		Name:        req.Name,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: v})
}

// ListVersions godoc
//
//	@Summary	List versions
//	@Tags		design
//	@Produce	json
//	@Param		id	path	string	true	"Design ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.DesignVersion}
//	@Router		/designs/{id}/versions [get]
func (h *DesignHandler) ListVersions(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	out, err := h.svc.ListVersions(c.Request.Context(), user, id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetDesignActivity godoc
//
//	@Summary	Design activity
//	@Tags		design
//	@Produce	json
//	@Param		id	path	string	true	"Design ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.DesignActivity}
//	@Router		/designs/{id}/activity [get]
func (h *DesignHandler) GetDesignActivity(c *gin.Context) {
	user, id, ok := designOp(c)
	if !ok {
		return
	}
	out, err := h.svc.Activity(c.Request.Context(), user, id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

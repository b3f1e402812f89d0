package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	Name        string   `json:"name" binding:"required" example:"Landing page"`
	Description string   `json:"description" example:"Marketing site redesign"`
	IsPublic    bool     `json:"isPublic" example:"false"`
	Tags        []string `json:"tags"`
}

type UpdateProjectReq struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Tags        *[]string              `json:"tags"`
	Visibility  *model.Visibility      `json:"visibility" example:"team"`
	Status      *model.ProjectStatus   `json:"status" example:"active"`
	Settings    *model.ProjectSettings `json:"settings"`
	Metadata    *model.ProjectMetadata `json:"metadata"`
}

type AddCollaboratorReq struct {
	Email string     `json:"email" binding:"required" example:"grace@example.com"`
	Role  model.Role `json:"role" swaggertype:"string" enums:"viewer,editor,admin" example:"editor"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	Projects the caller owns or collaborates on
//	@Tags			project
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Project}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), user)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// CreateProject godoc
//
//	@Summary	Create project
//	@Tags		project
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security	BearerAuth
//	@Success	201	{object}	serializer.Response{data=model.Project}
//	@Router		/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), user, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// GetProject godoc
//
//	@Summary	Get project
//	@Tags		project
//	@Produce	json
//	@Param		id	path	string	true	"Project ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Project}
//	@Router		/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), user, id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Requires admin. Archiving or restoring is recorded in the activity log
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string						true	"Project ID"	format(uuid)
//	@Param			payload	body	handler.UpdateProjectReq	true	"UpdateProject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), user, id, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Visibility:  req.Visibility,
		Status:      req.Status,
		Settings:    req.Settings,
		Metadata:    req.Metadata,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeleteProject godoc
//
//	@Summary	Delete project
//	@Tags		project
//	@Produce	json
//	@Param		id	path	string	true	"Project ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user, id); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "project deleted"})
}

// AddCollaborator godoc
//
//	@Summary		Invite collaborator
//	@Description	Invite a registered user by email with a role
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string						true	"Project ID"	format(uuid)
//	@Param			payload	body	handler.AddCollaboratorReq	true	"Invite payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{id}/collaborators [post]
func (h *ProjectHandler) AddCollaborator(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	req := AddCollaboratorReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.AddCollaborator(c.Request.Context(), user, id, req.Email, req.Role)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// RemoveCollaborator godoc
//
//	@Summary	Remove collaborator
//	@Tags		project
//	@Produce	json
//	@Param		id		path	string	true	"Project ID"	format(uuid)
//	@Param		userId	path	string	true	"User ID"		format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/projects/{id}/collaborators/{userId} [delete]
func (h *ProjectHandler) RemoveCollaborator(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	target, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	if err := h.svc.RemoveCollaborator(c.Request.Context(), user, id, target); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "collaborator removed"})
}

// AcceptInvitation godoc
//
//	@Summary	Accept invitation
//	@Tags		project
//	@Produce	json
//	@Param		id	path	string	true	"Project ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/projects/{id}/collaborators/accept [post]
func (h *ProjectHandler) AcceptInvitation(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AcceptInvitation(c.Request.Context(), user, id); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "invitation accepted"})
}

// GetProjectActivity godoc
//
//	@Summary	Project activity
//	@Tags		project
//	@Produce	json
//	@Param		id	path	string	true	"Project ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.ProjectActivity}
//	@Router		/projects/{id}/activity [get]
func (h *ProjectHandler) GetProjectActivity(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
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

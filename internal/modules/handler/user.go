package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

type UpdateProfileReq struct {
	Name        *string                `json:"name" example:"Ada"`
	Email       *string                `json:"email" binding:"omitempty,email" example:"ada@example.com"`
	Avatar      *string                `json:"avatar" example:"https://example.com/a.png"`
	Preferences *model.UserPreferences `json:"preferences"`
}

type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// GetMe godoc
//
//	@Summary	Get current user
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.User}
//	@Router		/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

// UpdateMe godoc
//
//	@Summary		Update current user
//	@Description	Update name, email, avatar or preferences; omitted fields are kept
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.UpdateProfileReq	true	"Profile payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	req := UpdateProfileReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), id, service.UpdateProfileInput{
		Name:        req.Name,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Preferences: req.Preferences,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

// ChangePassword godoc
//
//	@Summary	Change password
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.ChangePasswordReq	true	"Password payload"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	req := ChangePasswordReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "password updated"})
}

// DeleteMe godoc
//
//	@Summary	Delete current user
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Message: "account deleted"})
}

// GetUser godoc
//
//	@Summary		Get public profile
//	@Description	Public profile of any user; no authentication required
//	@Tags			user
//	@Produce		json
//	@Param			id	path	string	true	"User ID"	format(uuid)
//	@Success		200	{object}	serializer.Response{data=model.PublicUser}
//	@Router			/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.GetPublic(c.Request.Context(), id)
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

// SearchUsers godoc
//
//	@Summary		Search users
//	@Description	Match name or email, excluding the caller; at most 10 results
//	@Tags			user
//	@Produce		json
//	@Param			query	path	string	true	"Search text"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.PublicUser}
//	@Router			/users/search/{query} [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.Search(c.Request.Context(), id, c.Param("query"))
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type RegisterReq struct {
	Name     string `json:"name" binding:"required" example:"Ada Lovelace"`
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account and return a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.RegisterReq	true	"Register payload"
//	@Success		201	{object}	serializer.Response{data=service.AuthResult}
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		serviceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange credentials for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.LoginReq	true	"Login payload"
//	@Success		200	{object}	serializer.Response{data=service.AuthResult}
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

package realtime

import (
	"context"
	"net/http"
	"strings"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/pkg/utils/tokens"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(raw string) (uuid.UUID, error)
}

type Options struct {
	SendBuffer      int
	MaxMessageBytes int64
	// AllowedOrigins lists browser origins allowed to connect. Requests
	// without an Origin header are always accepted.
	AllowedOrigins []string
}

// Handler upgrades GET /ws and runs the connection's pumps.
type Handler struct {
	upgrader websocket.Upgrader
	reg      *Registry
	disp     *Dispatcher
	authn    Authenticator
	opts     Options
	log      *zap.Logger
}

func NewHandler(reg *Registry, disp *Dispatcher, authn Authenticator, opts Options, log *zap.Logger) *Handler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = defaultMaxMessageBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{reg: reg, disp: disp, authn: authn, opts: opts, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" || strings.EqualFold(strings.TrimRight(o, "/"), origin) {
			return true
		}
	}
	return false
}

// bearer reads the token from the Authorization header or, since browsers
// cannot set headers on an upgrade, the token query parameter.
func bearer(c *gin.Context) string {
	if tok, ok := tokens.ParseBearer(c.GetHeader("Authorization")); ok {
		return tok
	}
	return c.Query("token")
}

// Serve godoc
//
//	@Summary		Open realtime connection
//	@Description	Upgrade to a websocket carrying {event, data} JSON frames
//	@Tags			realtime
//	@Param			token	query	string	false	"Bearer token when the Authorization header cannot be set"
//	@Success		101
//	@Failure		401	{object}	serializer.Response{}
//	@Router			/ws [get]
func (h *Handler) Serve(c *gin.Context) {
	userID, err := h.authn.Authenticate(bearer(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug("websocket upgrade", zap.Error(err))
		return
	}

	client := NewClient(conn, userID, h.opts.SendBuffer)
	if !h.reg.Register(client) {
		_ = conn.Close()
		return
	}
	log := h.log.With(zap.String("connection_id", client.ID), zap.String("user_id", userID.String()))
	log.Debug("websocket connected")

	go client.writePump(log)
	go func() {
		defer func() {
			h.reg.Remove(client)
			log.Debug("websocket disconnected")
		}()
		client.readPump(h.opts.MaxMessageBytes, log, func(ctx context.Context, raw []byte) {
			h.disp.Handle(ctx, client, raw)
		})
	}()
}

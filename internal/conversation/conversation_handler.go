package conversation

import (
	"net/http"

	conversationerrors "github.com/AkshiGarg/nagarro-leave-manager/internal/conversation/errors"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/contextutil"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	store   Store
	logger  *zap.Logger
}

func NewHandler(service Service, store Store, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("conversation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("conversation.handler")
	}
	return &Handler{service: service, store: store, logger: l}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("turn failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// ProcessTurn runs one turn of the conversation. State is persisted only
// after the engine returns, profile before flow, so a crash mid-turn
// replays from the previous flow state rather than pointing at a state
// whose side effects never happened.
func (h *Handler) ProcessTurn(c *gin.Context) {
	ctx := c.Request.Context()

	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("turn validation failed", zap.Error(err))
		h.writeError(c, apperror.MapValidationError(err))
		return
	}
	if req.Text == "" && req.Selection == nil {
		h.writeError(c, conversationerrors.ErrMissingInput)
		return
	}

	ctx = contextutil.WithConversationID(ctx, req.ConversationID)

	profile, err := h.store.LoadProfile(ctx, req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	flow, err := h.store.LoadFlow(ctx, req.ConversationID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	replies, err := h.service.ProcessTurn(ctx, req, profile, flow)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.store.SaveProfile(ctx, req.UserID, profile); err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.store.SaveFlow(ctx, req.ConversationID, flow); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, TurnResponse{Replies: replies})
}

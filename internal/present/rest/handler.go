package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pingme/pingme-server"
	"github.com/pingme/pingme-server/internal/domain"
	"github.com/pingme/pingme-server/internal/present/rest/presenter"
	"github.com/pingme/pingme-server/internal/service"
	"github.com/pingme/pingme-server/internal/usecase"
)

type Handler struct {
	users    *usecase.UserUsecase
	chat     *usecase.ChatUsecase
	auth     *service.AuthService
	dispatch *service.Dispatcher

	allowedOrigins map[string]bool
}

func NewHandler(
	users *usecase.UserUsecase,
	chat *usecase.ChatUsecase,
	auth *service.AuthService,
	dispatch *service.Dispatcher,
	allowedOrigins []string,
) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &Handler{
		users:    users,
		chat:     chat,
		auth:     auth,
		dispatch: dispatch,

		allowedOrigins: allowed,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleWelcome)
	e.GET("/api/users", h.handleListUsers)
	e.POST("/api/signup", h.handleSignup)
	e.POST("/api/login", h.handleLogin)
	e.POST("/api/conversation", h.handleCreateConversation)
	e.GET("/api/conversation/:userId", h.handleListConversations)
	e.POST("/api/message", h.handleAppendMessage)
	e.GET("/api/message/:conversationId", h.handleListMessages)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleWelcome(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome")
}

func (h *Handler) handleListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.users.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, users)
}

func (h *Handler) handleSignup(c echo.Context) error {
	ctx := c.Request().Context()

	var req pingme.SignupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequestMessage(c, "required field is invalid")
	}

	_, err := h.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return presenter.BadRequestMessage(c, "user already exists")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req pingme.LoginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequestMessage(c, "required field is empty")
	}

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.BadRequestMessage(c, "user not found")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}

	token, err := h.auth.IssueToken(ctx, user)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, pingme.LoginResponse{
		User: pingme.PublicUser{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
		},
		Token: token,
	})
}

func (h *Handler) handleCreateConversation(c echo.Context) error {
	ctx := c.Request().Context()

	var req pingme.ConversationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequestMessage(c, "required field is invalid")
	}

	conv, created, err := h.chat.FindOrCreateConversation(ctx, req.SenderID, req.ReceiverID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}

	response := echo.Map{
		"conversation": pingme.Conversation{
			ID:        conv.ID,
			Members:   conv.Members(),
			CreatedAt: conv.CreatedAt,
		},
	}
	if created {
		return presenter.Created(c, response)
	}
	return presenter.OK(c, response)
}

func (h *Handler) handleListConversations(c echo.Context) error {
	ctx := c.Request().Context()

	entries, err := h.chat.ListConversations(ctx, c.Param("userId"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, entries)
}

func (h *Handler) handleAppendMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req pingme.MessageRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequestMessage(c, "required field is invalid")
	}

	msg, err := h.chat.AppendMessage(ctx, req.ConversationID, req.SenderID, req.ReceiverID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, pingme.StoredMessage{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Message:        msg.Body,
		CreatedAt:      msg.CreatedAt,
	})
}

func (h *Handler) handleListMessages(c echo.Context) error {
	ctx := c.Request().Context()

	conversationID := c.Param("conversationId")
	if conversationID == "" {
		return presenter.BadRequestMessage(c, "conversation id is required")
	}

	entries, err := h.chat.ListMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, entries)
}

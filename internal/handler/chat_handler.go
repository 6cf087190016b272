package handler

import (
	"net/http"
	"strings"

	"shopifly/internal/chat"

	"github.com/labstack/echo/v4"
)

// /chatのHTTP（サポートチャットボット、ログイン不要）
type ChatHandler struct {
	bot *chat.Bot
}

// DI
func NewChatHandler(bot *chat.Bot) *ChatHandler {
	return &ChatHandler{bot: bot}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Tag   string `json:"tag"`
	Reply string `json:"reply"`
}

// /chat を登録
func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", h.post)
}

func (h *ChatHandler) post(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message required"})
	}

	tag, reply := h.bot.Reply(msg)
	return c.JSON(http.StatusOK, ChatResponse{Tag: tag, Reply: reply})
}

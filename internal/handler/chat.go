package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/usecase"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// Chat handles POST /api/chatbot/chat. This endpoint keeps the original
// `{reply}` / `{error}` shape instead of the success envelope; the client
// reads them verbatim.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req payload.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required."})
		return
	}

	reply, err := h.chatUsecase.Chat(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyMessage) {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required."})
			return
		}

		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to get response from the assistant.",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, payload.ChatResponse{Reply: reply})
}

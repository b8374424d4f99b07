package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/josephshahen/nibras-api/internal/services/ai"
	"github.com/josephshahen/nibras-api/internal/validation"
)

// ToolsHandler proxies the stateless AI tool panels through a single
// generative provider. Each tool is one prompt in, raw text out.
type ToolsHandler struct {
	provider ai.Provider
}

// NewToolsHandler creates a new tools handler. provider may be nil when no
// API key is configured; the tool routes then answer 503.
func NewToolsHandler(provider ai.Provider) *ToolsHandler {
	return &ToolsHandler{provider: provider}
}

// RegisterRoutes registers tool routes on the given router.
// The router should already carry the /tools prefix.
func (h *ToolsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat", h.Chat).Methods("POST")
	r.HandleFunc("/translate", h.Translate).Methods("POST")
	r.HandleFunc("/summarize", h.Summarize).Methods("POST")
	r.HandleFunc("/code", h.Code).Methods("POST")
}

// ChatToolRequest represents a chat tool request
type ChatToolRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// TranslateRequest represents a translate tool request
type TranslateRequest struct {
	Text       string `json:"text" validate:"required,min=1,max=4000"`
	TargetLang string `json:"target_lang" validate:"required,min=2,max=50"`
}

// SummarizeRequest represents a summarize tool request
type SummarizeRequest struct {
	Text string `json:"text" validate:"required,min=1,max=8000"`
}

// CodeRequest represents a code-assistant tool request
type CodeRequest struct {
	Instruction string `json:"instruction" validate:"required,min=1,max=4000"`
	Language    string `json:"language" validate:"max=50"`
}

// ToolResponse wraps a raw provider completion
type ToolResponse struct {
	Result string `json:"result"`
}

// Chat handles the general-purpose chat tool
func (h *ToolsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatToolRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.complete(w, r, "You are a helpful assistant. Answer concisely.", req.Message)
}

// Translate handles the translation tool
func (h *ToolsHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !h.decode(w, r, &req) {
		return
	}
	system := fmt.Sprintf("You are a translator. Translate the user's text to %s. Reply with the translation only.", req.TargetLang)
	h.complete(w, r, system, req.Text)
}

// Summarize handles the summarization tool
func (h *ToolsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.complete(w, r, "Summarize the user's text in a few short sentences.", req.Text)
}

// Code handles the code-assistant tool
func (h *ToolsHandler) Code(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	system := "You are a programming assistant. Reply with code and a short explanation."
	if req.Language != "" {
		system = fmt.Sprintf("You are a programming assistant. Reply with %s code and a short explanation.", req.Language)
	}
	h.complete(w, r, system, req.Instruction)
}

func (h *ToolsHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if h.provider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "AI provider not configured")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return false
	}

	if err := validation.Validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", validationErrors.Error())
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return false
	}

	return true
}

func (h *ToolsHandler) complete(w http.ResponseWriter, r *http.Request, system, prompt string) {
	result, err := h.provider.Complete(r.Context(), system, prompt)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "AI provider request failed")
		return
	}

	respondJSON(w, http.StatusOK, ToolResponse{Result: result})
}

package delivery

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/speechlab/dubkit/internal/tools"
)

type ToolHandler struct {
	registry *tools.Registry
	log      *logger.ZapLogger
}

func NewToolHandler(registry *tools.Registry, log *logger.ZapLogger) *ToolHandler {
	return &ToolHandler{
		registry: registry,
		log:      log,
	}
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ListTools — the declared tool surface, name plus input schema each.
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	out := make([]toolDescriptor, 0, len(list))
	for _, t := range list {
		out = append(out, toolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// InvokeTool — runs one tool with the request body as its arguments.
func (h *ToolHandler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.registry.Invoke(r.Context(), name, json.RawMessage(body))
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "tool " + name + " failed", Error: err})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tool": name, "result": result})
}

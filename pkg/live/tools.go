package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kaptinlin/jsonrepair"
)

// ToolCall is one function invocation requested by the peer.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// DecodeArgs unmarshals the call's arguments into v. Model output is not
// always strict JSON; a failed decode is retried once after repair.
func (c ToolCall) DecodeArgs(v any) error {
	if len(c.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Args, v); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(string(c.Args))
	if err != nil {
		return wrapError(err, "decode tool args")
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return wrapError(err, "decode tool args")
	}
	return nil
}

// ToolResponse answers one ToolCall. ID and Name echo the call so the peer
// can correlate.
type ToolResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Response any    `json:"response"`
}

// ToolHandler executes one tool call and returns the response payload.
type ToolHandler func(ctx context.Context, call ToolCall) (any, error)

// ToolRouter maps tool names to handlers. The zero-argument constructor
// returns an empty router; calls to unregistered names receive a generic
// acknowledgement so the peer is never left waiting.
type ToolRouter struct {
	mu       sync.RWMutex
	handlers map[string]ToolHandler
}

func NewToolRouter() *ToolRouter {
	return &ToolRouter{handlers: make(map[string]ToolHandler)}
}

// Register installs h for calls named name, replacing any previous handler.
func (r *ToolRouter) Register(name string, h ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Dispatch runs every call of a batch and collects one response per call,
// in call order. A handler error or an unknown name never drops a response;
// the peer always gets an answer for every ID.
func (r *ToolRouter) Dispatch(ctx context.Context, calls []ToolCall) []ToolResponse {
	responses := make([]ToolResponse, 0, len(calls))
	for _, call := range calls {
		responses = append(responses, ToolResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: r.run(ctx, call),
		})
	}
	return responses
}

func (r *ToolRouter) run(ctx context.Context, call ToolCall) any {
	r.mu.RLock()
	h, ok := r.handlers[call.Name]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("live: no handler for tool call", "name", call.Name, "id", call.ID)
		return map[string]any{"result": "success"}
	}
	resp, err := h(ctx, call)
	if err != nil {
		slog.Error("live: tool handler failed", "name", call.Name, "id", call.ID, "err", err)
		return map[string]any{"result": "error", "message": err.Error()}
	}
	return resp
}

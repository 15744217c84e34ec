package live

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestToolRouterDispatch(t *testing.T) {
	r := NewToolRouter()
	r.Register("save_observation", func(ctx context.Context, call ToolCall) (any, error) {
		return map[string]any{"status": "recorded", "message": "Observation stored."}, nil
	})

	calls := []ToolCall{
		{ID: "a", Name: "save_observation"},
		{ID: "b", Name: "never_registered"},
	}
	got := r.Dispatch(context.Background(), calls)
	if len(got) != 2 {
		t.Fatalf("got %d responses, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Name != "save_observation" {
		t.Errorf("response 0 = %+v", got[0])
	}
	if !reflect.DeepEqual(got[0].Response, map[string]any{"status": "recorded", "message": "Observation stored."}) {
		t.Errorf("response 0 payload = %v", got[0].Response)
	}
	// Unknown tools get a generic acknowledgement, never silence.
	if got[1].ID != "b" || !reflect.DeepEqual(got[1].Response, map[string]any{"result": "success"}) {
		t.Errorf("response 1 = %+v", got[1])
	}
}

func TestToolRouterHandlerError(t *testing.T) {
	r := NewToolRouter()
	r.Register("update_amenity", func(ctx context.Context, call ToolCall) (any, error) {
		return nil, errors.New("store offline")
	})

	got := r.Dispatch(context.Background(), []ToolCall{{ID: "x", Name: "update_amenity"}})
	resp, ok := got[0].Response.(map[string]any)
	if !ok || resp["result"] != "error" {
		t.Errorf("response = %+v, want error payload", got[0].Response)
	}
}

func TestDecodeArgsStrict(t *testing.T) {
	call := ToolCall{Args: json.RawMessage(`{"name": "kitchen", "floor": 2}`)}
	var args struct {
		Name  string `json:"name"`
		Floor int    `json:"floor"`
	}
	if err := call.DecodeArgs(&args); err != nil {
		t.Fatal(err)
	}
	if args.Name != "kitchen" || args.Floor != 2 {
		t.Errorf("args = %+v", args)
	}
}

func TestDecodeArgsRepairsLooseJSON(t *testing.T) {
	// Trailing comma and single quotes, as models sometimes emit.
	call := ToolCall{Args: json.RawMessage(`{'name': 'patio',}`)}
	var args struct {
		Name string `json:"name"`
	}
	if err := call.DecodeArgs(&args); err != nil {
		t.Fatal(err)
	}
	if args.Name != "patio" {
		t.Errorf("name = %q", args.Name)
	}
}

func TestDecodeArgsEmpty(t *testing.T) {
	var args struct{}
	if err := (ToolCall{}).DecodeArgs(&args); err != nil {
		t.Fatal(err)
	}
}

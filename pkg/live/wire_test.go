package live

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestParseServerMessageFieldOrder(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})
	raw := []byte(`{
		"serverContent": {
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "` + audio + `"}}]},
			"outputTranscription": {"text": "sure, "},
			"inputTranscription": {"text": "show me"},
			"interrupted": true
		},
		"toolCall": {"functionCalls": [{"id": "c1", "name": "add_room", "args": {"name": "kitchen"}}]}
	}`)

	payloads, err := parseServerMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 5 {
		t.Fatalf("got %d payloads, want 5", len(payloads))
	}

	// Processing order is fixed by the protocol, not by JSON key order.
	if _, ok := payloads[0].(Interrupted); !ok {
		t.Errorf("payload 0 = %T, want Interrupted", payloads[0])
	}
	if f, ok := payloads[1].(TranscriptFragment); !ok || f.Role != RoleUser || f.Text != "show me" {
		t.Errorf("payload 1 = %#v, want user fragment", payloads[1])
	}
	if f, ok := payloads[2].(TranscriptFragment); !ok || f.Role != RoleAssistant || f.Text != "sure, " {
		t.Errorf("payload 2 = %#v, want assistant fragment", payloads[2])
	}
	chunk, ok := payloads[3].(AudioChunk)
	if !ok || string(chunk.Data) != "\x01\x02" {
		t.Errorf("payload 3 = %#v, want decoded audio chunk", payloads[3])
	}
	batch, ok := payloads[4].(ToolCallBatch)
	if !ok || len(batch.Calls) != 1 || batch.Calls[0].Name != "add_room" {
		t.Errorf("payload 4 = %#v, want tool call batch", payloads[4])
	}
}

func TestParseServerMessageSkipsBadParts(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte{0x0a, 0x0b})
	raw := []byte(`{"serverContent": {"modelTurn": {"parts": [
		{"inlineData": {"mimeType": "audio/pcm", "data": "!!!not-base64!!!"}},
		{"inlineData": {"mimeType": "image/png", "data": "` + good + `"}},
		{},
		{"inlineData": {"mimeType": "audio/pcm", "data": "` + good + `"}}
	]}}}`)

	payloads, err := parseServerMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1", len(payloads))
	}
	chunk := payloads[0].(AudioChunk)
	if string(chunk.Data) != "\x0a\x0b" {
		t.Errorf("chunk data = %x", chunk.Data)
	}
}

func TestParseServerMessageMalformed(t *testing.T) {
	if _, err := parseServerMessage([]byte(`{"serverContent": [1,2]}`)); err == nil {
		t.Error("want error for malformed message")
	}
}

func TestParseServerMessageEmpty(t *testing.T) {
	payloads, err := parseServerMessage([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 0 {
		t.Errorf("got %d payloads, want 0", len(payloads))
	}
}

func TestClientMessageShapes(t *testing.T) {
	data, err := json.Marshal(clientMessage{
		RealtimeInput: &realtimeInput{MediaChunks: []MediaChunk{audioChunk([]byte{0x01})}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"realtimeInput":{"mediaChunks":[{"mimeType":"audio/pcm","data":"AQ=="}]}}`
	if string(data) != want {
		t.Errorf("audio message = %s, want %s", data, want)
	}

	data, err = json.Marshal(clientMessage{
		ToolResponse: &toolResponseBody{FunctionResponses: []ToolResponse{
			{ID: "c1", Name: "add_room", Response: map[string]any{"result": "success"}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want = `{"toolResponse":{"functionResponses":[{"id":"c1","name":"add_room","response":{"result":"success"}}]}}`
	if string(data) != want {
		t.Errorf("tool response message = %s, want %s", data, want)
	}
}

package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

type fakeUpstream struct {
	mediaCh chan *genai.Blob
	toolCh  chan genai.LiveToolResponseInput
	recvCh  chan *genai.LiveServerMessage
	closed  chan struct{}
	once    sync.Once
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		mediaCh: make(chan *genai.Blob, 16),
		toolCh:  make(chan genai.LiveToolResponseInput, 16),
		recvCh:  make(chan *genai.LiveServerMessage, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeUpstream) SendRealtimeInput(in genai.LiveRealtimeInput) error {
	f.mediaCh <- in.Media
	return nil
}

func (f *fakeUpstream) SendToolResponse(in genai.LiveToolResponseInput) error {
	f.toolCh <- in
	return nil
}

func (f *fakeUpstream) Receive() (*genai.LiveServerMessage, error) {
	select {
	case m := <-f.recvCh:
		return m, nil
	case <-f.closed:
		return nil, io.EOF
	}
}

func (f *fakeUpstream) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func relayClient(t *testing.T) (*websocket.Conn, *fakeUpstream, chan string) {
	t.Helper()
	up := newFakeUpstream()
	spaces := make(chan string, 1)
	s := newServer(&Config{}, func(ctx context.Context, spaceID string) (upstream, error) {
		spaces <- spaceID
		return up, nil
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live?spaceId=space-7"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, up, spaces
}

func recvOn[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestRelayMediaUpstream(t *testing.T) {
	conn, up, spaces := relayClient(t)
	if got := recvOn(t, spaces, "upstream dial"); got != "space-7" {
		t.Errorf("spaceId = %q", got)
	}

	audio := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})
	err := conn.WriteMessage(websocket.TextMessage, []byte(
		`{"realtimeInput":{"mediaChunks":[`+
			`{"mimeType":"audio/pcm","data":"`+audio+`"},`+
			`{"mimeType":"image/jpeg","data":"%%%bad%%%"}]}}`))
	if err != nil {
		t.Fatal(err)
	}

	blob := recvOn(t, up.mediaCh, "media blob")
	if blob.MIMEType != "audio/pcm" || string(blob.Data) != "\x01\x02" {
		t.Errorf("blob = %q %x", blob.MIMEType, blob.Data)
	}
	// The undecodable chunk was dropped, not forwarded.
	select {
	case extra := <-up.mediaCh:
		t.Errorf("unexpected second blob: %q", extra.MIMEType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelayToolRoundTrip(t *testing.T) {
	conn, up, _ := relayClient(t)

	up.recvCh <- &genai.LiveServerMessage{
		ToolCall: &genai.LiveServerToolCall{
			FunctionCalls: []*genai.FunctionCall{
				{ID: "c1", Name: "add_room", Args: map[string]any{"room_type": "kitchen"}},
			},
		},
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var env serverEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.ToolCall == nil || len(env.ToolCall.FunctionCalls) != 1 {
		t.Fatalf("frame = %s", raw)
	}
	if fc := env.ToolCall.FunctionCalls[0]; fc.ID != "c1" || fc.Args["room_type"] != "kitchen" {
		t.Errorf("call = %+v", fc)
	}

	err = conn.WriteMessage(websocket.TextMessage, []byte(
		`{"toolResponse":{"functionResponses":[{"id":"c1","name":"add_room","response":{"result":"success"}}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	resp := recvOn(t, up.toolCh, "tool response")
	if len(resp.FunctionResponses) != 1 || resp.FunctionResponses[0].ID != "c1" {
		t.Errorf("responses = %+v", resp.FunctionResponses)
	}
}

func TestRelayDownstreamContent(t *testing.T) {
	conn, up, _ := relayClient(t)

	up.recvCh <- &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			Interrupted:        true,
			InputTranscription: &genai.Transcription{Text: "hello"},
			ModelTurn: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "audio/pcm", Data: []byte{0x0a}}},
				{Text: "not forwarded"},
			}},
		},
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var env serverEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	sc := env.ServerContent
	if sc == nil || !sc.Interrupted {
		t.Fatalf("frame = %s", raw)
	}
	if sc.InputTranscription == nil || sc.InputTranscription.Text != "hello" {
		t.Errorf("input transcription = %+v", sc.InputTranscription)
	}
	if sc.ModelTurn == nil || len(sc.ModelTurn.Parts) != 1 {
		t.Fatalf("model turn = %+v", sc.ModelTurn)
	}
	if got := sc.ModelTurn.Parts[0].InlineData.Data; got != base64.StdEncoding.EncodeToString([]byte{0x0a}) {
		t.Errorf("audio data = %q", got)
	}
}

func TestTranslateServerMessageEmpty(t *testing.T) {
	if env := translateServerMessage(&genai.LiveServerMessage{}); env != nil {
		t.Errorf("env = %+v, want nil", env)
	}
	// Turn-complete-only content carries nothing the client consumes.
	msg := &genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{TurnComplete: true}}
	if env := translateServerMessage(msg); env != nil {
		t.Errorf("env = %+v, want nil", env)
	}
}

func TestPropertyToolSchemas(t *testing.T) {
	tools, err := propertyTools()
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 1 || len(tools[0].FunctionDeclarations) != 3 {
		t.Fatalf("tools = %+v", tools)
	}
	byName := map[string]*genai.FunctionDeclaration{}
	for _, fd := range tools[0].FunctionDeclarations {
		byName[fd.Name] = fd
	}
	addRoom, ok := byName["add_room"]
	if !ok {
		t.Fatal("add_room not declared")
	}
	if addRoom.Parameters.Type != genai.TypeObject {
		t.Errorf("add_room parameters type = %v", addRoom.Parameters.Type)
	}
	if _, ok := addRoom.Parameters.Properties["room_type"]; !ok {
		t.Error("add_room missing room_type property")
	}
	if byName["update_amenity"].Parameters.Properties["status"].Type != genai.TypeString {
		t.Error("update_amenity status should be a string")
	}
	if _, ok := byName["save_observation"]; !ok {
		t.Error("save_observation not declared")
	}
}

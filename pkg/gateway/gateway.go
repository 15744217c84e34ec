// Package gateway bridges casavoz live clients to the Gemini Live API. It
// accepts the client wire protocol over a websocket, opens one upstream
// live session per connection, and relays media, transcripts and tool
// traffic in both directions. Tool calls are answered by the client, not
// here; the gateway only declares them upstream.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

// upstream is the slice of the live session the relay needs; satisfied by
// the genai live session and by test fakes.
type upstream interface {
	SendRealtimeInput(input genai.LiveRealtimeInput) error
	SendToolResponse(input genai.LiveToolResponseInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

// Server relays live sessions between clients and the Gemini Live API.
type Server struct {
	cfg      *Config
	client   *genai.Client
	upgrader websocket.Upgrader

	connect func(ctx context.Context, spaceID string) (upstream, error)
}

// New builds a relay backed by the Gemini API.
func New(ctx context.Context, cfg *Config) (*Server, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, wrapError(err, "gateway: create client")
	}
	s := &Server{cfg: cfg, client: client}
	s.connect = s.dialUpstream
	return s, nil
}

// newServer builds a relay with a custom upstream dialer; used by tests.
func newServer(cfg *Config, connect func(ctx context.Context, spaceID string) (upstream, error)) *Server {
	cfg.applyDefaults()
	return &Server{cfg: cfg, connect: connect}
}

func (s *Server) dialUpstream(ctx context.Context, spaceID string) (upstream, error) {
	tools, err := propertyTools()
	if err != nil {
		return nil, err
	}
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt(s.cfg.SystemPrompt, spaceID))},
		},
		Tools:                    tools,
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	session, err := s.client.Live.Connect(ctx, s.cfg.Model, config)
	if err != nil {
		return nil, wrapError(err, "gateway: connect upstream")
	}
	return session, nil
}

// Handler returns the websocket endpoint handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handle)
	return mux
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("gateway: listening", "addr", s.cfg.Listen, "path", s.cfg.Path)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	spaceID := r.URL.Query().Get("spaceId")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("gateway: upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	up, err := s.connect(r.Context(), spaceID)
	if err != nil {
		slog.Error("gateway: upstream connect failed", "space", spaceID, "err", err)
		return
	}
	defer up.Close()
	slog.Info("gateway: session open", "space", spaceID, "remote", r.RemoteAddr)

	var writeMu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.downLoop(conn, &writeMu, up)
	}()
	s.upLoop(conn, up)
	up.Close()
	<-done
	slog.Info("gateway: session closed", "space", spaceID)
}

// upLoop relays client frames to the upstream session until the client
// disconnects.
func (s *Server) upLoop(conn *websocket.Conn, up upstream) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("gateway: client read", "err", err)
			}
			return
		}
		var env clientEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			slog.Debug("gateway: skipping malformed client frame", "err", err)
			continue
		}
		if env.RealtimeInput != nil {
			for _, blob := range mediaBlobs(env.RealtimeInput) {
				if err := up.SendRealtimeInput(genai.LiveRealtimeInput{Media: blob}); err != nil {
					slog.Warn("gateway: upstream media send", "err", err)
					return
				}
			}
		}
		if env.ToolResponse != nil {
			input := genai.LiveToolResponseInput{
				FunctionResponses: functionResponses(env.ToolResponse),
			}
			if err := up.SendToolResponse(input); err != nil {
				slog.Warn("gateway: upstream tool response send", "err", err)
				return
			}
		}
	}
}

// downLoop relays upstream messages to the client until the upstream
// session ends.
func (s *Server) downLoop(conn *websocket.Conn, writeMu *sync.Mutex, up upstream) {
	for {
		msg, err := up.Receive()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Debug("gateway: upstream receive", "err", err)
			}
			conn.Close()
			return
		}
		env := translateServerMessage(msg)
		if env == nil {
			continue
		}
		writeMu.Lock()
		err = conn.WriteJSON(env)
		writeMu.Unlock()
		if err != nil {
			slog.Debug("gateway: client write", "err", err)
			return
		}
	}
}

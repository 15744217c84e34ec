package live

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// transport owns the WebSocket connection: one background reader, serialized
// writes, and a close that is safe to call from any goroutine any number of
// times.
type transport struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	batchCh   chan batchOrError
	closeOnce sync.Once
	writeMu   sync.Mutex
}

type batchOrError struct {
	payloads []Payload
	err      error
}

// dialTransport connects to the realtime endpoint, adding the space
// identifier as a query parameter.
func dialTransport(ctx context.Context, endpoint, spaceID string, header http.Header) (*transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, wrapError(err, "parse endpoint")
	}
	if spaceID != "" {
		q := u.Query()
		q.Set("spaceId", spaceID)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			slog.Debug("live: dial rejected", "status", resp.StatusCode)
		}
		return nil, wrapError(err, "dial realtime endpoint")
	}

	t := &transport{
		conn:    conn,
		closeCh: make(chan struct{}),
		batchCh: make(chan batchOrError, 64),
	}
	go t.readLoop()
	return t, nil
}

func (t *transport) sendMediaChunks(chunks ...MediaChunk) error {
	return t.writeJSON(clientMessage{
		RealtimeInput: &realtimeInput{MediaChunks: chunks},
	})
}

func (t *transport) sendToolResponses(responses []ToolResponse) error {
	return t.writeJSON(clientMessage{
		ToolResponse: &toolResponseBody{FunctionResponses: responses},
	})
}

func (t *transport) writeJSON(msg clientMessage) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	select {
	case <-t.closeCh:
		return ErrClosed
	default:
	}
	return t.conn.WriteJSON(msg)
}

// batches iterates over decoded server messages. The iterator ends on close
// or after yielding a read error; an undecodable message is logged and
// skipped rather than ending the stream.
func (t *transport) batches() iter.Seq2[[]Payload, error] {
	return func(yield func([]Payload, error) bool) {
		for {
			select {
			case <-t.closeCh:
				return
			case item, ok := <-t.batchCh:
				if !ok {
					return
				}
				if !yield(item.payloads, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

func (t *transport) close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closeCh)
		err = t.conn.Close()
	})
	return err
}

func (t *transport) readLoop() {
	defer close(t.batchCh)

	for {
		select {
		case <-t.closeCh:
			return
		default:
		}

		_, message, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.closeCh:
			case t.batchCh <- batchOrError{err: wrapError(err, "read")}:
			}
			return
		}

		payloads, err := parseServerMessage(message)
		if err != nil {
			slog.Warn("live: skipping undecodable server message", "err", err, "len", len(message))
			continue
		}
		if len(payloads) == 0 {
			continue
		}

		select {
		case <-t.closeCh:
			return
		case t.batchCh <- batchOrError{payloads: payloads}:
		}
	}
}

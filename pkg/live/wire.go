package live

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
)

// Outbound messages. Every client frame is a JSON object with exactly one
// top-level key naming the payload kind.

type clientMessage struct {
	RealtimeInput *realtimeInput    `json:"realtimeInput,omitempty"`
	ToolResponse  *toolResponseBody `json:"toolResponse,omitempty"`
}

type realtimeInput struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

// MediaChunk is one base64-encoded media payload on the wire. Audio uses
// mime type "audio/pcm", video frames "image/jpeg".
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func audioChunk(frame []byte) MediaChunk {
	return MediaChunk{
		MIMEType: "audio/pcm",
		Data:     base64.StdEncoding.EncodeToString(frame),
	}
}

func videoChunk(jpeg []byte) MediaChunk {
	return MediaChunk{
		MIMEType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(jpeg),
	}
}

type toolResponseBody struct {
	FunctionResponses []ToolResponse `json:"functionResponses"`
}

// Inbound messages. A single server frame may carry several payload kinds
// at once; parseServerMessage flattens them in field order.

type serverMessage struct {
	ServerContent *serverContent `json:"serverContent,omitempty"`
	ToolCall      *toolCallBody  `json:"toolCall,omitempty"`
}

type serverContent struct {
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	ModelTurn           *modelTurn     `json:"modelTurn,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

type modelTurn struct {
	Parts []modelPart `json:"parts"`
}

type modelPart struct {
	InlineData *MediaChunk `json:"inlineData,omitempty"`
}

type toolCallBody struct {
	FunctionCalls []ToolCall `json:"functionCalls"`
}

// Payload is one decoded unit of a server message: an Interrupted signal, a
// TranscriptFragment, an AudioChunk or a ToolCallBatch.
type Payload interface {
	isPayload()
}

// Interrupted signals that the peer abandoned its current response; all
// queued playback must stop immediately.
type Interrupted struct{}

// TranscriptFragment is a partial piece of speech-to-text for one speaker.
// Fragments are cumulative and arrive mid-utterance.
type TranscriptFragment struct {
	Role Role
	Text string
}

// AudioChunk is one decoded buffer of synthesized speech.
type AudioChunk struct {
	MIMEType string
	Data     []byte
}

// ToolCallBatch carries the function calls of one server message. All calls
// of a batch are answered together in a single response message.
type ToolCallBatch struct {
	Calls []ToolCall
}

func (Interrupted) isPayload()        {}
func (TranscriptFragment) isPayload() {}
func (AudioChunk) isPayload()         {}
func (ToolCallBatch) isPayload()      {}

// parseServerMessage decodes one server frame into its payloads, preserving
// the protocol's field order: interruption first, then the user transcript
// fragment, the assistant transcript fragment, inline audio parts, and
// finally tool calls. Undecodable inline parts are skipped; they never fail
// the whole message.
func parseServerMessage(raw []byte) ([]Payload, error) {
	var msg serverMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, wrapError(err, "parse server message")
	}

	var payloads []Payload
	if sc := msg.ServerContent; sc != nil {
		if sc.Interrupted {
			payloads = append(payloads, Interrupted{})
		}
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			payloads = append(payloads, TranscriptFragment{
				Role: RoleUser,
				Text: sc.InputTranscription.Text,
			})
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			payloads = append(payloads, TranscriptFragment{
				Role: RoleAssistant,
				Text: sc.OutputTranscription.Text,
			})
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData == nil {
					continue
				}
				if !strings.HasPrefix(part.InlineData.MIMEType, "audio/pcm") {
					slog.Debug("live: skipping non-audio inline part", "mime", part.InlineData.MIMEType)
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					slog.Debug("live: skipping undecodable audio part", "err", err)
					continue
				}
				payloads = append(payloads, AudioChunk{
					MIMEType: part.InlineData.MIMEType,
					Data:     data,
				})
			}
		}
	}
	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		payloads = append(payloads, ToolCallBatch{Calls: msg.ToolCall.FunctionCalls})
	}
	return payloads, nil
}

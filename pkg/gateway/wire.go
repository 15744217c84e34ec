package gateway

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

func wrapError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Client-side frames, as received from a casavoz live session.

type clientEnvelope struct {
	RealtimeInput *realtimeInputEnvelope `json:"realtimeInput,omitempty"`
	ToolResponse  *toolResponseEnvelope  `json:"toolResponse,omitempty"`
}

type realtimeInputEnvelope struct {
	MediaChunks []mediaChunkEnvelope `json:"mediaChunks"`
}

type mediaChunkEnvelope struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type toolResponseEnvelope struct {
	FunctionResponses []functionResponseEnvelope `json:"functionResponses"`
}

type functionResponseEnvelope struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Server-side frames, as written back to the client.

type serverEnvelope struct {
	ServerContent *contentEnvelope  `json:"serverContent,omitempty"`
	ToolCall      *toolCallEnvelope `json:"toolCall,omitempty"`
}

type contentEnvelope struct {
	Interrupted         bool               `json:"interrupted,omitempty"`
	InputTranscription  *textEnvelope      `json:"inputTranscription,omitempty"`
	OutputTranscription *textEnvelope      `json:"outputTranscription,omitempty"`
	ModelTurn           *modelTurnEnvelope `json:"modelTurn,omitempty"`
}

type textEnvelope struct {
	Text string `json:"text"`
}

type modelTurnEnvelope struct {
	Parts []partEnvelope `json:"parts"`
}

type partEnvelope struct {
	InlineData *mediaChunkEnvelope `json:"inlineData,omitempty"`
}

type toolCallEnvelope struct {
	FunctionCalls []functionCallEnvelope `json:"functionCalls"`
}

type functionCallEnvelope struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// mediaBlobs converts a client realtimeInput into upstream blobs, skipping
// chunks whose payload does not decode.
func mediaBlobs(in *realtimeInputEnvelope) []*genai.Blob {
	blobs := make([]*genai.Blob, 0, len(in.MediaChunks))
	for _, chunk := range in.MediaChunks {
		data, err := base64.StdEncoding.DecodeString(chunk.Data)
		if err != nil {
			continue
		}
		blobs = append(blobs, &genai.Blob{MIMEType: chunk.MIMEType, Data: data})
	}
	return blobs
}

// functionResponses converts a client toolResponse into the upstream form.
func functionResponses(in *toolResponseEnvelope) []*genai.FunctionResponse {
	out := make([]*genai.FunctionResponse, 0, len(in.FunctionResponses))
	for _, fr := range in.FunctionResponses {
		out = append(out, &genai.FunctionResponse{
			ID:       fr.ID,
			Name:     fr.Name,
			Response: fr.Response,
		})
	}
	return out
}

// translateServerMessage maps one upstream live message onto the client wire
// format. It returns nil for messages with nothing the client consumes
// (setup acknowledgements, turn completion markers).
func translateServerMessage(msg *genai.LiveServerMessage) *serverEnvelope {
	var env serverEnvelope

	if sc := msg.ServerContent; sc != nil {
		content := &contentEnvelope{Interrupted: sc.Interrupted}
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			content.InputTranscription = &textEnvelope{Text: sc.InputTranscription.Text}
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			content.OutputTranscription = &textEnvelope{Text: sc.OutputTranscription.Text}
		}
		if sc.ModelTurn != nil {
			var parts []partEnvelope
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData == nil || len(p.InlineData.Data) == 0 {
					continue
				}
				parts = append(parts, partEnvelope{InlineData: &mediaChunkEnvelope{
					MIMEType: p.InlineData.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
				}})
			}
			if len(parts) > 0 {
				content.ModelTurn = &modelTurnEnvelope{Parts: parts}
			}
		}
		if content.Interrupted || content.InputTranscription != nil ||
			content.OutputTranscription != nil || content.ModelTurn != nil {
			env.ServerContent = content
		}
	}

	if tc := msg.ToolCall; tc != nil && len(tc.FunctionCalls) > 0 {
		calls := make([]functionCallEnvelope, 0, len(tc.FunctionCalls))
		for _, fc := range tc.FunctionCalls {
			calls = append(calls, functionCallEnvelope{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
		env.ToolCall = &toolCallEnvelope{FunctionCalls: calls}
	}

	if env.ServerContent == nil && env.ToolCall == nil {
		return nil
	}
	return &env
}

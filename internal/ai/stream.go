package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// streamPhase tracks where an established streaming session is in its
// lifecycle: awaiting chunks -> finalized (server signalled isFinal) or
// aborted (connection closed or protocol violation before isFinal).
type streamPhase int

const (
	phaseAwaitingChunks streamPhase = iota
	phaseFinalized
	phaseAborted
)

// StreamError reports a failed streaming session that produced no audio.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("elevenlabs stream %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// streamInit is the first outbound message: it establishes voice parameters
// and carries the credential.
type streamInit struct {
	Text          string        `json:"text"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
	XIAPIKey      string        `json:"xi_api_key"`
}

// streamText carries the payload and, with an empty string, the explicit
// end-of-input marker.
type streamText struct {
	Text string `json:"text"`
}

// streamMessage is one inbound message. Audio, when present, is a
// base64-encoded MPEG chunk; IsFinal marks the last message of the session.
type streamMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
}

// SynthesizeStream performs one synthesis over the streaming websocket
// endpoint: it sends the init/payload/terminator messages, then appends every
// received chunk to the result buffer in arrival order until the service
// signals finality.
//
// A connection that closes before isFinal is treated as an implicit end: if
// chunks were already buffered they are returned with Final=false, otherwise
// the session failed.
func (c *ElevenLabsClient) SynthesizeStream(ctx context.Context, req *SpeechRequest) (*SpeechResult, error) {
	if req == nil {
		return nil, &StreamError{Op: "request", Err: fmt.Errorf("request is required")}
	}
	wsURL, err := c.streamURL(req.VoiceID, req.ModelID)
	if err != nil {
		return nil, &StreamError{Op: "url", Err: err}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &StreamError{Op: "dial", Err: err}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Close the connection when the caller gives up so the read loop
	// unblocks; the session then finishes through the aborted path.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	setup := streamInit{
		Text:          " ",
		VoiceSettings: req.VoiceSettings,
		XIAPIKey:      c.apiKey,
	}
	if err := conn.WriteJSON(setup); err != nil {
		return nil, &StreamError{Op: "send init", Err: err}
	}
	if err := conn.WriteJSON(streamText{Text: req.Text}); err != nil {
		return nil, &StreamError{Op: "send text", Err: err}
	}
	if err := conn.WriteJSON(streamText{Text: ""}); err != nil {
		return nil, &StreamError{Op: "send terminator", Err: err}
	}

	phase := phaseAwaitingChunks
	var buf bytes.Buffer
	var abortErr error
	for phase == phaseAwaitingChunks {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Closed without isFinal; partial buffers are still
			// usable audio.
			phase = phaseAborted
			abortErr = err
			break
		}
		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			phase = phaseAborted
			abortErr = fmt.Errorf("decode message: %w", err)
			break
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				phase = phaseAborted
				abortErr = fmt.Errorf("decode audio chunk: %w", err)
				break
			}
			buf.Write(chunk)
		}
		if msg.IsFinal {
			phase = phaseFinalized
		}
	}

	if phase == phaseAborted && buf.Len() == 0 {
		return nil, &StreamError{Op: "receive", Err: abortErr}
	}
	return &SpeechResult{Audio: buf.Bytes(), Final: phase == phaseFinalized}, nil
}

// streamURL derives the websocket endpoint from the configured base URL,
// addressed by voice as a path parameter and model as a query parameter.
func (c *ElevenLabsClient) streamURL(voiceID, modelID string) (string, error) {
	if strings.TrimSpace(voiceID) == "" {
		return "", fmt.Errorf("voice_id is required")
	}
	endpoint, err := url.Parse(strings.TrimRight(c.baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse elevenlabs base url: %w", err)
	}
	switch endpoint.Scheme {
	case "https":
		endpoint.Scheme = "wss"
	case "http":
		endpoint.Scheme = "ws"
	}
	endpoint.Path = fmt.Sprintf("/v1/text-to-speech/%s/stream-input", voiceID)
	query := endpoint.Query()
	if modelID != "" {
		query.Set("model_id", modelID)
	}
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

// Streaming returns a SpeechClient view of c that synthesizes over the
// streaming endpoint instead of the buffered one.
func (c *ElevenLabsClient) Streaming() SpeechClient {
	return streamModeClient{c}
}

type streamModeClient struct {
	c *ElevenLabsClient
}

func (s streamModeClient) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResult, error) {
	return s.c.SynthesizeStream(ctx, req)
}

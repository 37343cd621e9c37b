package ai

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
)

// streamServer runs a websocket endpoint that consumes the three outbound
// protocol messages, hands them to the test, and then replies with handle.
func streamServer(t *testing.T, handle func(conn *websocket.Conn), sent *[]map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := 0; i < 3; i++ {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if sent != nil {
				*sent = append(*sent, msg)
			}
		}
		handle(conn)
	}))
}

func TestSynthesizeStreamReassemblesChunksInOrder(t *testing.T) {
	var sent []map[string]any
	srv := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(map[string]any{"audio": "AA=="})
		conn.WriteJSON(map[string]any{"audio": "UQ=="})
		conn.WriteJSON(map[string]any{"isFinal": true})
	}, &sent)
	defer srv.Close()

	c, _ := NewElevenLabs("xi-test", WithElevenLabsBaseURL(srv.URL))
	res, err := c.SynthesizeStream(context.Background(), &SpeechRequest{
		Text:          "Hello there!",
		VoiceID:       "voice-1",
		ModelID:       "eleven_turbo_v2",
		VoiceSettings: DefaultVoiceSettings(),
	})
	if err != nil {
		t.Fatalf("SynthesizeStream: %v", err)
	}
	if !bytes.Equal(res.Audio, []byte{0x00, 0x51}) {
		t.Fatalf("chunks reassembled as %v, want [0 81]", res.Audio)
	}
	if !res.Final {
		t.Fatalf("expected final result")
	}

	if len(sent) != 3 {
		t.Fatalf("expected 3 outbound messages, got %d", len(sent))
	}
	if sent[0]["xi_api_key"] != "xi-test" || sent[0]["text"] != " " {
		t.Fatalf("init message wrong: %v", sent[0])
	}
	if sent[1]["text"] != "Hello there!" {
		t.Fatalf("payload message wrong: %v", sent[1])
	}
	if sent[2]["text"] != "" {
		t.Fatalf("terminator message wrong: %v", sent[2])
	}
}

// A connection that closes before isFinal is an implicit end when audio was
// already buffered. This mirrors the service's observed behavior and is a
// deliberate policy choice, not an accident: partial audio is still playable.
func TestSynthesizeStreamCloseWithoutFinalIsDegradedSuccess(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(map[string]any{"audio": "AA=="})
		// Close without sending isFinal.
	}, nil)
	defer srv.Close()

	c, _ := NewElevenLabs("xi-test", WithElevenLabsBaseURL(srv.URL))
	res, err := c.SynthesizeStream(context.Background(), &SpeechRequest{Text: "hi", VoiceID: "v"})
	if err != nil {
		t.Fatalf("expected degraded success, got error: %v", err)
	}
	if !bytes.Equal(res.Audio, []byte{0x00}) {
		t.Fatalf("buffered audio lost: %v", res.Audio)
	}
	if res.Final {
		t.Fatalf("degraded result must not report final")
	}
}

func TestSynthesizeStreamCloseWithoutAudioFails(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn) {
		// Close immediately: nothing buffered, so the session failed.
	}, nil)
	defer srv.Close()

	c, _ := NewElevenLabs("xi-test", WithElevenLabsBaseURL(srv.URL))
	_, err := c.SynthesizeStream(context.Background(), &SpeechRequest{Text: "hi", VoiceID: "v"})
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected StreamError, got %v", err)
	}
}

func TestSynthesizeStreamMalformedMessage(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	}, nil)
	defer srv.Close()

	c, _ := NewElevenLabs("xi-test", WithElevenLabsBaseURL(srv.URL))
	_, err := c.SynthesizeStream(context.Background(), &SpeechRequest{Text: "hi", VoiceID: "v"})
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected StreamError for protocol violation, got %v", err)
	}
}

func TestStreamURL(t *testing.T) {
	c, _ := NewElevenLabs("xi-test")
	got, err := c.streamURL("voice-1", "eleven_turbo_v2")
	if err != nil {
		t.Fatalf("streamURL: %v", err)
	}
	want := "wss://api.elevenlabs.io/v1/text-to-speech/voice-1/stream-input?model_id=eleven_turbo_v2"
	if got != want {
		t.Fatalf("streamURL = %s, want %s", got, want)
	}
	if _, err := c.streamURL("", "m"); err == nil {
		t.Fatalf("empty voice accepted")
	}
}

func TestSynthesizeStreamHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := streamServer(t, func(conn *websocket.Conn) {}, nil)
	defer srv.Close()

	c, _ := NewElevenLabs("xi-test", WithElevenLabsBaseURL(srv.URL))
	if _, err := c.SynthesizeStream(ctx, &SpeechRequest{Text: "hi", VoiceID: "v"}); err == nil {
		t.Fatalf("cancelled context accepted")
	}
}

var _ SpeechClient = streamModeClient{}
var _ SpeechClient = (*ElevenLabsClient)(nil)

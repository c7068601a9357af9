package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comms-hub/errors"

	"github.com/stretchr/testify/require"
)

func completionBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
	return string(b)
}

func TestGenerate_Success(t *testing.T) {
	req := require.New(t)

	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(completionBody("Copy that. Ambulance dispatched to your position.")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model", 5*time.Second, slog.Default())
	text, err := c.Generate(context.Background(), Request{
		System: "You are a dispatcher assistant",
		Prompt: "A responder reported: I need an ambulance",
	})
	req.NoError(err)
	req.Equal("Copy that. Ambulance dispatched to your position.", text)
	req.Equal("Bearer test-key", gotAuth)
	req.Equal("test-model", gotReq.Model)
	req.Len(gotReq.Messages, 2)
	req.Equal("system", gotReq.Messages[0].Role)
	req.Equal("user", gotReq.Messages[1].Role)
}

func TestGenerate_CollaboratorErrorsWrapGenerationFailure(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Upstream 500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusInternalServerError)
		}},
		{"Malformed payload", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"Empty completion", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(completionBody("   ")))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "k", "m", 5*time.Second, slog.Default())
			_, err := c.Generate(context.Background(), Request{Prompt: "p"})
			require.ErrorIs(t, err, errors.ErrGenerationFailed)
		})
	}
	_ = req
}

func TestGenerate_ContextTimeout(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", 5*time.Second, slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, Request{Prompt: "p"})
	req.ErrorIs(err, errors.ErrGenerationFailed)
}

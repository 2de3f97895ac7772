package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStructuredReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "remote work", req.Topic)
		assert.Equal(t, ToneCasual, req.Tone)

		json.NewEncoder(w).Encode(map[string]string{
			"status":           "success",
			"title":            "The Future of Remote Work",
			"content":          "Remote work is here to stay...",
			"meta_description": "Why remote work endures",
			"blog_preview":     "Remote work is here",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Generate(context.Background(), "remote work", ToneCasual)
	require.NoError(t, err)
	assert.True(t, result.Structured)
	assert.Equal(t, "The Future of Remote Work", result.Title)
	assert.Equal(t, "Remote work is here to stay...", result.Content)
	assert.Equal(t, "Why remote work endures", result.MetaDescription)
}

func TestGeneratePlainReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "Here is a quick draft."})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Generate(context.Background(), "anything", ToneInformative)
	require.NoError(t, err)
	assert.False(t, result.Structured)
	assert.Equal(t, "Here is a quick draft.", result.Response)
}

func TestGeneratePlainReplyAlternateKeys(t *testing.T) {
	for _, key := range []string{"message", "content"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{key: "text via " + key})
		}))

		client := NewClient(server.URL)
		result, err := client.Generate(context.Background(), "anything", ToneInformative)
		server.Close()

		require.NoError(t, err)
		assert.Equal(t, "text via "+key, result.Response)
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), "anything", ToneInformative)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGenerateEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), "anything", ToneInformative)
	assert.Error(t, err)
}

func TestGenerateUnconfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Generate(context.Background(), "anything", ToneInformative)
	assert.Error(t, err)
}

func TestValidTone(t *testing.T) {
	for _, tone := range []string{ToneProfessional, ToneCasual, ToneInformative, ToneEngaging} {
		assert.True(t, ValidTone(tone))
	}
	assert.False(t, ValidTone("sarcastic"))
	assert.False(t, ValidTone(""))
}

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  High beta basket.  "}}]}`)
	}))
	defer srv.Close()

	c := NewCommentator("sk-test", "", option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	out, err := c.Comment(context.Background(), "| NVDA | 1.5 | see https://example.org/x")
	require.NoError(t, err)
	assert.Equal(t, "High beta basket.", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, string(got.Messages[1].Content), "NVDA")
	assert.NotContains(t, string(got.Messages[1].Content), "example.org")
}

func TestCommentEmptyReport(t *testing.T) {
	_, err := NewCommentator("sk-test", "").Comment(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSanitizeReportCutsOnRuneBoundary(t *testing.T) {
	report := strings.Repeat("a", maxReportBytes-1) + "∞∞"
	got := sanitizeReport(report)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxReportBytes-1), got)

	short := "| FLAT | ∞ * |"
	assert.Equal(t, short, sanitizeReport(short))
}

package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kagi/internal/models"
)

var testCandidates = []*models.Shortcut{
	{ID: "a", App: "vim", Action: "Split window vertically", Keys: models.Keys{Linux: "Ctrl+w v"}, Tags: []string{"layout"}},
	{ID: "b", App: "vim", Action: "Close window", Keys: models.Keys{Linux: "Ctrl+w q"}},
}

// openAIServer answers chat-completion requests with content after delay.
func openAIServer(t *testing.T, delay time.Duration, status int, content string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure"}}`))
			return
		}
		body, _ := json.Marshal(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newOpenAI(t *testing.T, baseURL string, timeoutMS int) Provider {
	t.Helper()
	p, err := New(Config{Kind: KindOpenAI, APIKey: "test-key", Model: "test-model", BaseURL: baseURL, TimeoutMS: timeoutMS})
	require.NoError(t, err)
	return p
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Kind: KindNone})
	require.NoError(t, err)
	assert.Equal(t, "none", p.Name())

	_, err = p.Rank(context.Background(), "split", testCandidates, 5)
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = p.Explain(context.Background(), testCandidates[0], "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Config{Kind: "palm"})
	assert.Error(t, err)
}

func TestMissingCredential_NoNetwork(t *testing.T) {
	srv, hits := openAIServer(t, 0, http.StatusOK, `{"rankedShortcuts":["a"]}`)
	for _, kind := range []Kind{KindOpenAI, KindAnthropic, KindCohere} {
		p, err := New(Config{Kind: kind, BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = p.Rank(context.Background(), "split", testCandidates, 5)
		assert.ErrorIs(t, err, ErrMissingCredential, kind)
		_, err = p.Explain(context.Background(), testCandidates[0], "")
		assert.ErrorIs(t, err, ErrMissingCredential, kind)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestOpenAI_Rank(t *testing.T) {
	srv, hits := openAIServer(t, 0, http.StatusOK, "Here:\n{\"rankedShortcuts\": [\"b\", \"a\"]}")
	p := newOpenAI(t, srv.URL, 2000)

	ids, err := p.Rank(context.Background(), "close", testCandidates, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestOpenAI_RankEmptyCandidates(t *testing.T) {
	srv, hits := openAIServer(t, 0, http.StatusOK, `{"rankedShortcuts":[]}`)
	p := newOpenAI(t, srv.URL, 2000)

	ids, err := p.Rank(context.Background(), "close", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestOpenAI_Explain(t *testing.T) {
	srv, _ := openAIServer(t, 0, http.StatusOK, `{"explanation": "Press Ctrl+w v to split the window vertically."}`)
	p := newOpenAI(t, srv.URL, 2000)

	s, err := p.Explain(context.Background(), testCandidates[0], models.PlatformLinux)
	require.NoError(t, err)
	assert.Equal(t, "Press Ctrl+w v to split the window vertically.", s)
}

func TestOpenAI_Timeout(t *testing.T) {
	srv, _ := openAIServer(t, 200*time.Millisecond, http.StatusOK, `{"rankedShortcuts":["a"]}`)
	p := newOpenAI(t, srv.URL, 100)

	start := time.Now()
	_, err := p.Rank(context.Background(), "split", testCandidates, 5)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, FailureTimeout, Classify(err))
	assert.Less(t, time.Since(start), 190*time.Millisecond)
}

func TestOpenAI_MalformedReply(t *testing.T) {
	srv, hits := openAIServer(t, 0, http.StatusOK, "not json")
	p := newOpenAI(t, srv.URL, 2000)

	_, err := p.Rank(context.Background(), "split", testCandidates, 5)
	assert.ErrorIs(t, err, ErrMalformedReply)
	_, err = p.Explain(context.Background(), testCandidates[0], "")
	assert.ErrorIs(t, err, ErrMalformedReply)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits), "no retry after a malformed reply")
}

func TestOpenAI_HTTPStatus(t *testing.T) {
	srv, hits := openAIServer(t, 0, http.StatusInternalServerError, "")
	p := newOpenAI(t, srv.URL, 2000)

	_, err := p.Rank(context.Background(), "split", testCandidates, 5)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "single attempt")
}

func TestOpenAI_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newOpenAI(t, url, 2000)
	_, err := p.Rank(context.Background(), "split", testCandidates, 5)
	assert.ErrorIs(t, err, ErrNetwork)
}

// cohereServer answers Cohere chat requests with text, or with status when it
// is not 200. The returned func reports the last decoded request body.
func cohereServer(t *testing.T, status int, text string) (*httptest.Server, *int32, func() map[string]interface{}) {
	t.Helper()
	var (
		hits int32
		mu   sync.Mutex
		last map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		last = req
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"service unavailable"}`))
			return
		}
		body, _ := json.Marshal(map[string]interface{}{
			"response_id":   "r1",
			"generation_id": "g1",
			"finish_reason": "COMPLETE",
			"text":          text,
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, func() map[string]interface{} {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestCohere_Rank(t *testing.T) {
	srv, hits, last := cohereServer(t, http.StatusOK, "```json\n{\"rankedShortcuts\": [\"b\", \"a\"]}\n```")
	p, err := New(Config{Kind: KindCohere, APIKey: "k", BaseURL: srv.URL, TimeoutMS: 2000})
	require.NoError(t, err)

	ids, err := p.Rank(context.Background(), "close", testCandidates, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, rankSystemPrompt, last()["preamble"])
	assert.Equal(t, BuildRankPrompt("close", testCandidates, 2), last()["message"])
	assert.Equal(t, "command-r-08-2024", last()["model"])
}

func TestCohere_MalformedReply(t *testing.T) {
	srv, hits, _ := cohereServer(t, http.StatusOK, "not json")
	p, err := New(Config{Kind: KindCohere, APIKey: "k", BaseURL: srv.URL, TimeoutMS: 2000})
	require.NoError(t, err)

	_, err = p.Rank(context.Background(), "close", testCandidates, 2)
	assert.ErrorIs(t, err, ErrMalformedReply)
	_, err = p.Explain(context.Background(), testCandidates[0], "")
	assert.ErrorIs(t, err, ErrMalformedReply)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCohere_Explain(t *testing.T) {
	srv, _, last := cohereServer(t, http.StatusOK, `{"explanation": "Splits the window vertically."}`)
	p, err := New(Config{Kind: KindCohere, APIKey: "k", BaseURL: srv.URL, TimeoutMS: 2000})
	require.NoError(t, err)

	s, err := p.Explain(context.Background(), testCandidates[0], models.PlatformLinux)
	require.NoError(t, err)
	assert.Equal(t, "Splits the window vertically.", s)
	assert.Equal(t, explainSystemPrompt, last()["preamble"])
}

func TestCohere_ServiceUnavailableIsSingleAttempt(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusTooManyRequests} {
		srv, hits, _ := cohereServer(t, status, "")
		p, err := New(Config{Kind: KindCohere, APIKey: "k", BaseURL: srv.URL, TimeoutMS: 2000})
		require.NoError(t, err)

		start := time.Now()
		_, err = p.Rank(context.Background(), "close", testCandidates, 2)
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, status, httpErr.Status)

		_, err = p.Explain(context.Background(), testCandidates[0], "")
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, status, httpErr.Status)

		assert.Equal(t, int32(2), atomic.LoadInt32(hits), "one request per call")
		assert.Less(t, time.Since(start), time.Second, "no backoff between attempts")
	}
}

func TestBuildRankPrompt(t *testing.T) {
	prompt := BuildRankPrompt("split", testCandidates, 3)
	assert.Contains(t, prompt, "Request: split")
	assert.Contains(t, prompt, "at most 3 ids")
	assert.Contains(t, prompt, "id: a")
	assert.Contains(t, prompt, "linux: Ctrl+w v")
	assert.Contains(t, prompt, "tags: layout")
}

func TestBuildExplainPrompt(t *testing.T) {
	rec := &models.Shortcut{App: "vscode", Action: "Toggle terminal", Keys: models.Keys{Mac: "Ctrl+`", Windows: "Ctrl+`"}, Context: "editor"}
	prompt := BuildExplainPrompt(rec, models.PlatformWindows)
	assert.Contains(t, prompt, "Application: vscode")
	assert.Contains(t, prompt, "Keys: Ctrl+`")
	assert.Contains(t, prompt, "Context: editor")
}

package slackclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/dataurl"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolerr"
)

// stubSlack is a fake Slack Web API recording chat.postMessage calls.
type stubSlack struct {
	server       *httptest.Server
	postResponse string
	lastChannel  string
	lastText     string
	lastForm     map[string][]string
	fileResponse string
}

func newStubSlack(t *testing.T) *stubSlack {
	t.Helper()

	s := &stubSlack{
		postResponse: `{"ok":true,"channel":"STUB","ts":"1700000000.000100"}`,
		fileResponse: `{"ok":false,"error":"file_not_found"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		s.lastChannel = r.Form.Get("channel")
		s.lastText = r.Form.Get("text")
		s.lastForm = r.Form
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.postResponse))
	})
	mux.HandleFunc("/files.info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.fileResponse))
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)

	return s
}

func TestPostImageUsesDefaultChannel(t *testing.T) {
	stub := newStubSlack(t)
	c := New("xoxb-test", "C0DEFAULT", WithAPIURL(stub.server.URL))

	result, err := c.PostImage(context.Background(), "", "", "https://img.example/a.png")
	require.NoError(t, err)

	assert.Equal(t, "C0DEFAULT", stub.lastChannel)
	assert.Equal(t, DefaultMessage+"\nhttps://img.example/a.png", stub.lastText)
	assert.Equal(t, "1700000000.000100", result.Timestamp)
}

func TestPostImageKeepsUnfurlingOn(t *testing.T) {
	stub := newStubSlack(t)
	c := New("xoxb-test", "C0DEFAULT", WithAPIURL(stub.server.URL))

	_, err := c.PostImage(context.Background(), "", "", "https://img.example/a.png")
	require.NoError(t, err)

	// Link unfurling is requested explicitly; media unfurling is Slack's
	// default and must never be sent as disabled.
	assert.Equal(t, "true", stub.lastForm["unfurl_links"][0])
	assert.NotContains(t, stub.lastForm, "unfurl_media")
}

func TestPostImageExplicitChannelWinsOverDefault(t *testing.T) {
	stub := newStubSlack(t)
	c := New("xoxb-test", "C0DEFAULT", WithAPIURL(stub.server.URL))

	_, err := c.PostImage(context.Background(), "C123", "custom text", "https://img.example/a.png")
	require.NoError(t, err)

	assert.Equal(t, "C123", stub.lastChannel)
	assert.Equal(t, "custom text\nhttps://img.example/a.png", stub.lastText)
}

func TestPostImageNoChannelConfigured(t *testing.T) {
	stub := newStubSlack(t)
	c := New("xoxb-test", "", WithAPIURL(stub.server.URL))

	_, err := c.PostImage(context.Background(), "", "", "https://img.example/a.png")
	require.Error(t, err)
	assert.Equal(t, toolerr.NoChannelConfigured, toolerr.CodeOf(err))
}

func TestPostImageEnvelopeRejection(t *testing.T) {
	stub := newStubSlack(t)
	// HTTP 200 with a failed envelope must still be a rejection.
	stub.postResponse = `{"ok":false,"error":"channel_not_found"}`
	c := New("xoxb-test", "C0DEFAULT", WithAPIURL(stub.server.URL))

	_, err := c.PostImage(context.Background(), "", "", "https://img.example/a.png")
	require.Error(t, err)
	assert.Equal(t, toolerr.MessagingRejected, toolerr.CodeOf(err))
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestResolveFileByID(t *testing.T) {
	content := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(content)
	}))
	t.Cleanup(files.Close)

	stub := newStubSlack(t)
	stub.fileResponse = `{"ok":true,"file":{"id":"F123","url_private":"` + files.URL + `/view",` +
		`"url_private_download":"` + files.URL + `/download"}}`

	c := New("xoxb-test", "", WithAPIURL(stub.server.URL))

	u, err := c.ResolveFile(context.Background(), "F123", "")
	require.NoError(t, err)

	contentType, data, err := dataurl.Decode(u)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, content, data)
}

func TestResolveFileByPrivateURL(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// No Content-Type header: encoding must fall back to octet-stream.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("raw-bytes"))
	}))
	t.Cleanup(files.Close)

	c := New("xoxb-test", "")

	u, err := c.ResolveFile(context.Background(), "", files.URL+"/direct")
	require.NoError(t, err)

	contentType, data, err := dataurl.Decode(u)
	require.NoError(t, err)
	assert.Equal(t, dataurl.DefaultContentType, contentType)
	assert.Equal(t, []byte("raw-bytes"), data)
}

func TestResolveFileAmbiguousOrMissing(t *testing.T) {
	c := New("xoxb-test", "")

	_, err := c.ResolveFile(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, toolerr.AmbiguousOrMissingFileReference, toolerr.CodeOf(err))

	_, err = c.ResolveFile(context.Background(), "F123", "https://files.example/a")
	require.Error(t, err)
	assert.Equal(t, toolerr.AmbiguousOrMissingFileReference, toolerr.CodeOf(err))
}

func TestResolveFileLookupFailed(t *testing.T) {
	stub := newStubSlack(t)
	stub.fileResponse = `{"ok":false,"error":"file_not_found"}`
	c := New("xoxb-test", "", WithAPIURL(stub.server.URL))

	_, err := c.ResolveFile(context.Background(), "F404", "")
	require.Error(t, err)
	assert.Equal(t, toolerr.FileLookupFailed, toolerr.CodeOf(err))
	assert.Contains(t, err.Error(), "file_not_found")
}

func TestResolveFileLookupWithoutPrivateURL(t *testing.T) {
	stub := newStubSlack(t)
	stub.fileResponse = `{"ok":true,"file":{"id":"F123"}}`
	c := New("xoxb-test", "", WithAPIURL(stub.server.URL))

	_, err := c.ResolveFile(context.Background(), "F123", "")
	require.Error(t, err)
	assert.Equal(t, toolerr.FileLookupFailed, toolerr.CodeOf(err))
}

func TestResolveFileDownloadFailed(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(files.Close)

	c := New("xoxb-test", "")

	_, err := c.ResolveFile(context.Background(), "", files.URL+"/gone")
	require.Error(t, err)
	assert.Equal(t, toolerr.FileDownloadFailed, toolerr.CodeOf(err))
	assert.Contains(t, err.Error(), "404")
}

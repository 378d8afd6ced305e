// Package slackclient posts image links into Slack channels and resolves
// Slack file references into self-contained data URLs.
package slackclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/dataurl"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolerr"
)

// DefaultMessage accompanies a posted image when the caller supplies none.
const DefaultMessage = "Here's your image!"

// maxFileSize caps downloaded file content (20MB).
const maxFileSize = 20 << 20

// Client wraps the Slack Web API with a fixed bot credential and an
// optional process-wide default channel.
type Client struct {
	token          string
	defaultChannel string
	apiURL         string
	httpClient     *http.Client
	logger         *slog.Logger
	api            *slack.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the Slack Web API base URL. Used by tests to point
// at stubs.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.apiURL = u
	}
}

// WithHTTPClient overrides the HTTP client used for both API calls and
// file downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client authenticating with the bot token. defaultChannel
// may be empty; posting without an explicit channel then fails with
// NoChannelConfigured.
func New(token, defaultChannel string, opts ...Option) *Client {
	c := &Client{
		token:          token,
		defaultChannel: defaultChannel,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		logger:         slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	slackOpts := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(c.apiURL))
	}

	c.api = slack.New(token, slackOpts...)

	return c
}

// PostResult is the acknowledged delivery of one message.
type PostResult struct {
	Channel   string
	Timestamp string
	Text      string
}

// PostImage posts message and imageURL (on its own line, with link
// unfurling) into channelID, or the default channel when channelID is
// empty. Slack's envelope-level failure becomes MessagingRejected carrying
// the envelope's error code, regardless of HTTP status.
func (c *Client) PostImage(ctx context.Context, channelID, message, imageURL string) (*PostResult, error) {
	channel, err := c.resolveChannel(channelID)
	if err != nil {
		return nil, err
	}

	if message == "" {
		message = DefaultMessage
	}

	text := message + "\n" + imageURL

	// Both unfurl kinds must stay on. slack-go has no enable option for
	// unfurl_media, but Slack's API defaults it to true, so leaving it
	// unset (and never MsgOptionDisableMediaUnfurl) keeps media previews.
	respChannel, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionEnableLinkUnfurl(),
	)
	if err != nil {
		c.logger.Error("slack post failed", "channel", channel, "err", err)

		return nil, toolerr.New(toolerr.MessagingRejected, "%s", err.Error())
	}

	c.logger.Info("posted to slack", "channel", respChannel, "ts", ts)

	return &PostResult{Channel: respChannel, Timestamp: ts, Text: text}, nil
}

// resolveChannel picks exactly one of the explicit value and the process
// default.
func (c *Client) resolveChannel(channelID string) (string, error) {
	if channelID != "" {
		return channelID, nil
	}

	if c.defaultChannel != "" {
		return c.defaultChannel, nil
	}

	return "", toolerr.New(toolerr.NoChannelConfigured,
		"no channel_id given and no default channel configured")
}

// ResolveFile turns a Slack file reference into a data URL. Exactly one of
// fileID and privateURL must be supplied. A file id is looked up via
// files.info (preferring the download variant of the private URL); the
// resolved or supplied address is then downloaded with bearer auth and
// re-encoded, preserving the declared content type.
func (c *Client) ResolveFile(ctx context.Context, fileID, privateURL string) (string, error) {
	if (fileID == "") == (privateURL == "") {
		return "", toolerr.New(toolerr.AmbiguousOrMissingFileReference,
			"supply exactly one of file_id and file_url")
	}

	downloadURL := privateURL

	if fileID != "" {
		file, _, _, err := c.api.GetFileInfoContext(ctx, fileID, 0, 0)
		if err != nil {
			return "", toolerr.New(toolerr.FileLookupFailed, "files.info for %s: %s", fileID, err.Error())
		}

		switch {
		case file.URLPrivateDownload != "":
			downloadURL = file.URLPrivateDownload
		case file.URLPrivate != "":
			downloadURL = file.URLPrivate
		default:
			return "", toolerr.New(toolerr.FileLookupFailed, "file %s has no private URL", fileID)
		}
	}

	contentType, data, err := c.download(ctx, downloadURL)
	if err != nil {
		return "", err
	}

	c.logger.Info("slack file resolved", "bytes", len(data), "content_type", contentType)

	return dataurl.Encode(contentType, data), nil
}

// download fetches a private Slack address with bearer auth and returns
// the declared content type and the bytes.
func (c *Client) download(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("slackclient: create download request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, toolerr.New(toolerr.FileDownloadFailed, "%v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	if resp.StatusCode != http.StatusOK {
		return "", nil, toolerr.New(toolerr.FileDownloadFailed, "download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return "", nil, toolerr.New(toolerr.FileDownloadFailed, "read body: %v", err)
	}

	return resp.Header.Get("Content-Type"), data, nil
}

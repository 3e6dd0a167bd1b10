package x

// client.go — X API v2 client: mention polling and replies.
//
// Implements ports.MentionSource and ports.Replier. Mentions are pulled
// with a since_id cursor so each tweet is seen exactly once per process
// lifetime; the first poll only seeds the cursor.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/httpx"
	"github.com/xmarket/bot/internal/ports"
)

const (
	defaultXBase = "https://api.twitter.com"

	// Safety cap; the actual polling cadence is the configured interval.
	// Keeps a reply burst from tripping the write limits.
	xRatePerSec = 0.5

	mentionPageSize = 50
)

// Client talks to the X API v2 with OAuth 1.0a user context.
type Client struct {
	http      *http.Client
	base      string
	botUserID string
	signer    oauthSigner
	limiter   *rate.Limiter
	retry     httpx.Policy
	sinceID   string
}

// NewClient builds a client from the configured secrets.
func NewClient(base string, secrets config.Secrets) *Client {
	if base == "" {
		base = defaultXBase
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		base:      base,
		botUserID: secrets.XBotUserID,
		signer: oauthSigner{
			consumerKey:    secrets.XAPIKey,
			consumerSecret: secrets.XAPISecret,
			token:          secrets.XAccessToken,
			tokenSecret:    secrets.XAccessTokenSecret,
		},
		limiter: rate.NewLimiter(xRatePerSec, 3),
		retry:   httpx.Default(),
	}
}

// --- API v2 DTOs ---

type mentionsResponse struct {
	Data     []tweetData `json:"data"`
	Includes struct {
		Users []userData `json:"users"`
	} `json:"includes"`
	Meta struct {
		NewestID    string `json:"newest_id"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

type tweetData struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	AuthorID string `json:"author_id"`
}

type userData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type replyRequest struct {
	Text  string `json:"text"`
	Reply struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply"`
}

type replyResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// FetchMentions returns mentions newer than the internal cursor, oldest
// first. The first call seeds the cursor and returns nothing, so the bot
// never replays mentions from before it started.
func (c *Client) FetchMentions(ctx context.Context) ([]ports.Mention, error) {
	path := fmt.Sprintf("/2/users/%s/mentions", c.botUserID)
	params := url.Values{
		"max_results":  {fmt.Sprint(mentionPageSize)},
		"tweet.fields": {"author_id"},
		"expansions":   {"author_id"},
		"user.fields":  {"username"},
	}

	firstPoll := c.sinceID == ""
	if !firstPoll {
		params.Set("since_id", c.sinceID)
	}

	var resp mentionsResponse
	if err := c.do(ctx, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("x.FetchMentions: %w", err)
	}

	if resp.Meta.NewestID != "" {
		c.sinceID = resp.Meta.NewestID
	}
	if firstPoll {
		slog.Debug("mention cursor seeded", "since_id", c.sinceID)
		return nil, nil
	}

	usernames := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		usernames[u.ID] = u.Username
	}

	// API returns newest first; the bot processes oldest first
	mentions := make([]ports.Mention, 0, len(resp.Data))
	for i := len(resp.Data) - 1; i >= 0; i-- {
		t := resp.Data[i]
		mentions = append(mentions, ports.Mention{
			TweetID:  t.ID,
			AuthorID: t.AuthorID,
			Username: usernames[t.AuthorID],
			Text:     t.Text,
		})
	}
	return mentions, nil
}

// Reply posts a reply to the given tweet.
func (c *Client) Reply(ctx context.Context, tweetID, text string) error {
	var req replyRequest
	req.Text = text
	req.Reply.InReplyToTweetID = tweetID

	var resp replyResponse
	if err := c.do(ctx, http.MethodPost, "/2/tweets", nil, req, &resp); err != nil {
		return fmt.Errorf("x.Reply to %s: %w", tweetID, err)
	}
	slog.Debug("reply posted", "in_reply_to", tweetID, "tweet_id", resp.Data.ID)
	return nil
}

// do executes a signed request with rate limiting and retries. The request
// is rebuilt per attempt so each retry carries a fresh OAuth nonce/timestamp.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, reqBody, out any) error {
	fullURL := c.base + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
	}

	return httpx.DoJSON(ctx, c.http, c.limiter, c.retry, func() (*http.Request, error) {
		authHeader, err := c.signer.authorizationHeader(method, c.base+path, params)
		if err != nil {
			return nil, err
		}

		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Authorization", authHeader)
		req.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}, out)
}

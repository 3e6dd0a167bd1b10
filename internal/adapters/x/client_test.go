package x_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/adapters/x"
)

func testSecrets() config.Secrets {
	return config.Secrets{
		XAPIKey:            "ck",
		XAPISecret:         "cs",
		XAccessToken:       "at",
		XAccessTokenSecret: "as",
		XBotUserID:         "424242",
	}
}

func TestFetchMentions_CursorFlow(t *testing.T) {
	firstResp := `{
		"data": [{"id": "100", "text": "@bot balance", "author_id": "u1"}],
		"includes": {"users": [{"id": "u1", "username": "alice"}]},
		"meta": {"newest_id": "100", "result_count": 1}
	}`
	secondResp := `{
		"data": [
			{"id": "102", "text": "@bot find btc", "author_id": "u2"},
			{"id": "101", "text": "@bot positions", "author_id": "u1"}
		],
		"includes": {"users": [
			{"id": "u1", "username": "alice"},
			{"id": "u2", "username": "bob"}
		]},
		"meta": {"newest_id": "102", "result_count": 2}
	}`

	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		assert.Equal(t, "/2/users/424242/mentions", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_signature=`)

		w.Header().Set("Content-Type", "application/json")
		if call == 1 {
			assert.Empty(t, r.URL.Query().Get("since_id"))
			w.Write([]byte(firstResp))
			return
		}
		// El cursor avanza al newest_id de la primera respuesta
		assert.Equal(t, "100", r.URL.Query().Get("since_id"))
		w.Write([]byte(secondResp))
	}))
	defer srv.Close()

	client := x.NewClient(srv.URL, testSecrets())

	// Primer poll: solo siembra el cursor
	mentions, err := client.FetchMentions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mentions)

	mentions, err = client.FetchMentions(context.Background())
	require.NoError(t, err)
	require.Len(t, mentions, 2)

	// Orden cronológico: la más antigua primero
	assert.Equal(t, "101", mentions[0].TweetID)
	assert.Equal(t, "alice", mentions[0].Username)
	assert.Equal(t, "102", mentions[1].TweetID)
	assert.Equal(t, "bob", mentions[1].Username)
	assert.Equal(t, "@bot find btc", mentions[1].Text)
}

func TestReply_PostsInReplyTo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "your balance is $5.00", body["text"])
		reply := body["reply"].(map[string]any)
		assert.Equal(t, "12345", reply["in_reply_to_tweet_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"id": "99999"}}`))
	}))
	defer srv.Close()

	client := x.NewClient(srv.URL, testSecrets())
	err := client.Reply(context.Background(), "12345", "your balance is $5.00")
	require.NoError(t, err)
}

package ports

import "context"

// Mention es una mención entrante dirigida al bot.
type Mention struct {
	TweetID  string
	AuthorID string
	Username string
	Text     string
}

// MentionSource devuelve las menciones nuevas desde la última consulta.
type MentionSource interface {
	// FetchMentions devuelve las menciones posteriores al cursor interno,
	// en orden cronológico, y avanza el cursor.
	FetchMentions(ctx context.Context) ([]Mention, error)
}

// Replier publica respuestas a menciones.
// La implementación de consola (dry-run) imprime en vez de postear.
type Replier interface {
	Reply(ctx context.Context, tweetID, text string) error
}

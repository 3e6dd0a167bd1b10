package x

// oauth.go — OAuth 1.0a request signing (HMAC-SHA1) for the X API v2.
//
// The v2 user-context endpoints still authenticate with OAuth 1.0a user
// tokens. Only the pieces this bot needs are implemented: header generation
// for GET requests with query params and POST requests with JSON bodies
// (RFC 5849 excludes JSON bodies from the signature base string).

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// oauthSigner firma requests con las credenciales de la app y del usuario.
type oauthSigner struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
}

// authorizationHeader builds the OAuth Authorization header value for a
// request. queryParams must contain the request's query string parameters;
// body params are only included for form-encoded bodies, which this bot
// never sends.
func (o *oauthSigner) authorizationHeader(method, rawURL string, queryParams url.Values) (string, error) {
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     o.consumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(time.Now().Unix(), 10),
		"oauth_token":            o.token,
		"oauth_version":          "1.0",
	}

	signature, err := o.sign(method, rawURL, queryParams, oauthParams)
	if err != nil {
		return "", err
	}
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

// sign computes the HMAC-SHA1 signature over the canonical base string.
func (o *oauthSigner) sign(method, rawURL string, queryParams url.Values, oauthParams map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("oauth: parse url: %w", err)
	}
	baseURL := u.Scheme + "://" + u.Host + u.Path

	// All params, percent-encoded and sorted by encoded key
	all := make(map[string]string, len(oauthParams)+len(queryParams))
	for k, v := range oauthParams {
		all[percentEncode(k)] = percentEncode(v)
	}
	for k, vs := range queryParams {
		if len(vs) > 0 {
			all[percentEncode(k)] = percentEncode(vs[0])
		}
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+all[k])
	}
	paramString := strings.Join(pairs, "&")

	base := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(paramString)
	signingKey := percentEncode(o.consumerSecret) + "&" + percentEncode(o.tokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// percentEncode implements RFC 3986 encoding as OAuth 1.0a requires it.
// url.QueryEscape encodes spaces as '+', which breaks signatures.
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

func randomNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("oauth: nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

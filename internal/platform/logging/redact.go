package logging

import (
	"log/slog"
	"net/url"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// urlKeys are attribute keys whose values are remote image URLs. Signed
// URLs from object stores carry credentials in userinfo or the query.
var urlKeys = map[string]bool{
	"url":       true,
	"image_url": true,
}

// RedactOptions returns the masq options applied to every log record.
func RedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr that masks credentials and
// strips userinfo and query strings from image URLs.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	mask := masq.New(append(RedactOptions(), opts...)...)

	return func(groups []string, a slog.Attr) slog.Attr {
		if urlKeys[a.Key] && a.Value.Kind() == slog.KindString {
			a.Value = slog.StringValue(RedactURL(a.Value.String()))
		}

		return mask(groups, a)
	}
}

// RedactURL drops userinfo, query and fragment from raw. Unparseable
// values are replaced entirely.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

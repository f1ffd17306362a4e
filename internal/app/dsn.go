package app

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	preparedBinaryParam   = "disable_prepared_binary_result"
	maxTracedQueryRunes   = 512
	tracedQueryTruncation = "..."
)

// PostgresDSN is a connection string plus the database name used to label
// spans. It accepts URL and key=value forms.
type PostgresDSN struct {
	URL    string
	DBName string
}

// ParsePostgresDSN trims raw and, when disablePreparedBinary is set, asks the
// driver for text results unless the URL already says otherwise.
func ParsePostgresDSN(raw string, disablePreparedBinary bool) PostgresDSN {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return PostgresDSN{URL: raw, DBName: keyValueDBName(raw)}
	}

	if disablePreparedBinary {
		query := parsed.Query()
		if query.Get(preparedBinaryParam) == "" {
			query.Set(preparedBinaryParam, "yes")
			parsed.RawQuery = query.Encode()
		}
	}

	return PostgresDSN{
		URL:    parsed.String(),
		DBName: strings.TrimPrefix(parsed.Path, "/"),
	}
}

func keyValueDBName(dsn string) string {
	for _, token := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so multi-line SQL reads as one span
// attribute, capped at maxTracedQueryRunes.
func traceQuery(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(compact) <= maxTracedQueryRunes {
		return compact
	}
	runes := []rune(compact)
	return string(runes[:maxTracedQueryRunes]) + tracedQueryTruncation
}

package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baxromumarov/job-tracker/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorUpstream  = "upstream_status"
	ErrorParsing   = "parsing"
	ErrorRateLimit = "rate_limit"
	ErrorStore     = "store"
	ErrorUnknown   = "unknown"
)

// ErrMalformed marks content that was fetched but could not be understood.
var ErrMalformed = errors.New("malformed content")

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		case fe.Status >= 300:
			return ErrorUpstream
		default:
			return ErrorNetwork
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

// ClassifyScrapeError sorts a feed or page failure: fetch failures as in
// ClassifyFetchError, undecodable payloads as parsing.
func ClassifyScrapeError(err error) string {
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, ErrMalformed) {
		return ErrorParsing
	}
	return ErrorUnknown
}

package clients

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrClassifierUnavailable means the auxiliary classifier is not configured or failed.
var ErrClassifierUnavailable = errors.New("auxiliary classifier unavailable")

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return NewHTTPWithTimeout(5 * time.Second) }

func NewHTTPWithTimeout(d time.Duration) *HTTP { return &HTTP{c: &http.Client{Timeout: d}} }

func statusErr(what string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s %s: %s", what, resp.Status, string(body))
}

// Package storefront fetches product pages from the monitored shop with a
// browser-like client identity. it knows nothing about availability; it
// just hands page bodies to the classifier.
package storefront

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"stockmon/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// ErrBadStatus reports a non-2xx response. the body is still returned
// alongside it so callers can record the status on the observation.
type ErrBadStatus struct {
	StatusCode int
}

func (e ErrBadStatus) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

type Page struct {
	Body       string
	StatusCode int
}

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// zero means 30 seconds
	Timeout time.Duration
	// disables the cloudflare bypass transport, tests don't want it
	PlainTransport bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if !opts.PlainTransport {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/storefront")

	return &Client{http: client}, nil
}

// FetchPage performs a single GET; there is no retrying here. a non-2xx
// response returns the page alongside ErrBadStatus.
func (c *Client) FetchPage(ctx context.Context, url string) (Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Body:       res.String(),
		StatusCode: res.StatusCode(),
	}
	if res.IsError() {
		return page, ErrBadStatus{StatusCode: res.StatusCode()}
	}
	return page, nil
}

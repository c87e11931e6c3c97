package screenshot

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// APIFlashEndpoint is the default screenshot API endpoint.
const APIFlashEndpoint = "https://api.apiflash.com/v1/urltoimage"

type (
	// A Capturer returns the screenshot location of a web page.
	Capturer interface {
		Capture(ctx context.Context, target string) string
	}

	// Config defines the screenshot client parameters.
	Config struct {
		// BaseURL is the public URL of the server, used to build preview cards locations.
		BaseURL string
		// AccessKey is the APIFlash access key. Previews are always used when empty.
		AccessKey string
		// Endpoint overrides APIFlashEndpoint.
		Endpoint string
		Timeout  time.Duration
	}

	// A Client captures screenshots with APIFlash and falls back to preview cards.
	Client struct {
		http   *http.Client
		cfg    Config
		logger logrus.FieldLogger
	}
)

// NewClient returns a new Client.
func NewClient(cfg Config, logger logrus.FieldLogger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = APIFlashEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Capture returns the screenshot location of the target.
// API failures are logged and the preview card location is returned instead.
func (c *Client) Capture(ctx context.Context, target string) string {
	if c.cfg.AccessKey == "" {
		return c.Preview(target)
	}

	location, err := c.apiflash(ctx, target)
	if err != nil {
		c.logger.WithError(err).WithField("url", target).Warn("screenshot API failed, using preview")
		return c.Preview(target)
	}
	return location
}

// Preview returns the location of the preview card of the target.
func (c *Client) Preview(target string) string {
	return c.cfg.BaseURL + "/api/og?url=" + url.QueryEscape(target)
}

func (c *Client) apiflash(ctx context.Context, target string) (string, error) {
	params := url.Values{}
	params.Set("access_key", c.cfg.AccessKey)
	params.Set("url", target)
	params.Set("format", "jpeg")
	params.Set("width", "1280")
	params.Set("height", "720")
	params.Set("thumbnail_width", "400")
	params.Set("response_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "could not build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "could not reach screenshot API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("screenshot API responded with status %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err = sonic.ConfigStd.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrap(err, "could not decode screenshot API response")
	}
	if payload.URL == "" {
		return "", errors.New("screenshot API returned no url")
	}

	return payload.URL, nil
}

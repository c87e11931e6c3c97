package screenshot_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mdouchement/bookmarkd/internal/screenshot"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Preview(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := screenshot.NewClient(screenshot.Config{BaseURL: "https://bookmarkd.lan/"}, logger)

	assert.Equal(t, "https://bookmarkd.lan/api/og?url=https%3A%2F%2Fgo.dev%2Fdoc%3Fa%3D1", c.Capture(context.Background(), "https://go.dev/doc?a=1"))
}

func TestClient_APIFlash(t *testing.T) {
	logger, _ := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key42", r.URL.Query().Get("access_key"))
		assert.Equal(t, "https://go.dev", r.URL.Query().Get("url"))
		assert.Equal(t, "jpeg", r.URL.Query().Get("format"))
		assert.Equal(t, "json", r.URL.Query().Get("response_type"))
		assert.Equal(t, "400", r.URL.Query().Get("thumbnail_width"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://cdn.apiflash.com/shot.jpeg"}`))
	}))
	defer server.Close()

	c := screenshot.NewClient(screenshot.Config{
		BaseURL:   "https://bookmarkd.lan",
		AccessKey: "key42",
		Endpoint:  server.URL,
	}, logger)

	assert.Equal(t, "https://cdn.apiflash.com/shot.jpeg", c.Capture(context.Background(), "https://go.dev"))
}

func TestClient_APIFlashFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := screenshot.NewClient(screenshot.Config{
		BaseURL:   "https://bookmarkd.lan",
		AccessKey: "key42",
		Endpoint:  server.URL,
	}, logger)

	assert.Equal(t, "https://bookmarkd.lan/api/og?url=https%3A%2F%2Fgo.dev", c.Capture(context.Background(), "https://go.dev"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestDispatcher(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &store{values: map[string]string{}}

	d := screenshot.NewDispatcher(capturer{}, store, logger, 2, 10, time.Second)
	assert.True(t, d.Dispatch("b1", "https://go.dev"))
	assert.True(t, d.Dispatch("b2", "https://pkg.go.dev"))
	d.Close()

	assert.Equal(t, map[string]string{
		"b1": "shot:https://go.dev",
		"b2": "shot:https://pkg.go.dev",
	}, store.values)

	assert.False(t, d.Dispatch("b3", "https://go.dev"))
	d.Close()
}

func TestDispatcher_FullQueue(t *testing.T) {
	logger, hook := test.NewNullLogger()
	release := make(chan struct{})
	store := &store{values: map[string]string{}}

	d := screenshot.NewDispatcher(blocking{release: release}, store, logger, 1, 0, time.Second)

	// The worker may not be ready to receive yet, retry until it holds the first job.
	require.Eventually(t, func() bool {
		return d.Dispatch("b1", "https://go.dev")
	}, time.Second, time.Millisecond)

	assert.False(t, d.Dispatch("b2", "https://go.dev"))
	assert.Equal(t, "screenshot queue is full, job dropped", hook.LastEntry().Message)

	close(release)
	d.Close()
	assert.Len(t, store.values, 1)
}

func TestDispatcher_StoreFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()

	d := screenshot.NewDispatcher(capturer{}, &store{err: errors.New("not found")}, logger, 1, 1, time.Second)
	assert.True(t, d.Dispatch("b1", "https://go.dev"))
	d.Close()

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "b1", hook.LastEntry().Data["bookmark_id"])
}

func TestDispatcher_Capture(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &store{values: map[string]string{}}

	d := screenshot.NewDispatcher(capturer{}, store, logger, 1, 1, time.Second)
	defer d.Close()

	location, err := d.Capture(context.Background(), "b1", "https://go.dev")
	require.NoError(t, err)
	assert.Equal(t, "shot:https://go.dev", location)
	assert.Equal(t, "shot:https://go.dev", store.values["b1"])
}

func TestSiteOf(t *testing.T) {
	assert.Equal(t, screenshot.Site{Domain: "github.com", Name: "Github"}, screenshot.SiteOf("https://www.github.com/mdouchement"))
	assert.Equal(t, screenshot.Site{Domain: "go.dev", Name: "Go"}, screenshot.SiteOf("https://go.dev"))
	assert.Equal(t, screenshot.Site{Domain: "Site web", Name: "Site"}, screenshot.SiteOf("not a url"))
}

func TestRenderPreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, screenshot.RenderPreview(&buf, "https://www.github.com/mdouchement"))

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, ">Github</text>")
	assert.Contains(t, svg, ">github.com</text>")
	assert.Contains(t, svg, "domain=github.com&amp;sz=128")
}

func TestRenderPreview_FaviconQuery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, screenshot.RenderPreview(&buf, "http://[::1]:8080/admin"))

	svg := buf.String()
	assert.Contains(t, svg, "favicons?domain=%3A%3A1&amp;sz=128")
	assert.Contains(t, svg, ">::1</text>")
}

//
// Stubs
//

type capturer struct{}

func (capturer) Capture(_ context.Context, target string) string {
	return "shot:" + target
}

type blocking struct {
	release chan struct{}
}

func (b blocking) Capture(_ context.Context, target string) string {
	<-b.release
	return "shot:" + target
}

type store struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func (s *store) SetBookmarkScreenshot(id, screenshot string) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = screenshot
	return nil
}

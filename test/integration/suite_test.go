//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// scenario is the state one feature scenario accumulates.
type scenario struct {
	baseURL string
	client  *http.Client
	status  int
	body    []byte
}

// send issues a request against the service and keeps the response.
func (s *scenario) send(method, path, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	s.status = resp.StatusCode
	s.body, err = io.ReadAll(resp.Body)

	return err
}

func (s *scenario) serviceIsRunning() error {
	if err := s.send(http.MethodGet, "/-/live", "", nil); err != nil {
		return fmt.Errorf("service is not running at %s: %w", s.baseURL, err)
	}

	return s.statusIs(http.StatusOK)
}

func (s *scenario) get(path string) error {
	return s.send(http.MethodGet, path, "", nil)
}

func (s *scenario) postJSON(path string, doc *godog.DocString) error {
	return s.send(http.MethodPost, path, "application/json", strings.NewReader(doc.Content))
}

func (s *scenario) postForm(path, field, value string) error {
	form := url.Values{field: {value}}

	return s.send(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (s *scenario) statusIs(want int) error {
	if s.status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, s.status, s.body)
	}

	return nil
}

func (s *scenario) bodyContains(text string) error {
	if !bytes.Contains(s.body, []byte(text)) {
		return fmt.Errorf("response does not contain %q: %s", text, s.body)
	}

	return nil
}

// field reads a dotted path such as error.code from the JSON response.
func (s *scenario) field(path string) (string, error) {
	var cur any
	if err := json.Unmarshal(s.body, &cur); err != nil {
		return "", fmt.Errorf("response is not JSON: %w", err)
	}

	for _, part := range strings.Split(path, ".") {
		obj, _ := cur.(map[string]any)
		cur = obj[part]
	}

	switch v := cur.(type) {
	case nil:
		return "", fmt.Errorf("field %q not found in %s", path, s.body)
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (s *scenario) fieldEquals(path, want string) error {
	got, err := s.field(path)
	if err != nil {
		return err
	}

	if got != want {
		return fmt.Errorf("expected %s to be %q, got %q", path, want, got)
	}

	return nil
}

// memeIsPNG downloads the url of the last response and checks its width.
func (s *scenario) memeIsPNG(width int) error {
	memeURL, err := s.field("url")
	if err != nil {
		return err
	}

	if err := s.get(memeURL); err != nil {
		return err
	}

	if err := s.statusIs(http.StatusOK); err != nil {
		return err
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(s.body))
	if err != nil {
		return fmt.Errorf("meme is not a PNG: %w", err)
	}

	if cfg.Width != width {
		return fmt.Errorf("expected width %d, got %d", width, cfg.Width)
	}

	return nil
}

// initializer registers the steps against baseURL.
func initializer(baseURL string) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		s := &scenario{baseURL: baseURL, client: &http.Client{Timeout: 10 * time.Second}}

		sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			s.status, s.body = 0, nil
			return ctx, nil
		})

		sc.Step(`^the service is running$`, s.serviceIsRunning)
		sc.Step(`^I request GET "([^"]*)"$`, s.get)
		sc.Step(`^I POST "([^"]*)" with JSON:$`, s.postJSON)
		sc.Step(`^I POST the form "([^"]*)" with "([^"]*)" set to "([^"]*)"$`, s.postForm)
		sc.Step(`^the response status should be (\d+)$`, s.statusIs)
		sc.Step(`^the response should contain "([^"]*)"$`, s.bodyContains)
		sc.Step(`^the JSON field "([^"]*)" should equal "([^"]*)"$`, s.fieldEquals)
		sc.Step(`^the meme at the returned url should be a PNG (\d+) pixels wide$`, s.memeIsPNG)
	}
}

// TestFeatures runs the feature files against BASE_URL, or against an
// in-process server built from temporary fixtures when BASE_URL is unset.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = newTestServer(t).URL
	}

	status := godog.TestSuite{
		ScenarioInitializer: initializer(baseURL),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			Tags:     os.Getenv("GODOG_TAGS"),
			TestingT: t,
		},
	}.Run()

	if status != 0 {
		t.Fatal("feature suite failed")
	}
}

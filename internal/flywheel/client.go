package flywheel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// PageMax is the maximum number of results requested per page.
	PageMax = 100

	// DefaultRPS caps how many API requests are issued per second.
	DefaultRPS = 5
)

var (
	// ErrProjectNotFound means the label did not resolve to exactly one project.
	ErrProjectNotFound = errors.New("project not found")

	// ErrRemoteQueryFailed wraps any transport or API failure from Flywheel.
	ErrRemoteQueryFailed = errors.New("flywheel query failed")
)

// Client is an HTTP client for the Flywheel REST API.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Flywheel API client from a resolved credential.
// rps caps outgoing request rate; <= 0 falls back to DefaultRPS.
func NewClient(cred Credential, rps float64) *Client {
	if rps <= 0 {
		rps = DefaultRPS
	}
	return &Client{
		baseURL: cred.BaseURL(),
		key:     cred.Key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// LookupProject resolves a project label to exactly one project.
func (c *Client) LookupProject(ctx context.Context, label string) (Project, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("label=%s", label))
	params.Set("limit", "2")

	var matches []Project
	if err := c.get(ctx, "/api/projects", params, &matches); err != nil {
		return Project{}, err
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Project{}, fmt.Errorf("%w: no project labeled %q", ErrProjectNotFound, label)
	default:
		return Project{}, fmt.Errorf("%w: label %q matches more than one project", ErrProjectNotFound, label)
	}
}

// Subjects lists all subjects in a project.
func (c *Client) Subjects(ctx context.Context, projectID string) ([]Subject, error) {
	var all []Subject
	err := c.getAllPages(ctx, fmt.Sprintf("/api/projects/%s/subjects", projectID), func(data json.RawMessage) (int, error) {
		var page []Subject
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		all = append(all, page...)
		return len(page), nil
	})
	return all, err
}

// Sessions lists all sessions belonging to a subject.
func (c *Client) Sessions(ctx context.Context, subjectID string) ([]Session, error) {
	var all []Session
	err := c.getAllPages(ctx, fmt.Sprintf("/api/subjects/%s/sessions", subjectID), func(data json.RawMessage) (int, error) {
		var page []Session
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		all = append(all, page...)
		return len(page), nil
	})
	return all, err
}

// Acquisitions lists all acquisitions in a session, files included.
func (c *Client) Acquisitions(ctx context.Context, sessionID string) ([]Acquisition, error) {
	var all []Acquisition
	err := c.getAllPages(ctx, fmt.Sprintf("/api/sessions/%s/acquisitions", sessionID), func(data json.RawMessage) (int, error) {
		var page []Acquisition
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		all = append(all, page...)
		return len(page), nil
	})
	return all, err
}

// getAllPages walks a paginated listing endpoint with limit/skip parameters,
// handing each page's raw body to collect until a short page arrives.
func (c *Client) getAllPages(ctx context.Context, path string, collect func(json.RawMessage) (int, error)) error {
	skip := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(PageMax))
		params.Set("skip", strconv.Itoa(skip))

		var raw json.RawMessage
		if err := c.get(ctx, path, params, &raw); err != nil {
			return err
		}

		n, err := collect(raw)
		if err != nil {
			LogError("decode", err)
			return fmt.Errorf("%w: decode %s: %v", ErrRemoteQueryFailed, path, err)
		}

		if n < PageMax {
			return nil
		}
		skip += n
	}
}

// get issues one rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteQueryFailed, err)
	}

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	start := time.Now()
	LogRequest("GET", path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrRemoteQueryFailed, err)
	}
	req.Header.Set("Authorization", "scitran-user "+c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		LogError("fetch", err)
		return fmt.Errorf("%w: %s: %w", ErrRemoteQueryFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s: status %d", ErrRemoteQueryFailed, path, resp.StatusCode)
		LogError("fetch", err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		LogError("decode", err)
		return fmt.Errorf("%w: decode %s: %v", ErrRemoteQueryFailed, path, err)
	}

	LogResponse(resp.StatusCode, time.Since(start))
	return nil
}

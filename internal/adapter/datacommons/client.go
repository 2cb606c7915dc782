package datacommons

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/couchcryptid/datacommons-client/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultAPIRoot is the public Data Commons website API.
const DefaultAPIRoot = "https://datacommons.org"

// Endpoint paths relative to the API root.
const (
	pathPoint          = "/api/observations/point"
	pathPointWithin    = "/api/observations/point/within"
	pathSeries         = "/api/observations/series"
	pathSeriesWithin   = "/api/observations/series/within"
	pathPropvalsOut    = "/api/node/propvals/out"
	pathPropvalsIn     = "/api/node/propvals/in"
	pathPlaceName      = "/api/place/name"
	requestIDHeader    = "X-Request-Id"
	contentTypeJSON    = "application/json"
	outcomeSuccess     = "success"
	outcomeError       = "error"
	maxErrorBodyLength = 256
)

// Client issues requests to the Data Commons REST API. Every method makes
// exactly one HTTP call; there is no retry and no caching.
type Client struct {
	httpClient *http.Client
	apiRoot    string
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock sets the clock used to time requests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// NewClient creates a Data Commons API client rooted at apiRoot.
func NewClient(apiRoot string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiRoot:    NormalizeAPIRoot(apiRoot),
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeAPIRoot applies the default root and strips trailing slashes.
func NormalizeAPIRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		root = DefaultAPIRoot
	}
	return strings.TrimRight(root, "/")
}

// APIRoot returns the normalized API root.
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// ObservationsPoint fetches the observation closest to the query date for
// every selected entity and variable.
func (c *Client) ObservationsPoint(ctx context.Context, q domain.PointQuery) (domain.PointResponse, error) {
	path := pathPoint
	if q.Within() {
		path = pathPointWithin
	}
	var resp domain.PointResponse
	if err := c.get(ctx, path, pointParams(q), &resp); err != nil {
		return domain.PointResponse{}, err
	}
	return resp, nil
}

// ObservationsSeries fetches full time series for every selected entity and variable.
func (c *Client) ObservationsSeries(ctx context.Context, q domain.SeriesQuery) (domain.SeriesResponse, error) {
	path := pathSeries
	if q.Within() {
		path = pathSeriesWithin
	}
	var resp domain.SeriesResponse
	if err := c.get(ctx, path, seriesParams(q), &resp); err != nil {
		return domain.SeriesResponse{}, err
	}
	return resp, nil
}

type propvalsRequest struct {
	DCIDs []string `json:"dcids"`
	Prop  string   `json:"prop"`
}

// NodePropvalsOut fetches the values of an outgoing property for each node.
// Nodes may have several values; picking one is the caller's concern.
func (c *Client) NodePropvalsOut(ctx context.Context, dcids []string, prop string) (map[string][]domain.NodePropval, error) {
	var resp map[string][]domain.NodePropval
	if err := c.post(ctx, pathPropvalsOut, propvalsRequest{DCIDs: dcids, Prop: prop}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// NodePropvalsIn fetches the nodes pointing at each node through prop.
func (c *Client) NodePropvalsIn(ctx context.Context, dcids []string, prop string) (map[string][]domain.NodePropval, error) {
	var resp map[string][]domain.NodePropval
	if err := c.post(ctx, pathPropvalsIn, propvalsRequest{DCIDs: dcids, Prop: prop}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type placeNameRequest struct {
	DCIDs []string `json:"dcids"`
	Prop  string   `json:"prop,omitempty"`
}

// PlaceNames fetches display names for places. prop selects an alternative
// name property and may be empty.
func (c *Client) PlaceNames(ctx context.Context, dcids []string, prop string) (map[string]string, error) {
	var resp map[string]string
	if err := c.post(ctx, pathPlaceName, placeNameRequest{DCIDs: dcids, Prop: prop}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, out any) error {
	fullURL := c.apiRoot + path
	if qs := EncodeParams(params); qs != "" {
		fullURL += "?" + qs
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiRoot+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	return c.do(req, path, out)
}

// do sends the request and decodes the JSON body into out. The status code
// is not interpreted; a body that is not the expected JSON is an error.
func (c *Client) do(req *http.Request, endpoint string, out any) error {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", contentTypeJSON)

	start := c.clock.Now()
	err := c.send(req, endpoint, out)
	elapsed := c.clock.Since(start)

	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	c.logger.Debug("datacommons request",
		"endpoint", endpoint,
		"method", req.Method,
		"request_id", requestID,
		"outcome", outcome,
		"duration", elapsed,
	)
	return err
}

func (c *Client) send(req *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode response (status %d): %s: %w", endpoint, resp.StatusCode, snippet(body), err)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyLength {
		return s[:maxErrorBodyLength] + "..."
	}
	return s
}

// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/credlens/credlens/lib/catalog"
)

// defaultTimeout bounds every scalar and stream call except bivariate
// analysis.
const defaultTimeout = 30 * time.Second

// defaultBivariateTimeout bounds bivariate stream calls. Bivariate
// analysis is the service's heaviest computation (it renders pairplots
// or ANOVA over the full population), so it gets twice the time.
const defaultBivariateTimeout = 60 * time.Second

// maxScalarResponseSize bounds JSON response body reads. Feature lists
// and id lists are a few hundred KB at most; the limit only guards
// against a pathological response exhausting memory.
const maxScalarResponseSize int64 = 16 << 20

// Filter narrows a feature-selection list to a subset of the loan
// application's features.
type Filter string

const (
	// FilterCurrent selects features of the current loan request.
	FilterCurrent Filter = "current"

	// FilterPrevious selects features of prior loans.
	FilterPrevious Filter = "previous"

	// FilterAll selects every feature.
	FilterAll Filter = "all"
)

// Valid reports whether f is one of the defined filter values.
func (f Filter) Valid() bool {
	return f == FilterCurrent || f == FilterPrevious || f == FilterAll
}

// Config holds configuration for creating a scoring service Client.
type Config struct {
	// BaseURL is the root URL of the scoring service. Required.
	BaseURL string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Timeout bounds every call except StreamBivariate. Defaults to
	// 30 seconds if zero.
	Timeout time.Duration

	// BivariateTimeout bounds StreamBivariate calls. Defaults to 60
	// seconds if zero.
	BivariateTimeout time.Duration
}

// Client is a typed client for the scoring service's REST interface.
// Safe for concurrent use.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	logger           *slog.Logger
	timeout          time.Duration
	bivariateTimeout time.Duration
}

// NewClient creates a scoring service client from the given
// configuration. Returns an error if BaseURL is missing or unparsable.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("scoring: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("scoring: parsing base URL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("scoring: base URL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	bivariateTimeout := config.BivariateTimeout
	if bivariateTimeout == 0 {
		bivariateTimeout = defaultBivariateTimeout
	}

	return &Client{
		baseURL:          strings.TrimRight(config.BaseURL, "/"),
		httpClient:       httpClient,
		logger:           logger,
		timeout:          timeout,
		bivariateTimeout: bivariateTimeout,
	}, nil
}

// ClientIDs returns the ordered registry of valid client identifiers.
func (c *Client) ClientIDs(ctx context.Context) (*catalog.Registry, error) {
	var wire struct {
		IDList []int64 `json:"id_list"`
	}
	if err := c.getJSON(ctx, "/clients_list", nil, &wire); err != nil {
		return nil, err
	}
	return catalog.NewRegistry(wire.IDList)
}

// FeatureCatalog returns the feature metadata table: the ordered
// feature list and the categorical/numeric partition.
func (c *Client) FeatureCatalog(ctx context.Context) (*catalog.Catalog, error) {
	var wire struct {
		All []string `json:"all"`
		Cat []string `json:"cat"`
		Num []string `json:"num"`
	}
	if err := c.getJSON(ctx, "/feature_lists", nil, &wire); err != nil {
		return nil, err
	}
	return catalog.New(wire.All, wire.Cat, wire.Num)
}

// FeatureSelection returns the feature list for a selection menu.
// When rankByImpact is true the list is ordered by decreasing impact
// on the given client's score; otherwise it keeps catalog order. The
// filter narrows the list to current-loan, previous-loan, or all
// features.
func (c *Client) FeatureSelection(ctx context.Context, clientID int64, rankByImpact bool, filter Filter) ([]string, error) {
	if !filter.Valid() {
		return nil, fmt.Errorf("scoring: invalid feature selection filter %q", filter)
	}
	query := url.Values{
		"is_wf":  {strconv.FormatBool(rankByImpact)},
		"filter": {string(filter)},
	}
	var wire struct {
		FeatureSelection []string `json:"feature_selection"`
	}
	path := fmt.Sprintf("/%d/feature_selection", clientID)
	if err := c.getJSON(ctx, path, query, &wire); err != nil {
		return nil, err
	}
	return wire.FeatureSelection, nil
}

// Score returns the model's default-risk prediction for a client, in
// [0, 1]. Higher means riskier.
func (c *Client) Score(ctx context.Context, clientID int64) (float64, error) {
	var wire struct {
		Score float64 `json:"score"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/%d", clientID), nil, &wire); err != nil {
		return 0, err
	}
	if wire.Score < 0 || wire.Score > 1 {
		return 0, fmt.Errorf("scoring: score %v for client %d is outside [0,1]", wire.Score, clientID)
	}
	return wire.Score, nil
}

// StreamGlobalImpact fetches the population-wide feature-importance
// image, limited to maxFeatures bars. The caller must Close the
// returned stream.
func (c *Client) StreamGlobalImpact(ctx context.Context, maxFeatures int) (io.ReadCloser, error) {
	query := url.Values{"max_feat": {strconv.Itoa(maxFeatures)}}
	return c.getStream(ctx, "/global_impact", query, c.timeout)
}

// StreamLocalImpact fetches the per-client feature-impact image.
func (c *Client) StreamLocalImpact(ctx context.Context, clientID int64, maxFeatures int) (io.ReadCloser, error) {
	query := url.Values{"max_feat": {strconv.Itoa(maxFeatures)}}
	return c.getStream(ctx, fmt.Sprintf("/%d/local_impact", clientID), query, c.timeout)
}

// StreamFeature fetches the single-feature dependence image for a
// client.
func (c *Client) StreamFeature(ctx context.Context, clientID int64, feature string) (io.ReadCloser, error) {
	query := url.Values{"feature": {feature}}
	return c.getStream(ctx, fmt.Sprintf("/%d/feature", clientID), query, c.timeout)
}

// StreamBivariate fetches the bivariate analysis image for a feature
// pair. Uses the extended bivariate timeout.
func (c *Client) StreamBivariate(ctx context.Context, featureA, featureB string) (io.ReadCloser, error) {
	query := url.Values{
		"feature_1": {featureA},
		"feature_2": {featureB},
	}
	return c.getStream(ctx, "/graph_bivar", query, c.bivariateTimeout)
}

// getJSON performs a GET request bounded by the default timeout and
// decodes the 2xx JSON response body into result.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, requestURL, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxScalarResponseSize))
	if err != nil {
		return &TransportError{URL: requestURL, Err: err}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &APIError{StatusCode: response.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("scoring: decoding %s response: %w", path, err)
	}
	return nil
}

// getStream performs a GET request and returns the 2xx response body
// as a stream. The deadline covers the full transfer: the returned
// ReadCloser's reads fail once the timeout elapses, and Close releases
// the deadline timer.
func (c *Client) getStream(ctx context.Context, path string, query url.Values, timeout time.Duration) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	response, requestURL, err := c.get(ctx, path, query)
	if err != nil {
		cancel()
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body := readErrorBody(response.Body)
		response.Body.Close()
		cancel()
		return nil, &APIError{StatusCode: response.StatusCode, Body: body}
	}

	return &cancelReadCloser{ReadCloser: response.Body, cancel: cancel, url: requestURL}, nil
}

// get builds and executes the request. Transport failures come back as
// *TransportError; the response is returned unexamined otherwise.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, string, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, requestURL, fmt.Errorf("scoring: creating request for %s: %w", requestURL, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, requestURL, &TransportError{URL: requestURL, Err: err}
	}
	return response, requestURL, nil
}

// readErrorBody reads a bounded error response body for diagnostics.
// Read errors are ignored — a partial body is still useful.
func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxScalarResponseSize))
	return string(data)
}

// cancelReadCloser couples a response body with its deadline cancel
// function so the timeout timer is released when the caller finishes
// the stream. Read errors caused by the transport are wrapped as
// *TransportError so IsTimeout classification works mid-copy.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
	url    string
}

func (r *cancelReadCloser) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, &TransportError{URL: r.url, Err: err}
	}
	return n, err
}

func (r *cancelReadCloser) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// Package dataforseo queries the DataForSEO Backlinks API for the live inbound links of a domain.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/pkg/metrics"
	"github.com/user/backlink-reclaim/pkg/utils"
)

const (
	backlinksPath = "/v3/backlinks/backlinks/live"
	statusOK      = 20000
	maxBodyBytes  = 32 << 20
)

// Client implements repository.BacklinkSource against DataForSEO.
type Client struct {
	baseURL    string
	login      string
	password   string
	limit      int
	httpClient *http.Client
}

// NewClient creates a DataForSEO client. limit caps the number of edges requested per scan.
func NewClient(baseURL, login, password string, limit int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		login:      login,
		password:   password,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type taskRequest struct {
	Target              string `json:"target"`
	Mode                string `json:"mode"`
	Limit               int    `json:"limit"`
	BacklinksStatusType string `json:"backlinks_status_type"`
	IncludeSubdomains   bool   `json:"include_subdomains"`
}

type envelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []task `json:"tasks"`
}

type task struct {
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Cost          float64      `json:"cost"`
	Result        []taskResult `json:"result"`
}

type taskResult struct {
	TotalCount int    `json:"total_count"`
	Items      []item `json:"items"`
}

type item struct {
	DomainFrom     string `json:"domain_from"`
	URLFrom        string `json:"url_from"`
	URLTo          string `json:"url_to"`
	Rank           int    `json:"rank"`
	DomainFromRank int    `json:"domain_from_rank"`
}

// FetchBacklinks performs one request for the live backlinks of domain. It never retries.
func (c *Client) FetchBacklinks(ctx context.Context, domain string) (*entity.BacklinkFetch, error) {
	payload, err := json.Marshal([]taskRequest{{
		Target:              domain,
		Mode:                "as_is",
		Limit:               c.limit,
		BacklinksStatusType: "live",
		IncludeSubdomains:   false,
	}})
	if err != nil {
		return nil, fmt.Errorf("encode backlinks request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+backlinksPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstreamUnreachable, err)
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", repository.ErrUpstreamUnreachable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && env.StatusMessage != "" {
			msg = env.StatusMessage
		}
		return nil, fmt.Errorf("%w: http %d: %s", repository.ErrUpstreamRejected, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrBadResponse, decodeErr)
	}

	fetch, err := normalize(&env)
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetched backlinks",
		"domain", domain,
		"edges", len(fetch.Edges),
		"total_count", fetch.TotalCount,
		"cost_cents", fetch.CostCents,
		"duration", time.Since(start),
	)
	metrics.BacklinksFetched.Observe(float64(len(fetch.Edges)))
	return fetch, nil
}

// normalize flattens the provider envelope into edges. Missing tasks, results or items
// yield an empty fetch rather than an error.
func normalize(env *envelope) (*entity.BacklinkFetch, error) {
	if env.StatusCode == 0 {
		return nil, fmt.Errorf("%w: missing status_code", repository.ErrBadResponse)
	}
	if env.StatusCode != statusOK {
		return nil, fmt.Errorf("%w: %s", repository.ErrUpstreamRejected, statusMessage(env.StatusCode, env.StatusMessage))
	}

	fetch := &entity.BacklinkFetch{Edges: []entity.BacklinkEdge{}}
	if len(env.Tasks) == 0 {
		return fetch, nil
	}

	t := env.Tasks[0]
	if t.StatusCode == 0 {
		return nil, fmt.Errorf("%w: missing task status_code", repository.ErrBadResponse)
	}
	if t.StatusCode != statusOK {
		return nil, fmt.Errorf("%w: %s", repository.ErrUpstreamRejected, statusMessage(t.StatusCode, t.StatusMessage))
	}
	fetch.CostCents = int(math.Round(t.Cost * 100))
	if len(t.Result) == 0 {
		return fetch, nil
	}

	r := t.Result[0]
	fetch.TotalCount = r.TotalCount
	for _, it := range r.Items {
		if it.URLTo == "" {
			continue
		}
		sourceDomain := strings.ToLower(it.DomainFrom)
		if sourceDomain == "" {
			sourceDomain = utils.HostOf(it.URLFrom)
		}
		rank := it.Rank
		if rank == 0 {
			rank = it.DomainFromRank
		}
		fetch.Edges = append(fetch.Edges, entity.BacklinkEdge{
			SourceDomain: sourceDomain,
			SourceURL:    it.URLFrom,
			TargetURL:    it.URLTo,
			SourceRank:   rank,
		})
	}
	return fetch, nil
}

func statusMessage(code int, msg string) string {
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("%s (status %d)", msg, code)
}

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

// ErrUnexpectedStatus is returned for non-2xx provider responses.
var ErrUnexpectedStatus = errors.New("unexpected hub status")

// HubOptions configures a HubClient.
type HubOptions struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	PageSize  int
	MaxPages  int
	BatchSize int
}

// HubClient reads the social graph from a hosted hub HTTP API.
type HubClient struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	pageSize  int
	maxPages  int
	batchSize int
}

// NewHubClient returns a HubClient with defaults applied.
func NewHubClient(opts HubOptions) *HubClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 50
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 350
	}
	return &HubClient{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		http:      &http.Client{Timeout: opts.Timeout},
		pageSize:  opts.PageSize,
		maxPages:  opts.MaxPages,
		batchSize: opts.BatchSize,
	}
}

// FetchFollowers returns the fids following fid.
func (c *HubClient) FetchFollowers(ctx context.Context, fid int64) ([]int64, error) {
	return c.fetchRelation(ctx, "/v2/farcaster/followers", fid)
}

// FetchFollowing returns the fids fid follows.
func (c *HubClient) FetchFollowing(ctx context.Context, fid int64) ([]int64, error) {
	return c.fetchRelation(ctx, "/v2/farcaster/following", fid)
}

// fetchRelation walks the cursor up to maxPages. Very large networks are
// truncated rather than paged indefinitely.
func (c *HubClient) fetchRelation(ctx context.Context, path string, fid int64) ([]int64, error) {
	var (
		ids    []int64
		cursor string
	)
	for page := 0; page < c.maxPages; page++ {
		q := url.Values{}
		q.Set("fid", strconv.FormatInt(fid, 10))
		q.Set("limit", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var body relationPage
		if _, err := c.get(ctx, path, q, &body); err != nil {
			return nil, fmt.Errorf("fetch %s of %d: %w", path, fid, err)
		}
		for _, u := range body.Users {
			if u.User.FID > 0 {
				ids = append(ids, u.User.FID)
			}
		}
		if body.Next.Cursor == nil || *body.Next.Cursor == "" || len(body.Users) == 0 {
			break
		}
		cursor = *body.Next.Cursor
	}
	return ids, nil
}

// FetchProfileByAddress returns the identity verified for address, or nil.
func (c *HubClient) FetchProfileByAddress(ctx context.Context, address string) (*domain.Identity, error) {
	profiles, err := c.FetchProfilesByAddresses(ctx, []string{address})
	if err != nil {
		return nil, err
	}
	if id, ok := profiles[address]; ok {
		return &id, nil
	}
	return nil, nil
}

// FetchProfilesByAddresses resolves addresses in provider-sized batches.
// Addresses with no identity are simply absent from the result.
func (c *HubClient) FetchProfilesByAddresses(ctx context.Context, addresses []string) (map[string]domain.Identity, error) {
	out := make(map[string]domain.Identity, len(addresses))
	for start := 0; start < len(addresses); start += c.batchSize {
		end := min(start+c.batchSize, len(addresses))
		batch := addresses[start:end]

		q := url.Values{}
		q.Set("addresses", strings.Join(batch, ","))

		var body map[string][]hubUser
		status, err := c.get(ctx, "/v2/farcaster/user/bulk-by-address", q, &body)
		if status == http.StatusNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch profiles by address: %w", err)
		}

		byKey := make(map[string][]hubUser, len(body))
		for k, users := range body {
			byKey[domain.NormalizeAddress(k)] = users
		}
		for _, address := range batch {
			users := byKey[domain.NormalizeAddress(address)]
			if len(users) == 0 {
				continue
			}
			best := users[0]
			for _, u := range users[1:] {
				if u.FID > 0 && u.FID < best.FID {
					best = u
				}
			}
			out[address] = best.toIdentity()
		}
	}
	return out, nil
}

func (c *HubClient) get(ctx context.Context, path string, query url.Values, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

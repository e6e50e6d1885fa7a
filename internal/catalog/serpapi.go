package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

const (
	serpAPIURL          = "https://serpapi.com/search.json"
	serpAPIEngine       = "google_jobs"
	defaultSerpQuery    = "junior software engineer remote"
	defaultSerpPages    = 1
	serpDescriptionSize = 300
	userAgent           = "skillbridge (+https://github.com/nity4jain/skillbridge-mvp)"
)

// SerpAPISource fetches Google Jobs listings through SerpAPI.
type SerpAPISource struct {
	APIKey   string
	Query    string
	Location string
	// MaxPages bounds pagination through next_page_token.
	MaxPages int

	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	logger     *zap.Logger
}

// NewSerpAPISource returns a source with default endpoint and client.
func NewSerpAPISource(apiKey, query string, l *zap.Logger) *SerpAPISource {
	if strings.TrimSpace(query) == "" {
		query = defaultSerpQuery
	}
	return &SerpAPISource{
		APIKey:     apiKey,
		Query:      query,
		MaxPages:   defaultSerpPages,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		BaseURL:    serpAPIURL,
		UserAgent:  userAgent,
		logger:     logger.WithFields(l, zap.String("source", "serpapi")),
	}
}

type serpResponse struct {
	Error       string           `json:"error"`
	JobsResults []map[string]any `json:"jobs_results"`
	Pagination  struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"serpapi_pagination"`
}

type serpJob struct {
	JobID       string `json:"job_id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (s *SerpAPISource) Name() string { return "serpapi" }

// Load fetches up to MaxPages result pages. Listings without a description are skipped.
func (s *SerpAPISource) Load(ctx context.Context) ([]Job, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, errors.New("serpapi api key is required")
	}

	l := logger.OrNop(s.logger)
	pages := max(s.MaxPages, 1)

	q := url.Values{}
	q.Set("engine", serpAPIEngine)
	q.Set("q", s.Query)
	q.Set("hl", "en")
	q.Set("api_key", s.APIKey)
	if s.Location != "" {
		q.Set("location", s.Location)
	}

	var jobs []Job
	for page := 0; page < pages; page++ {
		resp, err := s.getPage(ctx, q)
		if err != nil {
			return nil, err
		}

		for i, item := range resp.JobsResults {
			var raw serpJob
			if err := decodeItem(item, &raw); err != nil {
				return nil, fmt.Errorf("page %d job #%d: %w", page, i, err)
			}
			if strings.TrimSpace(raw.Description) == "" {
				l.Debug("skipping listing without description", zap.String("job_id", raw.JobID))
				continue
			}
			jobs = append(jobs, Job{
				ID:          raw.JobID,
				Title:       raw.Title,
				Description: truncateRunes(raw.Description, serpDescriptionSize),
				Company:     raw.CompanyName,
				Location:    raw.Location,
			})
		}

		l.Debug("got response from serpapi",
			zap.Int("page", page+1),
			zap.Int("results", len(resp.JobsResults)),
		)

		token := resp.Pagination.NextPageToken
		if token == "" {
			break
		}
		q.Set("next_page_token", token)
	}

	l.Info("fetched job listings", zap.String("query", s.Query), zap.Int("count", len(jobs)))
	return jobs, nil
}

func (s *SerpAPISource) getPage(ctx context.Context, q url.Values) (*serpResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var out serpResponse
	decodeErr := json.NewDecoder(body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return nil, fmt.Errorf("bad status: %s: %s", resp.Status, out.Error)
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding serpapi response: %w", decodeErr)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", out.Error)
	}

	return &out, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

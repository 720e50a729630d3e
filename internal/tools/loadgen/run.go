package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

type Config struct {
	BaseURL     string
	APIPrefix   string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type request struct {
	method string
	path   string
	body   string
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	requests := requestsForProfile(cfg.Profile, strings.TrimRight(cfg.APIPrefix, "/"))
	if len(requests) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	profile := strings.ToLower(cfg.Profile)
	if profile == "" {
		profile = "mixed"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan request, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				var body *strings.Reader
				if job.body != "" {
					body = strings.NewReader(job.body)
				}
				req, err := newRequest(ctx, job.method, baseURL+job.path, body)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					observability.RecordLoadgenRequest(ctx, "transport_error", profile)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				class := statusClass(resp.StatusCode)
				observability.RecordLoadgenRequest(ctx, class, profile)
				switch class {
				case "2xx":
					atomic.AddInt64(&s2xx, 1)
				case "4xx":
					atomic.AddInt64(&s4xx, 1)
				case "5xx":
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests: atomic.LoadInt64(&total),
				Failures:      atomic.LoadInt64(&failures),
				Status2xx:     atomic.LoadInt64(&s2xx),
				Status4xx:     atomic.LoadInt64(&s4xx),
				Status5xx:     atomic.LoadInt64(&s5xx),
			}, nil
		case <-ticker.C:
			select {
			case jobs <- requests[rng.IntN(len(requests))]:
			case <-ctx.Done():
			}
		}
	}
}

func newRequest(ctx context.Context, method, url string, body *strings.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, url, nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}

func requestsForProfile(profile, prefix string) []request {
	browse := []request{
		{method: http.MethodGet, path: prefix + "/products?limit=20"},
		{method: http.MethodGet, path: prefix + "/products/search?q=apple"},
		{method: http.MethodGet, path: prefix + "/products/search?q=laptop&page=1&per_page=5"},
		{method: http.MethodGet, path: prefix + "/products/category/Audio"},
		{method: http.MethodGet, path: prefix + "/products/1"},
		{method: http.MethodGet, path: prefix + "/sales/stats"},
	}
	errorHeavy := []request{
		{method: http.MethodGet, path: prefix + "/products/999999"},
		{method: http.MethodGet, path: prefix + "/products/search"},
		{method: http.MethodGet, path: prefix + "/products?limit=5000"},
		{method: http.MethodPost, path: prefix + "/sales", body: `{"product_id":999999,"quantity":1}`},
		{method: http.MethodPost, path: prefix + "/sales", body: `{"product_id":1,"quantity":0}`},
	}
	switch strings.ToLower(profile) {
	case "", "mixed":
		mixed := append([]request{}, browse...)
		mixed = append(mixed,
			request{method: http.MethodGet, path: prefix + "/sales?limit=10"},
			request{method: http.MethodPost, path: prefix + "/sales", body: `{"product_id":1,"quantity":1}`},
			errorHeavy[0],
		)
		return mixed
	case "browse":
		return browse
	case "error-heavy":
		return append(errorHeavy, browse[0])
	default:
		return nil
	}
}

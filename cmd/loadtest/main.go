package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

type loadMode string

const (
	modeCheckout    loadMode = "checkout"
	modeCheckoutPay loadMode = "checkout-pay"
)

type config struct {
	baseURL     string
	total       int
	concurrency int
	timeout     time.Duration
	mode        loadMode
	userID      string
	productID   string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt        time.Time      `json:"started_at"`
	DurationSeconds  float64        `json:"duration_seconds"`
	TotalScenarios   int            `json:"total_scenarios"`
	SuccessScenarios int            `json:"success_scenarios"`
	FailedScenarios  int            `json:"failed_scenarios"`
	ErrorRate        float64        `json:"error_rate"`
	RPS              float64        `json:"rps"`
	LatencyMs        latencySummary `json:"scenario_latency_ms"`
	StatusCodes      map[string]int `json:"status_codes"`
}

type collector struct {
	mu        sync.Mutex
	success   int
	failed    int
	latencies []float64
	codes     map[string]int
}

func (c *collector) record(ok bool, latency time.Duration, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok {
		c.success++
	} else {
		c.failed++
	}
	c.latencies = append(c.latencies, float64(latency.Milliseconds()))
	c.codes[fmt.Sprintf("%d", code)]++
}

func main() {
	cfg := readFlags()

	client := &http.Client{Timeout: cfg.timeout}
	stats := &collector{codes: make(map[string]int)}
	jobs := make(chan int)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < cfg.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				runScenario(client, cfg, stats)
			}
		}()
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	printReport(start, elapsed, cfg, stats)
}

// runScenario оформляет заказ и, в режиме checkout-pay, оплачивает его.
func runScenario(client *http.Client, cfg config, stats *collector) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	start := time.Now()

	orderBody, code, err := post(ctx, client, cfg, "/orders", map[string]interface{}{
		"product_ids": []string{cfg.productID},
	})
	if err != nil || code != http.StatusCreated {
		stats.record(false, time.Since(start), code)
		return
	}

	if cfg.mode == modeCheckout {
		stats.record(true, time.Since(start), code)
		return
	}

	var order struct {
		ID         string `json:"id"`
		TotalMinor int64  `json:"total_minor"`
	}
	if err := json.Unmarshal(orderBody, &order); err != nil {
		stats.record(false, time.Since(start), code)
		return
	}

	_, code, err = post(ctx, client, cfg, "/payments", map[string]interface{}{
		"order_id":     order.ID,
		"amount_minor": order.TotalMinor,
		"method_token": "loadtest-token",
	})
	stats.record(err == nil && code == http.StatusCreated, time.Since(start), code)
}

func post(ctx context.Context, client *http.Client, cfg config, path string, body interface{}) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", cfg.userID)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, resp.StatusCode, err
	}
	return buf.Bytes(), resp.StatusCode, nil
}

func printReport(start time.Time, elapsed time.Duration, cfg config, stats *collector) {
	total := stats.success + stats.failed
	rep := report{
		StartedAt:        start.UTC(),
		DurationSeconds:  elapsed.Seconds(),
		TotalScenarios:   total,
		SuccessScenarios: stats.success,
		FailedScenarios:  stats.failed,
		LatencyMs:        summarize(stats.latencies),
		StatusCodes:      stats.codes,
	}
	if total > 0 {
		rep.ErrorRate = float64(stats.failed) / float64(total)
	}
	if elapsed > 0 {
		rep.RPS = float64(total) / elapsed.Seconds()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(rep)
}

func summarize(latencies []float64) latencySummary {
	if len(latencies) == 0 {
		return latencySummary{}
	}

	sorted := append([]float64(nil), latencies...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	percentile := func(p float64) float64 {
		idx := int(p * float64(len(sorted)-1))
		return sorted[idx]
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(0.50),
		P95: percentile(0.95),
		P99: percentile(0.99),
	}
}

func readFlags() config {
	var (
		baseURL     string
		total       int
		concurrency int
		timeout     time.Duration
		modeRaw     string
		userID      string
		productID   string
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "base URL of commerce-service")
	flag.IntVar(&total, "total", 100, "total scenarios to run")
	flag.IntVar(&concurrency, "concurrency", 10, "number of concurrent workers")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-scenario timeout")
	flag.StringVar(&modeRaw, "mode", string(modeCheckoutPay), "scenario: checkout|checkout-pay")
	flag.StringVar(&userID, "user", "loadtest-user", "X-User-ID header value")
	flag.StringVar(&productID, "product", "loadtest-product", "product id to order")
	flag.Parse()

	mode := loadMode(modeRaw)
	if mode != modeCheckout && mode != modeCheckoutPay {
		fmt.Fprintf(os.Stderr, "unsupported mode: %s\n", modeRaw)
		os.Exit(2)
	}
	if total <= 0 || concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "total and concurrency must be positive")
		os.Exit(2)
	}

	return config{
		baseURL:     baseURL,
		total:       total,
		concurrency: concurrency,
		timeout:     timeout,
		mode:        mode,
		userID:      userID,
		productID:   productID,
	}
}

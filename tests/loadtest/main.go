package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
)

var (
	baseURL      string
	token        string
	numWorkers   int
	testDuration time.Duration
	numRecords   int
)

var entities = []string{"residents", "staff", "tickets"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.StringVar(&baseURL, "url", "http://127.0.0.1:8080", "portal base URL")
	flag.StringVar(&token, "token", "", "admin bearer token")
	flag.IntVar(&numWorkers, "workers", 50, "concurrent workers")
	flag.DurationVar(&testDuration, "duration", 10*time.Second, "duration of each phase")
	flag.IntVar(&numRecords, "records", 500, "records per entity")
	flag.Parse()

	fmt.Println("=== Archive Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Records: %d x %d\n\n", numWorkers, testDuration, numRecords, len(entities))

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			drain(resp)
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding records (POST /tree) ---")
	runPhase(testDuration, doSeed)

	fmt.Println("\n--- Phase 2: Archive churn (40% archive, 40% restore, 20% list) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doArchive(rng)
		case r < 0.80:
			return doRestore(rng)
		default:
			return doList(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Listing under load (10% archive, 5% delete, 85% list) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doArchive(rng)
		case r < 0.15:
			return doDelete(rng)
		default:
			return doList(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func pick(rng *rand.Rand) (string, string) {
	return entities[rng.Intn(len(entities))], fmt.Sprintf("rec%d", rng.Intn(numRecords)+1)
}

func doSeed(rng *rand.Rand) result {
	entity, id := pick(rng)
	body, _ := json.Marshal(map[string]any{
		"id":            id,
		"name":          fmt.Sprintf("Name %s", id),
		"photoPublicId": "photos/" + id,
		"updatedAt":     time.Now().UnixMilli(),
	})
	return send("POST /tree", http.MethodPost, "/tree?path="+entity+"/"+id, body, http.StatusNoContent)
}

// doArchive races with restore on the same ids, so 404 and 400 are expected
// outcomes and only 5xx counts as an error.
func doArchive(rng *rand.Rand) result {
	entity, id := pick(rng)
	body, _ := json.Marshal(map[string]any{
		"capture": []string{entity + "/" + id},
		"preview": map[string]any{"name": "Name " + id},
	})
	return send("POST /archives/{e}/{id}", http.MethodPost, "/archives/"+entity+"/"+id, body, 0)
}

func doRestore(rng *rand.Rand) result {
	entity, id := pick(rng)
	return send("POST /archives/{e}/{id}/restore", http.MethodPost, "/archives/"+entity+"/"+id+"/restore", nil, 0)
}

func doDelete(rng *rand.Rand) result {
	entity, id := pick(rng)
	return send("DELETE /archives/{e}/{id}", http.MethodDelete, "/archives/"+entity+"/"+id, nil, 0)
}

func doList(rng *rand.Rand) result {
	if rng.Float64() < 0.3 {
		return send("GET /archives", http.MethodGet, "/archives", nil, http.StatusOK)
	}
	entity, _ := pick(rng)
	return send("GET /archives/{e}", http.MethodGet, "/archives/"+entity, nil, http.StatusOK)
}

// send issues one request. With want == 0 any non-5xx status is a success.
func send(label, method, path string, body []byte, want int) result {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		return result{label, 0, 0, true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{label, 0, lat, true}
	}
	drain(resp)

	failed := resp.StatusCode >= 500
	if want != 0 {
		failed = resp.StatusCode != want
	}
	return result{label, resp.StatusCode, lat, failed}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

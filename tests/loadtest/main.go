package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:8087"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numChildren  = 200
	numContacts  = 3
)

var relationships = []string{"parent", "grandparent", "guardian", "sibling", "neighbor"}

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
	fmt.Println("=== EPD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Children: %d | Contacts per profile: %d\n\n", numChildren, numContacts)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Seed profiles with POST requests
	fmt.Println("\n--- Phase 1: Seeding profiles (POST /profile) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doStoreProfile(rng)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (40% write, 60% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doStoreProfile(rng)
		case r < 0.40:
			return doRecordUsage(rng)
		case r < 0.65:
			return doGetProfile(rng)
		case r < 0.80:
			return doGetQR(rng)
		case r < 0.90:
			return doClassifyBanner(rng)
		default:
			return doGetUsageStats()
		}
	})

	// Phase 3: Read-heavy emergency load
	fmt.Println("\n--- Phase 3: Read-heavy load (5% write, 95% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doRecordUsage(rng)
		case r < 0.45:
			return doGetProfile(rng)
		case r < 0.75:
			return doGetQR(rng)
		case r < 0.90:
			return doClassifyBanner(rng)
		default:
			return doGetUsageStats()
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
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
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
	fmt.Println("  " + repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func childID(rng *rand.Rand) string {
	return fmt.Sprintf("child-%d", rng.Intn(numChildren)+1)
}

func contactID(rng *rand.Rand) string {
	return fmt.Sprintf("ct-%d", rng.Intn(numContacts)+1)
}

func doStoreProfile(rng *rand.Rand) result {
	id := childID(rng)
	contacts := make([]map[string]interface{}, numContacts)
	for i := range contacts {
		contacts[i] = map[string]interface{}{
			"id":           fmt.Sprintf("ct-%d", i+1),
			"name":         fmt.Sprintf("Contact %d", i+1),
			"phoneNumber":  fmt.Sprintf("+1-555-%04d", rng.Intn(10000)),
			"relationship": relationships[rng.Intn(len(relationships))],
			"isPrimary":    i == 0,
		}
	}

	body := map[string]interface{}{
		"childId":           id,
		"childName":         fmt.Sprintf("Child %s", id),
		"dateOfBirth":       "2021-03-14",
		"emergencyContacts": contacts,
		"medicalInfo": map[string]interface{}{
			"allergies":            []string{"peanuts"},
			"emergencyMedicalInfo": "Carries an epinephrine auto-injector",
		},
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/profile", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /profile", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /profile", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doGetProfile(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/profile?child=%s", baseURL, childID(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /profile", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 404 is expected for children not yet seeded
	return result{"GET /profile", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func doGetQR(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/qr?child=%s", baseURL, childID(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /qr", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /qr", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func doRecordUsage(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/profile/contact-usage?child=%s&contact=%s", baseURL, childID(rng), contactID(rng))
	start := time.Now()
	resp, err := httpClient.Post(url, "application/json", nil)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /profile/contact-usage", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /profile/contact-usage", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func doClassifyBanner(rng *rand.Rand) result {
	body := map[string]interface{}{
		"trialProgress": map[string]interface{}{
			"isActive":      rng.Float64() < 0.5,
			"daysRemaining": rng.Intn(15),
		},
	}
	if rng.Float64() < 0.3 {
		body["subscription"] = map[string]interface{}{
			"tier":                    "premium",
			"status":                  "trialing",
			"processorSubscriptionId": fmt.Sprintf("sub_%d", rng.Intn(1000)),
		}
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/banner", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /banner", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /banner", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetUsageStats() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/usage-stats")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /usage-stats", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /usage-stats", resp.StatusCode, lat, resp.StatusCode != 200}
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
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target     target
	Status     int
	StatusOK   bool
	EnvelopeOK bool
	Error      error
	Duration   time.Duration
}

func main() {
	var (
		base        string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for protected endpoints")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smokecheck", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results  []result
		breaking int
		minor    int
	)

	for _, t := range targets {
		p := checkTarget(client, base, token, t)
		if p.Error != nil || !p.StatusOK || !p.EnvelopeOK {
			if t.Critical {
				breaking++
			} else {
				minor++
			}
		}
		results = append(results, p)
	}

	printReport(results)

	fmt.Printf("Breaking failures: %d, Minor failures: %d\n", breaking, minor)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func checkTarget(client *http.Client, base, token string, tgt target) result {
	p := result{Target: tgt}
	resp, dur, err := performRequest(client, base, token, tgt)
	p.Duration = dur
	if err != nil {
		p.Error = fmt.Errorf("request failed: %w", err)
		return p
	}
	defer resp.Body.Close()

	p.Status = resp.StatusCode
	want := tgt.Status
	if want == 0 {
		want = http.StatusOK
	}
	p.StatusOK = p.Status == want

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.Error = fmt.Errorf("read body: %w", err)
		return p
	}
	p.EnvelopeOK = envelopeWellFormed(resp.Header.Get("Content-Type"), body)

	return p
}

func performRequest(client *http.Client, base, token string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

// envelopeWellFormed checks that JSON responses parse and carry either a
// data or an error member. Non-JSON downloads always pass.
func envelopeWellFormed(contentType string, body []byte) bool {
	if !strings.Contains(contentType, "application/json") {
		return true
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	if len(envelope) == 0 {
		return false
	}
	_, hasData := envelope["data"]
	_, hasErr := envelope["error"]
	_, hasStatus := envelope["status"]
	return hasData || hasErr || hasStatus
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusOK || !res.EnvelopeOK {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Status: %d (%s)\n", res.Status, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status ok: %t | Envelope ok: %t | Critical: %t\n", res.StatusOK, res.EnvelopeOK, res.Target.Critical)
		}
	}
}

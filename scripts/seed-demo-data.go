//go:build ignore
// +build ignore

// seed-demo-data seeds six months of plausible ledger history for a demo
// user against a locally running server.
//
// Usage:
//   SKIP_AUTH=true go run ./cmd/server &
//   go run scripts/seed-demo-data.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const demoUser = "demo-user"

type txPayload struct {
	Amount   float64 `json:"amount"`
	Kind     string  `json:"kind"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

type budgetPayload struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func main() {
	baseURL := os.Getenv("SEED_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Now()

	categories := map[string]struct {
		base   float64
		spread float64
		perMo  int
	}{
		"groceries":     {base: 80, spread: 30, perMo: 6},
		"dining":        {base: 45, spread: 25, perMo: 5},
		"transport":     {base: 20, spread: 10, perMo: 8},
		"utilities":     {base: 120, spread: 15, perMo: 2},
		"entertainment": {base: 35, spread: 20, perMo: 3},
	}

	count := 0
	for monthsAgo := 5; monthsAgo >= 0; monthsAgo-- {
		monthStart := now.AddDate(0, -monthsAgo, 0)

		post(baseURL, "/v1/transactions", txPayload{
			Amount:   4200,
			Kind:     "income",
			Category: "salary",
			Date:     monthStart.Format("2006-01-02"),
		})
		count++

		for category, shape := range categories {
			for i := 0; i < shape.perMo; i++ {
				day := monthStart.AddDate(0, 0, rng.Intn(27))
				amount := shape.base + rng.Float64()*shape.spread
				post(baseURL, "/v1/transactions", txPayload{
					Amount:   float64(int(amount*100)) / 100,
					Kind:     "expense",
					Category: category,
					Date:     day.Format("2006-01-02"),
				})
				count++
			}
		}
	}

	// One obvious outlier for the anomaly detector to find.
	post(baseURL, "/v1/transactions", txPayload{
		Amount:   950,
		Kind:     "expense",
		Category: "dining",
		Date:     now.AddDate(0, 0, -2).Format("2006-01-02"),
	})
	count++

	post(baseURL, "/v1/budgets", budgetPayload{Category: "groceries", Amount: 550})
	post(baseURL, "/v1/budgets", budgetPayload{Category: "dining", Amount: 250})

	fmt.Printf("Seeded %d transactions and 2 budgets for %s\n", count, demoUser)
}

func post(baseURL, path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	var method string
	switch path {
	case "/v1/budgets":
		method = http.MethodPut
	default:
		method = http.MethodPost
	}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-Impersonate-User", demoUser)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
}

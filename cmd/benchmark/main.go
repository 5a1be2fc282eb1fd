// Benchmark tool for testing Redline contract scanning against labeled data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/contracts.csv -url http://localhost:8080
//
// This tool:
//   1. Reads labeled contract clauses (text plus a has_risk label)
//   2. Sends each clause to Redline for scanning
//   3. Compares the scan verdict with the actual risk labels
//   4. Calculates precision, recall, F1-score, and confusion matrix
//
// CSV columns: text, has_risk (1/0). An optional categories column narrows
// each scan to a comma-separated set of rule categories.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledContract is a row from the benchmark dataset.
type LabeledContract struct {
	Text       string
	Categories []string
	HasRisk    bool
}

// ScanRequest matches the Redline scan API request format.
type ScanRequest struct {
	ContractText string   `json:"contract_text"`
	CheckTypes   []string `json:"check_types,omitempty"`
}

// ScanResponse is the subset of the scan report the benchmark needs.
type ScanResponse struct {
	Status    string `json:"status"`
	RiskCount int    `json:"risk_count"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Risky clause flagged
	FalsePositives int64 // Clean clause flagged
	TrueNegatives  int64 // Clean clause passed
	FalseNegatives int64 // Risky clause passed (missed risk!)

	TotalProcessed int64
	TotalRisky     int64
	TotalClean     int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	csvPath := flag.String("csv", "", "Path to labeled contracts CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Redline base URL")
	limit := flag.Int("limit", 10000, "Maximum clauses to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	riskOnly := flag.Bool("risk-only", false, "Only test clauses labeled risky")
	verbose := flag.Bool("verbose", false, "Print each clause result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/contracts.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║          REDLINE BENCHMARK - Contract Risk Scanning           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Redline URL: %s\n", *baseURL)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Risk Only:   %v\n", *riskOnly)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Redline not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Redline is running:")
		fmt.Println("  go run cmd/redline/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Redline is healthy")

	fmt.Printf("\nReading labeled contracts from %s...\n", *csvPath)
	contracts, err := readContractCSV(*csvPath, *limit, *riskOnly)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d clauses\n", len(contracts))

	riskCount := 0
	for _, c := range contracts {
		if c.HasRisk {
			riskCount++
		}
	}
	fmt.Printf("  - Risky: %d (%.2f%%)\n", riskCount, 100*float64(riskCount)/float64(len(contracts)))
	fmt.Printf("  - Clean: %d (%.2f%%)\n", len(contracts)-riskCount, 100*float64(len(contracts)-riskCount)/float64(len(contracts)))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(contracts, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readContractCSV(path string, limit int, riskOnly bool) ([]LabeledContract, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	textCol, ok := colIndex["text"]
	if !ok {
		return nil, fmt.Errorf("missing required column: text")
	}
	labelCol, ok := colIndex["has_risk"]
	if !ok {
		return nil, fmt.Errorf("missing required column: has_risk")
	}

	var contracts []LabeledContract

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		hasRisk := record[labelCol] == "1"
		if riskOnly && !hasRisk {
			continue
		}

		c := LabeledContract{
			Text:    record[textCol],
			HasRisk: hasRisk,
		}
		if catCol, ok := colIndex["categories"]; ok && record[catCol] != "" {
			c.Categories = strings.Split(record[catCol], ",")
		}

		contracts = append(contracts, c)

		if limit > 0 && len(contracts) >= limit {
			break
		}
	}

	return contracts, nil
}

func runBenchmark(contracts []LabeledContract, baseURL string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan LabeledContract, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for c := range work {
				start := time.Now()
				result, err := scanContract(client, baseURL, c)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %v\n", err)
					}
					continue
				}

				if c.HasRisk {
					atomic.AddInt64(&metrics.TotalRisky, 1)
				} else {
					atomic.AddInt64(&metrics.TotalClean, 1)
				}

				predicted := result.RiskCount > 0
				actual := c.HasRisk

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "✓"
					if predicted != actual {
						status = "✗"
					}
					excerpt := []rune(c.Text)
					if len(excerpt) > 20 {
						excerpt = excerpt[:20]
					}
					fmt.Printf("%s %-20s… | Risky: %-5v | Redline: %-4s (%d findings)\n",
						status,
						string(excerpt),
						c.HasRisk,
						result.Status,
						result.RiskCount,
					)
				}
			}
		}()
	}

	for _, c := range contracts {
		work <- c
	}
	close(work)

	wg.Wait()

	return metrics
}

func scanContract(client *http.Client, baseURL string, c LabeledContract) (*ScanResponse, error) {
	req := ScanRequest{
		ContractText: c.Text,
		CheckTypes:   c.Categories,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/contracts/scan", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result ScanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Risky:      %d\n", m.TotalRisky)
	fmt.Printf("   Total Clean:      %d\n", m.TotalClean)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\n📈 CONFUSION MATRIX\n")
	fmt.Println("                        Predicted")
	fmt.Println("                   RISKY       CLEAN")
	fmt.Println("              ┌──────────┬──────────┐")
	fmt.Printf("   Actual  R  │ %8d │ %8d │  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              ├──────────┼──────────┤")
	fmt.Printf("           C  │ %8d │ %8d │  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              └──────────┴──────────┘")

	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\n🎯 DETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of findings, how many were actual risks)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of risks, how many did we catch)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	fmt.Printf("\n🔍 DETECTION ANALYSIS\n")
	if m.TotalRisky > 0 {
		detectionRate := float64(m.TruePositives) / float64(m.TotalRisky) * 100
		missRate := float64(m.FalseNegatives) / float64(m.TotalRisky) * 100
		fmt.Printf("   Risks Detected:    %d / %d (%.2f%%)\n", m.TruePositives, m.TotalRisky, detectionRate)
		fmt.Printf("   Risks Missed:      %d / %d (%.2f%%) ⚠️\n", m.FalseNegatives, m.TotalRisky, missRate)
	}
	if m.TotalClean > 0 {
		falseAlarmRate := float64(m.FalsePositives) / float64(m.TotalClean) * 100
		fmt.Printf("   False Alarms:      %d / %d (%.2f%%)\n", m.FalsePositives, m.TotalClean, falseAlarmRate)
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		cps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f scans/sec\n", cps)
	}

	fmt.Printf("\n💡 INTERPRETATION\n")
	if recall >= 0.9 {
		fmt.Println("   ✅ Excellent recall - catching most risky clauses")
	} else if recall >= 0.7 {
		fmt.Println("   ⚠️  Good recall - but missing some risks")
	} else if recall >= 0.5 {
		fmt.Println("   ⚠️  Moderate recall - significant risks being missed")
	} else {
		fmt.Println("   ❌ Poor recall - most risks are being missed!")
	}

	if precision >= 0.5 {
		fmt.Println("   ✅ Good precision - findings are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   ⚠️  Low precision - many false alarms")
	} else {
		fmt.Println("   ❌ Very low precision - mostly false alarms")
	}

	fmt.Println()
}

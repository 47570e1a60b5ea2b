// cmd/tools/prospect-ledger/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"candidate-evaluation-workers/internal/engine/prospects"
	"candidate-evaluation-workers/internal/models"
)

func main() {
	in := flag.String("in", "", "Prospect CSV to import (required)")
	out := flag.String("out", "", "Write the normalized ledger as CSV to this file")
	search := flag.String("search", "", "Only keep prospects whose name contains this text")
	source := flag.String("source", "", "Only keep prospects with this source (Self Acquired, Inherited, Finder)")
	asJSON := flag.Bool("json", false, "Print totals as JSON")
	flag.Parse()

	if *in == "" {
		fmt.Println("Error: -in is required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", *in, err)
		os.Exit(1)
	}

	list, imported := prospects.ImportCSV(nil, string(data))
	if imported == 0 {
		fmt.Printf("No rows imported from %s. Expected header: %v\n", *in, prospects.Headers)
		os.Exit(1)
	}

	list = prospects.Filter(list, prospects.Query{Text: *search, Source: *source})
	totals := prospects.Aggregate(list)

	if *asJSON {
		body, err := json.MarshalIndent(struct {
			Imported int               `json:"imported"`
			Totals   prospects.Totals  `json:"totals"`
			Rows     []models.Prospect `json:"rows"`
		}{imported, totals, list}, "", "  ")
		if err != nil {
			fmt.Printf("Error encoding totals: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(body))
	} else {
		fmt.Printf("Imported %d rows, %d after filters\n", imported, totals.Count)
		fmt.Printf("%-32s %-14s %10s %12s %12s\n", "NAME", "SOURCE", "WEALTH", "BEST NNM", "WORST NNM")
		for _, p := range append(list, totals.TotalRow()) {
			fmt.Printf("%-32s %-14s %10.2f %12.2f %12.2f\n", p.Name, p.Source, p.WealthM, p.BestCaseNNMM, p.WorstCaseNNMM)
		}
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(prospects.ExportCSV(list)), 0o644); err != nil {
			fmt.Printf("Error writing %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(list), *out)
	}
}

package common

import (
	"encoding/json"
	"fmt"
	"os"
)

type Result struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// PrintResult emits a machine-readable summary when ci is set, or a
// plain line-per-detail report otherwise.
func PrintResult(ci, ok bool, title string, details []string, err error) {
	if ci {
		result := Result{OK: ok, Title: title, Details: details}
		if err != nil {
			result.Error = err.Error()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", title, err)
		return
	}
	fmt.Println(title)
	for _, d := range details {
		fmt.Println("  - " + d)
	}
}

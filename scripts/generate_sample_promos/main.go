package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Creates sample gzipped promo code files for local development. Codes
// must be 8-10 characters to pass validation.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	promoFiles := map[string][]string{
		"promos1.gz": {
			"SAVENOW10",
			"WELCOME25",
			"FIRSTBUY1",
			"SUMMER202",
		},
		"promos2.gz": {
			"LOYALTY99",
			"COMEBACK5",
			"HOLIDAY50",
			"TOOLONGTOBEVALID", // rejected by the length check
			"SHORT",            // also rejected
		},
	}

	for filename, codes := range promoFiles {
		path := filepath.Join(dataDir, filename)
		if err := writeGzipFile(path, codes); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Wrote %d codes to %s\n", len(codes), path)
	}
}

func writeGzipFile(path string, codes []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintln(gz, code); err != nil {
			return err
		}
	}

	return nil
}

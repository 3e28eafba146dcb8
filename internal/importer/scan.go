package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var chartExts = map[string]bool{".csv": true, ".xlsx": true}

// Expand replaces each directory in paths with the chart files (.csv, .xlsx)
// directly inside it, in name order. Other paths, including ones that do not
// exist, are passed through for the reader to report.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading chart dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !chartExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			out = append(out, filepath.Join(p, e.Name()))
		}
	}
	return out, nil
}

// Package health reports whether the backend's storage root is usable.
// The front-end surfaces a degraded state before the user hits a write
// failure mid-operation.
package health

import (
	"fmt"
	"os"
	"path/filepath"
)

// Status represents the health of the storage root.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Report is the outcome of a single health check.
type Report struct {
	Status    Status `json:"status"`
	DataDir   string `json:"data_dir"`
	Writable  bool   `json:"writable"`
	FreeBytes uint64 `json:"free_bytes,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Check probes the data directory: it must exist (or be creatable) and
// accept writes. Free disk space is included where the platform exposes it.
func Check(dataDir string) Report {
	report := Report{Status: StatusOK, DataDir: dataDir, Writable: true}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		report.Status = StatusDegraded
		report.Writable = false
		report.Message = fmt.Sprintf("creating data dir: %v", err)
		return report
	}

	// Probe with a real write — permission bits alone can lie (read-only
	// mounts, quota).
	probe := filepath.Join(dataDir, ".health-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		report.Status = StatusDegraded
		report.Writable = false
		report.Message = fmt.Sprintf("write probe: %v", err)
		return report
	}
	os.Remove(probe)

	if free, ok := freeBytes(dataDir); ok {
		report.FreeBytes = free
	}
	return report
}

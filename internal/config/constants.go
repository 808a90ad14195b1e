// Package config holds process-wide constants, following the shape of
// funxy's internal/config/constants.go (package-level Version var,
// recognized-extension helpers, IsTestMode mode flag).
package config

// Version is the current liquidgo version. Set at build time via
// -ldflags, same convention as funxy's Version var.
var Version = "0.1.0"

const SourceFileExt = ".rlq"

// SourceFileExtensions are all recognized surface-item file extensions.
var SourceFileExtensions = []string{".rlq", ".refine"}

// TrimSourceExt removes a recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates the process is running under `go test`.
// Set once at startup, mirroring funxy's IsTestMode/IsLSPMode convention.
var IsTestMode = false

// Default qualifier names always emitted globally (spec.md §6).
const (
	QualEqZero = "EqZero"
	QualGtZero = "GtZero"
	QualGeZero = "GeZero"
	QualLtZero = "LtZero"
	QualLeZero = "LeZero"
	QualEq     = "Eq"
	QualGt     = "Gt"
	QualGe     = "Ge"
	QualLt     = "Lt"
	QualLe     = "Le"
	QualLe1    = "Le1"
)

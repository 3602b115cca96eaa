// =============================================================================
// Missouri Lobbying Ledger - Main Entry Point
// =============================================================================
//
// USAGE:
//   lobbying load      - Rebuild the store from the reference tables and workbooks
//   lobbying report    - Print spending totals and rankings
//   lobbying export    - Write every expenditure as CSV
//   lobbying config    - Print the effective configuration
//   lobbying version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Ingest pipeline, store, reporting
//   - pkg/utils/     : Input discovery and log files
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/missouri-lobbying/cmd"
)

func main() {
	cmd.Execute()
}

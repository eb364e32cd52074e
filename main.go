// =============================================================================
// PO Middleware - Main Entry Point
// =============================================================================
//
// This is the main entry point of the po-middleware CLI. It hands control to
// the cmd package.
//
// USAGE:
//   po-middleware process       - Convert the PO exports in the source folder
//   po-middleware validate      - Check the configuration and master workbooks
//   po-middleware version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Pipeline stages, configuration, lookups, writers
//   - pkg/           : Logging and file management shared by the commands
//
// =============================================================================

package main

import (
	"github.com/edisonbriones/po-middleware/cmd"
)

func main() {
	cmd.Execute()
}

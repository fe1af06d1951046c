// =============================================================================
// Delivery Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   deliveries import <file>   - Import a primary delivery sheet
//   deliveries status <file>   - Apply a status sheet
//   deliveries validate <file> - Check a sheet without importing it
//   deliveries show            - Print the stored records
//   deliveries export          - Export the stored records to XLSX
//   deliveries clear           - Remove every stored record
//   deliveries version         - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Engine, decoders, persistence and state holder
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/delivery-reconciler/cmd"
)

func main() {
	cmd.Execute()
}

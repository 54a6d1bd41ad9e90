// Printer-probe is an operator utility for network printers.
//
// It discovers raw-socket printers via SNMP broadcast and DNS-SD, and talks
// to individual devices by URI: supply levels, status, identity, and raw job
// submission over the data socket.
//
// Usage:
//
//	printer-probe [command] [flags]
//
// See 'printer-probe --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "printer-probe",
	Short: "Network printer probe utility",
	Long: `A standalone utility for probing network printers.

Discovers raw-socket printers via SNMP broadcast and DNS-SD, reads supply
levels and status over SNMP, and submits raw print data over the data
socket.`,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/printkit/netdevice/internal/device"
	"github.com/printkit/netdevice/internal/discovery"
)

var (
	community    string
	snmpCeiling  time.Duration
	dnssdCeiling time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&community, "community", discovery.DefaultCommunity, "SNMP community string")
	rootCmd.PersistentFlags().DurationVar(&snmpCeiling, "snmp-timeout", discovery.DefaultSNMPCeiling, "SNMP discovery ceiling")
	rootCmd.PersistentFlags().DurationVar(&dnssdCeiling, "dnssd-timeout", discovery.DefaultDNSSDCeiling, "DNS-SD discovery ceiling")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(suppliesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(sendCmd)
}

func newDiscoveryContext() *discovery.Context {
	return discovery.NewContext(
		discovery.WithCommunity(community),
		discovery.WithSNMPCeiling(snmpCeiling),
		discovery.WithDNSSDCeiling(dnssdCeiling),
	)
}

func printError(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func openDevice(ctx context.Context, uri, jobName string) (*device.Device, error) {
	d, err := device.Open(ctx, newDiscoveryContext(), uri, jobName, printError)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %v", uri, err)
	}
	return d, nil
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover network printers",
	Long: `Discover raw-socket printers on the local network.

Runs the SNMP broadcast sweep and then the DNS-SD browse, printing one line
per printer with its device URI and description.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	count := 0
	device.List(cmd.Context(), newDiscoveryContext(), func(c *discovery.Candidate) bool {
		count++
		info := c.Info
		if info == "" {
			info = c.Name
		}
		fmt.Printf("%-50s %s\n", c.URI, info)
		return false
	}, printError)
	if count == 0 {
		fmt.Println("No printers found")
	}
	return nil
}

var suppliesCmd = &cobra.Command{
	Use:   "supplies URI",
	Short: "Report supply levels for one printer",
	Args:  cobra.ExactArgs(1),
	RunE:  runSupplies,
}

func runSupplies(cmd *cobra.Command, args []string) error {
	d, err := openDevice(cmd.Context(), args[0], "supplies")
	if err != nil {
		return err
	}
	defer d.Close()

	records := d.Supplies(cmd.Context(), device.MaxSupplies)
	if len(records) == 0 {
		fmt.Println("No supplies reported")
		return nil
	}
	for _, s := range records {
		color := s.Color
		if color == "" {
			color = "-"
		}
		fmt.Printf("%2d  %-16s %-8s %3d%%  %s\n", s.Index, s.Type, color, s.Level, s.Description)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status URI",
	Short: "Report printer state reasons",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDevice(cmd.Context(), args[0], "status")
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Println(d.Status(cmd.Context()))
	return nil
}

var identifyCmd = &cobra.Command{
	Use:   "identify URI",
	Short: "Print the IEEE-1284 device ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func runIdentify(cmd *cobra.Command, args []string) error {
	d, err := openDevice(cmd.Context(), args[0], "identify")
	if err != nil {
		return err
	}
	defer d.Close()

	id := d.ID(cmd.Context())
	if id == "" {
		return fmt.Errorf("device at %s reported no device ID", args[0])
	}
	fmt.Println(id)
	return nil
}

var sendCmd = &cobra.Command{
	Use:   "send URI FILE",
	Short: "Send a raw print file to a printer",
	Long: `Send a file verbatim over the printer's data socket.

The file is not converted in any way; it must already be in a format the
printer understands (PCL, PostScript, vendor raster).`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := openDevice(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := io.Copy(d, f)
	if err != nil {
		return fmt.Errorf("send failed after %d bytes: %v", n, err)
	}
	fmt.Printf("Sent %d bytes\n", n)
	return nil
}

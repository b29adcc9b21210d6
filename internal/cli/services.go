package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/spf13/cobra"
)

func init() {
	servicesCmd.Flags().String("inline", "", `inline entries merged over the file, "ip=name,ip=name"`)
	rootCmd.AddCommand(servicesCmd)
}

var servicesCmd = &cobra.Command{
	Use:   "services <file>",
	Short: "Check a services side-table and list its entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runServices,
}

func runServices(cmd *cobra.Command, args []string) error {
	table, err := endpoint.LoadServicesFile(args[0])
	if err != nil {
		return err
	}
	if inline, _ := cmd.Flags().GetString("inline"); inline != "" {
		extra, err := endpoint.ParseServices(inline)
		if err != nil {
			return err
		}
		table = table.Merge(extra)
	}

	entries := table.All()
	ips := make([]string, 0, len(entries))
	for ip := range entries {
		ips = append(ips, ip)
	}
	slices.Sort(ips)

	out := cmd.OutOrStdout()
	width := 0
	for _, ip := range ips {
		width = max(width, len(ip))
	}
	for _, ip := range ips {
		fmt.Fprintf(out, "%s%s  %s\n", ip, strings.Repeat(" ", width-len(ip)), entries[ip])
	}
	fmt.Fprintf(out, "%d entries\n", len(ips))
	return nil
}

// Command hivestore runs the honey storefront API and offers offline
// catalog tooling.
//
// Command hivestore 运行蜂蜜商店API，并提供离线目录工具。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "hivestore",
	Short: "Honey storefront product query engine and cart store",
	Long: `hivestore serves the product catalog, ranked search, search history and
a per-session shopping cart over a JSON HTTP API.

Run "hivestore serve" to start the API, or use the catalog commands to
validate and query a product file without starting a server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml or json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

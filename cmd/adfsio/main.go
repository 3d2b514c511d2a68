// Command adfsio lists and extracts Acorn ADFS disc images: one
// cobra.Command per subcommand, each reading the image with
// storage.NewReader straight off an os.File.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "adfsio",
	Short: "Read and extract Acorn ADFS disc images",
	Long: `adfsio identifies an ADFS disc image, reconstructs its directory tree and
either lists its contents or extracts them to a host directory.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "include informational log entries")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adfsio/adfs"
	"adfsio/storage"
)

var listFiletypes bool

var listCmd = &cobra.Command{
	Use:                   "list FILE",
	Short:                 "List the contents of an ADFS disc image",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		f, err := os.Open(filename)
		if err != nil {
			return err
		}
		defer f.Close()

		reader, err := storage.NewReader(f)
		if err != nil {
			return err
		}

		disc, err := adfs.Open(reader, verbose)
		if err != nil {
			return err
		}

		fmt.Print(disc.String())
		fmt.Print(adfs.PrintCatalogue(disc.Files(), "$", listFiletypes))

		if verbose && disc.Log() != nil {
			fmt.Println(disc.Log().Pretty(verbose))
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listFiletypes, "filetypes", "t", false, "show file type numbers instead of load/exec addresses")
	rootCmd.AddCommand(listCmd)
}

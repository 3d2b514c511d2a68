package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adfsio/adfs"
	"adfsio/storage"
)

var verifyCmd = &cobra.Command{
	Use:                   "verify FILE",
	Short:                 "Parse an ADFS disc image and report structural problems",
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

		disc, err := adfs.Open(reader, true)
		if err != nil {
			return err
		}

		fmt.Print(disc.String())
		fmt.Println(disc.Log().Pretty(verbose))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

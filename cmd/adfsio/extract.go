package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"adfsio/adfs"
	"adfsio/adfs/config"
	"adfsio/adfs/extract"
	"adfsio/storage"
)

var (
	extractFiletypes bool
	extractSeparator string
	extractConvert   string
	extractNamedDir  bool
)

var extractCmd = &cobra.Command{
	Use:                   "extract FILE",
	Short:                 "Extract the contents of an ADFS disc image to a host directory",
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

		opts := config.DefaultOptions()
		opts.Filetypes = extractFiletypes
		opts.DiscNamedSubdir = extractNamedDir
		if extractSeparator != "" {
			opts.Separator = extractSeparator
		}
		if extractConvert != "" {
			dict, err := parseConvertDict(extractConvert)
			if err != nil {
				return err
			}
			opts.ConvertDict = dict
		}

		destDir, _ := cmd.Flags().GetString("dir")
		if destDir == "" {
			destDir = "."
		}

		if err := extract.Tree(afero.NewOsFs(), destDir, disc.DiscName(), disc.Files(), opts, disc.Log()); err != nil {
			return err
		}

		if verbose && disc.Log() != nil {
			fmt.Println(disc.Log().Pretty(verbose))
		}

		return nil
	},
}

// parseConvertDict parses the "<src><dst>[,<src><dst>]..." flag format
// into a single-rune replacement map.
func parseConvertDict(flag string) (map[rune]rune, error) {
	dict := make(map[rune]rune)
	for _, pair := range strings.Split(flag, ",") {
		runes := []rune(pair)
		if len(runes) != 2 {
			return nil, errors.Errorf("invalid conversion pair %q: want exactly two characters", pair)
		}
		dict[runes[0]] = runes[1]
	}
	return dict, nil
}

func init() {
	extractCmd.Flags().BoolVarP(&extractFiletypes, "filetypes", "t", false, "extract using file type numbers instead of INF side-cars")
	extractCmd.Flags().StringVarP(&extractSeparator, "separator", "s", "", `separator between name and type/"inf" (default ".")`)
	extractCmd.Flags().String("dir", "", "destination directory (default: current directory)")
	extractCmd.Flags().StringVar(&extractConvert, "convert", "", `character conversion list, e.g. "/.,#?"`)
	extractCmd.Flags().BoolVar(&extractNamedDir, "named-dir", false, "extract into a subdirectory named after the disc")
	rootCmd.AddCommand(extractCmd)
}

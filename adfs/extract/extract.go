// Package extract writes a decoded ADFS directory tree to a host
// filesystem, in the INF side-car convention or filetyped form. It takes
// an afero.Fs rather than writing straight to os calls, so the
// accompanying tests exercise full trees against an in-memory
// afero.MemMapFs instead of touching disc.
package extract

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"adfsio/adfs"
	"adfsio/adfs/config"
	"adfsio/adfs/diagnostic"
)

// ErrNotADirectory is wrapped into the returned error when an intermediate
// path component already exists as a non-directory.
var ErrNotADirectory = errors.New("path component exists and is not a directory")

// Tree writes every file in files to fs under destDir, recursing into
// subdirectories and following opts. discName is used only when
// opts.DiscNamedSubdir is set. Errors for individual files or subtrees are
// collected with multierror and do not prevent sibling extraction; a nil
// return means every file was written successfully.
func Tree(fs afero.Fs, destDir, discName string, files []*adfs.Node, opts config.ExtractOptions, log *diagnostic.Log) error {
	root := destDir
	if opts.DiscNamedSubdir {
		named, _ := convertName(discName, opts.ConvertDict)
		root = path.Join(destDir, named)
	}

	if err := fs.MkdirAll(root, 0o755); err != nil {
		return errors.Wrap(err, "creating destination directory")
	}

	var result *multierror.Error
	extractEntries(fs, root, "$", files, opts, log, &result)
	return result.ErrorOrNil()
}

func extractEntries(fs afero.Fs, hostDir, adfsPath string, nodes []*adfs.Node, opts config.ExtractOptions, log *diagnostic.Log, result **multierror.Error) {
	for _, n := range nodes {
		name, changed := convertName(n.Name, opts.ConvertDict)
		childPath := adfsPath + "." + n.Name
		if changed {
			log.Append(diagnostic.Inform, "converted name %q to %q", n.Name, name)
		}

		switch {
		case n.Dir != nil:
			subDir := path.Join(hostDir, name)
			if info, err := fs.Stat(subDir); err == nil && !info.IsDir() {
				*result = multierror.Append(*result, errors.Wrapf(ErrNotADirectory, "%s", subDir))
				log.Append(diagnostic.Error, "skipping subtree %s: %s exists and is not a directory", childPath, subDir)
				continue
			}
			if err := fs.MkdirAll(subDir, 0o755); err != nil {
				*result = multierror.Append(*result, errors.Wrapf(err, "creating %s", subDir))
				log.Append(diagnostic.Error, "skipping subtree %s: creating %s: %v", childPath, subDir, err)
				continue
			}
			extractEntries(fs, subDir, childPath, n.Dir.Entries, opts, log, result)

		case n.File != nil:
			if err := writeFile(fs, hostDir, name, childPath, n.File, opts, log); err != nil {
				*result = multierror.Append(*result, err)
				log.Append(diagnostic.Error, "extracting %s: %v", childPath, err)
			}
		}
	}
}

func writeFile(fs afero.Fs, hostDir, hostName, adfsPath string, f *adfs.FileNode, opts config.ExtractOptions, log *diagnostic.Log) error {
	sep := opts.Separator
	if sep == "" {
		sep = "."
	}

	if opts.Filetypes {
		fileType := (f.Load >> 8) & 0xfff
		target := path.Join(hostDir, fmt.Sprintf("%s%s%x", hostName, sep, fileType))
		if err := afero.WriteFile(fs, target, f.Data, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", target)
		}
		return nil
	}

	target := path.Join(hostDir, hostName)
	if err := afero.WriteFile(fs, target, f.Data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", target)
	}

	infTarget := path.Join(hostDir, hostName+sep+"inf")
	infLine := InfLine(adfsPath, f.Load, f.Exec, f.Length)
	if err := afero.WriteFile(fs, infTarget, []byte(infLine), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", infTarget)
	}

	return nil
}

// InfLine renders the INF side-car text line for a file:
// "$.NAME\tLOAD\tEXEC\tLENGTH", all three numbers uppercase hex with no
// "0x" prefix.
func InfLine(adfsPath string, load, exec_, length uint32) string {
	return fmt.Sprintf("%s\t%X\t%X\t%X", adfsPath, load, exec_, length)
}

// convertName applies dict to name one rune at a time, reporting whether
// any substitution actually fired so callers can log it under verify.
func convertName(name string, dict map[rune]rune) (string, bool) {
	if len(dict) == 0 {
		return name, false
	}
	var b strings.Builder
	changed := false
	for _, r := range name {
		if repl, ok := dict[r]; ok {
			b.WriteRune(repl)
			changed = changed || repl != r
		} else {
			b.WriteRune(r)
		}
	}
	return b.String(), changed
}

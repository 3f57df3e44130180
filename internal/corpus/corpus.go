// Package corpus discovers conformance test cases on disk.
//
// A test case is a triple of files sharing a base name: a required source
// file, an optional stdin file, and an optional expected-output file (the
// oracle). Only the source file must exist.
package corpus

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions names the file suffixes a corpus uses.
type Extensions struct {
	Source string
	Stdin  string
	Expect string
}

// DefaultExtensions returns the conventional .sy/.in/.out triple.
func DefaultExtensions() Extensions {
	return Extensions{Source: ".sy", Stdin: ".in", Expect: ".out"}
}

// Case is one discovered test program. Name is the source file name with
// its extension stripped and is unique within a run.
type Case struct {
	Name   string
	Source string
	Stdin  string // sibling stdin path; the file may not exist
	Expect string // sibling oracle path; the file may not exist
}

// StdinText returns the contents of the stdin file. An absent or unreadable
// file means the program is fed no input.
func (c Case) StdinText() string {
	return readOrEmpty(c.Stdin)
}

// ExpectedText returns the recorded oracle. An absent or unreadable file
// means the expected output is the empty string.
func (c Case) ExpectedText() string {
	return readOrEmpty(c.Expect)
}

func readOrEmpty(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Discover enumerates test cases. When explicit is non-empty the result is
// the singleton case for that source file, bypassing directory search.
// Otherwise every source file under each existing dir is collected and the
// combined list is sorted lexicographically by path for a reproducible run
// order. Directories that do not exist are silently skipped.
func Discover(dirs []string, explicit string, ext Extensions) ([]Case, error) {
	if explicit != "" {
		return []Case{fromSource(explicit, ext)}, nil
	}

	var sources []string
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext.Source))
		if err != nil {
			return nil, err
		}
		sources = append(sources, matches...)
	}
	sort.Strings(sources)

	cases := make([]Case, 0, len(sources))
	for _, src := range sources {
		cases = append(cases, fromSource(src, ext))
	}
	return cases, nil
}

func fromSource(src string, ext Extensions) Case {
	base := strings.TrimSuffix(src, ext.Source)
	return Case{
		Name:   filepath.Base(base),
		Source: src,
		Stdin:  base + ext.Stdin,
		Expect: base + ext.Expect,
	}
}

// Package picker resolves the paths a batch run needs.
//
// Paths already given by flag, environment or config file are used as is.
// The rest are asked for, one at a time and always in the same order:
// source folder, item master, store master, status master, output folder.
package picker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edisonbriones/po-middleware/internal/config"
)

// ErrPathRequired is returned by NoPrompt for every path it is asked for.
var ErrPathRequired = errors.New("path required")

// Kind says whether a request wants a folder or a file.
type Kind int

const (
	Folder Kind = iota
	File
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "folder"
}

// Request describes one path to pick.
type Request struct {
	// Purpose is shown to the operator, e.g. "Open SKU Master file".
	Purpose string

	Kind Kind

	// MustExist is false only for the output folder, which is created.
	MustExist bool
}

// Picker returns a path for a request.
type Picker interface {
	Pick(req Request) (string, error)
}

// Purposes, in resolution order.
const (
	PurposeSourceDir    = "Select folder directory"
	PurposeItemMaster   = "Open SKU Master file"
	PurposeStoreMaster  = "Open Store Master file"
	PurposeStatusMaster = "Open SAP Status file"
	PurposeOutputDir    = "Select output folder"
)

// Resolve fills every empty path in paths using p, in the fixed order.
// ArchiveDir is never prompted for.
func Resolve(paths config.Paths, p Picker) (config.Paths, error) {
	steps := []struct {
		target *string
		req    Request
	}{
		{&paths.SourceDir, Request{Purpose: PurposeSourceDir, Kind: Folder, MustExist: true}},
		{&paths.ItemMasterFile, Request{Purpose: PurposeItemMaster, Kind: File, MustExist: true}},
		{&paths.StoreMasterFile, Request{Purpose: PurposeStoreMaster, Kind: File, MustExist: true}},
		{&paths.StatusMasterFile, Request{Purpose: PurposeStatusMaster, Kind: File, MustExist: true}},
		{&paths.OutputDir, Request{Purpose: PurposeOutputDir, Kind: Folder}},
	}

	for _, step := range steps {
		if strings.TrimSpace(*step.target) != "" {
			continue
		}
		path, err := p.Pick(step.req)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", step.req.Purpose, err)
		}
		*step.target = path
	}

	return paths, nil
}

// ResolveMasters is Resolve restricted to the three reference workbooks.
func ResolveMasters(paths config.Paths, p Picker) (config.Paths, error) {
	placeholder := "-"
	source, output := paths.SourceDir, paths.OutputDir
	paths.SourceDir, paths.OutputDir = placeholder, placeholder

	resolved, err := Resolve(paths, p)
	resolved.SourceDir, resolved.OutputDir = source, output
	return resolved, err
}

// =============================================================================
// IMPLEMENTATIONS
// =============================================================================

// NoPrompt fails every request. Used with --no-prompt and in scripts.
type NoPrompt struct{}

func (NoPrompt) Pick(req Request) (string, error) {
	return "", fmt.Errorf("%w: no %s given for %q", ErrPathRequired, req.Kind, req.Purpose)
}

// Prompt asks on a terminal and re-asks until it gets a usable path.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt returns a Prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

func (p *Prompt) Pick(req Request) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", req.Purpose)

		line, err := p.in.ReadString('\n')
		answer := cleanAnswer(line)

		if answer != "" {
			problem := check(answer, req)
			if problem == "" {
				return answer, nil
			}
			fmt.Fprintf(p.out, "  %s\n", problem)
		}

		if err == io.EOF {
			return "", fmt.Errorf("%w: input closed", ErrPathRequired)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
	}
}

// cleanAnswer trims whitespace and the quotes terminals add to dropped paths.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// check returns a message when path does not satisfy req.
func check(path string, req Request) string {
	info, err := os.Stat(path)
	if err != nil {
		if req.MustExist || !os.IsNotExist(err) {
			return fmt.Sprintf("cannot use %s: %v", path, err)
		}
		return ""
	}

	switch {
	case req.Kind == Folder && !info.IsDir():
		return fmt.Sprintf("%s is not a folder", path)
	case req.Kind == File && info.IsDir():
		return fmt.Sprintf("%s is a folder, not a file", path)
	}
	return ""
}

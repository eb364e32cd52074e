// =============================================================================
// PO Middleware - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   po-middleware version
//
// OUTPUT:
//   PO Middleware 1.2.0
//   Commit:     3f2c1a9 (modified)
//   Built:      2024-05-02T08:14:55Z
//   Go Version: go1.24.10
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and BuildDate can be stamped at build time:
//   go build -ldflags "-X 'github.com/edisonbriones/po-middleware/cmd.Version=1.2.0'"
var (
	Version   = "1.2.0"
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		commit, built, dirty := vcsInfo()

		fmt.Printf("PO Middleware %s\n", Version)
		if commit != "" {
			if dirty {
				commit += " (modified)"
			}
			fmt.Printf("Commit:     %s\n", commit)
		}
		if BuildDate != "" {
			built = BuildDate
		}
		if built != "" {
			fmt.Printf("Built:      %s\n", built)
		}
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// vcsInfo reads the commit stamped by the go tool, if any.
func vcsInfo() (commit, built string, dirty bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
			if len(commit) > 7 {
				commit = commit[:7]
			}
		case "vcs.time":
			built = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return commit, built, dirty
}

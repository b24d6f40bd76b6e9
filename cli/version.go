package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Version returns the build version string.
func Version() string {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of ghup",
		Args:  usageArgs(cobra.NoArgs),
		// Version needs no settings.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ghup %s\n", Version())
			if commit != "none" {
				fmt.Fprintf(out, "  commit: %s\n", commit)
			}
			if date != "unknown" {
				fmt.Fprintf(out, "  built:  %s\n", date)
			}
			if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
			}
		},
	}
}

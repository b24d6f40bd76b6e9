package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup"
	"github.com/bangunx/ghup/config"
	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/git"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write ghup settings",
		Long: `Read and write ghup settings.

Settings are merged from built-in defaults, the user config file, the
repository's .ghup.yaml, GHUP_* environment variables and flags, in
increasing priority. A repository file may only pin a profile.`,
	}
	cmd.AddCommand(
		a.newConfigGetCmd(),
		a.newConfigSetCmd(),
		a.newConfigUnsetCmd(),
		a.newConfigPathCmd(),
	)
	return cmd
}

func knownKey(key string) error {
	if slices.Contains(config.GlobalKeys, key) || slices.Contains(config.LocalKeys, key) {
		return nil
	}
	return fmt.Errorf("%w %q", config.ErrUnknownKey, key)
}

func (a *app) newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show settings and where each value comes from",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if err := knownKey(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out, svc.Resolved.Get(args[0]))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, key := range svc.Resolved.Keys() {
				v, src := svc.Resolved.GetWithSource(key)
				fmt.Fprintf(w, "%s\t%s\t%s\n", key, orDash(v), src)
			}
			return w.Flush()
		},
	}
}

func (a *app) newConfigSetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a setting to the user or repository config file",
		Example: `  ghup config set probe_timeout 20s
  ghup config set profile work --local`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			key, value := args[0], args[1]

			if err := config.ValidateValue(key, value); err != nil {
				return fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
			}
			path, err := writeSetting(svc, local, func(root string) error {
				if local {
					return svc.Saver.SaveLocal(root, key, value)
				}
				return svc.Saver.SaveGlobal(key, value)
			})
			if err != nil {
				return err
			}
			a.styles.ok(cmd.OutOrStdout(), "Set %s = %s in %s", key, value, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "write to the repository's .ghup.yaml")
	return cmd
}

func (a *app) newConfigUnsetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the user or repository config file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			key := args[0]

			path, err := writeSetting(svc, local, func(root string) error {
				if local {
					return svc.Saver.DeleteLocalKey(root, key)
				}
				return svc.Saver.DeleteGlobalKey(key)
			})
			if err != nil {
				return err
			}
			a.styles.ok(cmd.OutOrStdout(), "Removed %s from %s", key, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "edit the repository's .ghup.yaml")
	return cmd
}

// writeSetting runs fn against the chosen config file and returns its path.
// Local writes need a repository.
func writeSetting(svc *ghup.Services, local bool, fn func(root string) error) (string, error) {
	if !local {
		return svc.Resolver.GlobalPath(), fn("")
	}
	root := svc.GitRoot()
	if root == "" {
		return "", fmt.Errorf("%w: .", git.ErrNotGitRepo)
	}
	return svc.Resolver.LocalPath(), fn(root)
}

func (a *app) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the files ghup reads and writes",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := services(cmd)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "config\t%s\n", svc.Resolver.GlobalPath())
			fmt.Fprintf(w, "local\t%s\n", orDash(svc.Resolver.LocalPath()))
			fmt.Fprintf(w, "profiles\t%s\n", svc.Profiles.Path())
			fmt.Fprintf(w, "ssh_config\t%s\n", svc.Switcher.SSHConfigPath())
			fmt.Fprintf(w, "ssh_dir\t%s\n", svc.Keys.SSHDir())
			return w.Flush()
		},
	}
}

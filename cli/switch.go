package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup/config"
	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/git"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/switcher"
)

func (a *app) newSwitchCmd() *cobra.Command {
	var (
		global bool
		repo   string
	)

	cmd := &cobra.Command{
		Use:   "switch [name]",
		Short: "Apply a profile to the current repository or globally",
		Long: `Apply a profile to a repository: user.name and user.email are written to
the repository config and remotes on the profile's host are routed through
its SSH alias.

With --global the profile becomes the global git identity and its Host
block in the SSH config is written or replaced.

Without a name, the profile pinned in the repository's .ghup.yaml is used.`,
		Example: `  ghup switch work
  ghup switch oss --global
  ghup switch            # uses the pinned profile`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			name := svc.Settings.Profile
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return fmt.Errorf("%w: name a profile or pin one with 'ghup pin <name>'", gherrors.ErrUsage)
			}

			c, err := loadProfiles(svc)
			if err != nil {
				return err
			}
			p, ok := c.Get(name)
			if !ok {
				return fmt.Errorf("%w: %s", profile.ErrNotFound, name)
			}

			if global {
				res, err := svc.Switcher.SwitchGlobal(*p)
				if res != nil {
					a.renderGlobal(out, p.Name, res)
				}
				return err
			}

			res, err := svc.Switcher.SwitchRepository(*p, repo, switcher.WithKnownAliases(c.Aliases()...))
			if res != nil {
				a.renderRepository(out, p.Name, res)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&global, "global", "g", false, "switch the global identity and SSH routing")
	cmd.Flags().StringVar(&repo, "repo", ".", "repository to switch")
	return cmd
}

func (a *app) renderRepository(out io.Writer, name string, res *switcher.RepositoryResult) {
	for _, w := range res.Warnings {
		a.styles.warn(out, "%s", w)
	}
	if res.Applied.IsZero() && len(res.Remotes) == 0 {
		return
	}
	a.styles.ok(out, "Switched %s to %s", res.RepoPath, a.styles.bold.Render(name))
	if res.Previous != res.Applied {
		fmt.Fprintf(out, "  identity: %s -> %s\n", formatIdentity(res.Previous), formatIdentity(res.Applied))
	}
	for _, rc := range res.Remotes {
		a.styles.step(out, "%s: %s", rc.Name, rc.NewURL)
		fmt.Fprintln(out, a.styles.dim.Render("    was "+rc.OldURL))
	}
}

func (a *app) renderGlobal(out io.Writer, name string, res *switcher.GlobalResult) {
	for _, w := range res.Warnings {
		a.styles.warn(out, "%s", w)
	}
	if !res.IdentityApplied {
		return
	}
	a.styles.ok(out, "Global identity is now %s", a.styles.bold.Render(name))
	switch {
	case res.SSHSkipped:
		fmt.Fprintln(out, a.styles.dim.Render("  profile has no SSH key; SSH config untouched"))
	case res.SSHChanged:
		a.styles.step(out, "updated %s", res.SSHConfigPath)
	default:
		fmt.Fprintln(out, a.styles.dim.Render("  "+res.SSHConfigPath+" already up to date"))
	}
}

func formatIdentity(id git.Identity) string {
	if id.IsZero() {
		return "(unset)"
	}
	return fmt.Sprintf("%s <%s>", orDash(id.Name), orDash(id.Email))
}

func (a *app) newCurrentCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the effective git identity and its profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			cur, err := svc.Switcher.Current(repo)
			if err != nil {
				return err
			}
			c, err := svc.Profiles.Load()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "identity: %s\n", formatIdentity(cur.Identity))
			fmt.Fprintf(out, "scope:    %s\n", cur.Scope)
			if cur.RepoPath != "" {
				fmt.Fprintf(out, "repo:     %s\n", cur.RepoPath)
			}
			if p, ok := switcher.MatchCurrent(c, cur.Identity); ok {
				fmt.Fprintf(out, "profile:  %s\n", a.styles.bold.Render(p.Name))
			} else {
				fmt.Fprintf(out, "profile:  %s\n", a.styles.dim.Render("(none)"))
			}
			if pin := svc.Settings.Profile; pin != "" {
				fmt.Fprintf(out, "pinned:   %s\n", pin)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", ".", "repository to inspect")
	return cmd
}

func (a *app) newPinCmd() *cobra.Command {
	var clearPin bool

	cmd := &cobra.Command{
		Use:   "pin [name]",
		Short: "Pin a profile to this repository",
		Long: `Record a profile in .ghup.yaml at the repository root so that
'ghup switch' without a name applies it.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			root := svc.GitRoot()
			if root == "" {
				return fmt.Errorf("%w: .", git.ErrNotGitRepo)
			}

			if clearPin {
				if len(args) > 0 {
					return fmt.Errorf("%w: --clear takes no profile name", gherrors.ErrUsage)
				}
				if err := svc.Saver.DeleteLocalKey(root, config.KeyProfile); err != nil {
					return err
				}
				a.styles.ok(out, "Removed the pinned profile of %s", root)
				return nil
			}

			if len(args) == 0 {
				if pin := svc.Settings.Profile; pin != "" {
					fmt.Fprintln(out, pin)
					return nil
				}
				fmt.Fprintln(out, a.styles.dim.Render("no profile pinned"))
				return nil
			}

			if _, err := svc.Profiles.Get(args[0]); err != nil {
				return err
			}
			if err := svc.Saver.SaveLocal(root, config.KeyProfile, args[0]); err != nil {
				return err
			}
			a.styles.ok(out, "Pinned %s to %s", a.styles.bold.Render(args[0]), root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearPin, "clear", false, "remove the pin")
	return cmd
}

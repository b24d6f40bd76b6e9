package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup/auth"
	"github.com/bangunx/ghup/auth/ssh"
	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/fsutil"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/switcher"
)

// profileView is the JSON form of a profile. Tokens are never printed.
type profileView struct {
	Name        string `json:"name"`
	GitUserName string `json:"gitUserName"`
	GitEmail    string `json:"gitEmail"`
	Host        string `json:"host"`
	HostAlias   string `json:"hostAlias,omitempty"`
	KeyPath     string `json:"keyPath,omitempty"`
	Token       string `json:"token,omitempty"`
	TokenSHA256 string `json:"tokenSha256,omitempty"`
	Current     bool   `json:"current"`
}

func newProfileView(p *profile.Profile, current bool) profileView {
	v := profileView{
		Name:        p.Name,
		GitUserName: p.GitUserName,
		GitEmail:    p.GitEmail,
		Host:        p.HostName(),
		HostAlias:   p.Alias(),
		KeyPath:     p.KeyPath(),
		Current:     current,
	}
	if p.HasToken() {
		v.Token = auth.MaskToken(p.Token)
		v.TokenSHA256 = auth.HashToken(p.Token)
	}
	return v
}

func (a *app) newListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles and mark the current one",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			c, err := svc.Profiles.Load()
			if err != nil {
				return err
			}

			current := ""
			if cur, err := svc.Switcher.Current("."); err != nil {
				svc.Logger.Warn("cannot read current git identity", "error", err)
			} else if p, ok := switcher.MatchCurrent(c, cur.Identity); ok {
				current = p.Name
			}

			if jsonOut {
				views := make([]profileView, 0, c.Len())
				for i := range c.Accounts {
					views = append(views, newProfileView(&c.Accounts[i], c.Accounts[i].Name == current))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			if c.Len() == 0 {
				fmt.Fprintln(out, "No profiles configured")
				fmt.Fprintln(out, a.styles.dim.Render("Add one with: ghup add <name> --user <name> --email <email>"))
				return nil
			}

			if err := writeProfileTable(out, c, current); err != nil {
				return err
			}
			a.warnSharedTokens(cmd.ErrOrStderr(), c)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

func writeProfileTable(out io.Writer, c *profile.Collection, current string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tNAME\tUSER\tEMAIL\tHOST ALIAS\tKEY\tTOKEN")
	for i := range c.Accounts {
		p := &c.Accounts[i]
		marker := " "
		if p.Name == current {
			marker = "*"
		}
		token := "-"
		if p.HasToken() {
			token = auth.MaskToken(p.Token)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker,
			p.Name,
			orDash(p.GitUserName),
			orDash(p.GitEmail),
			orDash(p.Alias()),
			keyCell(p),
			token,
		)
	}
	return w.Flush()
}

func (a *app) warnSharedTokens(w io.Writer, c *profile.Collection) {
	seen := make(map[string]string)
	for i := range c.Accounts {
		p := &c.Accounts[i]
		if !p.HasToken() {
			continue
		}
		h := auth.HashToken(p.Token)
		if other, ok := seen[h]; ok {
			a.styles.warn(w, "profiles %q and %q store the same token", other, p.Name)
			continue
		}
		seen[h] = p.Name
	}
}

type profileFlags struct {
	user       string
	email      string
	host       string
	alias      string
	keyPath    string
	tokenStdin bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.user, "user", "", "git user.name")
	fl.StringVar(&f.email, "email", "", "git user.email")
	fl.StringVar(&f.host, "host", "", "git host (default from settings, github.com)")
	fl.StringVar(&f.alias, "alias", "", "SSH Host alias (default <host>-<name>)")
	fl.StringVar(&f.keyPath, "key", "", "private key path")
	fl.BoolVar(&f.tokenStdin, "token-stdin", false, "read a personal access token from stdin")
}

func (a *app) newAddCmd() *cobra.Command {
	var (
		pf        profileFlags
		generate  bool
		importSrc string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a profile",
		Long: `Add a profile. With --generate-key a new ed25519 key is created, with
--import-key an existing private key is copied into the SSH directory, and
with --key alone an existing key is used in place.`,
		Example: `  ghup add work --user "Work Name" --email w@co.com --generate-key
  ghup add oss --user me --email me@example.com --import-key ~/.ssh/id_ed25519
  echo "$TOKEN" | ghup add bot --user bot --email bot@co.com --token-stdin`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if generate && importSrc != "" {
				return fmt.Errorf("%w: --generate-key and --import-key cannot be combined", gherrors.ErrUsage)
			}
			svc := services(cmd)
			out := cmd.OutOrStdout()
			name := args[0]

			withKey := generate || importSrc != "" || pf.keyPath != ""
			p := svc.NewProfile(name, withKey)
			p.GitUserName = pf.user
			p.GitEmail = pf.email
			if pf.host != "" {
				p.Host = pf.host
			}
			if p.SSH != nil {
				if pf.keyPath != "" {
					p.SSH.KeyPath = pf.keyPath
				}
				p.SSH.HostAlias = pf.alias
			}
			if pf.tokenStdin {
				token, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				p.Token = token
			}
			p.Normalize()
			if err := p.Validate(); err != nil {
				return err
			}

			c, err := svc.Profiles.Load()
			if err != nil {
				return err
			}
			if _, exists := c.Get(name); exists && !force {
				return fmt.Errorf("%w: %s", profile.ErrDuplicateName, name)
			}
			if err := c.CheckAlias(p); err != nil {
				return err
			}

			var (
				kp      *ssh.KeyPair
				created []string
			)
			if p.SSH != nil {
				if err := svc.Keys.EnsureUniquePath(p.SSH.KeyPath, c.KeyOwners(), name); err != nil {
					return err
				}
				if generate || importSrc != "" {
					created = missingFiles(p.SSH.KeyPath, ssh.PublicKeyPath(p.SSH.KeyPath))
				}
				switch {
				case generate:
					kp, err = svc.Keys.Generate(p.SSH.KeyPath, p.KeyComment(), force)
				case importSrc != "":
					kp, err = svc.Keys.Import(importSrc, p.SSH.KeyPath, force)
				default:
					kp, err = svc.Keys.Inspect(p.SSH.KeyPath)
				}
				if err != nil {
					return err
				}
			}

			for _, w := range p.Warnings() {
				a.styles.warn(cmd.ErrOrStderr(), "%s", w)
			}
			if err := svc.Profiles.AddOrReplace(p, force); err != nil {
				for _, path := range created {
					if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
						svc.Logger.Warn("cannot remove key file", "path", path, "error", rmErr)
					}
				}
				return err
			}

			a.styles.ok(out, "Added profile %s", a.styles.bold.Render(name))
			if kp != nil {
				a.printKeyPair(out, &p, kp)
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&generate, "generate-key", false, "generate a new ed25519 key")
	cmd.Flags().StringVar(&importSrc, "import-key", "", "copy this private key into the SSH directory")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing profile with the same name and overwrite its key files")
	return cmd
}

func (a *app) newEditCmd() *cobra.Command {
	var (
		pf         profileFlags
		noSSH      bool
		clearToken bool
		rename     string
	)

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change fields of a profile",
		Long: `Change fields of a profile. Only the flags given are applied.
An empty --user or --email clears that field. When the profile owns a Host
block in the SSH config, the block follows a new name, alias, host or key,
and is removed with --no-ssh.`,
		Example: `  ghup edit work --email new@co.com
  ghup edit work --rename job`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			name := args[0]
			flags := cmd.Flags()

			if noSSH && (flags.Changed("key") || flags.Changed("alias")) {
				return fmt.Errorf("%w: --no-ssh cannot be combined with --key or --alias", gherrors.ErrUsage)
			}

			var token string
			if pf.tokenStdin {
				var err error
				if token, err = readSecret(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			c, err := svc.Profiles.Load()
			if err != nil {
				return err
			}
			owners := c.KeyOwners()
			var before profile.Profile
			if p, ok := c.Get(name); ok {
				before = p.Clone()
			}

			updated, err := svc.Profiles.Update(name, func(p *profile.Profile) error {
				if flags.Changed("user") {
					p.GitUserName = pf.user
				}
				if flags.Changed("email") {
					p.GitEmail = pf.email
				}
				if flags.Changed("host") {
					if p.SSH != nil && p.SSH.HostAlias == profile.DefaultAlias(p.HostName(), p.Name) {
						p.SSH.HostAlias = ""
					}
					p.Host = pf.host
				}
				if noSSH {
					p.SSH = nil
				}
				if flags.Changed("key") {
					if err := svc.Keys.EnsureUniquePath(pf.keyPath, owners, p.Name); err != nil {
						return err
					}
					if p.SSH == nil {
						p.SSH = &profile.SSH{}
					}
					p.SSH.KeyPath = pf.keyPath
				}
				if flags.Changed("alias") {
					if p.SSH == nil {
						return fmt.Errorf("%w: profile %q has no SSH key; set --key first", profile.ErrInvalidProfile, p.Name)
					}
					p.SSH.HostAlias = pf.alias
				}
				if pf.tokenStdin {
					p.Token = token
				}
				if clearToken {
					p.Token = ""
				}
				return nil
			})
			if err != nil {
				return err
			}

			if rename != "" && rename != name {
				if updated, err = svc.Profiles.Rename(name, rename); err != nil {
					return err
				}
			}

			for _, w := range updated.Warnings() {
				a.styles.warn(cmd.ErrOrStderr(), "%s", w)
			}
			out := cmd.OutOrStdout()
			a.styles.ok(out, "Updated profile %s", a.styles.bold.Render(updated.Name))

			moved, err := svc.Switcher.RerouteProfile(before, updated)
			if err != nil {
				return err
			}
			switch {
			case moved.Routed:
				a.styles.ok(out, "Moved SSH host %s to %s in %s", before.Alias(), updated.Alias(), svc.Switcher.SSHConfigPath())
			case moved.Stripped:
				a.styles.ok(out, "Removed SSH host %s from %s", before.Alias(), svc.Switcher.SSHConfigPath())
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "drop the profile's SSH key settings")
	cmd.Flags().BoolVar(&clearToken, "clear-token", false, "remove the stored token")
	cmd.Flags().StringVar(&rename, "rename", "", "new profile name")
	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	var keepSSH bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a profile and its managed SSH host entry",
		Long: `Remove a profile. The Host block ghup wrote for it in the SSH config is
removed too unless --keep-ssh is given. Key files are left on disk.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			removed, err := svc.Profiles.Remove(args[0])
			if err != nil {
				return err
			}
			a.styles.ok(out, "Removed profile %s", a.styles.bold.Render(removed.Name))

			if keepSSH || removed.SSH == nil {
				return nil
			}
			changed, err := svc.Switcher.StripProfile(removed)
			if err != nil {
				return err
			}
			if changed {
				a.styles.ok(out, "Removed SSH host %s from %s", removed.Alias(), svc.Switcher.SSHConfigPath())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepSSH, "keep-ssh", false, "leave the SSH config untouched")
	return cmd
}

// missingFiles returns the paths that do not exist yet, expanded.
func missingFiles(paths ...string) []string {
	var out []string
	for _, p := range paths {
		p = ssh.ExpandHome(p)
		if !fsutil.Exists(p) {
			out = append(out, p)
		}
	}
	return out
}

// printKeyPair shows the public key to register on the host.
func (a *app) printKeyPair(out io.Writer, p *profile.Profile, kp *ssh.KeyPair) {
	fmt.Fprintf(out, "  key:         %s\n", kp.PrivatePath)
	fmt.Fprintf(out, "  fingerprint: %s\n", kp.Fingerprint)
	if kp.PermissionsFixed {
		a.styles.warn(out, "private key permissions were tightened to 0600")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Add this public key to your %s account:\n\n", p.HostName())
	fmt.Fprintln(out, kp.PublicKey)
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup"
	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/profile"
)

func (a *app) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the SSH keys of profiles",
	}
	cmd.AddCommand(
		a.newKeyGenerateCmd(),
		a.newKeyImportCmd(),
		a.newKeyListCmd(),
		a.newKeyShowCmd(),
	)
	return cmd
}

func (a *app) newKeyGenerateCmd() *cobra.Command {
	var (
		path    string
		comment string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "generate <profile>",
		Short: "Generate an ed25519 key for a profile",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			p, keyPath, err := resolveKeyTarget(svc, args[0], path)
			if err != nil {
				return err
			}
			if comment == "" {
				comment = p.KeyComment()
			}

			kp, err := svc.Keys.Generate(keyPath, comment, force)
			if err != nil {
				return err
			}
			return a.attachKey(cmd.OutOrStdout(), svc, p, kp)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "private key path (default: the profile's key path)")
	cmd.Flags().StringVar(&comment, "comment", "", "key comment (default: the profile's email)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing key file")
	return cmd
}

func (a *app) newKeyImportCmd() *cobra.Command {
	var (
		dest  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <profile> <private-key>",
		Short: "Copy an existing private key into place for a profile",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			p, keyPath, err := resolveKeyTarget(svc, args[0], dest)
			if err != nil {
				return err
			}

			kp, err := svc.Keys.Import(args[1], keyPath, force)
			if err != nil {
				return err
			}
			return a.attachKey(cmd.OutOrStdout(), svc, p, kp)
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "destination path (default: the profile's key path)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing key file")
	return cmd
}

// resolveKeyTarget finds the profile and the key path a new key goes to,
// checking that no other profile owns that path.
func resolveKeyTarget(svc *ghup.Services, name, override string) (*profile.Profile, string, error) {
	c, err := svc.Profiles.Load()
	if err != nil {
		return nil, "", err
	}
	p, ok := c.Get(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", profile.ErrNotFound, name)
	}

	keyPath := override
	if keyPath == "" {
		keyPath = p.KeyPath()
	}
	if keyPath == "" {
		keyPath = svc.Keys.DefaultKeyPath(name)
	}
	if err := svc.Keys.EnsureUniquePath(keyPath, c.KeyOwners(), name); err != nil {
		return nil, "", err
	}
	return p, keyPath, nil
}

// attachKey records kp as the profile's key and prints the public half.
func (a *app) attachKey(out io.Writer, svc *ghup.Services, p *profile.Profile, kp *ssh.KeyPair) error {
	updated, err := svc.Profiles.Update(p.Name, func(q *profile.Profile) error {
		if q.SSH == nil {
			q.SSH = &profile.SSH{}
		}
		q.SSH.KeyPath = kp.PrivatePath
		return nil
	})
	if err != nil {
		return err
	}
	a.styles.ok(out, "Key of %s is %s", a.styles.bold.Render(updated.Name), kp.PrivatePath)
	a.printKeyPair(out, &updated, kp)
	return nil
}

type agentStatus int

const (
	agentUnavailable agentStatus = iota
	agentMissing
	agentLoaded
)

func (s agentStatus) String() string {
	switch s {
	case agentLoaded:
		return "loaded"
	case agentMissing:
		return "not loaded"
	default:
		return "-"
	}
}

// agentChecker answers agent membership questions. A missing agent is not
// an error; every key then reports agentUnavailable.
type agentChecker struct {
	conn *ssh.AgentConnection
}

func newAgentChecker(svc *ghup.Services) *agentChecker {
	conn, err := ssh.GetAgent()
	if err != nil {
		if !errors.Is(err, ssh.ErrNoSSHAgent) {
			svc.Logger.Debug("ssh-agent unavailable", "error", err)
		}
		return &agentChecker{}
	}
	return &agentChecker{conn: conn}
}

func (c *agentChecker) status(fingerprint string) agentStatus {
	if c.conn == nil || fingerprint == "" {
		return agentUnavailable
	}
	ok, err := ssh.AgentHasKey(c.conn, fingerprint)
	if err != nil {
		return agentUnavailable
	}
	if ok {
		return agentLoaded
	}
	return agentMissing
}

func (c *agentChecker) Close() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (a *app) newKeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List public keys in the SSH directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			keys, err := svc.Keys.ListLocalKeys()
			if errors.Is(err, ssh.ErrNoSSHKeys) {
				fmt.Fprintf(out, "No SSH keys in %s\n", svc.Keys.SSHDir())
				return nil
			}
			if err != nil {
				return err
			}
			c, err := svc.Profiles.Load()
			if err != nil {
				return err
			}

			owners := make(map[string]string, c.Len())
			for i := range c.Accounts {
				p := &c.Accounts[i]
				if p.SSH != nil {
					owners[ssh.ExpandHome(p.PublicKeyPath())] = p.Name
				}
			}

			agent := newAgentChecker(svc)
			defer agent.Close()

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTYPE\tFINGERPRINT\tPROFILE\tAGENT")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					k.Path, k.KeyType, k.Fingerprint, orDash(owners[k.Path]), agent.status(k.Fingerprint))
			}
			return w.Flush()
		},
	}
}

func (a *app) newKeyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile>",
		Short: "Show a profile's key and whether ssh-agent holds it",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			p, err := svc.Profiles.Get(args[0])
			if err != nil {
				return err
			}
			if p.SSH == nil {
				fmt.Fprintf(out, "Profile %s has no SSH key\n", p.Name)
				return nil
			}
			kp, err := svc.Keys.Inspect(p.SSH.KeyPath)
			if err != nil {
				return err
			}

			agent := newAgentChecker(svc)
			defer agent.Close()

			fmt.Fprintf(out, "  alias:       %s\n", p.Alias())
			fmt.Fprintf(out, "  type:        %s\n", kp.KeyType)
			fmt.Fprintf(out, "  encrypted:   %t\n", kp.Encrypted)
			fmt.Fprintf(out, "  agent:       %s\n", agent.status(kp.Fingerprint))
			a.printKeyPair(out, &p, kp)
			return nil
		},
	}
}

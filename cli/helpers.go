package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup"
	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/profile"
)

// usageArgs wraps a cobra argument validator so its failures map to the
// usage exit code.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
		}
		return nil
	}
}

func services(cmd *cobra.Command) *ghup.Services {
	return ghup.MustServices(cmd.Context())
}

// loadProfiles loads the collection and fails with ErrNoProfiles when it
// is empty.
func loadProfiles(svc *ghup.Services) (*profile.Collection, error) {
	c, err := svc.Profiles.Load()
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, gherrors.ErrNoProfiles
	}
	return c, nil
}

// readSecret reads the first line of r.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// keyCell describes a profile's key for tables.
func keyCell(p *profile.Profile) string {
	if p.SSH == nil {
		return "-"
	}
	return p.SSH.KeyPath
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/probe"
)

// errChecksFailed marks a test run in which at least one check did not
// authenticate.
var errChecksFailed = errors.New("connectivity checks failed")

type resultView struct {
	Profile    string `json:"profile"`
	Method     string `json:"method"`
	Target     string `json:"target,omitempty"`
	Outcome    string `json:"outcome"`
	Username   string `json:"username,omitempty"`
	DurationMS int64  `json:"durationMs"`
	Skipped    string `json:"skipped,omitempty"`
}

func (a *app) newTestCmd() *cobra.Command {
	var (
		token  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "test [name...]",
		Short: "Check that profiles can authenticate",
		Long: `Check each profile against its host. By default ssh -T is run with the
profile's key; with --token the personal access token is sent to the
GitHub API instead. Without names every profile is checked.`,
		Example: `  ghup test
  ghup test work --token`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services(cmd)
			out := cmd.OutOrStdout()

			targets, err := selectProfiles(svc, args)
			if err != nil {
				return err
			}

			var views []resultView
			failed, checked := 0, 0
			for i := range targets {
				p := targets[i]
				if reason := skipReason(p, token); reason != "" {
					views = append(views, resultView{Profile: p.Name, Method: methodName(token), Skipped: reason})
					if !asJSON {
						a.styles.warn(out, "%s: skipped, %s", p.Name, reason)
					}
					continue
				}

				var res *probe.Result
				if token {
					res, err = svc.Tester.TestToken(cmd.Context(), p)
				} else {
					res, err = svc.Tester.Test(cmd.Context(), p)
				}
				if err != nil {
					return err
				}
				checked++
				if !res.OK() {
					failed++
				}
				views = append(views, newResultView(res))
				if !asJSON {
					a.renderResult(out, res)
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(views); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, checked)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&token, "token", false, "check the personal access token instead of SSH")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// selectProfiles returns the named profiles in argument order, or every
// profile when names is empty.
func selectProfiles(svc *ghup.Services, names []string) ([]profile.Profile, error) {
	c, err := loadProfiles(svc)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return c.Accounts, nil
	}
	out := make([]profile.Profile, 0, len(names))
	for _, name := range names {
		p, ok := c.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", profile.ErrNotFound, name)
		}
		out = append(out, *p)
	}
	return out, nil
}

func skipReason(p profile.Profile, token bool) string {
	if token {
		if !p.HasToken() {
			return "no token"
		}
		return ""
	}
	if p.SSH == nil {
		return "no SSH key"
	}
	return ""
}

func methodName(token bool) string {
	if token {
		return string(probe.MethodToken)
	}
	return string(probe.MethodSSH)
}

func newResultView(r *probe.Result) resultView {
	return resultView{
		Profile:    r.Profile,
		Method:     string(r.Method),
		Target:     r.Target,
		Outcome:    string(r.Outcome),
		Username:   r.Username,
		DurationMS: r.Duration.Milliseconds(),
	}
}

func (a *app) renderResult(out io.Writer, r *probe.Result) {
	line := fmt.Sprintf("%s (%s %s): %s", r.Profile, r.Method, r.Target, a.styles.outcomeLabel(r.Outcome))
	if r.Username != "" {
		line += " as " + a.styles.bold.Render(r.Username)
	}
	line += a.styles.dim.Render(fmt.Sprintf(" [%s]", r.Duration.Round(time.Millisecond)))
	if r.OK() {
		a.styles.ok(out, "%s", line)
		return
	}
	a.styles.fail(out, "%s", line)
	if r.Raw != "" {
		fmt.Fprintln(out, a.styles.dim.Render("  "+r.Raw))
	}
}

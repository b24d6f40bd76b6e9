package profile

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultHost is the git host used when a profile names none.
const DefaultHost = "github.com"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Profile is one GitHub identity.
type Profile struct {
	Name        string         `yaml:"name"`
	GitUserName string         `yaml:"gitUserName"`
	GitEmail    string         `yaml:"gitEmail"`
	Host        string         `yaml:"host,omitempty"`
	SSH         *SSH           `yaml:"ssh,omitempty"`
	Token       string         `yaml:"token,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// SSH routes a profile's git traffic through a dedicated key.
type SSH struct {
	KeyPath   string         `yaml:"keyPath"`
	HostAlias string         `yaml:"hostAlias,omitempty"`
	Extra     map[string]any `yaml:",inline"`
}

// DefaultAlias returns the SSH Host alias used when a profile sets none.
func DefaultAlias(host, name string) string {
	if host == "" {
		host = DefaultHost
	}
	return host + "-" + name
}

// HostName returns the git host, defaulting to github.com.
func (p *Profile) HostName() string {
	if p.Host == "" {
		return DefaultHost
	}
	return p.Host
}

// Alias returns the SSH Host alias, or "" when the profile has no SSH key.
func (p *Profile) Alias() string {
	if p.SSH == nil {
		return ""
	}
	if p.SSH.HostAlias != "" {
		return p.SSH.HostAlias
	}
	return DefaultAlias(p.HostName(), p.Name)
}

// KeyPath returns the private key path, or "" without SSH.
func (p *Profile) KeyPath() string {
	if p.SSH == nil {
		return ""
	}
	return p.SSH.KeyPath
}

// PublicKeyPath returns the derived public key path. It is never persisted.
func (p *Profile) PublicKeyPath() string {
	if p.SSH == nil || p.SSH.KeyPath == "" {
		return ""
	}
	return p.SSH.KeyPath + ".pub"
}

// KeyComment returns the comment for a generated key: the git email, else
// the git user name, else <name>@github.
func (p *Profile) KeyComment() string {
	if e := strings.TrimSpace(p.GitEmail); e != "" {
		return e
	}
	if u := strings.TrimSpace(p.GitUserName); u != "" {
		return u
	}
	return p.Name + "@github"
}

// HasToken reports whether a personal access token is stored.
func (p *Profile) HasToken() bool {
	return strings.TrimSpace(p.Token) != ""
}

// Normalize fills the host and SSH alias defaults so they are persisted
// explicitly.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Host = strings.TrimSpace(p.Host)
	if p.Host == "" {
		p.Host = DefaultHost
	}
	if p.SSH != nil {
		p.SSH.KeyPath = strings.TrimSpace(p.SSH.KeyPath)
		p.SSH.HostAlias = strings.TrimSpace(p.SSH.HostAlias)
		if p.SSH.HostAlias == "" {
			p.SSH.HostAlias = DefaultAlias(p.Host, p.Name)
		}
	}
}

// Validate checks the fields that must hold before a profile is stored.
func (p *Profile) Validate() error {
	if !namePattern.MatchString(p.Name) {
		return fmt.Errorf("%w: name %q must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
			ErrInvalidProfile, p.Name)
	}
	if strings.ContainsAny(p.HostName(), " \t/:@") {
		return fmt.Errorf("%w: host %q", ErrInvalidProfile, p.Host)
	}
	if p.SSH != nil {
		if p.SSH.KeyPath == "" {
			return fmt.Errorf("%w: ssh.keyPath is required when ssh is set", ErrInvalidProfile)
		}
		if strings.ContainsAny(p.Alias(), " \t/:@*?!") {
			return fmt.Errorf("%w: host alias %q", ErrInvalidProfile, p.Alias())
		}
	}
	return nil
}

// Warnings lists non-fatal gaps, such as a missing git identity.
func (p *Profile) Warnings() []string {
	var w []string
	if strings.TrimSpace(p.Name) == "" {
		w = append(w, "profile has no name")
	}
	if strings.TrimSpace(p.GitUserName) == "" {
		w = append(w, fmt.Sprintf("profile %q has no git user name", p.Name))
	}
	if strings.TrimSpace(p.GitEmail) == "" {
		w = append(w, fmt.Sprintf("profile %q has no git email", p.Name))
	}
	return w
}

// Clone returns a deep copy of the profile's known fields. Extra maps are
// copied one level deep.
func (p Profile) Clone() Profile {
	c := p
	c.Extra = cloneMap(p.Extra)
	if p.SSH != nil {
		s := *p.SSH
		s.Extra = cloneMap(p.SSH.Extra)
		c.SSH = &s
	}
	return c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

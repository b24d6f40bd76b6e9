package profile

import (
	"fmt"
	"strings"
)

// Collection is the ordered set of stored profiles. Names are pairwise
// distinct, and so are the SSH aliases of profiles that have a key.
type Collection struct {
	Accounts []Profile      `yaml:"accounts"`
	Extra    map[string]any `yaml:",inline"`
}

// Len returns the number of profiles.
func (c *Collection) Len() int {
	return len(c.Accounts)
}

// Names returns profile names in stored order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.Accounts))
	for i := range c.Accounts {
		names[i] = c.Accounts[i].Name
	}
	return names
}

// Get returns the profile called name.
func (c *Collection) Get(name string) (*Profile, bool) {
	i := c.index(name)
	if i < 0 {
		return nil, false
	}
	return &c.Accounts[i], true
}

// ByAlias returns the profile routing through alias (case-insensitive).
func (c *Collection) ByAlias(alias string) (*Profile, bool) {
	for i := range c.Accounts {
		if a := c.Accounts[i].Alias(); a != "" && strings.EqualFold(a, alias) {
			return &c.Accounts[i], true
		}
	}
	return nil, false
}

// Aliases returns the SSH aliases of all profiles with a key.
func (c *Collection) Aliases() []string {
	var out []string
	for i := range c.Accounts {
		if a := c.Accounts[i].Alias(); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// KeyOwners maps profile names to their private key paths.
func (c *Collection) KeyOwners() map[string]string {
	owners := make(map[string]string, len(c.Accounts))
	for i := range c.Accounts {
		if kp := c.Accounts[i].KeyPath(); kp != "" {
			owners[c.Accounts[i].Name] = kp
		}
	}
	return owners
}

// Put inserts p, or replaces the profile with the same name when overwrite
// is set. A replaced profile keeps its position.
func (c *Collection) Put(p Profile, overwrite bool) error {
	i := c.index(p.Name)
	if i >= 0 && !overwrite {
		return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	if err := c.checkAlias(p, p.Name); err != nil {
		return err
	}
	if i >= 0 {
		c.Accounts[i] = p
		return nil
	}
	c.Accounts = append(c.Accounts, p)
	return nil
}

// Delete removes the profile called name and returns it.
func (c *Collection) Delete(name string) (Profile, error) {
	i := c.index(name)
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	removed := c.Accounts[i]
	c.Accounts = append(c.Accounts[:i], c.Accounts[i+1:]...)
	return removed, nil
}

func (c *Collection) index(name string) int {
	for i := range c.Accounts {
		if c.Accounts[i].Name == name {
			return i
		}
	}
	return -1
}

// CheckAlias fails when another profile already routes through p's alias.
func (c *Collection) CheckAlias(p Profile) error {
	return c.checkAlias(p, p.Name)
}

// checkAlias fails when a profile other than self already uses p's alias.
func (c *Collection) checkAlias(p Profile, self string) error {
	alias := p.Alias()
	if alias == "" {
		return nil
	}
	for i := range c.Accounts {
		other := &c.Accounts[i]
		if other.Name == self {
			continue
		}
		if strings.EqualFold(other.Alias(), alias) {
			return fmt.Errorf("%w: %s (profile %q)", ErrDuplicateAlias, alias, other.Name)
		}
	}
	return nil
}

// validate checks the collection invariants.
func (c *Collection) validate() error {
	names := make(map[string]bool, len(c.Accounts))
	aliases := make(map[string]string, len(c.Accounts))
	for i := range c.Accounts {
		p := &c.Accounts[i]
		if names[p.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		names[p.Name] = true

		if a := strings.ToLower(p.Alias()); a != "" {
			if owner, ok := aliases[a]; ok {
				return fmt.Errorf("%w: %s used by %q and %q", ErrDuplicateAlias, p.Alias(), owner, p.Name)
			}
			aliases[a] = p.Name
		}
	}
	return nil
}

package sshconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bangunx/ghup/fsutil"
)

// Block kinds.
const (
	KindHost  = "Host"
	KindMatch = "Match"
)

// FilePerm is the mode written for SSH config files.
const FilePerm = 0o600

const markerPrefix = "# managed by ghup"

// Block is one Host or Match section. Lines[0] is the header line; the
// remaining lines are the body, including trailing blank lines and comments
// up to the next header.
type Block struct {
	Kind     string
	Patterns []string
	Lines    []string
}

// Get returns the first argument of keyword inside the block body.
func (b *Block) Get(keyword string) string {
	for _, line := range b.Lines[1:] {
		kw, args := parseLine(line)
		if strings.EqualFold(kw, keyword) && len(args) > 0 {
			return args[0]
		}
	}
	return ""
}

// ManagedBy returns the profile named in the block's managed marker, if any.
func (b *Block) ManagedBy() (string, bool) {
	for _, line := range b.Lines[1:] {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, markerPrefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(s, markerPrefix))
		rest = strings.TrimPrefix(rest, "(profile:")
		rest = strings.TrimSuffix(rest, ")")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// Routes reports whether the block is a Host block whose patterns include
// alias. Host patterns are compared case-insensitively, as ssh does.
func (b *Block) Routes(alias string) bool {
	if b.Kind != KindHost {
		return false
	}
	for _, p := range b.Patterns {
		if strings.EqualFold(p, alias) {
			return true
		}
	}
	return false
}

func (b *Block) trailingBlank() bool {
	last := b.Lines[len(b.Lines)-1]
	return strings.TrimSpace(last) == ""
}

// File is a parsed SSH client configuration.
type File struct {
	Preamble []string
	Blocks   []*Block
}

// Parse splits data into a preamble and ordered blocks.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if len(data) == 0 {
		return f, nil
	}

	text := strings.TrimSuffix(string(data), "\n")
	var current *Block
	for _, line := range strings.Split(text, "\n") {
		kw, args := parseLine(line)
		switch {
		case strings.EqualFold(kw, KindHost), strings.EqualFold(kw, KindMatch):
			if len(args) == 0 {
				return nil, fmt.Errorf("%s line without arguments: %q", kw, strings.TrimSpace(line))
			}
			kind := KindHost
			if strings.EqualFold(kw, KindMatch) {
				kind = KindMatch
			}
			current = &Block{Kind: kind, Patterns: args, Lines: []string{line}}
			f.Blocks = append(f.Blocks, current)
		case current != nil:
			current.Lines = append(current.Lines, line)
		default:
			f.Preamble = append(f.Preamble, line)
		}
	}
	return f, nil
}

// Bytes serializes the file. Lines are joined with "\n" and the output ends
// with a newline unless the file is empty.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	write := func(lines []string) {
		for _, l := range lines {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	}
	write(f.Preamble)
	for _, b := range f.Blocks {
		write(b.Lines)
	}
	return buf.Bytes()
}

// Find returns the first Host block routing alias.
func (f *File) Find(alias string) *Block {
	for _, b := range f.Blocks {
		if b.Routes(alias) {
			return b
		}
	}
	return nil
}

// Hosts returns the patterns of every Host block in order.
func (f *File) Hosts() []string {
	var hosts []string
	for _, b := range f.Blocks {
		if b.Kind == KindHost {
			hosts = append(hosts, b.Patterns...)
		}
	}
	return hosts
}

// Remove drops every Host block routing alias. A block that also lists other
// patterns keeps its body and loses only the alias from its header.
// It reports whether anything changed.
func (f *File) Remove(alias string) bool {
	changed := false
	kept := f.Blocks[:0]
	for _, b := range f.Blocks {
		if !b.Routes(alias) {
			kept = append(kept, b)
			continue
		}
		changed = true
		if len(b.Patterns) == 1 {
			continue
		}
		var rest []string
		for _, p := range b.Patterns {
			if !strings.EqualFold(p, alias) {
				rest = append(rest, p)
			}
		}
		b.Patterns = rest
		b.Lines[0] = leadingSpace(b.Lines[0]) + KindHost + " " + strings.Join(rest, " ")
		kept = append(kept, b)
	}
	for i := len(kept); i < len(f.Blocks); i++ {
		f.Blocks[i] = nil
	}
	f.Blocks = kept
	return changed
}

// RemoveManaged drops the Host blocks for alias that carry the managed
// marker of profile. Hand-written blocks are left alone.
func (f *File) RemoveManaged(alias, profile string) bool {
	changed := false
	kept := f.Blocks[:0]
	for _, b := range f.Blocks {
		if owner, ok := b.ManagedBy(); ok && owner == profile && b.Routes(alias) {
			changed = true
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(f.Blocks); i++ {
		f.Blocks[i] = nil
	}
	f.Blocks = kept
	return changed
}

// Entry describes a managed Host block.
type Entry struct {
	Alias        string
	HostName     string
	IdentityFile string
	Profile      string
}

// Upsert replaces every block routing e.Alias with a single managed block
// appended at the end of the file. Applying the same entry twice yields
// identical bytes.
func (f *File) Upsert(e Entry) error {
	if e.Alias == "" || strings.ContainsAny(e.Alias, " \t") {
		return fmt.Errorf("invalid host alias %q", e.Alias)
	}
	if e.HostName == "" {
		return errors.New("host name is required")
	}

	f.Remove(e.Alias)

	// Keep one blank line between the previous section and the new block.
	switch {
	case len(f.Blocks) > 0:
		last := f.Blocks[len(f.Blocks)-1]
		if !last.trailingBlank() {
			last.Lines = append(last.Lines, "")
		}
	case len(f.Preamble) > 0:
		if strings.TrimSpace(f.Preamble[len(f.Preamble)-1]) != "" {
			f.Preamble = append(f.Preamble, "")
		}
	}

	f.Blocks = append(f.Blocks, newBlock(e))
	return nil
}

func newBlock(e Entry) *Block {
	lines := []string{KindHost + " " + e.Alias}
	if e.Profile != "" {
		lines = append(lines, "  "+markerPrefix+" (profile: "+e.Profile+")")
	}
	lines = append(lines, "  HostName "+e.HostName)
	if e.IdentityFile != "" {
		lines = append(lines,
			"  IdentityFile "+quote(e.IdentityFile),
			"  IdentitiesOnly yes",
		)
	}
	return &Block{Kind: KindHost, Patterns: []string{e.Alias}, Lines: lines}
}

// Load reads and parses path. A missing file yields an empty File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read ssh config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// WriteFile atomically writes f to path with mode 0600, creating the parent
// directory with mode 0700 when missing.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
		return fmt.Errorf("create ssh dir: %w", err)
	}
	return fsutil.WriteFileAtomic(path, f.Bytes(), FilePerm)
}

// parseLine returns the keyword and arguments of a config line. Comments and
// blank lines yield an empty keyword. Keywords may be separated from their
// arguments by whitespace or a single "=".
func parseLine(line string) (string, []string) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return "", nil
	}
	end := strings.IndexAny(s, " \t=")
	if end < 0 {
		return s, nil
	}
	kw := s[:end]
	rest := strings.TrimLeft(s[end:], " \t")
	rest = strings.TrimPrefix(rest, "=")
	return kw, splitArgs(rest)
}

// splitArgs splits on whitespace, honouring double quotes.
func splitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

package switcher

import "testing"

func TestRewriteRemoteURL(t *testing.T) {
	known := []string{"corp-alias"}
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"scp style", "git@github.com:owner/repo.git", "git@github.com-work:owner/repo.git", true},
		{"https", "https://github.com/owner/repo.git", "git@github.com-work:owner/repo.git", true},
		{"ssh scheme", "ssh://git@github.com/owner/repo", "git@github.com-work:owner/repo", true},
		{"other profile alias", "git@github.com-personal:me/dots.git", "git@github.com-work:me/dots.git", true},
		{"custom known alias", "git@corp-alias:team/svc.git", "git@github.com-work:team/svc.git", true},
		{"host case", "git@GitHub.com:owner/repo.git", "git@github.com-work:owner/repo.git", true},
		{"already switched", "git@github.com-work:owner/repo.git", "git@github.com-work:owner/repo.git", true},
		{"other host", "git@gitlab.com:owner/repo.git", "", false},
		{"lookalike host", "git@github.company.com:owner/repo.git", "", false},
		{"local path", "/srv/git/repo.git", "", false},
		{"file url", "file:///srv/git/repo.git", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rewriteRemoteURL(tt.url, "github.com", "github.com-work", known)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("rewriteRemoteURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

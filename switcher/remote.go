package switcher

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// rewriteRemoteURL returns the SSH alias form of rawURL when it points at
// host, at a "<host>-*" alias, or at one of known. The path is kept as is.
// ok is false when the URL belongs to another host or is not a network URL.
func rewriteRemoteURL(rawURL, host, alias string, known []string) (string, bool) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil || ep.Protocol == "file" || ep.Host == "" {
		return "", false
	}
	if !routesTo(ep.Host, host, known) {
		return "", false
	}

	path := strings.TrimPrefix(ep.Path, "/")
	if path == "" {
		return "", false
	}
	return "git@" + alias + ":" + path, true
}

func routesTo(remoteHost, host string, known []string) bool {
	if strings.EqualFold(remoteHost, host) {
		return true
	}
	if len(remoteHost) > len(host)+1 && strings.EqualFold(remoteHost[:len(host)+1], host+"-") {
		return true
	}
	for _, a := range known {
		if strings.EqualFold(remoteHost, a) {
			return true
		}
	}
	return false
}

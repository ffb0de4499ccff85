package git

import (
	"fmt"
	"net/url"
	"strings"
)

// RemoteProject is a GitLab project location parsed from a remote URL
type RemoteProject struct {
	Host string // hostname, without scheme or port
	Path string // full project path, e.g. "group/sub/project"
}

// ParseRemoteURL understands the three remote forms GitLab hands out:
//
//	git@gitlab.com:group/project.git
//	ssh://git@gitlab.com:2222/group/project.git
//	https://gitlab.com/group/project.git
func ParseRemoteURL(raw string) (RemoteProject, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RemoteProject{}, fmt.Errorf("empty remote URL")
	}

	var host, path string
	if isSCPLike(raw) {
		hostPart, pathPart, _ := strings.Cut(raw, ":")
		if at := strings.LastIndex(hostPart, "@"); at >= 0 {
			hostPart = hostPart[at+1:]
		}
		host, path = hostPart, pathPart
	} else {
		u, err := url.Parse(raw)
		if err != nil {
			return RemoteProject{}, fmt.Errorf("failed to parse remote URL %q: %w", raw, err)
		}
		switch u.Scheme {
		case "ssh", "git+ssh", "https", "http", "git":
		default:
			return RemoteProject{}, fmt.Errorf("unsupported remote URL %q", raw)
		}
		host, path = u.Hostname(), u.Path
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	path = strings.TrimSuffix(path, "/")
	if host == "" || path == "" || !strings.Contains(path, "/") {
		return RemoteProject{}, fmt.Errorf("remote URL %q does not name a project", raw)
	}
	return RemoteProject{Host: host, Path: path}, nil
}

// isSCPLike reports the "user@host:path" form, which has no scheme and a
// colon before the first slash
func isSCPLike(raw string) bool {
	if strings.Contains(raw, "://") {
		return false
	}
	colon := strings.Index(raw, ":")
	slash := strings.Index(raw, "/")
	return colon > 0 && (slash < 0 || colon < slash)
}

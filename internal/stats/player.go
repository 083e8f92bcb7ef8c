package stats

import (
	"fmt"
	"path"
	"strings"
)

// PlayerID is the canonical player key: the site's player code, e.g. "bryanko01".
// Display names are not unique, so every table joins on this value.
type PlayerID string

// ParsePlayerID accepts either a site URL path ("/players/b/bryanko01.html"),
// a full player URL, or a bare code ("bryanko01") and returns the bare code.
func ParsePlayerID(s string) (PlayerID, error) {
	raw := strings.TrimSpace(s)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	code := strings.ToLower(path.Base(raw))
	code = strings.TrimSuffix(code, ".html")
	code = strings.TrimSuffix(code, ".htm")

	if code == "" || code == "." || code == "/" {
		return "", fmt.Errorf("empty player id in %q", s)
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("invalid player id %q in %q", code, s)
		}
	}
	if strings.Contains(raw, "/") && !strings.Contains(raw, "/players/") {
		return "", fmt.Errorf("not a player path: %q", s)
	}
	return PlayerID(code), nil
}

// Path returns the site path of the player's page.
func (id PlayerID) Path() string {
	s := string(id)
	if s == "" {
		return ""
	}
	return fmt.Sprintf("/players/%s/%s.html", s[:1], s)
}

func (id PlayerID) String() string {
	return string(id)
}

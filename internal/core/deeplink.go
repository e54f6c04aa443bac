package core

import (
	"net/url"
	"strings"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
)

// deepLinkRule rewrites a platform web URL into its native app URI.
// With host set the URI keeps path and query (music://music.apple.com/us/...);
// with host empty the path segments become an opaque URI (spotify:track:id).
type deepLinkRule struct {
	hosts  []string
	scheme string
	host   string
}

// deepLinkRules lists the platforms whose apps accept a URI derived from the
// web URL. Supporting another platform is a new entry here.
var deepLinkRules = map[domain.Platform]deepLinkRule{
	domain.PlatformAppleMusic: {
		hosts:  []string{"music.apple.com", "geo.music.apple.com", "itunes.apple.com"},
		scheme: "music",
		host:   "music.apple.com",
	},
	domain.PlatformSpotify: {
		hosts:  []string{"open.spotify.com", "play.spotify.com"},
		scheme: "spotify",
	},
}

// DeepLink synthesizes the app URI for webURL on platform p. It returns false
// when p has no rule or the URL's host is not one the rule accepts.
func DeepLink(p domain.Platform, webURL string) (string, bool) {
	rule, ok := deepLinkRules[p]
	if !ok {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(webURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if !rule.accepts(u.Hostname()) {
		return "", false
	}

	if rule.host != "" {
		out := url.URL{
			Scheme:   rule.scheme,
			Host:     rule.host,
			Path:     u.Path,
			RawPath:  u.RawPath,
			RawQuery: u.RawQuery,
		}
		return out.String(), true
	}

	var segs []string
	for _, s := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		// Localised paths such as /intl-de/track/... carry a locale prefix.
		if s == "" || strings.HasPrefix(s, "intl-") {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) < 2 {
		return "", false
	}
	return rule.scheme + ":" + strings.Join(segs, ":"), true
}

func (r deepLinkRule) accepts(host string) bool {
	host = strings.ToLower(host)
	for _, h := range r.hosts {
		if host == h {
			return true
		}
	}
	return false
}

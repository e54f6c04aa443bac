package domain

import "strings"

// Platform identifies a streaming service a link can point to.
type Platform string

const (
	PlatformSpotify      Platform = "spotify"
	PlatformAppleMusic   Platform = "apple_music"
	PlatformYouTubeMusic Platform = "youtube_music"
	PlatformYouTube      Platform = "youtube"
	PlatformDeezer       Platform = "deezer"
	PlatformTidal        Platform = "tidal"
	PlatformAmazonMusic  Platform = "amazon_music"
	PlatformSoundCloud   Platform = "soundcloud"
	PlatformPandora      Platform = "pandora"
)

// DefaultTargetPlatforms is the platform priority order used when none is
// configured.
var DefaultTargetPlatforms = []Platform{
	PlatformAppleMusic,
	PlatformYouTubeMusic,
	PlatformDeezer,
	PlatformAmazonMusic,
	PlatformTidal,
	PlatformSoundCloud,
}

// platformTags maps folded provider tags to platforms. Tags are folded by
// lower-casing and dropping '_' and '-', so "appleMusic", "apple_music" and
// "apple-music" all hit the same entry.
var platformTags = map[string]Platform{
	"spotify":      PlatformSpotify,
	"applemusic":   PlatformAppleMusic,
	"itunes":       PlatformAppleMusic,
	"youtubemusic": PlatformYouTubeMusic,
	"youtube":      PlatformYouTube,
	"deezer":       PlatformDeezer,
	"tidal":        PlatformTidal,
	"amazonmusic":  PlatformAmazonMusic,
	"soundcloud":   PlatformSoundCloud,
	"pandora":      PlatformPandora,
}

// ParsePlatformTag maps a provider platform tag to a known Platform.
func ParsePlatformTag(tag string) (Platform, bool) {
	folded := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.ToLower(tag))
	p, ok := platformTags[folded]
	return p, ok
}

package playback

import "strings"

// Video MIME types understood by ResolveType
const (
	MimeTypeMP4  = "video/mp4"
	MimeTypeWebM = "video/webm"
	MimeTypeOgg  = "video/ogg"
)

// ResolveType determines the video MIME type from a source URL.  Matching is by substring anywhere in the URL rather
// than by suffix, so a query string such as "a.mp4?x=.webm" resolves to webm.  Anything unrecognised is assumed to be
// mp4.
func ResolveType(url string) string {
	switch {
	case strings.Contains(url, ".webm"):
		return MimeTypeWebM
	case strings.Contains(url, ".ogg"):
		return MimeTypeOgg
	default:
		return MimeTypeMP4
	}
}

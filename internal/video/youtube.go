// Package video resolves external video URLs into embeddable player URLs.
// Pure pattern matching, no network calls.
package video

import "regexp"

// Matches the known YouTube URL shapes: youtu.be/<id>, /embed/<id>, /v/<id>,
// /watch?v=<id> and /watch?...&v=<id>.
var youTubeIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:embed/|v/|watch\?v=|watch\?.+&v=))([^&?]+)`)

// YouTubeID extracts the video identifier from a YouTube URL, or "" when the
// URL matches none of the known shapes.
func YouTubeID(url string) string {
	match := youTubeIDPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// EmbedURL converts an arbitrary external video URL into an embeddable player
// URL, or "" if the platform is not recognized.
func EmbedURL(url string) string {
	id := YouTubeID(url)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}

package domain

import (
	"fmt"
	"regexp"
)

// CanonicalVideoHost is the host used when rebuilding a watch URL from a video id.
const CanonicalVideoHost = "www.youtube.com"

// VideoID is the 11-character identifier of a hosted video.
type VideoID string

var (
	queryVideoIDPattern = regexp.MustCompile(`v=([0-9A-Za-z_-]{11})`)
	pathVideoIDPattern  = regexp.MustCompile(`/([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID finds the video id in a share link, watch URL, embed URL or short link.
// A "v=" query parameter takes precedence over path segments. The first 11 id characters
// win even when more follow, so trailing junk after a pasted id is ignored. The boolean
// is false when no token matches; callers treat that as a validation failure.
func ExtractVideoID(rawURL string) (VideoID, bool) {
	if m := queryVideoIDPattern.FindStringSubmatch(rawURL); len(m) > 1 {
		return VideoID(m[1]), true
	}
	if m := pathVideoIDPattern.FindStringSubmatch(rawURL); len(m) > 1 {
		return VideoID(m[1]), true
	}
	return "", false
}

// CanonicalURL rebuilds the watch URL so that every input form maps to one key.
func (id VideoID) CanonicalURL() string {
	return fmt.Sprintf("https://%s/watch?v=%s", CanonicalVideoHost, id)
}

func (id VideoID) String() string {
	return string(id)
}

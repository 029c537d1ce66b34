package model

import (
	"net/url"
	"regexp"
	"strings"
)

// Source types a recipe can be captured from.
const (
	SourceWebsite   = "website"
	SourceYouTube   = "youtube"
	SourceInstagram = "instagram"
	SourceTikTok    = "tiktok"
)

var youtubeURL = regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com/(watch\?v=|embed/|v/|shorts/)|youtu\.be/)[\w-]+`)

// ParseSourceURL checks that raw is an absolute http(s) URL with a host.
func ParseSourceURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, InvalidInput("url", "is required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, InvalidInput("url", "is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, InvalidInput("url", "must use http or https")
	}
	if u.Hostname() == "" {
		return nil, InvalidInput("url", "must include a host")
	}
	return u, nil
}

// DetectSource classifies a recipe URL by the platform it points at.
func DetectSource(u *url.URL) RecipeSource {
	raw := u.String()
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	kind, platform := SourceWebsite, "web"
	switch {
	case youtubeURL.MatchString(raw):
		kind, platform = SourceYouTube, "youtube"
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		kind, platform = SourceInstagram, "instagram"
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		kind, platform = SourceTikTok, "tiktok"
	}
	return RecipeSource{Type: kind, URL: &raw, Platform: &platform}
}

// PlaceholderTitle is the title a recipe carries until it is populated.
func PlaceholderTitle(u *url.URL) string {
	title := strings.TrimPrefix(u.Hostname(), "www.") + strings.TrimSuffix(u.EscapedPath(), "/")
	if len(title) > 500 {
		title = title[:500]
	}
	return title
}

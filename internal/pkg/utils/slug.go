package utils

import (
	"regexp"
	"strings"
)

const guideBaseURL = "https://guide.michelin.com/en/"

var (
	nonSlugName     = regexp.MustCompile(`[^a-z0-9\s]`)
	nonSlugLocation = regexp.MustCompile(`[^a-z0-9\s,]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// GuideURL builds the guide page URL for a restaurant from its name and location.
func GuideURL(name, location string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonSlugName.ReplaceAllString(n, "")
	n = whitespaceRun.ReplaceAllString(n, "-")

	l := strings.ToLower(strings.TrimSpace(location))
	l = nonSlugLocation.ReplaceAllString(l, "")
	l = whitespaceRun.ReplaceAllString(l, "-")
	l = strings.ReplaceAll(l, ",", "")

	return guideBaseURL + l + "/restaurant/" + n
}

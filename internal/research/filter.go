// Package research - filter.go ranks and de-duplicates search results.
package research

import (
	"net/url"
	"sort"
	"strings"
)

// extractDomainFromURL extracts the domain from a URL
func extractDomainFromURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}

	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// isFetchable reports whether a result link points at an HTML page we can read.
func isFetchable(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range []string{".pdf", ".epub", ".doc", ".docx", ".mobi"} {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}

// FilterSources drops duplicate and unreadable links, caps results per
// domain and orders the rest by priority. Ties keep search order.
func FilterSources(sources []Source, maxPerDomain int) []Source {
	seen := make(map[string]bool)
	perDomain := make(map[string]int)

	var kept []Source
	for _, s := range sources {
		link := strings.TrimRight(s.URL, "/")
		if link == "" || seen[link] || !isFetchable(s.URL) {
			continue
		}
		domain := extractDomainFromURL(s.URL)
		if maxPerDomain > 0 && perDomain[domain] >= maxPerDomain {
			continue
		}
		seen[link] = true
		perDomain[domain]++

		s.Priority = scoreURL(s.URL)
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority > kept[j].Priority
	})
	return kept
}

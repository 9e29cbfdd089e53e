package media

import (
	"net/url"
	"strings"
)

// FilesPrefix is the public path under which stored objects are served.
const FilesPrefix = "/files/"

// URLBuilder turns storage-relative paths into public URLs.
type URLBuilder struct {
	base string
}

// NewURLBuilder derives the public base from the configured domain. A domain
// without a scheme gets http when it mentions localhost and https otherwise.
func NewURLBuilder(domain string) URLBuilder {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	lower := strings.ToLower(domain)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		scheme := "https"
		if strings.Contains(lower, "localhost") {
			scheme = "http"
		}
		domain = scheme + "://" + domain
	}
	return URLBuilder{base: domain + strings.TrimSuffix(FilesPrefix, "/")}
}

// For percent-encodes each segment of rel and joins it to the public base.
func (b URLBuilder) For(rel string) string {
	segments := strings.Split(strings.TrimPrefix(rel, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return b.base + "/" + strings.Join(segments, "/")
}

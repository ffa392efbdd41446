package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/popeskul/spinecheck/internal/attribution"
	"github.com/popeskul/spinecheck/internal/models"
)

const (
	tierEnhanced  = "enhanced"
	tierMonograph = "monograph"

	defaultReplyPath = "/checkin/reply?token={token}"
	defaultNotePath  = "/api/checkin/note"
)

// links builds the tagged URLs for one assessment and day. Assessment ids are path-escaped.
type links struct {
	base   string
	id     string
	source string
}

func newLinks(baseURL, assessmentID string, day models.Day) links {
	return links{
		base:   strings.TrimRight(baseURL, "/"),
		id:     url.PathEscape(assessmentID),
		source: attribution.SourceTag(day),
	}
}

func (l links) upgrade(tier string) string {
	return fmt.Sprintf("%s/upgrade/%s?tier=%s&source=%s", l.base, l.id, tier, l.source)
}

func (l links) guide() string {
	return fmt.Sprintf("%s/guide/%s?source=%s", l.base, l.id, l.source)
}

func (l links) schedule() string {
	return fmt.Sprintf("%s/care/schedule/%s?source=%s", l.base, l.id, l.source)
}

// replyURL fills the {token} placeholder of pattern. Relative patterns are joined to base.
func replyURL(base, pattern, tok string) string {
	if pattern == "" {
		pattern = defaultReplyPath
	}
	u := strings.ReplaceAll(pattern, "{token}", url.QueryEscape(tok))
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(u, "/")
}

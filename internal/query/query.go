// Package query assembles feed query strings from structured options.
package query

import (
	"strconv"
	"strings"
)

// Recognized access values for the Visibility option.
const (
	VisibilityAll     = "all"
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Options are the recognized feed query parameters. Zero values mean unset
// and emit nothing. Values are passed through verbatim; callers escape
// anything that needs escaping.
type Options struct {
	MaxResults     int    // max-results
	StartIndex     int    // start-index, 1-based
	Keywords       string // q, full-text search
	Tags           string // tag, comma-separated
	Visibility     string // access, one of the Visibility constants
	ThumbSizes     string // thumbsize, comma-separated pixel widths
	MaxImageSize   string // imgmax, pixel width or "d" for original
	Location       string // l, named location such as "London"
	SortDescending bool   // newest first
	BoundingBox    string // bbox, "west,south,east,north"
}

// Encode produces the query parameters for o, each prefixed with "&" so the
// result appends directly to a URL that already carries a kind parameter.
// Parameters appear in a fixed order, one occurrence per set option.
//
// SortDescending with no Keywords emits an empty q parameter. The provider
// only honors descending sort when a q parameter is present, so the empty
// parameter is required, not an oversight.
func (o Options) Encode() string {
	var b strings.Builder

	if o.MaxResults > 0 {
		b.WriteString("&max-results=" + strconv.Itoa(o.MaxResults))
	}
	if o.StartIndex > 0 {
		b.WriteString("&start-index=" + strconv.Itoa(o.StartIndex))
	}
	if o.Visibility != "" {
		b.WriteString("&access=" + o.Visibility)
	}
	if o.Keywords != "" {
		b.WriteString("&q=" + o.Keywords)
	}
	if o.Tags != "" {
		b.WriteString("&tag=" + o.Tags)
	}
	if o.ThumbSizes != "" {
		b.WriteString("&thumbsize=" + o.ThumbSizes)
	}
	if o.MaxImageSize != "" {
		b.WriteString("&imgmax=" + o.MaxImageSize)
	}
	if o.Location != "" {
		b.WriteString("&l=" + o.Location)
	}
	if o.SortDescending && o.Keywords == "" {
		b.WriteString("&q=")
	}
	if o.BoundingBox != "" {
		b.WriteString("&bbox=" + o.BoundingBox)
	}
	return b.String()
}

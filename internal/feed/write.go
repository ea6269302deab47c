package feed

import "encoding/xml"

// AlbumEntry is the writable subset of an album, serialized for POST and
// PUT requests. AlbumID is set only on updates.
type AlbumEntry struct {
	Title             string
	Summary           string
	Icon              string
	Rights            string
	CommentingEnabled bool
	Location          string
	Timestamp         string
	GMLPosition       string
	AlbumID           string
}

// ImageEntry is the writable subset of an image's metadata.
type ImageEntry struct {
	Title             string
	Summary           string
	Keywords          string // comma-delimited; empty omits the media block
	CommentingEnabled bool
	Timestamp         string
	GMLPosition       string
}

type textNode struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type categoryNode struct {
	Scheme string `xml:"scheme,attr"`
	Term   string `xml:"term,attr"`
}

type whereNode struct {
	Point pointNode `xml:"gml:Point"`
}

type pointNode struct {
	Pos string `xml:"gml:pos"`
}

type albumEntryXML struct {
	XMLName  xml.Name `xml:"entry"`
	NSAtom   string   `xml:"xmlns,attr"`
	NSMedia  string   `xml:"xmlns:media,attr"`
	NSGphoto string   `xml:"xmlns:gphoto,attr"`
	NSGeoRSS string   `xml:"xmlns:georss,attr"`
	NSGML    string   `xml:"xmlns:gml,attr"`

	Title             textNode     `xml:"title"`
	Summary           textNode     `xml:"summary"`
	Icon              string       `xml:"icon,omitempty"`
	AlbumID           string       `xml:"gphoto:id,omitempty"`
	Timestamp         string       `xml:"gphoto:timestamp,omitempty"`
	Where             *whereNode   `xml:"georss:where,omitempty"`
	Location          string       `xml:"gphoto:location"`
	Access            string       `xml:"gphoto:access"`
	CommentingEnabled bool         `xml:"gphoto:commentingEnabled"`
	Category          categoryNode `xml:"category"`
}

type imageEntryXML struct {
	XMLName  xml.Name `xml:"entry"`
	NSAtom   string   `xml:"xmlns,attr"`
	NSGphoto string   `xml:"xmlns:gphoto,attr"`
	NSGeoRSS string   `xml:"xmlns:georss,attr"`
	NSGML    string   `xml:"xmlns:gml,attr"`
	NSMedia  string   `xml:"xmlns:media,attr"`

	Title             string          `xml:"title"`
	Summary           string          `xml:"summary"`
	CommentingEnabled bool            `xml:"gphoto:commentingEnabled"`
	Timestamp         string          `xml:"gphoto:timestamp"`
	Where             *whereNode      `xml:"georss:where,omitempty"`
	Media             *mediaGroupNode `xml:"media:group,omitempty"`
	Category          categoryNode    `xml:"category"`
}

type mediaGroupNode struct {
	Keywords string `xml:"media:keywords"`
}

type plainEntryXML struct {
	XMLName  xml.Name     `xml:"entry"`
	NSAtom   string       `xml:"xmlns,attr"`
	Title    string       `xml:"title,omitempty"`
	Content  string       `xml:"content,omitempty"`
	Category categoryNode `xml:"category"`
}

// AlbumXML serializes e as the entry document the provider expects for
// album creation and update.
func AlbumXML(e AlbumEntry) (string, error) {
	doc := albumEntryXML{
		NSAtom:            NSAtom,
		NSMedia:           NSMedia,
		NSGphoto:          NSGphoto,
		NSGeoRSS:          NSGeoRSS,
		NSGML:             NSGML,
		Title:             textNode{Type: "text", Value: e.Title},
		Summary:           textNode{Type: "text", Value: e.Summary},
		Icon:              e.Icon,
		AlbumID:           e.AlbumID,
		Timestamp:         e.Timestamp,
		Location:          e.Location,
		Access:            e.Rights,
		CommentingEnabled: e.CommentingEnabled,
		Category:          categoryNode{Scheme: categoryScheme, Term: termAlbum},
	}
	if e.GMLPosition != "" {
		doc.Where = &whereNode{Point: pointNode{Pos: e.GMLPosition}}
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ImageXML serializes e as the metadata part of an image POST or PUT.
func ImageXML(e ImageEntry) (string, error) {
	doc := imageEntryXML{
		NSAtom:            NSAtom,
		NSGphoto:          NSGphoto,
		NSGeoRSS:          NSGeoRSS,
		NSGML:             NSGML,
		NSMedia:           NSMedia,
		Title:             e.Title,
		Summary:           e.Summary,
		CommentingEnabled: e.CommentingEnabled,
		Timestamp:         e.Timestamp,
		Category:          categoryNode{Scheme: categoryScheme, Term: termPhoto},
	}
	if e.GMLPosition != "" {
		doc.Where = &whereNode{Point: pointNode{Pos: e.GMLPosition}}
	}
	if e.Keywords != "" {
		doc.Media = &mediaGroupNode{Keywords: e.Keywords}
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// TagXML serializes the entry that attaches a tag to an image.
func TagXML(tag string) (string, error) {
	out, err := xml.Marshal(plainEntryXML{
		NSAtom:   NSAtom,
		Title:    tag,
		Category: categoryNode{Scheme: categoryScheme, Term: termTag},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CommentXML serializes the entry that posts a comment on an image.
func CommentXML(content string) (string, error) {
	out, err := xml.Marshal(plainEntryXML{
		NSAtom:   NSAtom,
		Content:  content,
		Category: categoryNode{Scheme: categoryScheme, Term: termComment},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

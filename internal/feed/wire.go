package feed

import "encoding/xml"

// wireEntry is the decoded shape shared by feeds and entries. The provider
// serves the same logical resource as either a feed (with child entries)
// or a single entry, so one struct covers both roots; no XMLName field is
// declared so either root element is accepted.
//
// Extension namespace fields are pointers: nil means the block was absent
// from the document, which parsers must distinguish from present-but-empty.
type wireEntry struct {
	ID        string      `xml:"http://www.w3.org/2005/Atom id"`
	Title     string      `xml:"http://www.w3.org/2005/Atom title"`
	Subtitle  string      `xml:"http://www.w3.org/2005/Atom subtitle"`
	Summary   string      `xml:"http://www.w3.org/2005/Atom summary"`
	Icon      string      `xml:"http://www.w3.org/2005/Atom icon"`
	Published string      `xml:"http://www.w3.org/2005/Atom published"`
	Updated   string      `xml:"http://www.w3.org/2005/Atom updated"`
	Rights    string      `xml:"http://www.w3.org/2005/Atom rights"`
	Content   string      `xml:"http://www.w3.org/2005/Atom content"`
	Links     []wireLink  `xml:"http://www.w3.org/2005/Atom link"`
	Author    *wireAuthor `xml:"http://www.w3.org/2005/Atom author"`
	Entries   []wireEntry `xml:"http://www.w3.org/2005/Atom entry"`

	GphotoID          *string `xml:"http://schemas.google.com/photos/2007 id"`
	User              string  `xml:"http://schemas.google.com/photos/2007 user"`
	Access            string  `xml:"http://schemas.google.com/photos/2007 access"`
	Location          string  `xml:"http://schemas.google.com/photos/2007 location"`
	NumPhotos         string  `xml:"http://schemas.google.com/photos/2007 numphotos"`
	NumPhotosRemain   string  `xml:"http://schemas.google.com/photos/2007 numphotosremaining"`
	BytesUsed         string  `xml:"http://schemas.google.com/photos/2007 bytesUsed"`
	CommentingEnabled string  `xml:"http://schemas.google.com/photos/2007 commentingEnabled"`
	CommentCount      *string `xml:"http://schemas.google.com/photos/2007 commentCount"`
	Timestamp         string  `xml:"http://schemas.google.com/photos/2007 timestamp"`
	Width             string  `xml:"http://schemas.google.com/photos/2007 width"`
	Height            string  `xml:"http://schemas.google.com/photos/2007 height"`
	AlbumID           string  `xml:"http://schemas.google.com/photos/2007 albumid"`
	AlbumTitle        string  `xml:"http://schemas.google.com/photos/2007 albumtitle"`
	AlbumDesc         string  `xml:"http://schemas.google.com/photos/2007 albumdesc"`
	Version           string  `xml:"http://schemas.google.com/photos/2007 version"`
	PhotoID           string  `xml:"http://schemas.google.com/photos/2007 photoid"`
	Weight            string  `xml:"http://schemas.google.com/photos/2007 weight"`

	MediaGroup *wireMediaGroup `xml:"http://search.yahoo.com/mrss/ group"`
	ExifTags   *wireExifTags   `xml:"http://schemas.google.com/photos/exif/2007 tags"`
	Where      *wireWhere      `xml:"http://www.georss.org/georss where"`

	TotalResults *string `xml:"http://a9.com/-/spec/opensearchrss/1.0/ totalResults"`
	StartIndex   *string `xml:"http://a9.com/-/spec/opensearchrss/1.0/ startIndex"`
	ItemsPerPage *string `xml:"http://a9.com/-/spec/opensearchrss/1.0/ itemsPerPage"`
}

type wireLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type wireAuthor struct {
	Name string `xml:"http://www.w3.org/2005/Atom name"`
	URI  string `xml:"http://www.w3.org/2005/Atom uri"`

	Nickname  string `xml:"http://schemas.google.com/photos/2007 nickname"`
	Thumbnail string `xml:"http://schemas.google.com/photos/2007 thumbnail"`
	User      string `xml:"http://schemas.google.com/photos/2007 user"`

	// Contact feeds nest the real author element one level down.
	Inner *wireAuthor `xml:"http://www.w3.org/2005/Atom author"`
}

type wireMediaGroup struct {
	Description string          `xml:"http://search.yahoo.com/mrss/ description"`
	Keywords    string          `xml:"http://search.yahoo.com/mrss/ keywords"`
	Thumbnails  []wireMediaItem `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	Contents    []wireMediaItem `xml:"http://search.yahoo.com/mrss/ content"`
}

type wireMediaItem struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

type wireExifTags struct {
	Flash       string `xml:"http://schemas.google.com/photos/exif/2007 flash"`
	FStop       string `xml:"http://schemas.google.com/photos/exif/2007 fstop"`
	Make        string `xml:"http://schemas.google.com/photos/exif/2007 make"`
	Model       string `xml:"http://schemas.google.com/photos/exif/2007 model"`
	Exposure    string `xml:"http://schemas.google.com/photos/exif/2007 exposure"`
	FocalLength string `xml:"http://schemas.google.com/photos/exif/2007 focallength"`
	ISO         string `xml:"http://schemas.google.com/photos/exif/2007 iso"`
}

type wireWhere struct {
	Point *wirePoint `xml:"http://www.opengis.net/gml Point"`
}

type wirePoint struct {
	Pos string `xml:"http://www.opengis.net/gml pos"`
}

func decodeWire(body string) (*wireEntry, error) {
	var w wireEntry
	if err := xml.Unmarshal([]byte(body), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

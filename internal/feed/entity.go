package feed

// Author identifies who created a feed, album, image or comment. Which
// fields are populated depends on the feed type; contact feeds carry the
// gphoto fields, plain entries often only name and uri.
type Author struct {
	Name      string
	URI       string
	User      string
	Nickname  string
	Thumbnail string
}

// Thumbnail is a single scaled rendition of an image.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Exif carries the camera metadata block. All fields optional.
type Exif struct {
	Flash       string
	FStop       string
	CameraMake  string
	CameraModel string
	Exposure    string
	FocalLength string
	ISO         string
}

// Account is a user-level album listing.
type Account struct {
	ID       string
	Title    string
	Subtitle string
	Icon     string
	WebLink  string
	Author   *Author
	Albums   []*Album
}

// Album is a photo album. Images, Tags and Comments resolve lazily when the
// album came from a listing that does not inline them.
type Album struct {
	ID                string // full id URL
	IDNum             string // numeric id, from the gphoto block
	Title             string
	Subtitle          string
	Summary           string
	Published         string
	Updated           string
	Rights            string
	Location          string
	GMLPosition       string
	EditLink          string
	WebLink           string
	Icon              string
	NumPhotos         int
	PhotosRemaining   int
	BytesUsed         int64
	CommentingEnabled bool
	NumComments       int
	Timestamp         string // milliseconds since the epoch
	Author            *Author

	Images   *Lazy[[]*Image]
	Tags     *Lazy[[]*Tag]
	Comments *Lazy[[]*Comment]
}

// Image is a single photo. The parallel ThumbURLMap/ThumbHeightMap (and the
// content equivalents) are kept alongside the ordered Thumbnails slice for
// callers that look renditions up by width.
type Image struct {
	ID                string
	IDNum             string
	Title             string
	Description       string
	Updated           string
	Width             int
	Height            int
	AlbumID           string
	AlbumTitle        string
	AlbumDescription  string
	ImageType         string
	Version           string
	Timestamp         string
	GMLPosition       string
	WebLink           string
	CommentingEnabled bool
	CommentCount      *int // nil when the feed omitted the count
	Author            *Author

	Content          string // URL of the largest content rendition
	ContentURLMap    map[int]string
	ContentHeightMap map[int]int

	Keywords string   // raw comma-delimited list
	Tags     []string // Keywords split and trimmed, document order

	Thumbnails     []Thumbnail
	ThumbURLMap    map[int]string
	ThumbHeightMap map[int]int
	SmallThumb     string // Thumbnails[0], when present
	MediumThumb    string // Thumbnails[1]
	LargeThumb     string // Thumbnails[2]

	Exif *Exif

	Comments *Lazy[[]*Comment]
	Previous *Lazy[*Image]
	Next     *Lazy[*Image]
}

// Comment is a remark left on an image. AccountName and AlbumID are derived
// by slicing segments out of the id URL; the feed does not carry them
// directly.
type Comment struct {
	ID          string
	IDNum       string
	Published   string
	Updated     string
	Title       string
	Content     string
	PhotoID     string
	AlbumID     string
	AccountName string
	Author      *Author
}

// Tag is a label with its occurrence count.
type Tag struct {
	ID      string
	Updated string
	Title   string
	Summary string
	Weight  int
	Author  *Author
}

// ImageCollection is a search-style photo feed with its paging metadata.
type ImageCollection struct {
	ID           string
	Title        string
	Subtitle     string
	Icon         string
	Updated      string
	TotalResults int
	StartIndex   int
	ItemsPerPage int
	Author       *Author
	Images       []*Image
}

// Package feed maps the provider's Atom XML onto typed entities and builds
// the entry XML the write operations send back.
package feed

// Namespace URIs used by the provider's feeds. Extension blocks are
// optional; a missing block leaves the corresponding fields unset.
const (
	NSAtom       = "http://www.w3.org/2005/Atom"
	NSGphoto     = "http://schemas.google.com/photos/2007"
	NSMedia      = "http://search.yahoo.com/mrss/"
	NSExif       = "http://schemas.google.com/photos/exif/2007"
	NSGeoRSS     = "http://www.georss.org/georss"
	NSGML        = "http://www.opengis.net/gml"
	NSOpenSearch = "http://a9.com/-/spec/opensearchrss/1.0/"
)

// Category terms for the entry kinds the write operations create.
const (
	categoryScheme = "http://schemas.google.com/g/2005#kind"
	termAlbum      = "http://schemas.google.com/photos/2007#album"
	termPhoto      = "http://schemas.google.com/photos/2007#photo"
	termTag        = "http://schemas.google.com/photos/2007#tag"
	termComment    = "http://schemas.google.com/photos/2007#comment"
)

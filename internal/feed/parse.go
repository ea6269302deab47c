package feed

import (
	"strconv"
	"strings"
)

// ParseAccount parses a user-level album feed. Each child entry becomes an
// Album with its images unresolved; the listing never inlines them.
func ParseAccount(body string) (*Account, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	acct := &Account{
		ID:       w.ID,
		Title:    w.Title,
		Subtitle: w.Subtitle,
		Icon:     w.Icon,
		WebLink:  linkByRel(w.Links, "alternate"),
		Author:   authorFromWire(w.Author),
	}
	for i := range w.Entries {
		acct.Albums = append(acct.Albums, albumFromWire(&w.Entries[i], false))
	}
	return acct, nil
}

// ParseAlbum parses an album fetched directly, either as a photo feed or as
// a bare entry. Child entries become the album's images, resolved in
// document order.
func ParseAlbum(body string) (*Album, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	return albumFromWire(w, true), nil
}

// ParseImage parses a single photo, fetched either as an entry or as a
// feed whose child entries are its comments.
func ParseImage(body string) (*Image, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	return imageFromWire(w), nil
}

// ParseImageCollection parses a search-style photo feed.
func ParseImageCollection(body string) (*ImageCollection, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	coll := &ImageCollection{
		ID:       w.ID,
		Title:    w.Title,
		Subtitle: w.Subtitle,
		Icon:     w.Icon,
		Updated:  w.Updated,
		Author:   authorFromWire(w.Author),
	}
	if w.TotalResults != nil {
		coll.TotalResults = atoi(*w.TotalResults)
	}
	if w.StartIndex != nil {
		coll.StartIndex = atoi(*w.StartIndex)
	}
	if w.ItemsPerPage != nil {
		coll.ItemsPerPage = atoi(*w.ItemsPerPage)
	}
	for i := range w.Entries {
		coll.Images = append(coll.Images, imageFromWire(&w.Entries[i]))
	}
	return coll, nil
}

// ParseComment parses a single comment entry.
func ParseComment(body string) (*Comment, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	return commentFromWire(w), nil
}

// ParseComments parses a comment feed into its entries, document order.
func ParseComments(body string) ([]*Comment, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	comments := make([]*Comment, 0, len(w.Entries))
	for i := range w.Entries {
		comments = append(comments, commentFromWire(&w.Entries[i]))
	}
	return comments, nil
}

// ParseTags parses a tag feed into its entries, document order.
func ParseTags(body string) ([]*Tag, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	tags := make([]*Tag, 0, len(w.Entries))
	for i := range w.Entries {
		e := &w.Entries[i]
		tag := &Tag{
			ID:      e.ID,
			Updated: e.Updated,
			Title:   e.Title,
			Summary: e.Summary,
			Weight:  atoi(e.Weight),
			Author:  authorFromWire(e.Author),
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ParseContacts parses a contacts feed into one Author per entry.
func ParseContacts(body string) ([]*Author, error) {
	w, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	contacts := make([]*Author, 0, len(w.Entries))
	for i := range w.Entries {
		e := &w.Entries[i]
		a := authorFromWire(e.Author)
		if a == nil {
			a = &Author{}
		}
		// Contact entries carry the gphoto identity on the entry itself.
		if a.User == "" {
			a.User = e.User
		}
		if a.Name == "" {
			a.Name = e.Title
		}
		contacts = append(contacts, a)
	}
	return contacts, nil
}

func albumFromWire(w *wireEntry, direct bool) *Album {
	album := &Album{
		ID:        w.ID,
		Title:     w.Title,
		Subtitle:  w.Subtitle,
		Summary:   w.Summary,
		Published: w.Published,
		Updated:   w.Updated,
		Rights:    w.Rights,
		Icon:      w.Icon,
		Author:    authorFromWire(w.Author),
	}
	for _, link := range w.Links {
		switch link.Rel {
		case "edit":
			album.EditLink = link.Href
		case "alternate":
			album.WebLink = link.Href
		}
	}
	if w.GphotoID != nil {
		album.IDNum = *w.GphotoID
	}
	if album.Rights == "" {
		album.Rights = w.Access
	}
	album.Location = w.Location
	album.NumPhotos = atoi(w.NumPhotos)
	album.PhotosRemaining = atoi(w.NumPhotosRemain)
	album.BytesUsed = atoi64(w.BytesUsed)
	album.CommentingEnabled = w.CommentingEnabled == "true"
	if w.CommentCount != nil {
		album.NumComments = atoi(*w.CommentCount)
	}
	album.Timestamp = w.Timestamp
	if album.Author != nil && album.Author.User == "" {
		album.Author.User = w.User
	}
	// Albums nested in a listing take their icon from the media block.
	if !direct && w.MediaGroup != nil && len(w.MediaGroup.Thumbnails) > 0 {
		album.Icon = w.MediaGroup.Thumbnails[0].URL
	}
	if w.Where != nil && w.Where.Point != nil {
		album.GMLPosition = w.Where.Point.Pos
	}
	if direct {
		images := make([]*Image, 0, len(w.Entries))
		for i := range w.Entries {
			images = append(images, imageFromWire(&w.Entries[i]))
		}
		album.Images = Resolved(images)
	}
	return album
}

func imageFromWire(w *wireEntry) *Image {
	img := &Image{
		ID:      w.ID,
		Title:   w.Title,
		Updated: w.Updated,
		WebLink: linkByRel(w.Links, "alternate"),
		Author:  authorFromWire(w.Author),
	}
	if img.Author == nil {
		img.Author = &Author{}
	}
	if img.Author.User == "" {
		img.Author.User = sliceBetween(img.ID, "/user/", "/")
	}

	if mg := w.MediaGroup; mg != nil {
		img.Description = mg.Description
		img.Keywords = mg.Keywords

		img.ThumbURLMap = make(map[int]string, len(mg.Thumbnails))
		img.ThumbHeightMap = make(map[int]int, len(mg.Thumbnails))
		for _, t := range mg.Thumbnails {
			width := atoi(t.Width)
			img.ThumbURLMap[width] = t.URL
			img.ThumbHeightMap[width] = atoi(t.Height)
			img.Thumbnails = append(img.Thumbnails, Thumbnail{
				URL:    t.URL,
				Width:  width,
				Height: atoi(t.Height),
			})
		}
		if len(img.Thumbnails) > 0 {
			img.SmallThumb = img.Thumbnails[0].URL
		}
		if len(img.Thumbnails) > 1 {
			img.MediumThumb = img.Thumbnails[1].URL
		}
		if len(img.Thumbnails) > 2 {
			img.LargeThumb = img.Thumbnails[2].URL
		}

		img.ContentURLMap = make(map[int]string, len(mg.Contents))
		img.ContentHeightMap = make(map[int]int, len(mg.Contents))
		for _, c := range mg.Contents {
			width := atoi(c.Width)
			img.ContentURLMap[width] = c.URL
			img.ContentHeightMap[width] = atoi(c.Height)
			// The last content item wins, matching the provider's habit of
			// listing renditions smallest to largest.
			img.Content = c.URL
			img.ImageType = c.Type
		}

		if mg.Keywords != "" {
			for _, tok := range strings.Split(mg.Keywords, ",") {
				img.Tags = append(img.Tags, strings.TrimSpace(tok))
			}
		}
	}

	if w.GphotoID != nil {
		img.IDNum = *w.GphotoID
	}
	img.Width = atoi(w.Width)
	img.Height = atoi(w.Height)
	img.AlbumID = w.AlbumID
	img.AlbumTitle = w.AlbumTitle
	img.AlbumDescription = w.AlbumDesc
	img.Version = w.Version
	img.Timestamp = w.Timestamp
	img.CommentingEnabled = w.CommentingEnabled == "true"
	if w.CommentCount != nil && *w.CommentCount != "" {
		count := atoi(*w.CommentCount)
		img.CommentCount = &count
	}

	if et := w.ExifTags; et != nil {
		img.Exif = &Exif{
			Flash:       et.Flash,
			FStop:       et.FStop,
			CameraMake:  et.Make,
			CameraModel: et.Model,
			Exposure:    et.Exposure,
			FocalLength: et.FocalLength,
			ISO:         et.ISO,
		}
	}
	if w.Where != nil && w.Where.Point != nil {
		img.GMLPosition = w.Where.Point.Pos
	}

	switch {
	case len(w.Entries) > 0:
		comments := make([]*Comment, 0, len(w.Entries))
		for i := range w.Entries {
			comments = append(comments, commentFromWire(&w.Entries[i]))
		}
		img.Comments = Resolved(comments)
	case img.CommentCount != nil && *img.CommentCount == 0:
		img.Comments = Resolved([]*Comment{})
	}
	return img
}

func commentFromWire(w *wireEntry) *Comment {
	c := &Comment{
		ID:        w.ID,
		Published: w.Published,
		Title:     w.Title,
		Updated:   w.Updated,
		Content:   w.Content,
		PhotoID:   w.PhotoID,
		Author:    authorFromWire(w.Author),
	}
	if w.GphotoID != nil {
		c.IDNum = *w.GphotoID
	}
	c.AccountName = sliceBetween(c.ID, "/user/", "/albumid")
	c.AlbumID = sliceBetween(c.ID, "/albumid/", "/photoid")
	return c
}

func authorFromWire(w *wireAuthor) *Author {
	if w == nil {
		return nil
	}
	a := &Author{
		Nickname:  w.Nickname,
		Thumbnail: w.Thumbnail,
		User:      w.User,
	}
	// Some feeds nest the real author element one level down.
	src := w
	if w.Inner != nil && w.Inner.Name != "" {
		src = w.Inner
	}
	a.Name = src.Name
	a.URI = src.URI
	return a
}

func linkByRel(links []wireLink, rel string) string {
	for _, link := range links {
		if link.Rel == rel {
			return link.Href
		}
	}
	return ""
}

// sliceBetween returns the substring of s after the first occurrence of
// start, up to the next occurrence of end. Empty when either is absent.
func sliceBetween(s, start, end string) string {
	idx := strings.Index(s, start)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(start):]
	stop := strings.Index(rest, end)
	if stop < 0 {
		return ""
	}
	return rest[:stop]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

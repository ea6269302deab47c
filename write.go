package picasa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
	"github.com/Camalot9/picasaweb-go/internal/feed"
	"github.com/Camalot9/picasaweb-go/internal/httpx"
	"github.com/Camalot9/picasaweb-go/internal/logger"
	"github.com/Camalot9/picasaweb-go/internal/utils"
)

const (
	contentTypeAtom      = "application/atom+xml"
	contentTypeMultipart = `multipart/related; boundary="END_OF_PART"`
	headerMIMEVersion    = "MIME-version: 1.0"
)

// AlbumUpdate names the album fields an update may change. Nil fields keep
// their current value; the provider requires full documents on PUT, so
// unchanged values are read back from the entry before serializing.
type AlbumUpdate struct {
	Title             *string
	Summary           *string
	Icon              *string
	Rights            *string
	CommentingEnabled *bool
	Location          *string
	Timestamp         *string
	GMLPosition       *string
}

// ImageUpdate names the photo fields an update may change. Setting
// SourcePath replaces the binary; SourceType is required with it. With only
// SourcePath set the metadata is left untouched, and with neither metadata
// nor binary set the update is a no-op.
type ImageUpdate struct {
	Title             *string
	Summary           *string
	Keywords          *string
	CommentingEnabled *bool
	Timestamp         *string
	GMLPosition       *string
	SourcePath        string
	SourceType        string
}

func (u *ImageUpdate) metaChanged() bool {
	return u.Title != nil || u.Summary != nil || u.Keywords != nil ||
		u.CommentingEnabled != nil || u.Timestamp != nil || u.GMLPosition != nil
}

// PostAlbum creates an album and returns it as the provider now sees it.
// An empty Timestamp defaults to the current time.
func (c *Client) PostAlbum(ctx context.Context, username string, entry feed.AlbumEntry) (*feed.Album, error) {
	if entry.Timestamp == "" {
		entry.Timestamp = millis(c.now())
	}
	entry.AlbumID = ""
	body, err := feed.AlbumXML(entry)
	if err != nil {
		return nil, err
	}

	c.log.Info("creating album",
		logger.String("user", username), logger.String("title", entry.Title))
	resp, err := c.send(http.MethodPost, feedBase+"/user/"+username, []byte(body), contentTypeAtom)
	if err != nil {
		return nil, err
	}

	id := sliceID(resp.Raw, "/albumid/")
	album, err := c.GetAlbumByID(ctx, username, id, nil)
	if err != nil {
		return nil, refetchError("album", "created", err)
	}
	return album, nil
}

// PostImage uploads a photo from the local filesystem (or a URL) into an
// album and returns it as the provider now sees it. imageType is the MIME
// type of the binary. An empty Timestamp defaults to the current time.
func (c *Client) PostImage(ctx context.Context, username, albumID, sourcePath, imageType string, entry feed.ImageEntry) (*feed.Image, error) {
	contents, err := c.readSource(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if entry.Timestamp == "" {
		entry.Timestamp = millis(c.now())
	}
	meta, err := feed.ImageXML(entry)
	if err != nil {
		return nil, err
	}

	c.log.Info("uploading image",
		logger.String("user", username),
		logger.String("album", albumID),
		logger.Int("bytes", len(contents)))
	data := multipartBody(meta, imageType, contents)
	resp, err := c.send(http.MethodPost, feedBase+"/user/"+username+"/albumid/"+albumID,
		data, contentTypeMultipart, headerMIMEVersion)
	if err != nil {
		return nil, err
	}

	id := sliceID(resp.Raw, "/photoid/")
	img, err := c.GetImageByID(ctx, username, albumID, id, "", "")
	if err != nil {
		return nil, refetchError("image", "uploaded", err)
	}
	return img, nil
}

// PostTag attaches a tag to a photo and returns the photo as the provider
// now sees it.
func (c *Client) PostTag(ctx context.Context, username, albumID, imageID, tag string) (*feed.Image, error) {
	body, err := feed.TagXML(tag)
	if err != nil {
		return nil, err
	}
	path := feedBase + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID
	if _, err := c.send(http.MethodPost, path, []byte(body), contentTypeAtom); err != nil {
		return nil, err
	}

	img, err := c.GetImageByID(ctx, username, albumID, imageID, "", "")
	if err != nil {
		return nil, refetchError("tag", "posted", err)
	}
	return img, nil
}

// PostComment posts a comment on a photo and returns the created comment.
func (c *Client) PostComment(ctx context.Context, username, albumID, imageID, text string) (*feed.Comment, error) {
	body, err := feed.CommentXML(text)
	if err != nil {
		return nil, err
	}
	path := feedBase + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID
	resp, err := c.send(http.MethodPost, path, []byte(body), contentTypeAtom)
	if err != nil {
		return nil, err
	}

	// The response is the comment entry; its id element is the entry URL.
	url := sliceAfter(resp.Raw, "<id>", "</id>")
	comment, err := c.getCommentByURL(ctx, url)
	if err != nil {
		return nil, refetchError("comment", "posted", err)
	}
	return comment, nil
}

// UpdateAlbum applies changes to an album and returns it as the provider
// now sees it. The provider rejects partial documents, so the current entry
// is fetched first and unchanged fields are carried over.
func (c *Client) UpdateAlbum(ctx context.Context, username, albumID string, changes AlbumUpdate) (*feed.Album, error) {
	current, err := c.getAlbumEntry(ctx, username, albumID)
	if err != nil {
		return nil, err
	}

	entry := feed.AlbumEntry{
		Title:             orString(changes.Title, current.Title),
		Summary:           orString(changes.Summary, current.Summary),
		Rights:            orString(changes.Rights, current.Rights),
		CommentingEnabled: orBool(changes.CommentingEnabled, current.CommentingEnabled),
		Location:          orString(changes.Location, current.Location),
		AlbumID:           current.IDNum,
	}
	if changes.Icon != nil {
		entry.Icon = *changes.Icon
	}
	if changes.Timestamp != nil {
		entry.Timestamp = *changes.Timestamp
	}
	if changes.GMLPosition != nil {
		entry.GMLPosition = *changes.GMLPosition
	}
	body, err := feed.AlbumXML(entry)
	if err != nil {
		return nil, err
	}

	c.log.Info("updating album",
		logger.String("user", username), logger.String("album", albumID))
	if _, err := c.send(http.MethodPut, c.editPath(current.EditLink), []byte(body), contentTypeAtom); err != nil {
		return nil, err
	}

	album, err := c.GetAlbumByID(ctx, username, albumID, nil)
	if err != nil {
		return nil, refetchError("album", "updated", err)
	}
	return album, nil
}

// UpdateImage applies changes to a photo and returns it as the provider now
// sees it. Metadata goes to the entry path, a new binary to the media path,
// and both together as a multipart document to the media path. The PUT path
// ends in the photo's version segment, read from the current entry.
func (c *Client) UpdateImage(ctx context.Context, username, albumID, imageID string, changes ImageUpdate) (*feed.Image, error) {
	current, err := c.getImageEntry(ctx, username, albumID, imageID)
	if err != nil {
		return nil, err
	}

	metaUpdate := changes.metaChanged()
	binaryUpdate := changes.SourcePath != ""
	if !metaUpdate && !binaryUpdate {
		return current, nil
	}

	var meta string
	if metaUpdate {
		entry := feed.ImageEntry{
			Title:             orString(changes.Title, current.Title),
			Summary:           orString(changes.Summary, current.Description),
			CommentingEnabled: orBool(changes.CommentingEnabled, current.CommentingEnabled),
			Timestamp:         orString(changes.Timestamp, current.Timestamp),
		}
		if changes.Keywords != nil {
			entry.Keywords = *changes.Keywords
		}
		if changes.GMLPosition != nil {
			entry.GMLPosition = *changes.GMLPosition
		}
		if meta, err = feed.ImageXML(entry); err != nil {
			return nil, err
		}
	}

	var contents []byte
	if binaryUpdate {
		if changes.SourceType == "" {
			return nil, apierr.New(apierr.KindGeneric, "Image must be accompanied by type.")
		}
		if contents, err = c.readSource(ctx, changes.SourcePath); err != nil {
			return nil, err
		}
	}

	var (
		base        string
		data        []byte
		contentType string
		extra       []string
	)
	switch {
	case metaUpdate && binaryUpdate:
		base = mediaBase
		data = multipartBody(meta, changes.SourceType, contents)
		contentType = contentTypeMultipart
		extra = []string{headerMIMEVersion}
	case metaUpdate:
		base = entryBase
		data = []byte(meta)
		contentType = contentTypeAtom
	default:
		base = mediaBase
		data = contents
		contentType = changes.SourceType
		extra = []string{headerMIMEVersion}
	}

	path := base + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID + "/" + current.Version
	c.log.Info("updating image",
		logger.String("user", username),
		logger.String("album", albumID),
		logger.String("image", imageID))
	if _, err := c.send(http.MethodPut, path, data, contentType, extra...); err != nil {
		return nil, err
	}

	img, err := c.GetImageByID(ctx, username, albumID, imageID, "", "")
	if err != nil {
		return nil, refetchError("image", "updated", err)
	}
	return img, nil
}

// DeleteAlbum removes an album and everything in it. The delete goes to the
// album's edit link, so the entry is fetched first.
func (c *Client) DeleteAlbum(ctx context.Context, username, albumID string) error {
	current, err := c.getAlbumEntry(ctx, username, albumID)
	if err != nil {
		return err
	}
	c.log.Info("deleting album",
		logger.String("user", username), logger.String("album", albumID))
	_, err = c.send(http.MethodDelete, c.editPath(current.EditLink), nil, contentTypeAtom)
	return err
}

// DeleteImage removes a photo. The delete path ends in the photo's version
// segment, read from the current entry.
func (c *Client) DeleteImage(ctx context.Context, username, albumID, imageID string) error {
	current, err := c.getImageEntry(ctx, username, albumID, imageID)
	if err != nil {
		return err
	}
	path := entryBase + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID + "/" + current.Version
	_, err = c.send(http.MethodDelete, path, nil, "")
	return err
}

// DeleteTag removes a tag from a photo. The provider does not report an
// error for a tag that does not exist.
func (c *Client) DeleteTag(ctx context.Context, username, albumID, imageID, tag string) error {
	path := entryBase + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID + "/tag/" + tag
	_, err := c.send(http.MethodDelete, path, nil, "")
	return err
}

// DeleteComment removes a comment from a photo.
func (c *Client) DeleteComment(ctx context.Context, username, albumID, imageID, commentID string) error {
	path := entryBase + "/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID + "/commentid/" + commentID
	_, err := c.send(http.MethodDelete, path, nil, "")
	return err
}

// CopyAlbum recreates album under destUsername and copies every photo in
// it. Tags travel with each photo as keywords; comments do not.
func (c *Client) CopyAlbum(ctx context.Context, destUsername string, album *feed.Album) (*feed.Album, error) {
	created, err := c.PostAlbum(ctx, destUsername, feed.AlbumEntry{
		Title:             album.Title,
		Summary:           album.Summary,
		Icon:              album.Icon,
		Rights:            album.Rights,
		CommentingEnabled: album.CommentingEnabled,
		Location:          album.Location,
		Timestamp:         album.Timestamp,
		GMLPosition:       album.GMLPosition,
	})
	if err != nil {
		return nil, err
	}
	images, err := album.Images.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, err := c.CopyImage(ctx, destUsername, created.IDNum, img); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// CopyImage re-uploads image into destAlbumID under destUsername, reading
// the binary back from the image's content URL.
func (c *Client) CopyImage(ctx context.Context, destUsername, destAlbumID string, image *feed.Image) (*feed.Image, error) {
	return c.PostImage(ctx, destUsername, destAlbumID, image.Content, image.ImageType, feed.ImageEntry{
		Title:             image.Title,
		Summary:           image.Description,
		Keywords:          strings.Join(image.Tags, ","),
		CommentingEnabled: image.CommentingEnabled,
		Timestamp:         image.Timestamp,
		GMLPosition:       image.GMLPosition,
	})
}

// readSource loads upload bytes from a local path, or over HTTP when the
// source is a URL, as copies are. An unreadable source is a FileNotFound
// error either way.
func (c *Client) readSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, apierr.New(apierr.KindFileNotFound, "The specified file could not be found.")
		}
		resp, err := c.web.Do(req)
		if err != nil {
			return nil, apierr.New(apierr.KindFileNotFound, "The specified file could not be found.")
		}
		defer utils.Close(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return nil, apierr.New(apierr.KindFileNotFound, "The specified file could not be found.")
		}
		return io.ReadAll(resp.Body)
	}

	contents, err := c.readFile(source)
	if err != nil {
		return nil, apierr.New(apierr.KindFileNotFound, "The specified file could not be found.")
	}
	return contents, nil
}

// multipartBody assembles the fixed-boundary multipart document the
// provider expects for photo uploads: a preamble, the atom metadata part,
// then the binary part. The boundary is always END_OF_PART.
func multipartBody(meta, imageType string, contents []byte) []byte {
	var b strings.Builder
	b.WriteString("\r\n\nMedia multipart posting\n")
	b.WriteString("--END_OF_PART\n")
	b.WriteString("Content-Type: application/atom+xml\n\n")
	b.WriteString(meta)
	b.WriteString("\n--END_OF_PART\n")
	b.WriteString("Content-Type: " + imageType + "\n\n")
	out := append([]byte(b.String()), contents...)
	return append(out, "\n--END_OF_PART--"...)
}

func orString(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func orBool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

// sliceID returns the identifier following marker. The first match may sit
// inside the <id> element or inside a link attribute, so the id ends at
// whichever delimiter comes first.
func sliceID(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	if stop := strings.IndexAny(rest, "/<?&\"'"); stop >= 0 {
		return rest[:stop]
	}
	return rest
}

// sliceAfter returns the text between the first occurrence of start and the
// next occurrence of end after it. Empty when either is absent.
func sliceAfter(s, start, end string) string {
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

// refetchError wraps the awkward situation where the write itself succeeded
// but reading the result back did not.
func refetchError(noun, verb string, err error) error {
	return fmt.Errorf("the %s was successfully %s, but then the following error was encountered: %w", noun, verb, err)
}

// ensure the interface stays satisfied as httpx evolves.
var _ sender = (*httpx.Transport)(nil)

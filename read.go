package picasa

import (
	"context"

	"github.com/Camalot9/picasaweb-go/internal/feed"
	"github.com/Camalot9/picasaweb-go/internal/logger"
	"github.com/Camalot9/picasaweb-go/internal/query"
)

// lazyPageSize bounds the tag and comment fetches that back an album's
// lazily resolved fields.
const lazyPageSize = 1000

func cacheablePublic(opts *query.Options) bool {
	return opts != nil && opts.Visibility == query.VisibilityPublic
}

func encode(opts *query.Options) string {
	if opts == nil {
		return ""
	}
	return opts.Encode()
}

// GetAlbumsByUsername lists a user's albums. The listing does not inline
// album contents; each returned album resolves its images, tags and
// comments lazily. Responses are cached only for public visibility, which
// is also the default when opts is nil.
func (c *Client) GetAlbumsByUsername(ctx context.Context, username string, opts *query.Options) (*feed.Account, error) {
	cacheable := opts == nil || opts.Visibility == "" || opts.Visibility == query.VisibilityPublic
	url := c.feedURL("/user/"+username) + "?kind=album" + encode(opts)

	c.log.Debug("fetching albums", logger.String("user", username))
	body, err := c.fetchFeed(ctx, url, cacheable)
	if err != nil {
		return nil, err
	}
	acct, err := feed.ParseAccount(body)
	if err != nil {
		return nil, err
	}
	for _, album := range acct.Albums {
		c.attachAlbumFetchers(album, username)
	}
	return acct, nil
}

// GetImages searches photos, across all public feeds when username is
// empty. Cached only when the search is explicitly restricted to public
// visibility.
func (c *Client) GetImages(ctx context.Context, username string, opts *query.Options) (*feed.ImageCollection, error) {
	path := "/all"
	if username != "" {
		path = "/user/" + username
	}
	url := c.feedURL(path) + "?kind=photo" + encode(opts)

	body, err := c.fetchFeed(ctx, url, cacheablePublic(opts))
	if err != nil {
		return nil, err
	}
	coll, err := feed.ParseImageCollection(body)
	if err != nil {
		return nil, err
	}
	for _, img := range coll.Images {
		c.attachImageFetchers(img)
	}
	return coll, nil
}

// GetAlbumByID fetches one album with its photos inlined. Cached only when
// the client is unauthenticated, because an authenticated read may see
// private content.
func (c *Client) GetAlbumByID(ctx context.Context, username, albumID string, opts *query.Options) (*feed.Album, error) {
	url := c.feedURL("/user/"+username+"/albumid/"+albumID) + "?kind=photo" + encode(opts)

	c.log.Debug("fetching album",
		logger.String("user", username), logger.String("album", albumID))
	body, err := c.fetchFeed(ctx, url, !c.authenticated())
	if err != nil {
		return nil, err
	}
	album, err := feed.ParseAlbum(body)
	if err != nil {
		return nil, err
	}
	c.attachAlbumFetchers(album, username)
	images, _ := album.Images.Resolve(ctx)
	for _, img := range images {
		c.attachImageFetchers(img)
	}
	return album, nil
}

// getAlbumEntry fetches an album through the entry URL. Entries carry the
// edit link and are the form update and delete paths are derived from.
func (c *Client) getAlbumEntry(ctx context.Context, username, albumID string) (*feed.Album, error) {
	url := c.entryURL("/user/" + username + "/albumid/" + albumID)
	body, err := c.fetchFeed(ctx, url, !c.authenticated())
	if err != nil {
		return nil, err
	}
	return feed.ParseAlbum(body)
}

// GetImageByID fetches one photo with its comments inlined. thumbSizes is a
// comma-delimited size list and maxImageSize a single size; either may be
// empty. Cached only when unauthenticated.
func (c *Client) GetImageByID(ctx context.Context, username, albumID, imageID, thumbSizes, maxImageSize string) (*feed.Image, error) {
	params := ""
	if thumbSizes != "" {
		params = "?thumbsize=" + thumbSizes
		if maxImageSize != "" {
			params += "&imgmax=" + maxImageSize
		}
	} else if maxImageSize != "" {
		params = "?imgmax=" + maxImageSize
	}
	url := c.feedURL("/user/"+username+"/albumid/"+albumID+"/photoid/"+imageID) + params

	body, err := c.fetchFeed(ctx, url, !c.authenticated())
	if err != nil {
		return nil, err
	}
	img, err := feed.ParseImage(body)
	if err != nil {
		return nil, err
	}
	c.attachImageFetchers(img)
	return img, nil
}

// getImageEntry fetches a photo through the entry URL, the source of the
// version segment used by update and delete paths.
func (c *Client) getImageEntry(ctx context.Context, username, albumID, imageID string) (*feed.Image, error) {
	url := c.entryURL("/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID)
	body, err := c.fetchFeed(ctx, url, !c.authenticated())
	if err != nil {
		return nil, err
	}
	return feed.ParseImage(body)
}

// GetTagsByUsername lists a user's tags, scoped to one album when albumID
// is non-empty. Cached only for public visibility.
func (c *Client) GetTagsByUsername(ctx context.Context, username, albumID string, opts *query.Options) ([]*feed.Tag, error) {
	path := "/user/" + username
	if albumID != "" {
		path += "/albumid/" + albumID
	}
	url := c.feedURL(path) + "?kind=tag" + encode(opts)

	body, err := c.fetchFeed(ctx, url, cacheablePublic(opts))
	if err != nil {
		return nil, err
	}
	return feed.ParseTags(body)
}

// GetCommentsByUsername lists a user's comments, scoped to one album when
// albumID is non-empty. Cached only for public visibility.
func (c *Client) GetCommentsByUsername(ctx context.Context, username, albumID string, opts *query.Options) ([]*feed.Comment, error) {
	path := "/user/" + username
	if albumID != "" {
		path += "/albumid/" + albumID
	}
	url := c.feedURL(path) + "?kind=comment" + encode(opts)

	body, err := c.fetchFeed(ctx, url, cacheablePublic(opts))
	if err != nil {
		return nil, err
	}
	return feed.ParseComments(body)
}

// GetCommentByID fetches a single comment. Cached only when unauthenticated.
func (c *Client) GetCommentByID(ctx context.Context, username, albumID, imageID, commentID string) (*feed.Comment, error) {
	url := c.entryURL("/user/" + username + "/albumid/" + albumID + "/photoid/" + imageID + "/commentid/" + commentID)
	body, err := c.fetchFeed(ctx, url, !c.authenticated())
	if err != nil {
		return nil, err
	}
	return feed.ParseComment(body)
}

// GetContactsByUsername lists the user's contacts. Never cached.
func (c *Client) GetContactsByUsername(ctx context.Context, username string) ([]*feed.Author, error) {
	url := c.feedURL("/user/" + username + "/contacts?kind=user")
	body, err := c.fetchFeed(ctx, url, false)
	if err != nil {
		return nil, err
	}
	return feed.ParseContacts(body)
}

// getCommentByURL fetches a comment entry by its full id URL, used after a
// post returns the new comment's location.
func (c *Client) getCommentByURL(ctx context.Context, url string) (*feed.Comment, error) {
	body, err := c.fetchFeed(ctx, url, false)
	if err != nil {
		return nil, err
	}
	return feed.ParseComment(body)
}

// attachAlbumFetchers wires the album's unresolved fields to the feeds that
// answer them. The album's own rights scope the tag and comment fetches so
// a private album's metadata is not requested as public.
func (c *Client) attachAlbumFetchers(album *feed.Album, username string) {
	user := username
	if user == "" && album.Author != nil {
		user = album.Author.User
	}
	id := album.IDNum
	scoped := &query.Options{
		MaxResults: lazyPageSize,
		StartIndex: 1,
		Visibility: album.Rights,
	}

	if !album.Images.IsResolved() && album.NumPhotos > 0 {
		album.Images = feed.NewLazy(func(ctx context.Context) ([]*feed.Image, error) {
			inner, err := c.GetAlbumByID(ctx, user, id, nil)
			if err != nil {
				return nil, err
			}
			return inner.Images.Resolve(ctx)
		})
	}
	album.Tags = feed.NewLazy(func(ctx context.Context) ([]*feed.Tag, error) {
		return c.GetTagsByUsername(ctx, user, id, scoped)
	})
	album.Comments = feed.NewLazy(func(ctx context.Context) ([]*feed.Comment, error) {
		return c.GetCommentsByUsername(ctx, user, id, scoped)
	})
}

// attachImageFetchers wires the photo's unresolved comments and the
// previous/next neighbors, which require the surrounding album.
func (c *Client) attachImageFetchers(img *feed.Image) {
	user := ""
	if img.Author != nil {
		user = img.Author.User
	}
	albumID, imageID := img.AlbumID, img.IDNum

	if !img.Comments.IsResolved() {
		img.Comments = feed.NewLazy(func(ctx context.Context) ([]*feed.Comment, error) {
			full, err := c.GetImageByID(ctx, user, albumID, imageID, "", "")
			if err != nil {
				return nil, err
			}
			return full.Comments.Resolve(ctx)
		})
	}

	img.Previous = feed.NewLazy(func(ctx context.Context) (*feed.Image, error) {
		return c.neighbor(ctx, user, albumID, imageID, -1)
	})
	img.Next = feed.NewLazy(func(ctx context.Context) (*feed.Image, error) {
		return c.neighbor(ctx, user, albumID, imageID, +1)
	})
}

// neighbor fetches the album and walks its photos for the one adjacent to
// imageID. Returns nil at either end of the album.
func (c *Client) neighbor(ctx context.Context, username, albumID, imageID string, offset int) (*feed.Image, error) {
	album, err := c.GetAlbumByID(ctx, username, albumID, nil)
	if err != nil {
		return nil, err
	}
	images, err := album.Images.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for i, img := range images {
		if img.IDNum == imageID {
			j := i + offset
			if j < 0 || j >= len(images) {
				return nil, nil
			}
			return images[j], nil
		}
	}
	return nil, nil
}

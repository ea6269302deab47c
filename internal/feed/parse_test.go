package feed

import (
	"context"
	"testing"
)

const photoEntryXML = `<?xml version='1.0' encoding='utf-8'?>
<entry xmlns='http://www.w3.org/2005/Atom'
       xmlns:gphoto='http://schemas.google.com/photos/2007'
       xmlns:media='http://search.yahoo.com/mrss/'
       xmlns:exif='http://schemas.google.com/photos/exif/2007'
       xmlns:georss='http://www.georss.org/georss'
       xmlns:gml='http://www.opengis.net/gml'>
  <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
  <title>Lighthouse</title>
  <updated>2008-09-14T21:46:02.000Z</updated>
  <link rel='alternate' type='text/html' href='http://picasaweb.google.com/liz/Coast#9001'/>
  <gphoto:id>9001</gphoto:id>
  <gphoto:albumid>5001</gphoto:albumid>
  <gphoto:albumtitle>Coast</gphoto:albumtitle>
  <gphoto:width>1600</gphoto:width>
  <gphoto:height>1200</gphoto:height>
  <gphoto:version>42</gphoto:version>
  <gphoto:timestamp>1221428762000</gphoto:timestamp>
  <gphoto:commentingEnabled>true</gphoto:commentingEnabled>
  <gphoto:commentCount>2</gphoto:commentCount>
  <exif:tags>
    <exif:fstop>8.0</exif:fstop>
    <exif:make>Canon</exif:make>
    <exif:model>EOS 40D</exif:model>
    <exif:iso>100</exif:iso>
  </exif:tags>
  <georss:where>
    <gml:Point>
      <gml:pos>46.6 7.9</gml:pos>
    </gml:Point>
  </georss:where>
  <media:group>
    <media:description>Rocks and surf</media:description>
    <media:keywords>coast, lighthouse , sea</media:keywords>
    <media:content url='http://lh3.example.com/full.jpg' type='image/jpeg' width='1600' height='1200'/>
    <media:thumbnail url='http://lh3.example.com/s72.jpg' width='72' height='54'/>
    <media:thumbnail url='http://lh3.example.com/s144.jpg' width='144' height='108'/>
    <media:thumbnail url='http://lh3.example.com/s288.jpg' width='288' height='216'/>
  </media:group>
</entry>`

func TestParseImage(t *testing.T) {
	img, err := ParseImage(photoEntryXML)
	if err != nil {
		t.Fatalf("ParseImage() error = %v", err)
	}

	if img.IDNum != "9001" {
		t.Errorf("IDNum = %q, want %q", img.IDNum, "9001")
	}
	if img.Title != "Lighthouse" {
		t.Errorf("Title = %q", img.Title)
	}
	if img.Description != "Rocks and surf" {
		t.Errorf("Description = %q", img.Description)
	}
	if img.AlbumID != "5001" || img.AlbumTitle != "Coast" {
		t.Errorf("album ref = %q/%q", img.AlbumID, img.AlbumTitle)
	}
	if img.Width != 1600 || img.Height != 1200 {
		t.Errorf("dimensions = %dx%d", img.Width, img.Height)
	}
	if !img.CommentingEnabled {
		t.Error("CommentingEnabled = false, want true")
	}
	if img.CommentCount == nil || *img.CommentCount != 2 {
		t.Errorf("CommentCount = %v, want 2", img.CommentCount)
	}
	if img.WebLink != "http://picasaweb.google.com/liz/Coast#9001" {
		t.Errorf("WebLink = %q", img.WebLink)
	}
	if img.GMLPosition != "46.6 7.9" {
		t.Errorf("GMLPosition = %q", img.GMLPosition)
	}
	if img.Content != "http://lh3.example.com/full.jpg" || img.ImageType != "image/jpeg" {
		t.Errorf("Content = %q type %q", img.Content, img.ImageType)
	}

	// The author user is derived from the id URL when the entry has no
	// author element.
	if img.Author == nil || img.Author.User != "liz" {
		t.Errorf("Author.User = %v, want liz", img.Author)
	}

	if img.Exif == nil {
		t.Fatal("Exif block missing")
	}
	if img.Exif.CameraMake != "Canon" || img.Exif.CameraModel != "EOS 40D" {
		t.Errorf("Exif camera = %q %q", img.Exif.CameraMake, img.Exif.CameraModel)
	}
}

func TestParseImageThumbnails(t *testing.T) {
	img, err := ParseImage(photoEntryXML)
	if err != nil {
		t.Fatalf("ParseImage() error = %v", err)
	}

	if len(img.Thumbnails) != 3 {
		t.Fatalf("len(Thumbnails) = %d, want 3", len(img.Thumbnails))
	}
	for i, want := range []int{72, 144, 288} {
		if img.Thumbnails[i].Width != want {
			t.Errorf("Thumbnails[%d].Width = %d, want %d", i, img.Thumbnails[i].Width, want)
		}
	}
	if len(img.ThumbURLMap) != 3 {
		t.Errorf("len(ThumbURLMap) = %d, want 3", len(img.ThumbURLMap))
	}
	if img.ThumbURLMap[144] != "http://lh3.example.com/s144.jpg" {
		t.Errorf("ThumbURLMap[144] = %q", img.ThumbURLMap[144])
	}
	if img.ThumbHeightMap[288] != 216 {
		t.Errorf("ThumbHeightMap[288] = %d, want 216", img.ThumbHeightMap[288])
	}

	// Legacy shortcuts alias the first three thumbnails in order.
	if img.SmallThumb != img.Thumbnails[0].URL ||
		img.MediumThumb != img.Thumbnails[1].URL ||
		img.LargeThumb != img.Thumbnails[2].URL {
		t.Error("small/medium/large thumbs must alias thumbnails[0..2]")
	}
}

func TestParseImageKeywords(t *testing.T) {
	img, err := ParseImage(photoEntryXML)
	if err != nil {
		t.Fatalf("ParseImage() error = %v", err)
	}
	want := []string{"coast", "lighthouse", "sea"}
	if len(img.Tags) != len(want) {
		t.Fatalf("len(Tags) = %d, want %d", len(img.Tags), len(want))
	}
	for i := range want {
		if img.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, img.Tags[i], want[i])
		}
	}
}

const accountFeedXML = `<?xml version='1.0' encoding='utf-8'?>
<feed xmlns='http://www.w3.org/2005/Atom'
      xmlns:gphoto='http://schemas.google.com/photos/2007'
      xmlns:media='http://search.yahoo.com/mrss/'>
  <id>http://picasaweb.google.com/data/feed/api/user/liz</id>
  <title>liz</title>
  <subtitle>Albums by liz</subtitle>
  <icon>http://lh3.example.com/liz.jpg</icon>
  <link rel='alternate' href='http://picasaweb.google.com/liz'/>
  <author>
    <name>Liz</name>
    <uri>http://picasaweb.google.com/liz</uri>
  </author>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001</id>
    <title>Coast</title>
    <summary>Trip photos</summary>
    <rights>public</rights>
    <published>2008-09-11T08:02:10.000Z</published>
    <updated>2008-09-14T21:46:02.000Z</updated>
    <link rel='edit' href='http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/123'/>
    <link rel='alternate' href='http://picasaweb.google.com/liz/Coast'/>
    <author>
      <name>Liz</name>
    </author>
    <gphoto:id>5001</gphoto:id>
    <gphoto:user>liz</gphoto:user>
    <gphoto:numphotos>12</gphoto:numphotos>
    <gphoto:commentingEnabled>true</gphoto:commentingEnabled>
    <gphoto:timestamp>1221120130000</gphoto:timestamp>
    <media:group>
      <media:thumbnail url='http://lh3.example.com/album-cover.jpg' width='160' height='160'/>
    </media:group>
  </entry>
</feed>`

func TestParseAccount(t *testing.T) {
	acct, err := ParseAccount(accountFeedXML)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	if acct.Title != "liz" || acct.Subtitle != "Albums by liz" {
		t.Errorf("feed title = %q / %q", acct.Title, acct.Subtitle)
	}
	if acct.WebLink != "http://picasaweb.google.com/liz" {
		t.Errorf("WebLink = %q", acct.WebLink)
	}
	if len(acct.Albums) != 1 {
		t.Fatalf("len(Albums) = %d, want 1", len(acct.Albums))
	}

	album := acct.Albums[0]
	if album.IDNum != "5001" || album.Title != "Coast" {
		t.Errorf("album = %q %q", album.IDNum, album.Title)
	}
	if album.Rights != "public" {
		t.Errorf("Rights = %q", album.Rights)
	}
	if album.NumPhotos != 12 {
		t.Errorf("NumPhotos = %d, want 12", album.NumPhotos)
	}
	if album.EditLink == "" || album.WebLink == "" {
		t.Error("edit and alternate links must both be captured")
	}
	// Nested albums take their cover from the media block.
	if album.Icon != "http://lh3.example.com/album-cover.jpg" {
		t.Errorf("Icon = %q", album.Icon)
	}
	if album.Author == nil || album.Author.User != "liz" {
		t.Errorf("Author = %v, want user liz", album.Author)
	}
}

func TestAlbumFromListingHasUnresolvedImages(t *testing.T) {
	acct, err := ParseAccount(accountFeedXML)
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	album := acct.Albums[0]
	if album.Images.IsResolved() {
		t.Fatal("listing album must leave images unresolved")
	}

	fetches := 0
	album.Images = NewLazy(func(context.Context) ([]*Image, error) {
		fetches++
		return []*Image{{IDNum: "9001"}}, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		images, err := album.Images.Resolve(ctx)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(images) != 1 || images[0].IDNum != "9001" {
			t.Fatalf("Resolve() = %v", images)
		}
	}
	if fetches != 1 {
		t.Errorf("fetch count = %d, want exactly 1", fetches)
	}
}

func TestParseAlbumDirectResolvesImages(t *testing.T) {
	body := `<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/feed/api/user/liz/albumid/5001</id>
  <title>Coast</title>
  <icon>http://lh3.example.com/cover.jpg</icon>
  <gphoto:id>5001</gphoto:id>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
    <title>one</title>
    <gphoto:id>9001</gphoto:id>
  </entry>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9002</id>
    <title>two</title>
    <gphoto:id>9002</gphoto:id>
  </entry>
</feed>`
	album, err := ParseAlbum(body)
	if err != nil {
		t.Fatalf("ParseAlbum() error = %v", err)
	}
	if !album.Images.IsResolved() {
		t.Fatal("directly fetched album must have resolved images")
	}
	images, _ := album.Images.Resolve(context.Background())
	if len(images) != 2 || images[0].IDNum != "9001" || images[1].IDNum != "9002" {
		t.Fatalf("images = %v", images)
	}
	// A direct fetch keeps the feed-level icon.
	if album.Icon != "http://lh3.example.com/cover.jpg" {
		t.Errorf("Icon = %q", album.Icon)
	}
}

func TestParseCommentDerivedFields(t *testing.T) {
	body := `<entry xmlns='http://www.w3.org/2005/Atom' xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001/commentid/7001</id>
  <published>2008-09-15T01:00:00.000Z</published>
  <updated>2008-09-15T01:00:00.000Z</updated>
  <title>bob</title>
  <content>Great shot!</content>
  <gphoto:id>7001</gphoto:id>
  <gphoto:photoid>9001</gphoto:photoid>
  <author><name>Bob</name></author>
</entry>`
	c, err := ParseComment(body)
	if err != nil {
		t.Fatalf("ParseComment() error = %v", err)
	}
	if c.IDNum != "7001" || c.Content != "Great shot!" {
		t.Errorf("comment = %q %q", c.IDNum, c.Content)
	}
	if c.AccountName != "liz" {
		t.Errorf("AccountName = %q, want liz", c.AccountName)
	}
	if c.AlbumID != "5001" {
		t.Errorf("AlbumID = %q, want 5001", c.AlbumID)
	}
	if c.PhotoID != "9001" {
		t.Errorf("PhotoID = %q, want 9001", c.PhotoID)
	}
}

func TestParseTags(t *testing.T) {
	body := `<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/tag/coast</id>
    <title>coast</title>
    <gphoto:weight>18</gphoto:weight>
  </entry>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/tag/sea</id>
    <title>sea</title>
  </entry>
</feed>`
	tags, err := ParseTags(body)
	if err != nil {
		t.Fatalf("ParseTags() error = %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(tags))
	}
	if tags[0].Title != "coast" || tags[0].Weight != 18 {
		t.Errorf("tags[0] = %q weight %d", tags[0].Title, tags[0].Weight)
	}
	if tags[1].Weight != 0 {
		t.Errorf("tags[1].Weight = %d, want 0", tags[1].Weight)
	}
}

func TestParseImageCollection(t *testing.T) {
	body := `<feed xmlns='http://www.w3.org/2005/Atom'
      xmlns:openSearch='http://a9.com/-/spec/opensearchrss/1.0/'
      xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/feed/api/all</id>
  <title>Search Results</title>
  <openSearch:totalResults>5240</openSearch:totalResults>
  <openSearch:startIndex>1</openSearch:startIndex>
  <openSearch:itemsPerPage>10</openSearch:itemsPerPage>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
    <gphoto:id>9001</gphoto:id>
  </entry>
</feed>`
	coll, err := ParseImageCollection(body)
	if err != nil {
		t.Fatalf("ParseImageCollection() error = %v", err)
	}
	if coll.TotalResults != 5240 || coll.StartIndex != 1 || coll.ItemsPerPage != 10 {
		t.Errorf("paging = %d/%d/%d", coll.TotalResults, coll.StartIndex, coll.ItemsPerPage)
	}
	if len(coll.Images) != 1 || coll.Images[0].IDNum != "9001" {
		t.Fatalf("images = %v", coll.Images)
	}
}

func TestParseContacts(t *testing.T) {
	body := `<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <entry>
    <title>Bob</title>
    <gphoto:user>bob</gphoto:user>
    <author>
      <name>Bob</name>
      <uri>http://picasaweb.google.com/bob</uri>
    </author>
  </entry>
</feed>`
	contacts, err := ParseContacts(body)
	if err != nil {
		t.Fatalf("ParseContacts() error = %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("len(contacts) = %d, want 1", len(contacts))
	}
	if contacts[0].Name != "Bob" || contacts[0].User != "bob" {
		t.Errorf("contact = %+v", contacts[0])
	}
}

func TestParseImageCommentStates(t *testing.T) {
	// Zero declared comments resolves to an empty list without a fetch.
	zero := `<entry xmlns='http://www.w3.org/2005/Atom' xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
  <gphoto:commentCount>0</gphoto:commentCount>
</entry>`
	img, err := ParseImage(zero)
	if err != nil {
		t.Fatalf("ParseImage() error = %v", err)
	}
	if !img.Comments.IsResolved() {
		t.Error("zero comment count must resolve to an empty list")
	}

	// An unknown count stays unresolved.
	unknown := `<entry xmlns='http://www.w3.org/2005/Atom'>
  <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
</entry>`
	img, err = ParseImage(unknown)
	if err != nil {
		t.Fatalf("ParseImage() error = %v", err)
	}
	if img.CommentCount != nil {
		t.Errorf("CommentCount = %v, want nil", img.CommentCount)
	}
	if img.Comments.IsResolved() {
		t.Error("unknown comment count must stay unresolved")
	}
}

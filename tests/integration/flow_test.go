package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	picasa "github.com/Camalot9/picasaweb-go"
	"github.com/Camalot9/picasaweb-go/internal/auth"
	"github.com/Camalot9/picasaweb-go/internal/cache"
	"github.com/Camalot9/picasaweb-go/internal/feed"
)

const accountFeedBody = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom'
      xmlns:media='http://search.yahoo.com/mrss/'
      xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/feed/api/user/liz</id>
  <title>liz</title>
  <gphoto:user>liz</gphoto:user>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001</id>
    <title>Coast</title>
    <rights>public</rights>
    <gphoto:id>5001</gphoto:id>
    <gphoto:access>public</gphoto:access>
    <gphoto:numphotos>1</gphoto:numphotos>
  </entry>
</feed>`

const albumFeedBody = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom'
      xmlns:media='http://search.yahoo.com/mrss/'
      xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/feed/api/user/liz/albumid/5001</id>
  <title>Coast</title>
  <rights>public</rights>
  <gphoto:id>5001</gphoto:id>
  <gphoto:access>public</gphoto:access>
  <gphoto:numphotos>1</gphoto:numphotos>
  <entry>
    <id>http://picasaweb.google.com/data/entry/api/user/liz/albumid/5001/photoid/9001</id>
    <title>lighthouse.jpg</title>
    <gphoto:id>9001</gphoto:id>
    <gphoto:albumid>5001</gphoto:albumid>
    <gphoto:width>1600</gphoto:width>
    <gphoto:height>1200</gphoto:height>
  </entry>
</feed>`

// createdAlbumBody stands in for the provider's response to an album POST.
// The HOST placeholder is replaced with the test server address.
const createdAlbumBody = `<?xml version='1.0' encoding='UTF-8'?>
<entry xmlns='http://www.w3.org/2005/Atom'
       xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://HOST/data/entry/api/user/liz/albumid/6001</id>
  <title>Trip</title>
  <gphoto:id>6001</gphoto:id>
  <link rel='edit' type='application/atom+xml'
        href='http://HOST/data/entry/api/user/liz/albumid/6001/v1'/>
</entry>`

const newAlbumFeedBody = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom'
      xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://picasaweb.google.com/data/feed/api/user/liz/albumid/6001</id>
  <title>Trip</title>
  <rights>private</rights>
  <gphoto:id>6001</gphoto:id>
  <gphoto:access>private</gphoto:access>
  <gphoto:numphotos>0</gphoto:numphotos>
</feed>`

const newAlbumEntryBody = `<?xml version='1.0' encoding='UTF-8'?>
<entry xmlns='http://www.w3.org/2005/Atom'
       xmlns:gphoto='http://schemas.google.com/photos/2007'>
  <id>http://HOST/data/entry/api/user/liz/albumid/6001</id>
  <title>Trip</title>
  <gphoto:id>6001</gphoto:id>
  <link rel='edit' type='application/atom+xml'
        href='http://HOST/data/entry/api/user/liz/albumid/6001/v1'/>
</entry>`

// recorder captures every request the provider saw.
type recorder struct {
	mu       sync.Mutex
	requests []string // "VERB path"
}

func (r *recorder) add(verb, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, verb+" "+path)
}

func (r *recorder) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if strings.HasPrefix(req, prefix) {
			n++
		}
	}
	return n
}

func newProvider(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.Method, r.URL.Path)
		host := strings.TrimPrefix(ts.URL, "http://")

		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/data/feed/api/user/liz":
			_, _ = w.Write([]byte(strings.ReplaceAll(createdAlbumBody, "HOST", host)))
		case r.URL.Path == "/data/feed/api/user/liz":
			_, _ = w.Write([]byte(accountFeedBody))
		case r.URL.Path == "/data/feed/api/user/liz/albumid/5001":
			_, _ = w.Write([]byte(albumFeedBody))
		case r.URL.Path == "/data/feed/api/user/liz/albumid/6001":
			_, _ = w.Write([]byte(newAlbumFeedBody))
		case r.URL.Path == "/data/entry/api/user/liz/albumid/6001":
			_, _ = w.Write([]byte(strings.ReplaceAll(newAlbumEntryBody, "HOST", host)))
		default:
			http.NotFound(w, r)
		}
	}))
	return ts
}

func newClient(ts *httptest.Server, store cache.Store, authenticated bool) *picasa.Client {
	host := strings.TrimPrefix(ts.URL, "http://")
	opts := []picasa.Option{
		picasa.WithHost(host),
		picasa.WithCache(store),
	}
	if authenticated {
		m := auth.New(nil)
		m.Restore("tok123", auth.MethodPassword, time.Now())
		opts = append(opts, picasa.WithAuth(m))
	}
	return picasa.New(opts...)
}

func TestPublicBrowseFlowUsesCache(t *testing.T) {
	rec := &recorder{}
	ts := newProvider(t, rec)
	defer ts.Close()

	store := cache.NewMemoryStore()
	client := newClient(ts, store, false)
	ctx := context.Background()

	account, err := client.GetAlbumsByUsername(ctx, "liz", nil)
	if err != nil {
		t.Fatalf("GetAlbumsByUsername() error = %v", err)
	}
	if len(account.Albums) != 1 || account.Albums[0].IDNum != "5001" {
		t.Fatalf("albums = %+v, want one album 5001", account.Albums)
	}

	// The album from the listing resolves its photos on demand.
	images, err := account.Albums[0].Images.Resolve(ctx)
	if err != nil {
		t.Fatalf("Images.Resolve() error = %v", err)
	}
	if len(images) != 1 || images[0].IDNum != "9001" {
		t.Fatalf("images = %+v, want photo 9001", images)
	}

	// A second listing is served from the cache.
	if _, err := client.GetAlbumsByUsername(ctx, "liz", nil); err != nil {
		t.Fatalf("second GetAlbumsByUsername() error = %v", err)
	}
	if got := rec.count("GET /data/feed/api/user/liz"); got != 2 {
		t.Errorf("provider saw %d GETs, want 2 (listing once, album once)", got)
	}
}

func TestAuthenticatedAlbumLifecycle(t *testing.T) {
	rec := &recorder{}
	ts := newProvider(t, rec)
	defer ts.Close()

	client := newClient(ts, cache.Nop{}, true)
	ctx := context.Background()

	album, err := client.PostAlbum(ctx, "liz", feed.AlbumEntry{
		Title:  "Trip",
		Rights: "private",
	})
	if err != nil {
		t.Fatalf("PostAlbum() error = %v", err)
	}
	if album.IDNum != "6001" {
		t.Errorf("created album id = %q, want 6001", album.IDNum)
	}

	if err := client.DeleteAlbum(ctx, "liz", "6001"); err != nil {
		t.Fatalf("DeleteAlbum() error = %v", err)
	}
	if got := rec.count("DELETE "); got != 1 {
		t.Errorf("provider saw %d DELETEs, want 1", got)
	}
	if got := rec.count("DELETE /data/entry/api/user/liz/albumid/6001/v1"); got != 1 {
		t.Errorf("delete did not target the edit link path; requests: %v", rec.requests)
	}
}

package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
	"github.com/Camalot9/picasaweb-go/internal/auth"
	"github.com/Camalot9/picasaweb-go/internal/authserver"
	"github.com/Camalot9/picasaweb-go/internal/feed"
	"github.com/Camalot9/picasaweb-go/internal/query"
)

func (a *App) cmdAlbums(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("albums", flag.ContinueOnError)
	access := fs.String("access", "", "visibility filter: public, private or all")
	max := fs.Int("max", 0, "maximum number of albums")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user := fs.Arg(0)
	if user == "" {
		return errors.New("usage: albums <user>")
	}

	var opts *query.Options
	if *access != "" || *max > 0 {
		opts = &query.Options{Visibility: *access, MaxResults: *max}
	}
	account, err := a.client.GetAlbumsByUsername(ctx, user, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%d albums)\n", account.Title, len(account.Albums))
	for _, album := range account.Albums {
		fmt.Fprintf(a.out, "  %s  %-30s  %4d photos  %s\n",
			album.IDNum, album.Title, album.NumPhotos, album.Rights)
	}
	return nil
}

func (a *App) cmdImages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("images", flag.ContinueOnError)
	keywords := fs.String("q", "", "full-text search keywords")
	tags := fs.String("tag", "", "comma-separated tag filter")
	max := fs.Int("max", 0, "maximum number of photos")
	start := fs.Int("start", 0, "1-based start index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user := fs.Arg(0)

	var opts *query.Options
	if *keywords != "" || *tags != "" || *max > 0 || *start > 0 {
		opts = &query.Options{
			Keywords:   *keywords,
			Tags:       *tags,
			MaxResults: *max,
			StartIndex: *start,
		}
	}
	collection, err := a.client.GetImages(ctx, user, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %d photos (showing from %d)\n",
		collection.Title, collection.TotalResults, collection.StartIndex)
	for _, img := range collection.Images {
		a.printImageLine(img)
	}
	return nil
}

func (a *App) cmdAlbum(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: album <user> <albumid>")
	}
	user, albumID := args[0], args[1]

	album, err := a.client.GetAlbumByID(ctx, user, albumID, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", album.Title, album.IDNum)
	if album.Summary != "" {
		fmt.Fprintf(a.out, "  %s\n", album.Summary)
	}
	fmt.Fprintf(a.out, "  access=%s location=%q photos=%d\n",
		album.Rights, album.Location, album.NumPhotos)

	images, err := album.Images.Resolve(ctx)
	if err != nil {
		return err
	}
	for _, img := range images {
		a.printImageLine(img)
	}
	return nil
}

func (a *App) cmdImage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	thumbSizes := fs.String("thumbsizes", "", "comma-separated thumbnail widths")
	imgMax := fs.String("imgmax", "", "content width, or d for the original")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return errors.New("usage: image <user> <albumid> <photoid>")
	}
	user, albumID, imageID := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	img, err := a.client.GetImageByID(ctx, user, albumID, imageID, *thumbSizes, *imgMax)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", img.Title, img.IDNum)
	if img.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", img.Description)
	}
	fmt.Fprintf(a.out, "  %dx%d  type=%s  version=%s\n",
		img.Width, img.Height, img.ImageType, img.Version)
	if len(img.Tags) > 0 {
		fmt.Fprintf(a.out, "  tags: %s\n", strings.Join(img.Tags, ", "))
	}
	fmt.Fprintf(a.out, "  content: %s\n", img.Content)
	for _, t := range img.Thumbnails {
		fmt.Fprintf(a.out, "  thumb %dx%d: %s\n", t.Width, t.Height, t.URL)
	}
	return nil
}

func (a *App) cmdTags(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tags <user> [albumid]")
	}
	user := args[0]
	albumID := ""
	if len(args) > 1 {
		albumID = args[1]
	}

	tags, err := a.client.GetTagsByUsername(ctx, user, albumID, nil)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		fmt.Fprintf(a.out, "  %-24s %d\n", tag.Title, tag.Weight)
	}
	return nil
}

func (a *App) cmdComments(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: comments <user> [albumid]")
	}
	user := args[0]
	albumID := ""
	if len(args) > 1 {
		albumID = args[1]
	}

	comments, err := a.client.GetCommentsByUsername(ctx, user, albumID, nil)
	if err != nil {
		return err
	}
	for _, cm := range comments {
		author := ""
		if cm.Author != nil {
			author = cm.Author.Name
		}
		fmt.Fprintf(a.out, "  [%s] %s: %s\n", cm.Published, author, cm.Content)
	}
	return nil
}

func (a *App) cmdContacts(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: contacts <user>")
	}
	contacts, err := a.client.GetContactsByUsername(ctx, args[0])
	if err != nil {
		return err
	}
	for _, contact := range contacts {
		fmt.Fprintf(a.out, "  %-20s %s\n", contact.User, contact.Name)
	}
	return nil
}

func (a *App) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	title := fs.String("title", "", "photo title, defaults to the file name")
	summary := fs.String("summary", "", "photo description")
	keywords := fs.String("keywords", "", "comma-separated keywords")
	imageType := fs.String("type", "image/jpeg", "MIME type of the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return errors.New("usage: upload <user> <albumid> <file>")
	}
	user, albumID, file := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	if *title == "" {
		*title = file
	}
	img, err := a.client.PostImage(ctx, user, albumID, file, *imageType, feed.ImageEntry{
		Title:             *title,
		Summary:           *summary,
		Keywords:          *keywords,
		CommentingEnabled: true,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "uploaded %s as photo %s\n", file, img.IDNum)
	return nil
}

func (a *App) cmdPostAlbum(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post-album", flag.ContinueOnError)
	title := fs.String("title", "", "album title (required)")
	summary := fs.String("summary", "", "album description")
	access := fs.String("access", "public", "visibility: public or private")
	location := fs.String("location", "", "album location")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user := fs.Arg(0)
	if user == "" || *title == "" {
		return errors.New("usage: post-album <user> -title <title>")
	}

	album, err := a.client.PostAlbum(ctx, user, feed.AlbumEntry{
		Title:             *title,
		Summary:           *summary,
		Rights:            *access,
		Location:          *location,
		CommentingEnabled: true,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created album %q with id %s\n", album.Title, album.IDNum)
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email for password login")
	redirect := fs.Bool("redirect", false, "sign in through the provider's approval page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *redirect {
		return a.loginRedirect(ctx)
	}
	if *email == "" {
		return errors.New("usage: login -email <address>  (or login -redirect)")
	}
	return a.loginPassword(*email)
}

func (a *App) loginPassword(email string) error {
	reader := bufio.NewReader(a.in)
	fmt.Fprint(a.out, "Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	err = a.auth.LoginWithPassword(email, password, a.cfg.AuthSource, "", "")

	// A challenge means the provider wants proof the caller is human. Show
	// the image URL and retry with the answer.
	var challenge *apierr.CaptchaError
	if errors.As(err, &challenge) {
		fmt.Fprintf(a.out, "Solve the challenge at:\n  https://%s%s\n", auth.HostAccounts, challenge.ChallengePath)
		fmt.Fprint(a.out, "Answer: ")
		answer, readErr := reader.ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("read challenge answer: %w", readErr)
		}
		answer = strings.TrimRight(answer, "\r\n")
		err = a.auth.LoginWithPassword(email, password, a.cfg.AuthSource, challenge.Token, answer)
	}
	if err != nil {
		return err
	}

	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed in")
	return nil
}

func (a *App) loginRedirect(ctx context.Context) error {
	srv, err := authserver.New(a.cfg.CallbackAddr, a.logger)
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	fmt.Fprintf(a.out, "Open this URL in a browser and approve access:\n\n  %s\n\nWaiting for the redirect...\n",
		auth.AuthorizationURL(srv.CallbackURL(), true))

	token, err := srv.WaitForToken(ctx)
	if err != nil {
		return err
	}
	if err := a.auth.CompleteRedirectLogin(token); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed in")
	return nil
}

func (a *App) cmdLogout(_ context.Context, _ []string) error {
	if s := a.auth.Session(); s != nil && s.Method == auth.MethodRedirect {
		if err := a.auth.Revoke(); err != nil {
			a.logger.Warnf("remote revoke failed, dropping the local session anyway: %v", err)
		}
	}
	a.auth.Clear()
	if err := a.removeSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) cmdCacheClear(ctx context.Context) error {
	if err := a.store.Flush(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "cache cleared")
	return nil
}

func (a *App) printImageLine(img *feed.Image) {
	fmt.Fprintf(a.out, "  %s  %-30s  %dx%d\n", img.IDNum, img.Title, img.Width, img.Height)
}

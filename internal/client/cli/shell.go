package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/poputchiki/internal/client/app"
	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/client/router"
	"github.com/dmitrijs2005/poputchiki/internal/common"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

// Prompt seams, replaced in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

const fieldPassword = "password"

// Shell runs user commands against the page controller and prints the
// outcome.
type Shell struct {
	app    *app.App
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

func NewShell(a *app.App, in io.Reader, out io.Writer, log logging.Logger) *Shell {
	if log == nil {
		log = logging.Nop()
	}
	return &Shell{app: a, reader: bufio.NewReader(in), out: out, log: log}
}

func (s *Shell) isLoggedIn() bool {
	return s.app.Current() != nil
}

// status is the REPL prompt label: the signed-in user and the current path.
func (s *Shell) status() string {
	path := s.app.Router().Current().Path
	if path == "" {
		path = "/"
	}
	cur := s.app.Current()
	if cur == nil {
		return offlineStyle.Render("anonymous") + " " + path
	}
	return onlineStyle.Render(cur.User.Snapshot().DisplayName()) + " " + path
}

func (s *Shell) Register(ctx context.Context) error {
	form, err := s.credentialsForm()
	if err != nil {
		return err
	}
	if err := s.app.Auth().Register(ctx, form); err != nil {
		s.fail(ctx, "registration failed", err)
		return err
	}
	printlnFn("Registered and signed in as", s.userLabel())
	return nil
}

func (s *Shell) Login(ctx context.Context) error {
	form, err := s.credentialsForm()
	if err != nil {
		return err
	}
	if err := s.app.Auth().Login(ctx, form); err != nil {
		s.fail(ctx, "login failed", err)
		return err
	}
	printlnFn("Signed in as", s.userLabel())
	return nil
}

func (s *Shell) credentialsForm() (url.Values, error) {
	email, err := getSimpleText(s.reader, "Enter email", s.out)
	if err != nil {
		return nil, err
	}
	pw, err := getPassword(s.out)
	if err != nil {
		return nil, err
	}
	defer wipe(pw)
	return url.Values{
		models.FieldEmail: {email},
		fieldPassword:     {string(pw)},
	}, nil
}

func (s *Shell) Logout(ctx context.Context) error {
	if err := s.app.Logout(ctx); err != nil {
		s.fail(ctx, "logout failed", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (s *Shell) WhoAmI(ctx context.Context) error {
	cur := s.app.Current()
	if cur == nil {
		printlnFn("Not logged in")
		return common.ErrNotAuthenticated
	}
	u := cur.User.Snapshot()
	photo := ""
	if u.Photo != nil {
		photo = u.Photo.URL
	}
	for _, line := range []string{
		field("id", u.ID.String()),
		field("name", u.DisplayName()),
		field("email", u.Email),
		field("phone", u.Phone),
		field("photo", photo),
		field("favorites", strconv.Itoa(len(u.Favorites))),
		field("blacklist", strconv.Itoa(len(u.Blacklist))),
		field("realtime", cur.Channel.State().String()),
	} {
		printlnFn(line)
	}
	return nil
}

// EditProfile prompts for each editable field. An empty answer keeps the
// current value.
func (s *Shell) EditProfile(ctx context.Context) error {
	profile, err := s.app.Profile()
	if err != nil {
		printlnFn("Not logged in")
		return err
	}
	u := s.app.Current().User.Snapshot()

	form := url.Values{}
	for _, f := range []struct{ key, label, cur string }{
		{models.FieldFirstName, "First name", u.FirstName},
		{models.FieldSecondName, "Last name", u.SecondName},
		{models.FieldEmail, "Email", u.Email},
		{models.FieldPhone, "Phone", u.Phone},
	} {
		v, err := getSimpleText(s.reader, fmt.Sprintf("%s [%s]", f.label, f.cur), s.out)
		if err != nil {
			return err
		}
		if v != "" {
			form.Set(f.key, v)
		}
	}
	about, err := getMultiline(s.reader, "About", s.out)
	if err != nil {
		return err
	}
	if about != "" {
		form.Set(models.FieldAbout, about)
	}

	if len(form) == 0 {
		printlnFn("Nothing changed")
		return nil
	}
	if err := profile.Save(ctx, form); err != nil {
		s.fail(ctx, "saving profile failed", err)
		return err
	}
	printlnFn("Profile saved")
	return nil
}

func (s *Shell) UploadPhoto(ctx context.Context, path string) error {
	profile, err := s.app.Profile()
	if err != nil {
		printlnFn("Not logged in")
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		s.fail(ctx, "open photo", err)
		return err
	}
	defer f.Close()

	photo, err := profile.UploadPhoto(ctx, filepath.Base(path), f)
	printlnFn(renderBar("photo", s.app.Doc().Progress(dom.UserFileProgress).Width()))
	if photo != nil {
		printlnFn("Photo uploaded:", photo.URL)
	}
	if err != nil {
		s.fail(ctx, "photo upload failed", err)
		return err
	}
	return nil
}

func (s *Shell) UploadVideo(ctx context.Context, path string) error {
	profile, err := s.app.Profile()
	if err != nil {
		printlnFn("Not logged in")
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		s.fail(ctx, "open video", err)
		return err
	}
	defer f.Close()

	video, err := profile.UploadVideo(ctx, filepath.Base(path), f)
	printlnFn(renderBar("video", s.app.Doc().Progress(dom.VideoFileProgress).Width()))
	if err != nil {
		s.fail(ctx, "video upload failed", err)
		return err
	}
	printlnFn("Video uploaded:", video.URL)
	return nil
}

func (s *Shell) Open(ctx context.Context, path string) error {
	route, err := s.app.Router().Navigate(ctx, path)
	if err != nil {
		s.fail(ctx, "navigation failed", err)
		return err
	}
	s.printRoute(route)
	return nil
}

// Click follows a link the way the page would: internal links navigate in
// place, anything else is reported as left to the browser.
func (s *Shell) Click(ctx context.Context, href string) error {
	prevented, err := s.app.Router().HandleClick(ctx, router.Anchor{Href: href})
	if err != nil {
		s.fail(ctx, "navigation failed", err)
		return err
	}
	if !prevented {
		printlnFn("External link, not followed:", href)
		return nil
	}
	s.printRoute(s.app.Router().Current())
	return nil
}

func (s *Shell) Back(ctx context.Context) error {
	route, err := s.app.Router().Back(ctx)
	if err != nil {
		if errors.Is(err, router.ErrNoHistory) {
			printlnFn("No earlier page")
		} else {
			s.fail(ctx, "navigation failed", err)
		}
		return err
	}
	s.printRoute(route)
	return nil
}

// Show prints the visible page, or a single element when id is set.
func (s *Shell) Show(_ context.Context, id string) error {
	doc := s.app.Doc()
	if id != "" {
		if !doc.Has(id) {
			printlnFn("No such element:", id)
			return dom.ErrContract
		}
		printlnFn(doc.Text(id))
		return nil
	}
	if err := doc.Dump(s.out); err != nil {
		return err
	}
	for _, bar := range []struct{ label, id string }{
		{"photo", dom.UserFileProgress},
		{"video", dom.VideoFileProgress},
	} {
		if doc.Visible(bar.id) {
			printlnFn(renderBar(bar.label, doc.Progress(bar.id).Width()))
		}
	}
	return nil
}

func (s *Shell) userLabel() string {
	cur := s.app.Current()
	if cur == nil {
		return "-"
	}
	return cur.User.Snapshot().DisplayName()
}

func (s *Shell) printRoute(r router.Route) {
	label := r.Name
	if id := r.UserID(); id != "" {
		label += " " + id
	}
	printlnFn(promptStyle.Render(r.Path), label)
}

func (s *Shell) fail(ctx context.Context, what string, err error) {
	s.log.Error(ctx, what, "error", err)
	printlnFn(errorStyle.Render(what + ": " + err.Error()))
}

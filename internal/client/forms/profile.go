package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

const (
	ImageField = "image"
	VideoField = "video"

	DefaultHideDelay = 500 * time.Millisecond
)

type MediaAPI interface {
	UploadImage(ctx context.Context, field, filename string, r io.Reader) (*models.Photo, error)
	UploadVideo(ctx context.Context, field, filename string, r io.Reader) (*models.Video, error)
}

type ProfileOptions struct {
	API       MediaAPI
	User      *models.UserModel
	Doc       *dom.Document
	HideDelay time.Duration
	// MaxImageDimension bounds photo width and height before upload; 0 keeps
	// the original file.
	MaxImageDimension int
	Logger            logging.Logger
}

// Profile drives the profile form of a signed-in session.
type Profile struct {
	api       MediaAPI
	user      *models.UserModel
	doc       *dom.Document
	hideDelay time.Duration
	maxDim    int
	log       logging.Logger

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

func NewProfile(opts ProfileOptions) *Profile {
	p := &Profile{
		api:       opts.API,
		user:      opts.User,
		doc:       opts.Doc,
		hideDelay: opts.HideDelay,
		maxDim:    opts.MaxImageDimension,
		log:       opts.Logger,
	}
	if p.hideDelay <= 0 {
		p.hideDelay = DefaultHideDelay
	}
	if p.log == nil {
		p.log = logging.Nop()
	}
	p.log = p.log.With("component", "forms", "user", opts.User.ID())
	return p
}

// Save applies the submitted fields to the user and saves it.
func (p *Profile) Save(ctx context.Context, form url.Values) error {
	// a rejected form must leave the model and its subscribers alone
	check := p.user.Snapshot()
	if err := check.ApplyForm(form); err != nil {
		p.log.Warn(ctx, "profile form rejected", "error", err)
		return fmt.Errorf("profile: %w", err)
	}
	p.user.Update(func(u *models.User) { _ = u.ApplyForm(form) })
	if err := p.user.Save(ctx); err != nil {
		p.log.Error(ctx, "profile save failed", "error", err)
		return fmt.Errorf("profile: %w", err)
	}
	p.log.Info(ctx, "profile saved")
	return nil
}

// UploadPhoto uploads a new profile photo, previews it and saves it on the
// user. The progress bar starts at 0% and is hidden shortly after success.
func (p *Profile) UploadPhoto(ctx context.Context, filename string, r io.Reader) (*models.Photo, error) {
	bar := p.doc.Progress(dom.UserFileProgress)
	bar.Show()
	bar.Set(0)

	if p.maxDim > 0 {
		var err error
		filename, r, err = downscale(filename, r, p.maxDim)
		if err != nil {
			p.log.Error(ctx, "reading photo failed", "file", filename, "error", err)
			return nil, fmt.Errorf("upload photo: %w", err)
		}
	}

	photo, err := p.api.UploadImage(ctx, ImageField, filename, r)
	if err != nil {
		p.log.Error(ctx, "photo upload failed", "file", filename, "error", err)
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	p.doc.SetAttr(dom.UserImage, "src", photo.URL)
	if b, err := json.Marshal(photo); err == nil {
		p.doc.SetAttr(dom.UserImageHidden, "value", string(b))
	}
	p.user.SetPhoto(*photo)
	saveErr := p.user.Save(ctx)

	bar.SetWidth(100)
	p.hideLater(bar)

	if saveErr != nil {
		p.log.Error(ctx, "saving photo on user failed", "error", saveErr)
		return photo, fmt.Errorf("upload photo: save user: %w", saveErr)
	}
	p.log.Info(ctx, "photo uploaded", "url", photo.URL)
	return photo, nil
}

// UploadVideo uploads a video and points the preview at it. The bar is
// shown half-full while the request runs.
func (p *Profile) UploadVideo(ctx context.Context, filename string, r io.Reader) (*models.Video, error) {
	bar := p.doc.Progress(dom.VideoFileProgress)
	bar.Show()
	bar.SetValue(0)
	bar.SetWidth(50)

	video, err := p.api.UploadVideo(ctx, VideoField, filename, r)
	if err != nil {
		p.log.Error(ctx, "video upload failed", "file", filename, "error", err)
		return nil, fmt.Errorf("upload video: %w", err)
	}

	p.doc.SetAttr(dom.VideoSrc, "src", video.URL)
	bar.SetWidth(100)
	p.hideLater(bar)
	p.log.Info(ctx, "video uploaded", "url", video.URL)
	return video, nil
}

func (p *Profile) hideLater(bar dom.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.timers = append(p.timers, time.AfterFunc(p.hideDelay, bar.Hide))
}

// Close cancels pending progress-bar hides.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
}

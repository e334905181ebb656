package invitation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	imagepkg "github.com/youruser/invitecard/internal/image"
	"github.com/youruser/invitecard/internal/upload"
	"github.com/youruser/invitecard/internal/util"
)

// Fixed artifact names inside a request directory.
const (
	QRFileName   = "qr_code.png"
	CardFileName = "party_invitation.png"
)

// Options configures a Generator.
type Options struct {
	UploadDir     string
	OutputDir     string
	QRSize        int
	QRLevel       qrcode.RecoveryLevel
	TitleFontSize float64
	BodyFontSize  float64
}

// Generator turns Requests into invitation cards on disk.
type Generator struct {
	opts  Options
	fonts *imagepkg.FontResolver
	log   *slog.Logger
	newID func() string
}

// NewGenerator returns a Generator writing below opts.UploadDir and
// opts.OutputDir.
func NewGenerator(opts Options, fonts *imagepkg.FontResolver, log *slog.Logger) *Generator {
	if opts.QRSize <= 0 {
		opts.QRSize = imagepkg.DefaultQRSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{opts: opts, fonts: fonts, log: log, newID: uuid.NewString}
}

// Generate validates req, writes the QR code and the card and returns their
// paths. A background with a disallowed extension fails with
// upload.ErrFileTypeNotAllowed before anything is written. On any later
// failure the partial artifacts are removed.
func (g *Generator) Generate(ctx context.Context, req Request) (*Artifacts, error) {
	if req.Background != nil && !upload.Allowed(req.Background.Filename) {
		return nil, fmt.Errorf("%w: %q", upload.ErrFileTypeNotAllowed, req.Background.Filename)
	}
	if req.RSVPLink == "" {
		return nil, fmt.Errorf("invitation: rsvp link is empty")
	}

	a := &Artifacts{ID: g.newID()}
	if err := g.generate(ctx, req, a); err != nil {
		if cerr := a.Cleanup(); cerr != nil {
			g.log.Warn("cleanup after failed render", "request_id", a.ID, "error", cerr)
		}
		return nil, err
	}
	g.log.Debug("invitation rendered", "request_id", a.ID, "card", a.CardPath, "background", a.BackgroundPath != "")
	return a, nil
}

func (g *Generator) generate(ctx context.Context, req Request, a *Artifacts) error {
	if req.Background != nil {
		dir := filepath.Join(g.opts.UploadDir, a.ID)
		if err := util.EnsureDir(dir); err != nil {
			return err
		}
		a.dirs = append(a.dirs, dir)
		a.BackgroundPath = filepath.Join(dir, upload.SecureFilename(req.Background.Filename))
		if err := util.WriteFile(a.BackgroundPath, req.Background.Content); err != nil {
			return fmt.Errorf("save background: %w", err)
		}
	}

	outDir := filepath.Join(g.opts.OutputDir, a.ID)
	if err := util.EnsureDir(outDir); err != nil {
		return err
	}
	a.dirs = append(a.dirs, outDir)

	if err := ctx.Err(); err != nil {
		return err
	}
	a.QRPath = filepath.Join(outDir, QRFileName)
	if err := imagepkg.WriteQRFile(req.RSVPLink, g.opts.QRLevel, g.opts.QRSize, a.QRPath); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	fonts := g.fonts.Faces(g.opts.TitleFontSize, g.opts.BodyFontSize)
	defer fonts.Close()

	a.CardPath = filepath.Join(outDir, CardFileName)
	if err := imagepkg.ComposeInvitationFile(req.CardText(), a.QRPath, a.BackgroundPath, fonts, a.CardPath); err != nil {
		return fmt.Errorf("compose card: %w", err)
	}
	return nil
}

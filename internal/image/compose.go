package imagepkg

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Card geometry. Text positions are fixed; long values are not wrapped and
// may run under the QR code, which is pasted last.
const (
	CardWidth  = 800
	CardHeight = 600
	QRSide     = 150
)

var (
	// DefaultBackground fills the card when no background image is given.
	DefaultBackground = color.NRGBA{R: 255, G: 223, B: 186, A: 255}
	// QROffset is the top-left corner of the pasted QR code.
	QROffset = image.Pt(600, 420)
)

// CardText holds the user supplied strings printed on a card.
type CardText struct {
	Host  string
	Event string
	Date  string
	Time  string
	Venue string
	Guest string
}

type textLine struct {
	x, y  int
	title bool
	text  string
}

func (t CardText) lines() []textLine {
	return []textLine{
		{200, 50, true, "You're Invited!"},
		{50, 150, false, fmt.Sprintf("Dear %s,", t.Guest)},
		{50, 200, false, fmt.Sprintf("Join us for %s!", t.Event)},
		{50, 250, false, "Date: " + t.Date},
		{50, 300, false, "Time: " + t.Time},
		{50, 350, false, "Venue: " + t.Venue},
		{50, 450, false, "Hosted by: " + t.Host},
		{50, 500, false, "Scan QR Code below to RSVP"},
	}
}

// ComposeInvitation renders an 800x600 invitation card. background may be
// nil, in which case the card is filled with DefaultBackground; otherwise it
// is stretched to the card size. qr may be nil for a card without a code.
func ComposeInvitation(text CardText, qr, background image.Image, fonts FontSet) *image.NRGBA {
	canvas := imaging.New(CardWidth, CardHeight, DefaultBackground)
	if background != nil {
		bg := imaging.Resize(background, CardWidth, CardHeight, imaging.Lanczos)
		// transparent areas show the default colour
		canvas = imaging.Overlay(canvas, bg, image.Pt(0, 0), 1.0)
	}

	for _, l := range text.lines() {
		face := fonts.Body
		if l.title {
			face = fonts.Title
		}
		drawText(canvas, face, l.x, l.y, l.text)
	}

	if qr != nil {
		q := imaging.Resize(qr, QRSide, QRSide, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, QROffset)
	}
	return canvas
}

// ComposeInvitationFile is ComposeInvitation over files: it loads the QR
// raster and the optional background from disk and writes the card as PNG to
// outPath.
func ComposeInvitationFile(text CardText, qrPath, backgroundPath string, fonts FontSet, outPath string) error {
	qr, err := LoadImage(qrPath)
	if err != nil {
		return err
	}
	var bg image.Image
	if backgroundPath != "" {
		if bg, err = LoadImage(backgroundPath); err != nil {
			return err
		}
	}
	return SavePNG(ComposeInvitation(text, qr, bg, fonts), outPath)
}

// Package invitation runs the card pipeline: validate the optional
// background, encode the RSVP QR code, composite the card.
package invitation

import (
	"errors"
	"io"
	"os"

	imagepkg "github.com/youruser/invitecard/internal/image"
)

// Background is an uploaded background image, not yet on disk.
type Background struct {
	Filename string
	Content  io.Reader
}

// Request carries everything printed on one card.
type Request struct {
	Host     string
	Event    string
	Date     string
	Time     string
	Venue    string
	Guest    string
	RSVPLink string

	Background *Background // optional
}

// CardText returns the strings drawn onto the card.
func (r Request) CardText() imagepkg.CardText {
	return imagepkg.CardText{
		Host:  r.Host,
		Event: r.Event,
		Date:  r.Date,
		Time:  r.Time,
		Venue: r.Venue,
		Guest: r.Guest,
	}
}

// Artifacts are the files written for one request. All of them live in
// directories named after ID, so concurrent requests never share a path.
type Artifacts struct {
	ID             string
	BackgroundPath string // empty when no background was uploaded
	QRPath         string
	CardPath       string

	dirs []string
}

// Cleanup removes every directory created for this request.
func (a *Artifacts) Cleanup() error {
	var errs []error
	for _, d := range a.dirs {
		if err := os.RemoveAll(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

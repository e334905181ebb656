package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/youruser/invitecard/internal/guests"
	"github.com/youruser/invitecard/internal/invitation"
	"github.com/youruser/invitecard/internal/util"
)

type cardFlags struct {
	host, event, date, time, venue, guest, rsvpLink string

	background string
}

func (f *cardFlags) register(cmd *cobra.Command, withGuest bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.host, "host", "", "Host name")
	fl.StringVar(&f.event, "event", "", "Event name")
	fl.StringVar(&f.date, "date", "", "Event date")
	fl.StringVar(&f.time, "time", "", "Event time")
	fl.StringVar(&f.venue, "venue", "", "Venue")
	fl.StringVar(&f.rsvpLink, "rsvp-link", "", "RSVP link encoded in the QR code")
	fl.StringVar(&f.background, "background", "", "Optional background image (png, jpg, jpeg, gif)")
	required := []string{"host", "event", "date", "time", "venue", "rsvp-link"}
	if withGuest {
		fl.StringVar(&f.guest, "guest", "", "Guest name")
		required = append(required, "guest")
	}
	for _, name := range required {
		cobra.CheckErr(cmd.MarkFlagRequired(name))
	}
}

func (f cardFlags) request() invitation.Request {
	return invitation.Request{
		Host:     f.host,
		Event:    f.event,
		Date:     f.date,
		Time:     f.time,
		Venue:    f.venue,
		Guest:    f.guest,
		RSVPLink: f.rsvpLink,
	}
}

// renderTo renders req in a scratch directory and copies the card to out.
func renderTo(ctx context.Context, gen *invitation.Generator, req invitation.Request, backgroundPath, out string) error {
	if backgroundPath != "" {
		bg, err := os.Open(backgroundPath)
		if err != nil {
			return err
		}
		defer bg.Close()
		req.Background = &invitation.Background{Filename: filepath.Base(backgroundPath), Content: bg}
	}

	a, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	defer a.Cleanup()

	card, err := os.Open(a.CardPath)
	if err != nil {
		return err
	}
	defer card.Close()
	return util.WriteFile(out, card)
}

func scratchGenerator(configPath string) (*invitation.Generator, *slog.Logger, func(), error) {
	cfg, log, fonts, err := setup(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	scratch, err := os.MkdirTemp("", "invitecard-")
	if err != nil {
		return nil, nil, nil, err
	}
	gen := newGenerator(cfg, log, fonts, filepath.Join(scratch, "uploads"), filepath.Join(scratch, "static"))
	return gen, log, func() { os.RemoveAll(scratch) }, nil
}

func runRender(ctx context.Context, configPath string, f cardFlags, out string) error {
	gen, log, done, err := scratchGenerator(configPath)
	if err != nil {
		return err
	}
	defer done()

	if err := renderTo(ctx, gen, f.request(), f.background, out); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Info("invitation written", "path", out)
	return nil
}

func runBatch(ctx context.Context, configPath string, f cardFlags, guestsPath, outDir string) error {
	list, err := guests.LoadGuestList(guestsPath)
	if err != nil {
		return err
	}
	gen, log, done, err := scratchGenerator(configPath)
	if err != nil {
		return err
	}
	defer done()

	if err := util.EnsureDir(outDir); err != nil {
		return err
	}
	used := map[string]bool{}
	for _, g := range list {
		req := f.request()
		req.Guest = g.Name
		if g.RSVPLink != "" {
			req.RSVPLink = g.RSVPLink
		}

		out := filepath.Join(outDir, uniqueName(used, slug(g.Name))+".png")
		if err := renderTo(ctx, gen, req, f.background, out); err != nil {
			return fmt.Errorf("render card for %q: %w", g.Name, err)
		}
		log.Debug("invitation written", "guest", g.Name, "note", g.Note, "path", out)
	}
	log.Info("batch complete", "cards", len(list), "out_dir", outDir)
	return nil
}

// uniqueName returns base, or base-2, base-3, ... for the first candidate
// not yet in used, and marks it used.
func uniqueName(used map[string]bool, base string) string {
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	used[name] = true
	return name
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "guest"
	}
	return s
}

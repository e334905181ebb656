package invitation

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imagepkg "github.com/youruser/invitecard/internal/image"
	"github.com/youruser/invitecard/internal/upload"
)

func newTestGenerator(t *testing.T) (*Generator, Options) {
	t.Helper()
	root := t.TempDir()
	opts := Options{
		UploadDir:     filepath.Join(root, "uploads"),
		OutputDir:     filepath.Join(root, "static"),
		QRSize:        imagepkg.DefaultQRSize,
		QRLevel:       qrcode.Medium,
		TitleFontSize: 50,
		BodyFontSize:  30,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGenerator(opts, imagepkg.NewFontResolver(""), log), opts
}

func sampleRequest() Request {
	return Request{
		Host:     "Alice",
		Event:    "Birthday Bash",
		Date:     "2024-09-01",
		Time:     "18:00",
		Venue:    "Rooftop",
		Guest:    "Bob",
		RSVPLink: "https://rsvp.example/1",
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{G: 255, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestGenerate_NoBackground(t *testing.T) {
	g, opts := newTestGenerator(t)

	a, err := g.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Empty(t, a.BackgroundPath)
	assert.Equal(t, filepath.Join(opts.OutputDir, a.ID, QRFileName), a.QRPath)
	assert.Equal(t, filepath.Join(opts.OutputDir, a.ID, CardFileName), a.CardPath)
	assert.Equal(t, 0, countEntries(t, opts.UploadDir))

	card, err := imagepkg.LoadImage(a.CardPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), card.Bounds())
	assert.Equal(t, imagepkg.DefaultBackground, color.NRGBAModel.Convert(card.At(5, 5)))
}

func TestGenerate_WithBackground(t *testing.T) {
	g, opts := newTestGenerator(t)
	req := sampleRequest()
	req.Background = &Background{Filename: "../My Party.PNG", Content: bytes.NewReader(pngBytes(t, 200, 200))}

	a, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.UploadDir, a.ID, "My_Party.png"), a.BackgroundPath)
	assert.FileExists(t, a.BackgroundPath)

	card, err := imagepkg.LoadImage(a.CardPath)
	require.NoError(t, err)
	assert.Equal(t, 800, card.Bounds().Dx())
	assert.Equal(t, 600, card.Bounds().Dy())
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, color.NRGBAModel.Convert(card.At(5, 5)))
}

func TestGenerate_RejectsFileType(t *testing.T) {
	g, opts := newTestGenerator(t)
	req := sampleRequest()
	req.Background = &Background{Filename: "party.bmp", Content: strings.NewReader("BM")}

	a, err := g.Generate(context.Background(), req)
	require.ErrorIs(t, err, upload.ErrFileTypeNotAllowed)
	assert.Nil(t, a)
	assert.Equal(t, 0, countEntries(t, opts.UploadDir))
	assert.Equal(t, 0, countEntries(t, opts.OutputDir))
}

func TestGenerate_FailuresLeaveNothingBehind(t *testing.T) {
	t.Run("qr over capacity", func(t *testing.T) {
		g, opts := newTestGenerator(t)
		req := sampleRequest()
		req.RSVPLink = strings.Repeat("x", 4000)
		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 0, countEntries(t, opts.OutputDir))
	})
	t.Run("undecodable background", func(t *testing.T) {
		g, opts := newTestGenerator(t)
		req := sampleRequest()
		req.Background = &Background{Filename: "party.jpg", Content: strings.NewReader("not a jpeg")}
		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 0, countEntries(t, opts.UploadDir))
		assert.Equal(t, 0, countEntries(t, opts.OutputDir))
	})
	t.Run("cancelled", func(t *testing.T) {
		g, opts := newTestGenerator(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := g.Generate(ctx, sampleRequest())
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, countEntries(t, opts.OutputDir))
	})
	t.Run("empty rsvp link", func(t *testing.T) {
		g, _ := newTestGenerator(t)
		req := sampleRequest()
		req.RSVPLink = ""
		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
	})
}

func TestGenerate_ConcurrentRequestsAreIsolated(t *testing.T) {
	g, _ := newTestGenerator(t)

	const n = 8
	results := make([]*Artifacts, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := sampleRequest()
			req.Guest = strings.Repeat("G", i+1)
			results[i], errs[i] = g.Generate(context.Background(), req)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[results[i].CardPath], "card path reused")
		seen[results[i].CardPath] = true
		assert.FileExists(t, results[i].CardPath)
	}
}

func TestArtifacts_Cleanup(t *testing.T) {
	g, opts := newTestGenerator(t)
	req := sampleRequest()
	req.Background = &Background{Filename: "bg.png", Content: bytes.NewReader(pngBytes(t, 10, 10))}

	a, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, a.Cleanup())

	assert.NoFileExists(t, a.CardPath)
	assert.NoFileExists(t, a.BackgroundPath)
	assert.Equal(t, 0, countEntries(t, opts.UploadDir))
	assert.Equal(t, 0, countEntries(t, opts.OutputDir))
}

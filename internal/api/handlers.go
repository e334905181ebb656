package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	imagepkg "github.com/youruser/invitecard/internal/image"
	"github.com/youruser/invitecard/internal/invitation"
	"github.com/youruser/invitecard/internal/upload"
)

// Renderer produces invitation cards. *invitation.Generator implements it.
type Renderer interface {
	Generate(ctx context.Context, req invitation.Request) (*invitation.Artifacts, error)
}

// Handler serves the invitation endpoints.
type Handler struct {
	renderer       Renderer
	log            *slog.Logger
	maxUploadBytes int64
	keepArtifacts  bool
}

// NewHandler wires a Handler. Unless keepArtifacts is set, the files of each
// request are deleted once the response has been written.
func NewHandler(r Renderer, log *slog.Logger, maxUploadBytes int64, keepArtifacts bool) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{renderer: r, log: log, maxUploadBytes: maxUploadBytes, keepArtifacts: keepArtifacts}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) form(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"MaxUploadMB": h.maxUploadBytes >> 20})
}

// createInvitation handles the HTML form post and answers with the card as a
// download.
func (h *Handler) createInvitation(c *gin.Context) {
	var f invitationForm
	if err := c.ShouldBind(&f); err != nil {
		h.bindError(c, err)
		return
	}
	req := f.request()

	fh, err := c.FormFile("background")
	switch {
	case err == nil && fh.Filename != "":
		file, err := fh.Open()
		if err != nil {
			h.log.Error("open uploaded background", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()
		req.Background = &invitation.Background{Filename: fh.Filename, Content: file}
	case err == nil, errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.bindError(c, err)
		return
	}

	a, ok := h.render(c, req)
	if !ok {
		return
	}
	defer h.cleanup(a)
	c.FileAttachment(a.CardPath, invitation.CardFileName)
}

// createInvitationJSON accepts the same fields as a JSON body and answers
// with the PNG inline. JSON requests carry no background.
func (h *Handler) createInvitationJSON(c *gin.Context) {
	var f invitationForm
	if err := c.ShouldBindJSON(&f); err != nil {
		h.bindError(c, err)
		return
	}
	a, ok := h.render(c, f.request())
	if !ok {
		return
	}
	defer h.cleanup(a)
	c.File(a.CardPath)
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text parameter is required"})
		return
	}
	size := imagepkg.DefaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 2048 {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, imagepkg.ParseRecoveryLevel(c.Query("level")), size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handler) render(c *gin.Context, req invitation.Request) (*invitation.Artifacts, bool) {
	a, err := h.renderer.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, upload.ErrFileTypeNotAllowed) {
			c.String(http.StatusUnsupportedMediaType, upload.RejectionMessage)
			return nil, false
		}
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return nil, false
		}
		h.log.Error("render invitation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate invitation"})
		return nil, false
	}
	c.Set(requestIDKey, a.ID)
	return a, true
}

func (h *Handler) cleanup(a *invitation.Artifacts) {
	if h.keepArtifacts {
		return
	}
	if err := a.Cleanup(); err != nil {
		h.log.Warn("remove artifacts", "request_id", a.ID, "error", err)
	}
}

func (h *Handler) bindError(c *gin.Context, err error) {
	if fields, ok := fieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields", "fields": fields})
		return
	}
	if tooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

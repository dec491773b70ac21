package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"modpanel/apperrors"
	"modpanel/forms"
	"modpanel/metrics"
	"modpanel/middleware"
	"modpanel/models"
	"modpanel/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure uploads and time handling for the ban handlers.
type Options struct {
	MediaRoot      string
	MaxUploadBytes int64
	Location       *time.Location
}

type BanHandler struct {
	base
	mediaRoot string
	maxUpload int64
	loc       *time.Location
	now       func() time.Time
	renderPDF func(io.Writer, *report.Report) error
}

func NewBanHandler(d Deps, opts Options) *BanHandler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &BanHandler{
		base:      newBase(d),
		mediaRoot: opts.MediaRoot,
		maxUpload: opts.MaxUploadBytes,
		loc:       loc,
		now:       time.Now,
		renderPDF: report.Render,
	}
}

type banFormData struct {
	Form   forms.BanForm
	Errors forms.Errors
}

type searchData struct {
	Query   string
	Results []models.UserBanSummary
}

type profileData struct {
	Username string
	Bans     []models.Ban
	Total    int
	Active   int
}

func (h *BanHandler) Add(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, "ban_form", h.page(r, "Nuevo baneo", channel, banFormData{}))
		return
	}

	// Leave headroom for the text fields around the image.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	up, err := readBanUpload(r, h.maxUpload)
	form := forms.ParseBanForm(up.values)
	if err != nil {
		errs := forms.Errors{}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errs.Add("image", fmt.Sprintf("La imagen supera el máximo de %d MB.", h.maxUpload>>20))
		} else {
			h.logger.Info("unreadable ban form", zap.Error(err))
			errs.Add("__all__", "No se pudo leer el formulario. Revisa los datos e inténtalo de nuevo.")
		}
		h.render(w, "ban_form", h.page(r, "Nuevo baneo", channel, banFormData{Form: form, Errors: errs}))
		return
	}
	form.ImageName = up.imageName
	form.ImageSize = up.imageSize

	if errs := form.Validate(h.loc, h.maxUpload); !errs.Valid() {
		h.render(w, "ban_form", h.page(r, "Nuevo baneo", channel, banFormData{Form: form, Errors: errs}))
		return
	}

	var image string
	if up.imageName != "" {
		image, err = h.saveImage(&up.image, up.imageName)
		if err != nil {
			writeError(w, h.logger, apperrors.NewInternalError("No se pudo guardar la imagen", err))
			return
		}
	}

	ban, err := h.store.CreateBan(form.Request(channel.ID, middleware.GetUserID(r), image))
	if err != nil {
		if image != "" {
			os.Remove(filepath.Join(h.mediaRoot, filepath.FromSlash(image)))
		}
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordCreated(metrics.EntityBan)
	h.logger.Info("ban created",
		zap.Int64("ban_id", ban.ID),
		zap.Int64("channel_id", channel.ID),
		zap.String("username", ban.Username),
	)

	http.Redirect(w, r, "/", http.StatusFound)
}

// saveImage stores the evidence under baneos/YYYY/MM/DD and returns the
// slash-separated path relative to the media root.
func (h *BanHandler) saveImage(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	rel := path.Join("baneos", h.now().Format("2006/01/02"), uuid.NewString()+ext)
	dst := filepath.Join(h.mediaRoot, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}
	return rel, nil
}

func (h *BanHandler) Search(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		h.renderNoChannels(w, r)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	bans, err := h.store.SearchBans(channel.ID, query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render(w, "search", h.page(r, "Buscar", channel, searchData{
		Query:   query,
		Results: models.SummarizeBans(bans),
	}))
}

func (h *BanHandler) Profile(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		h.renderNoChannels(w, r)
		return
	}

	username := r.PathValue("username")
	bans, err := h.store.ListBansForUser(channel.ID, username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	total, active := models.BanCounts(bans)
	h.render(w, "profile", h.page(r, username, channel, profileData{
		Username: username,
		Bans:     bans,
		Total:    total,
		Active:   active,
	}))
}

func (h *BanHandler) Report(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		writeError(w, h.logger, apperrors.NewInvalidInputError("No hay un canal activo seleccionado."))
		return
	}

	username := r.PathValue("username")
	bans, err := h.store.ListBansForUser(channel.ID, username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	rep, err := report.Build(channel, username, bans, h.now().In(h.loc))
	if errors.Is(err, report.ErrNoRecords) {
		h.metrics.RecordReport("empty")
		writeError(w, h.logger, apperrors.NewNotFoundError(
			fmt.Sprintf("No hay baneos registrados para %s en el canal %s.", username, channel.Name)))
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderPDF(&buf, rep); err != nil {
		h.metrics.RecordReport("error")
		writeError(w, h.logger, apperrors.NewInternalError("Error al generar el PDF: "+err.Error(), err))
		return
	}
	h.metrics.RecordReport("ok")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// Deactivate closes the selected bans of the active channel by hand.
func (h *BanHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	var ids []int64
	for _, raw := range r.PostForm["ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	n, err := h.store.DeactivateBans(channel.ID, ids)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordDeactivated(n)
	h.logger.Info("bans deactivated", zap.Int64("channel_id", channel.ID), zap.Int64("count", n))

	http.Redirect(w, r, "/", http.StatusFound)
}

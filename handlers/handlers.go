package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"modpanel/apperrors"
	"modpanel/channelctx"
	"modpanel/metrics"
	"modpanel/middleware"
	"modpanel/models"
	"modpanel/store"
	"modpanel/templates"

	"go.uber.org/zap"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store    *store.Store
	Resolver *channelctx.Resolver
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

type base struct {
	store    *store.Store
	resolver *channelctx.Resolver
	logger   *zap.Logger
	metrics  *metrics.Collector
}

func newBase(d Deps) base {
	return base{store: d.Store, resolver: d.Resolver, logger: d.Logger, metrics: d.Metrics}
}

func session(r *http.Request) *models.Session {
	if sess := middleware.GetSession(r); sess != nil {
		return sess
	}
	return &models.Session{}
}

// channel resolves the request's active channel. A nil channel with a nil
// error means no active channel exists.
func (b *base) channel(r *http.Request) (*models.Channel, error) {
	channel, err := b.resolver.Resolve(r.Context(), session(r))
	if errors.Is(err, channelctx.ErrNoChannel) {
		return nil, nil
	}
	return channel, err
}

func (b *base) page(r *http.Request, title string, channel *models.Channel, data interface{}) templates.Page {
	channels, err := b.store.ListActiveChannels()
	if err != nil {
		b.logger.Warn("failed to list channels", zap.Error(err))
	}
	page := templates.Page{
		Title:    title,
		Channel:  channel,
		Channels: channels,
		Path:     r.URL.RequestURI(),
		Data:     data,
	}
	if userID := middleware.GetUserID(r); userID != "" {
		page.LoggedIn = true
		user, err := b.store.GetUserByID(userID)
		if err != nil {
			b.logger.Warn("failed to load user", zap.String("user_id", userID), zap.Error(err))
		} else {
			page.UserName = user.DisplayName
		}
	}
	return page
}

func (b *base) render(w http.ResponseWriter, name string, page templates.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Render(w, name, page); err != nil {
		b.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (b *base) renderNoChannels(w http.ResponseWriter, r *http.Request) {
	b.render(w, "no_channels", b.page(r, "Sin canales", nil, nil))
}

// writeError maps err to a status and a plain-text message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperrors.StatusCode(err)
	message := "Error interno del servidor"
	if appErr := apperrors.GetAppError(err); appErr != nil {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	http.Error(w, message, status)
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

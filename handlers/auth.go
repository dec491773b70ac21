package handlers

import (
	"errors"
	"net/http"

	"modpanel/forms"
	"modpanel/middleware"
	"modpanel/store"

	"go.uber.org/zap"
)

const invalidCredentials = "Usuario o contraseña incorrectos."

type AuthHandler struct {
	base
	sessions *middleware.Sessions
}

func NewAuthHandler(d Deps, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{base: newBase(d), sessions: sessions}
}

type loginData struct {
	Form   forms.LoginForm
	Errors forms.Errors
	Next   string
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderLogin(w, r, loginData{Next: r.URL.Query().Get("next")})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := forms.ParseLoginForm(r.PostForm)
	next := r.PostForm.Get("next")

	if errs := form.Validate(); !errs.Valid() {
		h.renderLogin(w, r, loginData{Form: form, Errors: errs, Next: next})
		return
	}

	user, err := h.store.GetUserByUsername(form.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, h.logger, err)
		return
	}
	if user == nil || !h.store.ValidatePassword(user, form.Password) {
		h.logger.Info("login rejected", zap.String("username", form.Username))
		form.Password = ""
		h.renderLogin(w, r, loginData{Form: form, Errors: forms.Errors{"__all__": invalidCredentials}, Next: next})
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("user logged in", zap.String("user_id", user.ID))

	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data loginData) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.render(w, "login", h.page(r, "Iniciar sesión", channel, data))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"modpanel/channelctx"
	"modpanel/metrics"
	"modpanel/middleware"
	"modpanel/models"
	"modpanel/report"
	"modpanel/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	t         *testing.T
	store     *store.Store
	app       *App
	handler   http.Handler
	mediaRoot string
	cookie    *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	s, err := store.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := zap.NewNop()
	sessions := middleware.NewSessions(s, "test-secret", time.Hour, false, logger)
	deps := Deps{
		Store:    s,
		Resolver: channelctx.NewResolver(s, sessions),
		Logger:   logger,
		Metrics:  metrics.NewCollector(),
	}
	mediaRoot := filepath.Join(dir, "media")
	app := NewApp(deps, sessions, middleware.NewLoginLimiter(0.001, 5, false), Options{
		MediaRoot:      mediaRoot,
		MaxUploadBytes: 1 << 20,
		Location:       time.UTC,
	})

	return &testEnv{t: t, store: s, app: app, handler: app.Handler(), mediaRoot: mediaRoot}
}

// do sends req with the env's session cookie and keeps any cookie it gets back.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name != middleware.SessionCookieName {
			continue
		}
		if c.MaxAge < 0 {
			e.cookie = nil
		} else {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (e *testEnv) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) postMultipart(target string, values url.Values, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(e.t, mw.WriteField(k, v))
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(e.t, err)
		_, err = fw.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *testEnv) channel(name string, active bool) *models.Channel {
	e.t.Helper()
	c, err := e.store.CreateChannel(models.CreateChannelRequest{Name: name, Streamer: strings.ToLower(name) + "_tv", Active: active})
	require.NoError(e.t, err)
	return c
}

func (e *testEnv) login(username, password string) {
	e.t.Helper()
	_, err := e.store.CreateUser(username, username, password)
	require.NoError(e.t, err)
	rec := e.post("/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(e.t, http.StatusFound, rec.Code)
}

func TestNoChannel_PlaceholderAndNoWrites(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No hay canales activos")

	for _, target := range []string{"/agregar_nota/", "/agregar_comando/", "/agregar_baneo/"} {
		rec = env.post(target, url.Values{
			"body": {"nota"}, "name": {"!x"}, "meaning": {"x"},
			"username": {"troll"}, "reason": {"spam"},
		})
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}

	rec = env.get("/notas/")
	assert.Contains(t, rec.Body.String(), "No hay canales activos")

	// a channel created afterwards starts empty
	alpha := env.channel("Alpha", true)
	notes, err := env.store.ListNotes(alpha.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
	bans, err := env.store.SearchBans(alpha.ID, "troll")
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestReport_NoChannel(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/reporte/troll123/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_Scenario(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	rec := env.get("/reporte/troll123/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "troll123")

	rec = env.post("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.get("/reporte/troll123/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte_troll123_Alpha_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	assert.Equal(t, report.Summary{Total: 1, Active: 1}, summaryFor(t, env, alpha, "troll123"))

	rec = env.post("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam otra vez"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = env.get("/reporte/troll123/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.Summary{Total: 2, Active: 2, RepeatOffender: true}, summaryFor(t, env, alpha, "troll123"))
}

func TestReport_RenderFailure(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	require.Equal(t, http.StatusFound, env.post("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam"}}).Code)

	env.app.bans.renderPDF = func(io.Writer, *report.Report) error {
		return errors.New("font not found")
	}

	rec := env.get("/reporte/troll123/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error al generar el PDF")
	assert.Contains(t, rec.Body.String(), "font not found")
}

func TestSearchProfileReport_UsernameNeedsEscaping(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	require.Equal(t, http.StatusFound, env.post("/agregar_baneo/", url.Values{"username": {"who?"}, "reason": {"spam"}}).Code)

	rec := env.get("/buscar/?q=who")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/perfil/who%3F/"`)

	rec = env.get("/perfil/who%3F/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spam")
	assert.Contains(t, rec.Body.String(), `href="/reporte/who%3F/"`)

	rec = env.get("/reporte/who%3F/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func summaryFor(t *testing.T, env *testEnv, channel *models.Channel, username string) report.Summary {
	t.Helper()
	bans, err := env.store.ListBansForUser(channel.ID, username)
	require.NoError(t, err)
	rep, err := report.Build(channel, username, bans, time.Now())
	require.NoError(t, err)
	return rep.Summary
}

func TestAddCommand_DuplicateRerendersForm(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	form := url.Values{"name": {"!rules"}, "meaning": {"Muestra las reglas"}, "min_level": {"MODS"}, "active": {"on"}}
	rec := env.post("/agregar_comando/", form)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.post("/agregar_comando/", form)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ya existe un comando")

	commands, err := env.store.ListCommands(alpha.ID, false)
	require.NoError(t, err)
	assert.Len(t, commands, 1)

	rec = env.get("/")
	assert.Contains(t, rec.Body.String(), "!rules")
	assert.Contains(t, rec.Body.String(), "Mods")
}

func TestAddCommand_SameNameOtherChannel(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	beta := env.channel("Beta", true)

	form := url.Values{"name": {"!rules"}, "meaning": {"x"}, "min_level": {"EVERYONE"}}
	require.Equal(t, http.StatusFound, env.post("/agregar_comando/", form).Code)

	require.Equal(t, http.StatusFound, env.get("/cambiar_canal/"+strconv.FormatInt(beta.ID, 10)+"/").Code)
	assert.Equal(t, http.StatusFound, env.post("/agregar_comando/", form).Code)
}

func TestAddNote(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	rec := env.get("/agregar_nota/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.post("/agregar_nota/", url.Values{"type": {"RULE"}, "title": {"Sin spoilers"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Este campo es obligatorio.")

	rec = env.post("/agregar_nota/", url.Values{"type": {"RULE"}, "title": {"Sin spoilers"}, "body": {"Nada de spoilers del juego"}, "important": {"on"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notas/", rec.Header().Get("Location"))

	notes, err := env.store.ListNotes(alpha.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NoteRule, notes[0].Type)
	assert.True(t, notes[0].Important)
	assert.Empty(t, notes[0].UserID)

	rec = env.get("/notas/")
	assert.Contains(t, rec.Body.String(), "Sin spoilers")
	assert.Contains(t, rec.Body.String(), "Regla")
}

func TestAddNote_AttributedWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)
	env.login("mod1", "secreto1")

	rec := env.post("/agregar_nota/", url.Values{"type": {"GENERAL"}, "body": {"hola"}})
	require.Equal(t, http.StatusFound, rec.Code)

	notes, err := env.store.ListNotes(alpha.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "mod1", notes[0].Author)
}

func TestSwitchChannel(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	beta := env.channel("Beta", true)
	hidden := env.channel("Hidden", false)

	rec := env.get("/")
	assert.Contains(t, rec.Body.String(), "<h1>Alpha</h1>")

	rec = env.get("/cambiar_canal/" + strconv.FormatInt(beta.ID, 10) + "/?next=/notas/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notas/", rec.Header().Get("Location"))

	rec = env.get("/")
	assert.Contains(t, rec.Body.String(), "<h1>Beta</h1>")

	assert.Equal(t, http.StatusNotFound, env.get("/cambiar_canal/999/").Code)
	assert.Equal(t, http.StatusNotFound, env.get("/cambiar_canal/"+strconv.FormatInt(hidden.ID, 10)+"/").Code)
	assert.Equal(t, http.StatusNotFound, env.get("/cambiar_canal/abc/").Code)

	rec = env.get("/")
	assert.Contains(t, rec.Body.String(), "<h1>Beta</h1>", "failed switch keeps the selection")
}

func TestSwitchChannel_UnsafeNext(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	for _, next := range []string{"//evil.example", "https://evil.example/", "notas/", `/\evil.example`} {
		rec := env.get("/cambiar_canal/" + strconv.FormatInt(alpha.ID, 10) + "/?next=" + url.QueryEscape(next))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"), next)
	}
}

func TestAddBan_WithImage(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	rec := env.postMultipart("/agregar_baneo/", url.Values{
		"username": {"troll123"},
		"reason":   {"spam"},
		"unban_at": {"2099-01-01T10:00"},
		"notes":    {"reincide cada semana"},
	}, "image", "captura.PNG", []byte("\x89PNG fake"))
	require.Equal(t, http.StatusFound, rec.Code)

	bans, err := env.store.ListActiveBans(alpha.ID)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	ban := bans[0]
	assert.Equal(t, "reincide cada semana", ban.Notes)
	require.NotNil(t, ban.UnbanAt)
	assert.Equal(t, time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC), ban.UnbanAt.UTC())
	assert.True(t, strings.HasPrefix(ban.Image, "baneos/"))
	assert.True(t, strings.HasSuffix(ban.Image, ".png"))

	data, err := os.ReadFile(filepath.Join(env.mediaRoot, filepath.FromSlash(ban.Image)))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), data)

	rec = env.get("/media/" + ban.Image)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestAddBan_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	rec := env.postMultipart("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam"}},
		"image", "evidence.gif", []byte("GIF89a"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Formato no permitido")

	rec = env.post("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam"}, "unban_at": {"mañana"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fecha y hora")

	rec = env.post("/agregar_baneo/", url.Values{"reason": {"spam"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Este campo es obligatorio.")

	bans, err := env.store.SearchBans(alpha.ID, "troll")
	require.NoError(t, err)
	assert.Empty(t, bans)

	entries, err := os.ReadDir(env.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads are not stored")
}

func TestAddBan_UnreadableFormKeepsFields(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	body := "--xyz\r\n" +
		"Content-Disposition: form-data; name=\"username\"\r\n\r\ntroll123\r\n" +
		"--xyz\r\n" +
		"Content-Disposition: form-data; name=\"reason\"\r\n\r\nspam sin cierre"
	req := httptest.NewRequest(http.MethodPost, "/agregar_baneo/", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	rec := env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No se pudo leer el formulario")
	assert.NotContains(t, rec.Body.String(), "supera el máximo")
	assert.Contains(t, rec.Body.String(), `value="troll123"`)

	bans, err := env.store.SearchBans(alpha.ID, "troll")
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestAddBan_OversizedImageKeepsFields(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)

	rec := env.postMultipart("/agregar_baneo/", url.Values{"username": {"troll123"}, "reason": {"spam"}},
		"image", "captura.png", bytes.Repeat([]byte("x"), 1<<20+1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "La imagen supera el máximo de 1 MB.")
	assert.Contains(t, rec.Body.String(), `value="troll123"`)

	bans, err := env.store.SearchBans(alpha.ID, "troll")
	require.NoError(t, err)
	assert.Empty(t, bans)
	entries, err := os.ReadDir(env.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads are not stored")
}

func TestAddBan_BodyOverLimit(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("username", "troll123"))
	require.NoError(t, mw.WriteField("reason", "spam"))
	pad := strings.Repeat("x", 60<<10)
	for i := 0; i < 40; i++ {
		require.NoError(t, mw.WriteField("notes", pad))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/agregar_baneo/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supera el máximo")
	assert.Contains(t, rec.Body.String(), `value="troll123"`)
}

func TestSearchAndProfile(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)

	for _, f := range []url.Values{
		{"username": {"troll123"}, "reason": {"spam"}},
		{"username": {"troll123"}, "reason": {"links"}},
		{"username": {"TrollKing"}, "reason": {"insultos"}},
		{"username": {"viewer"}, "reason": {"flood"}},
	} {
		require.Equal(t, http.StatusFound, env.post("/agregar_baneo/", f).Code)
	}

	rec := env.get("/buscar/?q=TROLL")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "/perfil/troll123/")
	assert.Contains(t, body, "/perfil/TrollKing/")
	assert.NotContains(t, body, "/perfil/viewer/")

	rec = env.get("/buscar/?q=")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/perfil/")

	rec = env.get("/perfil/troll123/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total de baneos: 2")
	assert.Contains(t, rec.Body.String(), "/reporte/troll123/")

	rec = env.get("/perfil/nadie/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total de baneos: 0")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	_, err := env.store.CreateUser("mod1", "Mod Uno", "secreto1")
	require.NoError(t, err)

	rec := env.get("/canales/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login/?next=%2Fcanales%2F", rec.Header().Get("Location"))

	rec = env.post("/login/", url.Values{"username": {"mod1"}, "password": {"incorrecta"}, "next": {"/canales/"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrectos")

	rec = env.post("/login/", url.Values{"username": {"mod1"}, "password": {"secreto1"}, "next": {"/canales/"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/canales/", rec.Header().Get("Location"))

	rec = env.get("/canales/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alpha")

	rec = env.get("/logout/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusFound, env.get("/canales/").Code)
}

func TestLogin_KeepsActiveChannel(t *testing.T) {
	env := newTestEnv(t)
	env.channel("Alpha", true)
	beta := env.channel("Beta", true)

	require.Equal(t, http.StatusFound, env.get("/cambiar_canal/"+strconv.FormatInt(beta.ID, 10)+"/").Code)
	env.login("mod1", "secreto1")

	rec := env.get("/")
	assert.Contains(t, rec.Body.String(), "<h1>Beta</h1>")
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		rec := env.post("/login/", url.Values{"username": {"x"}, "password": {"y"}})
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}
	rec := env.post("/login/", url.Values{"username": {"x"}, "password": {"y"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, env.get("/login/").Code)
}

func TestChannelsAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.login("admin", "secreto1")
	assert.Contains(t, env.get("/canales/").Body.String(), "Salir (admin)")

	rec := env.post("/canales/", url.Values{"name": {"Gamma"}, "streamer": {"gamma_tv"}, "color": {"#00FF00"}, "active": {"on"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = env.post("/canales/", url.Values{"name": {"Gamma"}, "streamer": {"otro"}, "color": {"#00FF00"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ya existe un canal")

	rec = env.post("/canales/", url.Values{"name": {"Delta"}, "streamer": {"d"}, "color": {"verde"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "color hexadecimal")

	gamma, err := env.store.FirstActiveChannel()
	require.NoError(t, err)
	assert.Equal(t, "Gamma", gamma.Name)

	require.Equal(t, http.StatusFound, env.post("/agregar_comando/", url.Values{"name": {"!a"}, "meaning": {"a"}, "min_level": {"EVERYONE"}}).Code)
	require.Equal(t, http.StatusFound, env.post("/agregar_baneo/", url.Values{"username": {"u"}, "reason": {"r"}}).Code)

	id := strconv.FormatInt(gamma.ID, 10)
	require.Equal(t, http.StatusFound, env.post("/canales/"+id+"/recalcular/", nil).Code)
	gamma, err = env.store.GetChannel(gamma.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gamma.TotalCommands)
	assert.Equal(t, 1, gamma.TotalActiveBans)

	require.Equal(t, http.StatusFound, env.post("/canales/"+id+"/eliminar/", nil).Code)
	_, err = env.store.GetChannel(gamma.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, env.post("/canales/"+id+"/recalcular/", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.post("/canales/"+id+"/eliminar/", nil).Code)
}

func TestToggleChannel(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)
	beta := env.channel("Beta", true)
	betaID := strconv.FormatInt(beta.ID, 10)

	rec := env.post("/canales/"+betaID+"/activar/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login/")

	env.login("admin", "secreto1")
	require.Equal(t, http.StatusFound, env.get("/cambiar_canal/"+betaID+"/").Code)
	assert.Contains(t, env.get("/").Body.String(), "<h1>Beta</h1>")

	rec = env.post("/canales/"+betaID+"/activar/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/canales/", rec.Header().Get("Location"))

	beta, err := env.store.GetChannel(beta.ID)
	require.NoError(t, err)
	assert.False(t, beta.Active)

	body := env.get("/").Body.String()
	assert.Contains(t, body, "<h1>Alpha</h1>", "resolver falls back to an active channel")
	assert.NotContains(t, body, "/cambiar_canal/"+betaID+"/")
	assert.Contains(t, body, "/cambiar_canal/"+strconv.FormatInt(alpha.ID, 10)+"/")
	assert.Equal(t, http.StatusNotFound, env.get("/cambiar_canal/"+betaID+"/").Code)

	require.Equal(t, http.StatusFound, env.post("/canales/"+betaID+"/activar/", nil).Code)
	assert.Contains(t, env.get("/").Body.String(), "/cambiar_canal/"+betaID+"/")

	assert.Equal(t, http.StatusNotFound, env.post("/canales/999/activar/", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.post("/canales/x/activar/", nil).Code)
}

func TestDeactivateBans(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.channel("Alpha", true)
	beta := env.channel("Beta", true)

	keep, err := env.store.CreateBan(models.CreateBanRequest{ChannelID: alpha.ID, Username: "a", Reason: "r"})
	require.NoError(t, err)
	lift, err := env.store.CreateBan(models.CreateBanRequest{ChannelID: alpha.ID, Username: "b", Reason: "r"})
	require.NoError(t, err)
	other, err := env.store.CreateBan(models.CreateBanRequest{ChannelID: beta.ID, Username: "c", Reason: "r"})
	require.NoError(t, err)

	ids := url.Values{"ids": {strconv.FormatInt(lift.ID, 10), strconv.FormatInt(other.ID, 10), "x"}}

	rec := env.post("/baneos/desactivar/", ids)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login/")

	env.login("mod1", "secreto1")
	rec = env.post("/baneos/desactivar/", ids)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	active, err := env.store.ListActiveBans(alpha.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)

	stillActive, err := env.store.GetBan(other.ID)
	require.NoError(t, err)
	assert.True(t, stillActive.Active, "bans of other channels are untouched")
}

func TestMedia_NoTraversal(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.get("/media/baneos/missing.png").Code)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0644))
	files := NewFileHandler(filepath.Join(dir, "media"))

	req := httptest.NewRequest(http.MethodGet, "/media/x", nil)
	req.SetPathValue("path", "../secret.txt")
	rec := httptest.NewRecorder()
	files.Serve(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	env.get("/")
	rec = env.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "modpanel_http_requests_total")
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/notas/":           "/notas/",
		"/buscar/?q=x":      "/buscar/?q=x",
		"/perfil/troll123/": "/perfil/troll123/",
		"//evil.example":    "/",
		"http://evil":       "/",
		"notas/":            "/",
		`/\evil.example`:    "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}

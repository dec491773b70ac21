package handlers

import (
	"net/http"

	"modpanel/middleware"
)

// App wires every handler onto one ServeMux.
type App struct {
	deps     Deps
	sessions *middleware.Sessions
	limiter  *middleware.LoginLimiter

	home     *HomeHandler
	notes    *NoteHandler
	commands *CommandHandler
	bans     *BanHandler
	channels *ChannelHandler
	auth     *AuthHandler
	files    *FileHandler
}

func NewApp(d Deps, sessions *middleware.Sessions, limiter *middleware.LoginLimiter, opts Options) *App {
	return &App{
		deps:     d,
		sessions: sessions,
		limiter:  limiter,
		home:     NewHomeHandler(d),
		notes:    NewNoteHandler(d),
		commands: NewCommandHandler(d),
		bans:     NewBanHandler(d, opts),
		channels: NewChannelHandler(d),
		auth:     NewAuthHandler(d, sessions),
		files:    NewFileHandler(opts.MediaRoot),
	}
}

func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	withAuth := middleware.RequireAuth

	mux.HandleFunc("GET /health", Health(a.deps.Store, a.deps.Logger))
	mux.Handle("GET /metrics", a.deps.Metrics.Handler())
	mux.HandleFunc("GET /media/{path...}", a.files.Serve)

	// Panel
	mux.HandleFunc("GET /{$}", a.home.Index)
	mux.HandleFunc("GET /notas/{$}", a.notes.List)
	mux.HandleFunc("GET /agregar_nota/{$}", a.notes.Add)
	mux.HandleFunc("POST /agregar_nota/{$}", a.notes.Add)
	mux.HandleFunc("GET /agregar_comando/{$}", a.commands.Add)
	mux.HandleFunc("POST /agregar_comando/{$}", a.commands.Add)
	mux.HandleFunc("GET /agregar_baneo/{$}", a.bans.Add)
	mux.HandleFunc("POST /agregar_baneo/{$}", a.bans.Add)
	mux.HandleFunc("GET /cambiar_canal/{channel_id}/{$}", a.channels.Switch)
	mux.HandleFunc("GET /buscar/{$}", a.bans.Search)
	mux.HandleFunc("GET /perfil/{username}/{$}", a.bans.Profile)
	mux.HandleFunc("GET /reporte/{username}/{$}", a.bans.Report)

	// Auth
	mux.HandleFunc("GET /login/{$}", a.auth.Login)
	mux.HandleFunc("POST /login/{$}", a.limiter.Limit(a.auth.Login))
	mux.HandleFunc("GET /logout/{$}", a.auth.Logout)

	// Administration
	mux.HandleFunc("GET /canales/{$}", withAuth(a.channels.List))
	mux.HandleFunc("POST /canales/{$}", withAuth(a.channels.Create))
	mux.HandleFunc("POST /canales/{channel_id}/activar/{$}", withAuth(a.channels.Toggle))
	mux.HandleFunc("POST /canales/{channel_id}/recalcular/{$}", withAuth(a.channels.Recompute))
	mux.HandleFunc("POST /canales/{channel_id}/eliminar/{$}", withAuth(a.channels.Delete))
	mux.HandleFunc("POST /baneos/desactivar/{$}", withAuth(a.bans.Deactivate))

	return mux
}

// Handler returns the routes wrapped in the middleware chain. The request
// logger sits innermost so it sees the pattern the mux matched.
func (a *App) Handler() http.Handler {
	logger := a.deps.Logger
	var h http.Handler = a.Routes()
	h = middleware.RequestLogger(logger, a.deps.Metrics)(h)
	h = a.sessions.Middleware(h)
	h = middleware.Recover(logger)(h)
	return h
}

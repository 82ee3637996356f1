package cmd

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edulane/edulane-go/pkg/config"
	"github.com/edulane/edulane-go/pkg/guard"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a local dashboard gated by the session layer",
	Long: `Serve a small local web dashboard whose views are protected by the
route guard: /dashboard/student requires the student role,
/dashboard/educator the educator role, and unauthenticated visitors are
redirected to /login.

When a configuration file is in use it is watched for changes and the
guard's redirect targets are reloaded without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:4280", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

// swappableHandler lets the config watcher replace the routing tree
// atomically while the server keeps running.
type swappableHandler struct {
	current atomic.Value // http.Handler
}

func (h *swappableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().(http.Handler).ServeHTTP(w, r)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	handler := &swappableHandler{}
	handler.current.Store(buildMux(a, a.cfg))

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, a.cfg, func(cfg *config.Config) {
			handler.current.Store(buildMux(a, cfg))
		}, a.logger)
		if err != nil {
			return err
		}
		go func() { _ = watcher.Watch(ctx) }()
	}

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("dashboard listening", "addr", serveAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	return nil
}

func buildMux(a *app, cfg *config.Config) http.Handler {
	m := guard.NewMiddleware(a.store, a.rehydrator, guard.MiddlewareConfig{
		LoginPath:        cfg.Guard.LoginPath,
		UnauthorizedPath: cfg.Guard.UnauthorizedPath,
	}, a.logger.WithModule("guard"))

	mux := http.NewServeMux()

	mux.Handle("/dashboard/student", m.Protect([]guard.Role{guard.RoleStudent}, dashboardPage(a, "Student Dashboard")))
	mux.Handle("/dashboard/educator", m.Protect([]guard.Role{guard.RoleEducator}, dashboardPage(a, "Educator Dashboard")))
	mux.Handle("/dashboard", m.Protect(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := "/dashboard/student"
		if snap := a.store.Snapshot(); snap.User != nil && snap.User.IsEducator {
			target = "/dashboard/educator"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})))

	mux.HandleFunc(cfg.Guard.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		handleLogin(a, w, r)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		a.store.Logout()
		http.Redirect(w, r, cfg.Guard.LoginPath, http.StatusSeeOther)
	})
	mux.HandleFunc(cfg.Guard.UnauthorizedPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<h1>Unauthorized</h1><p>Your role does not grant access to this page.</p><a href="/dashboard">Back</a>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	return mux
}

func dashboardPage(a *app, title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := a.store.Snapshot()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<h1>%s</h1><p>Signed in as %s &lt;%s&gt;</p><a href="/logout">Log out</a>`,
			html.EscapeString(title),
			html.EscapeString(snap.User.Username),
			html.EscapeString(snap.User.Email))
	})
}

func handleLogin(a *app, w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			username := r.PostForm.Get("username")
			password := r.PostForm.Get("password")
			if _, err := a.client.Login(r.Context(), username, password); err == nil {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
		}
	}

	errMsg := ""
	if msg := a.store.Snapshot().Error; msg != "" {
		errMsg = fmt.Sprintf(`<p style="color:red">%s</p>`, html.EscapeString(msg))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<h1>Login</h1>%s
<form method="post">
  <input name="username" placeholder="Username">
  <input name="password" type="password" placeholder="Password">
  <button type="submit">Log in</button>
</form>`, errMsg)
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	accountsfeature "github.com/loomhub/loomhub/internal/app/features/accounts"
	assignmentsfeature "github.com/loomhub/loomhub/internal/app/features/assignments"
	fabricsfeature "github.com/loomhub/loomhub/internal/app/features/fabrics"
	healthfeature "github.com/loomhub/loomhub/internal/app/features/health"
	liveclientfeature "github.com/loomhub/loomhub/internal/app/features/liveclient"
	notificationsfeature "github.com/loomhub/loomhub/internal/app/features/notifications"
	requestsfeature "github.com/loomhub/loomhub/internal/app/features/requests"
	notificationstore "github.com/loomhub/loomhub/internal/app/store/notifications"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/app/system/tasks"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. LoomHub builds the JWT
// middleware, the live hub, and the notifier here, mounts the JSON API
// feature routers, starts the background sweep runner, and wraps the
// router in CORS.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	db := deps.MongoDatabase

	jwtMgr := auth.NewJWTManager(appCfg.JWTSecret, appCfg.JWTDuration)
	mw := auth.NewMiddleware(jwtMgr, logger)

	// One hub serves every feature; the notifier pairs its durable
	// writes with the hub's best-effort pushes.
	hub := live.NewHub(logger)
	notifier := notify.New(notificationstore.New(db), hub, logger)

	origins := splitOrigins(appCfg.AllowedOrigins)

	r := chi.NewRouter()

	// Global auth middleware: loads the JWT principal into context if
	// a valid credential is present. RequireSignedIn gates per route.
	r.Use(mw.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Accounts and session surface
	accountsHandler := accountsfeature.NewHandler(db, jwtMgr, notifier, logger, secure)
	r.Mount("/auth", accountsfeature.Routes(accountsHandler, mw))

	// Connection requests
	requestsHandler := requestsfeature.NewHandler(db, notifier, logger)
	r.Mount("/requests", requestsfeature.Routes(requestsHandler, mw))

	// Fabric postings, change ledger, worker assignment
	fabricsHandler := fabricsfeature.NewHandler(db, notifier, logger)
	r.Mount("/fabrics", fabricsfeature.Routes(fabricsHandler, mw))

	// Assignment status transitions
	assignmentsHandler := assignmentsfeature.NewHandler(db, notifier, logger)
	r.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler, mw))

	// Notification inbox
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, mw))

	// Live channel. The upgrade authenticates with the same JWT as
	// REST; origin policy mirrors the CORS allowlist.
	wsHandler := liveclientfeature.NewHandler(hub, jwtMgr, logger, originChecker(origins))
	r.Get("/ws", wsHandler.HandleWS)

	// Daily payment-due reminder sweep. The runner's goroutines live
	// for the process lifetime; Shutdown tears down their DB client.
	runner := tasks.NewRunner(logger, tasks.PaymentReminderJob(db, notifier, logger))
	runner.Start(context.Background())

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r), nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// originChecker allows same-origin upgrades (no Origin header) and any
// origin on the CORS allowlist. "*" disables the check.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

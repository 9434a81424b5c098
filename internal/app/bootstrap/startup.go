// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Raw error text in 500 bodies only outside prod.
	httpjson.ExposeInternalErrors(coreCfg.Env != "prod")
	return nil
}

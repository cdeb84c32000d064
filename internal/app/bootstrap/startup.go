// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/contacthub/internal/app/resources"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates and sizes handler timeouts around the API timeout.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	n := timeouts.ConfigureFromEnv()
	timeouts.Cover(appCfg.APITimeout)
	logger.Info("handler timeouts",
		zap.Int("from_env", n),
		zap.Any("values", timeouts.Current()))

	viewdata.Init(appCfg.SiteName)
	return nil
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"

	"github.com/dalemusser/langis/internal/app/resources"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Promote the configured admin, if any. The user must already exist
	// (registered through the normal flow); promotion is idempotent.
	if email := strings.TrimSpace(appCfg.AdminEmail); email != "" {
		users := userstore.New(deps.LangISMongoDatabase)
		promoted, err := users.PromoteToAdmin(ctx, email)
		switch {
		case err != nil:
			logger.Warn("admin promotion skipped",
				zap.String("email", email),
				zap.Error(err))
		case !promoted:
			logger.Info("admin account not registered yet", zap.String("email", email))
		default:
			logger.Info("admin user ensured", zap.String("email", email))
		}
	}

	return nil
}

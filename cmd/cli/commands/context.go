package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/internal/config"
	"github.com/jakechorley/cooking-rota/pkg/core/services"
	"github.com/jakechorley/cooking-rota/pkg/lock"
	"github.com/jakechorley/cooking-rota/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database *postgres.DB
	// Redis is nil when the in-process lock is used
	Redis    *redis.Client
	Locker   lock.Locker
	Settings services.Settings
	Logger   *zap.Logger
	Ctx      context.Context
}

// resolveYear returns the --year flag value or the active year
func (app *AppContext) resolveYear(yearID string) (string, error) {
	if yearID != "" {
		return yearID, nil
	}
	id, err := services.ActiveYearID(app.Ctx, app.Database)
	if err != nil {
		return "", fmt.Errorf("no --year given and %w", err)
	}
	return id, nil
}

// printConflicts lists conflict messages under a heading
func printConflicts(conflicts []string) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Printf("⚠️  Konflikte (%d):\n", len(conflicts))
	for _, conflict := range conflicts {
		fmt.Printf("  • %s\n", conflict)
	}
	fmt.Println()
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

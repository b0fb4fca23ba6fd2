package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/gradeplan/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Planning  service.PlanningService
	Lifecycle service.LifecycleService
	Query     service.QueryService
	Seed      service.SeedService

	// Now resolves relative dates and overdue status. Defaults to the wall clock.
	Now func() time.Time

	Globals GlobalOptions
}

// GlobalOptions are read before the command tree is built, since they
// decide how the services are wired.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

// BindGlobalFlags registers the global flags on fs.
func BindGlobalFlags(fs *pflag.FlagSet, o *GlobalOptions) {
	fs.StringVar(&o.ConfigPath, "config", "", "Config file, YAML or JSON (env GRADEPLAN_CONFIG)")
	fs.StringVar(&o.LogLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

// NewRootCmd creates the top-level "gradeplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gradeplan",
		Short:         "Daily work planner for card grading orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	BindGlobalFlags(root.PersistentFlags(), &app.Globals)

	root.AddCommand(
		newGenerateCmd(app),
		newPlanningCmd(app),
		newSeedCmd(app),
	)
	return root
}

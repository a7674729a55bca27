package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/app"
	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/cache"
	"github.com/sprava/spravaterm/internal/feed"
	"github.com/sprava/spravaterm/internal/profile"
	"github.com/sprava/spravaterm/internal/refresh"
	"github.com/sprava/spravaterm/internal/session"
	"github.com/sprava/spravaterm/internal/transport"
	"github.com/sprava/spravaterm/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var ui *tui.App
	fxApp := fx.New(
		app.Module(app.Params{Profile: profileName}),
		fx.Provide(provideTUI),
		fx.Populate(&ui),
		// fx would otherwise write its wiring log to the terminal the TUI owns.
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	runErr := ui.Run()
	ui.Stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

func provideTUI(p app.Params, s *session.Session, client *api.Client, t *transport.Transport, r *refresh.Router, caches *cache.Caches, feeds *feed.Manager, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(tui.Deps{
		Session:   s,
		Client:    client,
		Transport: t,
		Router:    r,
		Caches:    caches,
		Feeds:     feeds,
		Bus:       b,
		Logger:    logger,
		Profile:   p.Profile,
	})
}

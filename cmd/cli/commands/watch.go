package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
)

const defaultRefreshInterval = time.Minute

// WatchCmd creates the watch command. It shows the planning and redraws it
// whenever another instance saves, and on every refresh so "today" stays right.
func WatchCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the planning and keep it up to date until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetDuration("refresh")
			if refresh <= 0 {
				refresh = defaultRefreshInterval
			}

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			updates := make(chan *model.Document, 1)
			g, ctx := errgroup.WithContext(app.Ctx)

			g.Go(func() error {
				return app.Repo.Subscribe(ctx, func(d *model.Document) {
					// Keep only the latest document
					select {
					case <-updates:
					default:
					}
					updates <- d
				})
			})

			g.Go(func() error {
				ticker := time.NewTicker(refresh)
				defer ticker.Stop()

				current := doc
				draw := func() {
					fmt.Fprintf(app.Out, "\n--- %s ---\n", time.Now().Format("15:04:05"))
					renderPlanning(app.Out, services.BuildPlanning(current, time.Now(), false))
				}
				draw()

				for {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case d := <-updates:
						app.Logger.Debug("Redrawing after external change")
						current = d
						draw()
					case <-ticker.C:
						draw()
					}
				}
			})

			err = g.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				app.Logger.Warn("Watch stopped", zap.Error(err))
			}
			return err
		},
	}

	cmd.Flags().Duration("refresh", defaultRefreshInterval, "Redraw interval")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/chat"
	"github.com/noah-isme/studentlink-portal/internal/store"
)

func newRoomsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse chat rooms",
	}
	cmd.AddCommand(newRoomsListCmd(app))
	return cmd
}

func newRoomsListCmd(app *App) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active chat rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			list := chat.NewRoomList(app.client, app.logger)
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}

			// Mirror the fresh snapshot into the local cache so the portal
			// can paint instantly next launch.
			if cache, err := store.Open(app.cfg.Cache.Path, app.logger); err == nil {
				defer cache.Close()
				if err := cache.UpsertRooms(cmd.Context(), list.Rooms()); err != nil {
					app.logger.Warn("room cache write failed", zap.Error(err))
				}
			}

			rooms := list.Filter(filter)
			if len(rooms) == 0 {
				fmt.Println("no rooms")
				return nil
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tROOM\tSTATUS\tUNREAD\tLAST ACTIVITY")
			for _, r := range rooms {
				last := "-"
				if r.LastActivityAt != nil {
					last = formatTime(*r.LastActivityAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.RoomName, r.Status, r.UnreadCount, last)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "substring match on concern subject, description, or room name")
	return cmd
}

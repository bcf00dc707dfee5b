package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/chat"
	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/store"
	"github.com/noah-isme/studentlink-portal/internal/tui"
)

// runPortal launches the interactive room list + chat screens. The default
// unauthorized hook writes to stderr, which the alt screen swallows; the
// portal returns to its login form on expiry instead, so the hook only logs.
func runPortal(app *App, initialRoom *models.ChatRoom) error {
	log := app.tuiLogger()
	app.client.SetUnauthorizedHook(func() {
		log.Warn("session expired, token cleared")
	})
	return tui.Run(tui.Deps{
		Config:      app.cfg,
		Logger:      log,
		Session:     app.session,
		Client:      app.client,
		Metrics:     app.metrics,
		InitialRoom: initialRoom,
	})
}

func newChatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a department about a concern",
	}
	cmd.AddCommand(newChatHistoryCmd(app))
	cmd.AddCommand(newChatSendCmd(app))
	cmd.AddCommand(newChatOpenCmd(app))
	return cmd
}

func newChatHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <room-id>",
		Short: "Print a room's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			userID := ""
			if u := app.session.User(); u != nil {
				userID = u.ID
			}
			tl := chat.NewTimeline(args[0], userID, app.client, app.logger)
			if err := tl.Load(cmd.Context(), 1, limit); err != nil {
				return err
			}

			entries := tl.Entries()
			if cache, err := store.Open(app.cfg.Cache.Path, app.logger); err == nil {
				defer cache.Close()
				msgs := make([]models.ChatMessage, len(entries))
				for i, e := range entries {
					msgs[i] = e.ChatMessage
				}
				if err := cache.UpsertMessages(cmd.Context(), msgs); err != nil {
					app.logger.Warn("message cache write failed", zap.Error(err))
				}
			}

			for i, e := range entries {
				if e.Type.IsBanner() {
					fmt.Printf("        -- %s --\n", e.Message)
					continue
				}
				if chat.ShowAvatar(entries, i) {
					author := e.AuthorName
					if author == "" {
						author = e.AuthorID
					}
					fmt.Printf("\n%s  %s\n", author, formatTime(e.CreatedAt))
				}
				marker := " "
				if e.AuthorID == userID {
					switch e.Receipt() {
					case models.ReceiptRead:
						marker = "R"
					case models.ReceiptDelivered:
						marker = "D"
					default:
						marker = "S"
					}
				}
				fmt.Printf("  [%s] %s\n", marker, e.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "messages per page")
	return cmd
}

func newChatSendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "send <room-id> <message>",
		Short: "Send a message to a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			msg, err := app.client.SendChatMessage(cmd.Context(), args[0], models.SendMessageRequest{Message: args[1]})
			if err != nil {
				return err
			}
			fmt.Printf("sent %s at %s\n", msg.ID, formatTime(msg.CreatedAt))
			return nil
		},
	}
}

func newChatOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <concern-id>",
		Short: "Open the chat room for a concern in the portal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			room, err := app.client.GetOrCreateChatRoom(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return runPortal(app, room)
		},
	}
}

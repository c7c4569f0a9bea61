package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"eureka/internal/platform/logger"
	"eureka/pkg/realtime/client"
	"eureka/pkg/realtime/views"
	"eureka/pkg/realtime/wire"
)

func listenCmd(flags *globalFlags) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream new posts, comments and your notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			apiClient, creds, err := signedIn(flags)
			if err != nil {
				return err
			}
			wsURL, err := websocketURL(creds.Server, flags.server, path)
			if err != nil {
				return err
			}

			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			if flags.verbose {
				log = logger.NewWithWriter(cmd.ErrOrStderr(), "debug", "text")
			}
			bus := client.NewBus(log)
			l := &listener{out: cmd.OutOrStdout(), me: creds.User.ID}
			scope := bus.NewScope()
			defer scope.Close()
			client.On(scope, wire.EventNewPost, l.post, log)
			client.On(scope, wire.EventNewComment, l.comment, log)

			badge := views.NewNotificationBadge(bus, apiClient, creds.User.ID, log)
			defer badge.Close()
			if err := badge.Load(ctx); err != nil {
				return err
			}
			client.On(scope, wire.EventNewNotification, func(n wire.Notification) {
				if n.Recipient == l.me {
					l.printf("[notification] %s %s (%d unread)\n", n.Sender.Name, n.Content, badge.Unread())
				}
			}, log)

			tr := client.NewTransport(wsURL, apiClient, bus, log)
			tr.OnStateChange(func(s client.State) {
				fmt.Fprintf(cmd.ErrOrStderr(), "-- %s\n", s)
			})
			l.printf("Listening as %s, %d unread notifications. Ctrl-C to stop.\n", creds.User.Name, badge.Unread())

			err = tr.Run(ctx)
			switch {
			case errors.Is(err, client.ErrUnauthorized):
				return errors.New("session expired or revoked; run `eureka login` again")
			case errors.Is(err, context.Canceled):
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "/ws", "websocket path on the server")
	return cmd
}

type listener struct {
	out io.Writer
	me  string
}

func (l *listener) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}

func (l *listener) post(p wire.Post) {
	l.printf("[%s] %s (@%s): %s\n", p.Category, p.Author.Name, p.Author.Handle, p.Content)
}

func (l *listener) comment(ev wire.NewComment) {
	l.printf("[comment on %s] %s: %s\n", ev.PostID, ev.Comment.Author.Name, ev.Comment.Content)
}

// websocketURL maps the REST base URL onto the websocket endpoint.
func websocketURL(stored, fallback, path string) (string, error) {
	base := stored
	if base == "" {
		base = fallback
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

// Command eureka is a terminal client: it signs in, writes posts and comments
// and streams live events from the server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	server      string
	credentials string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "eureka",
		Short:         "Eureka terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.server, "server", envOr("EUREKA_URL", "http://localhost:8080"), "server base URL")
	root.PersistentFlags().StringVar(&flags.credentials, "credentials", defaultCredentialsPath(), "credential file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log transport activity to stderr")

	root.AddCommand(
		signupCmd(flags),
		loginCmd(flags),
		logoutCmd(flags),
		postCmd(flags),
		commentCmd(flags),
		likeCmd(flags),
		notificationsCmd(flags),
		listenCmd(flags),
	)
	return root
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".eureka-credentials.json"
	}
	return filepath.Join(dir, "eureka", "credentials.json")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"client-aley/internal/aley"
	"client-aley/internal/config"
	"client-aley/internal/feed"
	"client-aley/internal/friendship"
	"client-aley/internal/logger"
	"client-aley/internal/session"

	"github.com/spf13/cobra"
)

var (
	flagBaseURL string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aley",
	Short: "Command-line client for the Aley social network",
	Long: `aley talks to an Aley backend the same way the web client does:
it keeps your session locally, reads the feed, manages posts and
friendships, and works out friendship status even when the backend's
status endpoint is unreliable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logger.SetupDefault(os.Stderr)
		} else {
			logger.SetupDefault(io.Discard)
		}
	},
}

// app bundles the pieces every command needs. Commands build it lazily
// so config and the session database are only touched when used.
type app struct {
	cfg      config.Config
	store    *session.Store
	client   *aley.Client
	resolver *friendship.Resolver
	feed     *feed.Service
}

func newApp() (*app, error) {
	cfg := config.Load()
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client := aley.NewClient(cfg.BaseURL, store, httpClientFor(cfg))
	resolver := friendship.NewResolver(client, friendship.Overrides{
		Friends:         cfg.KnownFriendIDs(),
		PendingSent:     cfg.PendingSentIDs(),
		PendingReceived: cfg.PendingReceivedIDs(),
	}, cfg.ProbeTimeout, cfg.PageLimit)

	return &app{
		cfg:      cfg,
		store:    store,
		client:   client,
		resolver: resolver,
		feed:     feed.NewService(client, store, resolver),
	}, nil
}

// httpClientFor builds the backend HTTP client from the configured
// request timeout.
func httpClientFor(cfg config.Config) *http.Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL (overrides ALEY_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log client activity to stderr")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)
	rootCmd.AddCommand(feedCmd, postCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(mockCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"client-aley/internal/config"
	"client-aley/internal/mockapi"

	"github.com/spf13/cobra"
)

var flagMockAddr string

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run an in-memory Aley backend for local development",
	Long: `Starts a loopback backend with the same routes and response
envelope as the production API, seeded with two users:

  alice@example.com / password
  bob@example.com / password

Point the client at it with --base-url http://localhost:5000/api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		addr := cfg.MockAddr
		if flagMockAddr != "" {
			addr = flagMockAddr
		}

		srv := mockapi.NewServer("mock-secret")
		if _, err := srv.SeedUser("alice@example.com", "Alice Example", "password"); err != nil {
			return err
		}
		if _, err := srv.SeedUser("bob@example.com", "Bob Example", "password"); err != nil {
			return err
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(addr)
		}()

		fmt.Println("mock backend listening on", addr)
		select {
		case err := <-errCh:
			return err
		case <-signals:
			fmt.Println("shutting down")
			return srv.Shutdown()
		}
	},
}

func init() {
	mockCmd.Flags().StringVar(&flagMockAddr, "addr", "", "listen address (overrides ALEY_MOCK_ADDR)")
}

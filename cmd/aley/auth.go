package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"client-aley/internal/aley"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in and store the session locally",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		email := ""
		if len(args) > 0 {
			email = args[0]
		} else {
			email, err = prompt("Email: ")
			if err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		if err := a.client.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		viewer, err := a.store.Viewer()
		if err != nil {
			return err
		}
		if viewer.DisplayName != "" {
			fmt.Printf("Logged in as %s <%s>\n", viewer.DisplayName, viewer.Email)
		} else {
			fmt.Printf("Logged in as %s\n", viewer.Email)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create a new account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		email := ""
		if len(args) > 0 {
			email = args[0]
		} else {
			email, err = prompt("Email: ")
			if err != nil {
				return err
			}
		}
		name, err := prompt("Full name: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		req := aley.RegisterRequest{FullName: name, Email: email, Password: password}
		if err := a.client.Register(cmd.Context(), req); err != nil {
			return err
		}
		fmt.Println("Account created. Check your inbox for the verification link, then log in.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		viewer, err := a.store.Viewer()
		if err != nil {
			return err
		}
		if !viewer.Authenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("User ID: %s\n", viewer.UserID)
		fmt.Printf("Email:   %s\n", viewer.Email)
		if viewer.DisplayName != "" {
			fmt.Printf("Name:    %s\n", viewer.DisplayName)
		}
		if viewer.AvatarURL != "" {
			fmt.Printf("Avatar:  %s\n", viewer.AvatarURL)
		}
		return nil
	},
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

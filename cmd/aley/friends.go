package main

import (
	"fmt"

	"client-aley/internal/aley"
	"client-aley/internal/friendship"

	"github.com/spf13/cobra"
)

var (
	flagFriendsPage   int
	flagFriendsLimit  int
	flagFriendsSearch string
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage friendships and friend requests",
}

var friendsStatusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Resolve your friendship status with a user",
	Long: `Resolves the relationship with a user by asking the backend in
stages: the status endpoint first, then the sent, received and friends
lists, then suggestions, then the direct check. Statically configured
friends (ALEY_KNOWN_FRIENDS) win over everything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		status := a.resolver.Resolve(cmd.Context(), args[0])
		fmt.Println(string(status.State))
		if status.RelationID != "" {
			fmt.Println("relation:", status.RelationID)
		}
		return nil
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.client.SendFriendRequest(cmd.Context(), args[0])
		if err != nil {
			if requestID, conflict := aley.IsConflict(err); conflict {
				fmt.Println("Already requested. Cancel with:")
				fmt.Println("  aley friends cancel " + requestID)
				return nil
			}
			return err
		}
		if result.WasAutoAccepted {
			fmt.Println("They had already asked you. You are now friends.")
			return nil
		}
		fmt.Println("Request sent:", result.RequestID)
		return nil
	},
}

var friendsCancelCmd = &cobra.Command{
	Use:   "cancel <request-id>",
	Short: "Cancel a friend request you sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.CancelFriendRequest(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Cancelled.")
		return nil
	},
}

var friendsAcceptCmd = &cobra.Command{
	Use:   "accept <request-id>",
	Short: "Accept a friend request you received",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.AcceptFriendRequest(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Accepted.")
		return nil
	},
}

var friendsRemoveCmd = &cobra.Command{
	Use:   "unfriend <friendship-id>",
	Short: "Remove an existing friendship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.Unfriend(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	},
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		friends, err := a.client.Friends(cmd.Context(), flagFriendsPage, flagFriendsLimit)
		if err != nil {
			return err
		}
		if len(friends) == 0 {
			fmt.Println("No friends yet.")
			return nil
		}
		for _, f := range friends {
			fmt.Printf("%s  %s <%s>  friendship:%s\n",
				f.User.UserID, f.User.FullName, f.User.Email, f.FriendshipID)
		}
		return nil
	},
}

var friendsRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending friend requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sent, err := a.client.SentRequests(cmd.Context(), flagFriendsPage, flagFriendsLimit)
		if err != nil {
			return err
		}
		received, err := a.client.ReceivedRequests(cmd.Context(), flagFriendsPage, flagFriendsLimit)
		if err != nil {
			return err
		}

		if len(sent) == 0 && len(received) == 0 {
			fmt.Println("No pending requests.")
			return nil
		}
		for _, r := range sent {
			fmt.Printf("sent      %s  to %s <%s>\n", r.RequestID, r.Recipient.FullName, r.Recipient.Email)
		}
		for _, r := range received {
			fmt.Printf("received  %s  from %s <%s>\n", r.RequestID, r.Sender.FullName, r.Sender.Email)
		}
		return nil
	},
}

var friendsSuggestCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List suggested users you are not connected to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.client.Suggestions(cmd.Context(), flagFriendsPage, flagFriendsLimit, flagFriendsSearch)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for _, u := range users {
			fmt.Printf("%s  %s <%s>\n", u.UserID, u.FullName, u.Email)
		}
		return nil
	},
}

var friendsCheckCmd = &cobra.Command{
	Use:   "check <user-id>",
	Short: "Ask the direct check endpoint only, skipping the cascade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		payload, err := a.client.CheckFriend(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if payload.Status == "" {
			fmt.Println(string(friendship.StateNotFriends))
			return nil
		}
		fmt.Println(payload.Status)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{friendsListCmd, friendsRequestsCmd, friendsSuggestCmd} {
		c.Flags().IntVar(&flagFriendsPage, "page", 1, "page to fetch")
		c.Flags().IntVar(&flagFriendsLimit, "limit", 20, "entries per page")
	}
	friendsSuggestCmd.Flags().StringVar(&flagFriendsSearch, "search", "", "filter suggestions by name or email")

	friendsCmd.AddCommand(friendsStatusCmd, friendsAddCmd, friendsCancelCmd,
		friendsAcceptCmd, friendsRemoveCmd, friendsListCmd, friendsRequestsCmd,
		friendsSuggestCmd, friendsCheckCmd)
}

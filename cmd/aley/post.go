package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"client-aley/internal/aley"

	"github.com/spf13/cobra"
)

var (
	flagPostPrivacy  string
	flagPostLocation string
	flagPostEmotion  string
	flagPostFiles    []string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create and manage posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create [content]",
	Short: "Publish a new post",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		content := ""
		if len(args) > 0 {
			content = args[0]
		}

		np := aley.NewPost{
			Content:  content,
			Privacy:  aley.Privacy(flagPostPrivacy),
			Location: flagPostLocation,
		}
		if flagPostEmotion != "" {
			emoji, name, found := strings.Cut(flagPostEmotion, ":")
			if !found {
				name = emoji
			}
			np.Emotion = &aley.Emotion{Emoji: emoji, Name: name}
		}
		for _, path := range flagPostFiles {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read attachment %s: %w", path, err)
			}
			np.Attachments = append(np.Attachments, aley.Attachment{
				Filename: filepath.Base(path),
				Data:     data,
			})
		}

		progress := func(percent int) {
			fmt.Printf("\ruploading %d%%", percent)
			if percent >= 100 {
				fmt.Println()
			}
		}
		if len(np.Attachments) == 0 {
			progress = nil
		}

		post, err := a.client.CreatePost(cmd.Context(), np, progress)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %s (%s)\n", post.PostID, post.Privacy)
		return nil
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.ToggleLike(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Toggled.")
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id> <content>",
	Short: "Replace a post's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fields := map[string]any{"content": args[1]}
		if cmd.Flags().Changed("privacy") {
			fields["privacy"] = flagPostPrivacy
		}
		if err := a.client.UpdatePost(cmd.Context(), args[0], fields); err != nil {
			return err
		}
		fmt.Println("Updated.")
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.DeletePost(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	postCreateCmd.Flags().StringVar(&flagPostPrivacy, "privacy", "public", "public, friends or private")
	postCreateCmd.Flags().StringVar(&flagPostLocation, "location", "", "location tag")
	postCreateCmd.Flags().StringVar(&flagPostEmotion, "emotion", "", "feeling tag as emoji:name")
	postCreateCmd.Flags().StringSliceVar(&flagPostFiles, "attach", nil, "file to attach (repeatable)")
	postEditCmd.Flags().StringVar(&flagPostPrivacy, "privacy", "public", "public, friends or private")

	postCmd.AddCommand(postCreateCmd, postLikeCmd, postEditCmd, postDeleteCmd)
}

package main

import (
	"fmt"
	"regexp"
	"strings"

	"client-aley/internal/feed"
	"client-aley/internal/friendship"

	"github.com/spf13/cobra"
)

var (
	flagFeedPage     int
	flagFeedLimit    int
	flagFeedStatuses bool
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

const (
	ansiCyan  = "\x1b[36m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the feed (personalised when logged in, public otherwise)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.feed.Load(cmd.Context(), flagFeedPage, flagFeedLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("Nothing to show.")
			return nil
		}

		var statuses map[string]friendship.Status
		if flagFeedStatuses {
			statuses = a.feed.AuthorStatuses(cmd.Context(), records)
		}

		for i := range records {
			printPost(&records[i], statuses)
		}
		return nil
	},
}

func printPost(record *feed.PostRecord, statuses map[string]friendship.Status) {
	name := record.Author.Name
	if name == "" {
		name = record.AuthorID()
	}

	header := name
	if record.ResolvedIsOwn {
		header += " (you)"
	}
	if record.Privacy != "" && record.Privacy != "public" {
		header += " " + ansiDim + "[" + string(record.Privacy) + "]" + ansiReset
	}
	fmt.Println(header)

	body := hashtagPattern.ReplaceAllStringFunc(record.Content, func(tag string) string {
		return ansiCyan + tag + ansiReset
	})
	for _, line := range strings.Split(body, "\n") {
		fmt.Println("  " + line)
	}

	meta := fmt.Sprintf("  %d likes", record.LikesCount)
	if record.IsLiked {
		meta += " (liked)"
	}
	if record.CreatedAt != "" {
		meta += "  " + ansiDim + record.CreatedAt + ansiReset
	}
	fmt.Println(meta)

	for _, m := range record.Media {
		fmt.Println("  media: " + m.URL)
	}

	if statuses != nil && !record.ResolvedIsOwn {
		status := statuses[record.AuthorID()]
		if feed.OfferFriendRequest(*record, status) {
			fmt.Printf("  %s→ aley friends add %s%s\n", ansiDim, record.AuthorID(), ansiReset)
		} else if status.State == friendship.StateFriends {
			fmt.Println("  " + ansiDim + "friend" + ansiReset)
		}
	}
	fmt.Println()
}

func init() {
	feedCmd.Flags().IntVar(&flagFeedPage, "page", 1, "page to fetch")
	feedCmd.Flags().IntVar(&flagFeedLimit, "limit", 10, "posts per page")
	feedCmd.Flags().BoolVar(&flagFeedStatuses, "statuses", false, "resolve friendship status per author")
}

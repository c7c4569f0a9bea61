package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func postCmd(flags *globalFlags) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := signedIn(flags)
			if err != nil {
				return err
			}
			post, err := client.CreatePost(cmd.Context(), strings.Join(args, " "), category)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s in %s\n", post.ID, post.Category)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "Inquiry", "Inquiry, Discovery, Experiment, Validate or Implement")
	return cmd
}

func commentCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <content>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := signedIn(flags)
			if err != nil {
				return err
			}
			c, err := client.CreateComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented %s\n", c.ID)
			return nil
		},
	}
}

func likeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Toggle your like on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := signedIn(flags)
			if err != nil {
				return err
			}
			st, err := client.ToggleLike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verb := "Unliked"
			if st.IsLiked {
				verb = "Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d likes)\n", verb, st.Likes)
			return nil
		},
	}
}

func notificationsCmd(flags *globalFlags) *cobra.Command {
	var markRead bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List recent notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := signedIn(flags)
			if err != nil {
				return err
			}
			items, err := client.Notifications(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No notifications.")
			}
			for _, n := range items {
				marker := "*"
				if n.IsRead {
					marker = " "
				}
				fmt.Fprintf(out, "%s %s %s %s\n", marker, n.Sender.Name, n.Content, n.Link)
			}
			if markRead {
				return client.MarkAllRead(cmd.Context())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "mark everything read afterwards")
	return cmd
}

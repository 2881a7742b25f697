package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrollr/scrollr/internal/client/views"
	"github.com/scrollr/scrollr/internal/models"
)

const previewLen = 40

func newFeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed := views.NewFeed(app.api, app.session.User())
			if err := feed.Load(cmd.Context()); err != nil {
				return app.apiFailure(cmd.Context(), err)
			}
			app.render(feed)
			return nil
		},
	}
}

func newPostCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "post <text>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.requireUser()
			if err != nil {
				return err
			}

			feed := views.NewFeed(app.api, user)
			posted, err := feed.Submit(cmd.Context(), strings.Join(args, " "))
			if posted {
				app.printf("Posted.\n")
			}
			if err != nil {
				return app.apiFailure(cmd.Context(), err)
			}
			if !posted {
				return errors.New("post text is empty")
			}
			app.render(feed)
			return nil
		},
	}
}

func newDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.requireUser()
			if err != nil {
				return err
			}

			feed := views.NewFeed(app.api, user)
			if err := feed.Load(cmd.Context()); err != nil {
				return app.apiFailure(cmd.Context(), err)
			}
			if p, ok := feed.Find(args[0]); ok && !feed.CanDelete(p) {
				return errors.New("you can only delete your own posts")
			}

			deleted, err := feed.Delete(cmd.Context(), args[0], func(p models.Post) bool {
				if yes {
					return true
				}
				q := fmt.Sprintf("Delete post %s", p.ID)
				if p.Text != "" {
					q += fmt.Sprintf(" (%q)", preview(p.Text))
				}
				return confirm(app.reader, app.out, q+"?")
			})
			if err != nil {
				return app.apiFailure(cmd.Context(), err)
			}
			if !deleted {
				app.printf("Cancelled.\n")
				return nil
			}
			app.printf("Post deleted.\n")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *App) render(feed *views.Feed) {
	if len(feed.Posts) == 0 {
		a.printf("No posts yet.\n")
		return
	}
	for _, p := range feed.Posts {
		mark := ""
		if feed.CanDelete(p) {
			mark = "  (yours)"
		}
		author := p.Author.Username
		if author == "" {
			author = "unknown"
		}
		a.printf("%s  @%s  %s%s\n", p.ID, author, p.CreatedAt.Local().Format(time.DateTime), mark)
		for _, line := range strings.Split(p.Text, "\n") {
			a.printf("    %s\n", line)
		}
		a.printf("\n")
	}
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen-3]) + "..."
}

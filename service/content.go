package service

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"portfolio/app/importer"
	"portfolio/app/services"

	"github.com/spf13/cobra"
)

// withServices opens the configured store for the duration of fn.
func withServices(cmd *cobra.Command, opts *options, fn func(svc *services.Services) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	b, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(services.New(b.repos, newLogger(cmd, cfg)))
}

func newSeedCommand(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import posts from a YAML file",
		Long: `Import an author and posts from a YAML document:

  author:
    first_name: Jane
    last_name: Doe
    email: jane@example.com
  posts:
    - title: Hello World
      content: First post.
      tags: [intro]

Slugs, excerpts and dates are derived when omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			return withServices(cmd, opts, func(svc *services.Services) error {
				imp := importer.New(svc.Authors, svc.Posts, nil)
				n, err := imp.Seed(cmd.Context(), f)
				if n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d posts\n", n)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "posts.yaml", "Seed file")
	return cmd
}

func newTagCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <caption>",
		Short: "Create a tag, or show the existing one with the same caption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts, func(svc *services.Services) error {
				tag, err := svc.Tags.UpsertByCaption(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag %q (id %d)\n", tag.Caption, tag.ID)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags with their post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts, func(svc *services.Services) error {
				counts, err := svc.Tags.Counts(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCAPTION\tPOSTS")
				for _, tc := range counts {
					fmt.Fprintf(w, "%d\t%s\t%d\n", tc.ID, tc.Caption, tc.PostCount)
				}
				return w.Flush()
			})
		},
	})
	return cmd
}

func newPostCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage posts",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts, func(svc *services.Services) error {
				posts, err := svc.Posts.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tSLUG\tTAGS")
				for _, p := range posts {
					captions := make([]string, 0, len(p.Tags))
					for _, t := range p.Tags {
						captions = append(captions, t.Caption)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Date.Format("2006-01-02"), p.Slug, strings.Join(captions, ","))
				}
				return w.Flush()
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of posts (negative for all)")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if !yes && !confirm(cmd, fmt.Sprintf("Delete post %q and all of its comments?", slug)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
				return nil
			}
			return withServices(cmd, opts, func(svc *services.Services) error {
				if err := svc.Posts.Delete(cmd.Context(), slug); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %q deleted\n", slug)
				return nil
			})
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(list, del)
	return cmd
}

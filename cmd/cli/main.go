package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendfarm/internal/app"
	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/storage"
	"github.com/trendfarm/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
	trend   *app.App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendfarm",
		Short: "Trend-driven affiliate content generator",
		Long: `Picks trending topics, drafts SEO blog posts with Claude, injects
affiliate links and serves the research and character generation API.`,
		PersistentPreRunE:  initializeApp,
		PersistentPostRunE: closeApp,
		SilenceUsage:       true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	rootCmd.AddCommand(trendPostCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(redirectsCmd())
	rootCmd.AddCommand(postsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	trend, err = app.New(cfg, log)
	return err
}

func closeApp(cmd *cobra.Command, args []string) error {
	if trend == nil {
		return nil
	}
	return trend.Close()
}

func printJSON(v interface{}, indent bool) error {
	enc := json.NewEncoder(os.Stdout)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// ============ CONTENT COMMANDS ============

func trendPostCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "trend-post",
		Short: "Pick a trending topic and publish a post for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := app.TrendPost(ctx, trend.Discovery, trend.Publisher, cfg.Trends.FallbackTopic, model, log)
			if err != nil {
				return err
			}

			return app.WriteOutputs(os.Stdout, []app.Output{
				{Name: "topic", Value: res.Topic},
				{Name: "filepath", Value: res.Post.Path},
			})
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Claude model to use (default from config)")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		model  string
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a post for a topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			topic := "Wireless Earbuds"
			if len(args) == 1 {
				topic = args[0]
			}

			if asJSON {
				post, err := trend.Publisher.Generate(ctx, topic, model)
				if err != nil {
					return err
				}
				return printJSON(map[string]string{"slug": post.Slug, "content": post.Document}, false)
			}

			pub := trend.Publisher
			if output != "" {
				pub = pub.WithPosts(content.NewStore(output))
			}
			post, err := pub.Publish(ctx, topic, model)
			if err != nil {
				return err
			}
			fmt.Printf("Generated: %s\n", post.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Claude model to use (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory for the Markdown file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print slug and document as JSON instead of saving")
	return cmd
}

func batchCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate a post for every configured batch topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics := cfg.Trends.BatchTopics
			fmt.Printf("Generating %d posts\n\n", len(topics))

			res := app.Batch(cmd.Context(), trend.Publisher, topics, model, log)

			fmt.Printf("\n=== Batch Results ===\n")
			fmt.Printf("Generated %d/%d posts:\n", len(res.Published), len(topics))
			for _, p := range res.Published {
				fmt.Printf("  - %s\n", p.Path)
			}
			if len(res.Failed) > 0 {
				fmt.Printf("\nErrors:\n")
				for topic, err := range res.Failed {
					fmt.Printf("  - %s: %s\n", topic, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Claude model to use (default from config)")
	return cmd
}

func redirectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redirects",
		Short: "Rebuild the redirect rules file from the redirect map",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := trend.Redirects.Load()
			if err != nil {
				return err
			}
			if len(m) == 0 {
				log.Warn().Str("path", cfg.Paths.RedirectsFile).Msg("Redirect map is empty")
				fmt.Println("No redirect map found. Run content generator first.")
				return nil
			}

			n, err := trend.Redirects.Regenerate()
			if err != nil {
				return err
			}
			fmt.Printf("Generated %d redirects to %s\n", n, cfg.Paths.RulesFile)
			return nil
		},
	}
}

// ============ TREND COMMANDS ============

func trendsCmd() *cobra.Command {
	var (
		list     bool
		noFilter bool
		count    int
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Fetch trending topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if list {
				records := trend.Discovery.Fetch(ctx, !noFilter, count)
				topics := make([]string, 0, len(records))
				for _, r := range records {
					topics = append(topics, r.Topic)
				}
				return printJSON(map[string][]string{"topics": topics}, true)
			}

			topic, err := trend.Discovery.SelectBest(ctx, !noFilter)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"trend": topic}, false)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List multiple topics")
	cmd.Flags().BoolVar(&noFilter, "no-filter", false, "Don't filter by niche")
	cmd.Flags().IntVar(&count, "count", 10, "Number of topics to list")
	return cmd
}

// ============ LEDGER COMMANDS ============

func postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Inspect the generated post ledger",
	}

	cmd.AddCommand(postsListCmd())
	return cmd
}

func postsListCmd() *cobra.Command {
	var (
		limit    int
		topic    string
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := storage.DefaultPostFilter()
			filter.Limit = limit
			filter.Topic = topic
			filter.FallbackOnly = fallback

			posts, err := trend.Repo.ListPosts(cmd.Context(), filter)
			if err != nil {
				return err
			}

			fmt.Printf("\n=== Posts (%d) ===\n\n", len(posts))
			for _, p := range posts {
				fmt.Printf("[%d] %s\n", p.ID, truncateStr(p.Title, 70))
				fmt.Printf("    Topic:   %s\n", p.Topic)
				fmt.Printf("    Path:    %s\n", p.Path)
				fmt.Printf("    Links:   %d\n", p.LinkCount)
				if p.Fallback {
					fmt.Printf("    Draft:   fallback\n")
				}
				fmt.Printf("    Created: %s (%s ago)\n", p.CreatedAt.Format(time.RFC1123), formatDuration(time.Since(p.CreatedAt)))
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum posts to show")
	cmd.Flags().StringVar(&topic, "topic", "", "Only posts for this topic")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "Only posts written from a fallback draft")
	return cmd
}

// ============ SERVER COMMANDS ============

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return trend.Server().Start(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from config)")
	return cmd
}

// Helper function to truncate strings
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Helper function to format duration nicely
func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
	return fmt.Sprintf("%.1f days", d.Hours()/24)
}

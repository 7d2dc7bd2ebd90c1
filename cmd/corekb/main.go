// Command corekb builds, maintains, and queries a hybrid retrieval index
// over an AzerothCore mod-playerbots checkout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/corekb/corekb/internal/config"
	"github.com/corekb/corekb/internal/generation"
	"github.com/corekb/corekb/internal/logger"
	"github.com/corekb/corekb/internal/pipeline"
	"github.com/corekb/corekb/pkg/types"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "corekb",
		Short: "Hybrid retrieval and Q&A over the mod-playerbots codebase",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg = config.Default()
				err = cfg.Validate()
			}
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel)
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(buildCmd(), updateCmd(), askCmd(), searchCmd(), statsCmd(), cacheCmd())
	return root
}

func newPipeline(withGenerator bool) (*pipeline.Pipeline, error) {
	var gen pipeline.Generator
	if withGenerator {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		client, err := generation.NewClient(apiKey, cfg.Generation.Model,
			cfg.Generation.MaxTokens, cfg.Generation.Temperature)
		if err != nil {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for this command: %w", err)
		}
		gen = client
	}
	return pipeline.New(cfg, gen)
}

func loadedPipeline(withGenerator bool) (*pipeline.Pipeline, error) {
	p, err := newPipeline(withGenerator)
	if err != nil {
		return nil, err
	}
	if !p.LoadIndex() {
		return nil, fmt.Errorf("no index at %s, run %q first", cfg.IndexPath, "corekb build")
	}
	return p, nil
}

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the full index from the source tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			if err := p.BuildIndex(cmd.Context()); err != nil {
				return err
			}

			stats, err := p.Statistics()
			if err != nil {
				return err
			}
			fmt.Printf("Index built: %d chunks across %d modules\n",
				stats.VectorStore.TotalChunks, len(stats.VectorStore.ByModule))
			return nil
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Incrementally index files changed since the last update",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadedPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			out, err := p.Update(cmd.Context())
			if err != nil {
				return err
			}
			if out.FilesFound == 0 {
				fmt.Println("Index is up to date.")
				return nil
			}
			fmt.Printf("Indexed %d changed files (%d chunks) in %s\n",
				out.FilesLoaded, out.ChunksAdded, out.Elapsed.Round(10*time.Millisecond))
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var (
		topK    int
		noCache bool
		module  string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question and generate an answer from retrieved sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadedPipeline(true)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			question := strings.Join(args, " ")
			answer, err := p.Query(cmd.Context(), question, topK, moduleFilter(module), !noCache)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (0 = config default)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the answer cache")
	cmd.Flags().StringVarP(&module, "module", "m", "", "restrict retrieval to one module")
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		topK   int
		module string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve relevant chunks without generating an answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadedPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			results, err := p.RelevantChunks(cmd.Context(), strings.Join(args, " "), topK, moduleFilter(module))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}
			for i, res := range results {
				fmt.Printf("%d. %s  [%s/%s]  score %.3f\n",
					i+1, res.Metadata.Filename, res.Metadata.Module, res.Metadata.Category, res.Score())
				fmt.Println(indent(snippet(res.Chunk.Content, 300)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (0 = config default)")
	cmd.Flags().StringVarP(&module, "module", "m", "", "restrict retrieval to one module")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index, query, and cache statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadedPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			stats, err := p.Statistics()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func cacheCmd() *cobra.Command {
	var all bool
	clearEntries := &cobra.Command{
		Use:   "clear",
		Short: "Remove expired cache entries (or all with --all)",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := newPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			removed, err := p.ClearCache(all)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d cache entries\n", removed)
			return nil
		},
	}
	clearEntries.Flags().BoolVar(&all, "all", false, "remove every entry, not just expired ones")

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the answer cache",
	}
	cmd.AddCommand(clearEntries)
	return cmd
}

func moduleFilter(module string) types.Filters {
	if module == "" {
		return nil
	}
	return types.Filters{"module": module}
}

func snippet(content string, max int) string {
	content = strings.TrimSpace(content)
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}

func indent(s string) string {
	return "   " + strings.ReplaceAll(s, "\n", "\n   ")
}

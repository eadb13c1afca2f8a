package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jtrefon/blt/envconfig"
	"github.com/jtrefon/blt/format"
	"github.com/jtrefon/blt/logutil"
	"github.com/jtrefon/blt/parser"
	"github.com/jtrefon/blt/pipeline"
	"github.com/jtrefon/blt/progress"
	"github.com/jtrefon/blt/tokenizer"
	"github.com/jtrefon/blt/version"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "blt",
		Short:   "Parallel byte-level tokenizer",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			level := slog.LevelInfo
			if envconfig.Debug {
				level = slog.LevelDebug
			}
			verbose, _ := cmd.Flags().GetCount("verbose")
			switch {
			case verbose == 1:
				level = slog.LevelDebug
			case verbose > 1:
				level = logutil.LevelTrace
			}
			slog.SetDefault(logutil.NewLogger(os.Stderr, level))
		},
		RunE: runHandler,
	}

	rootCmd.Flags().StringP("input", "i", "", "Input file (\"-\" or empty for standard input)")
	rootCmd.Flags().StringP("output", "o", "", "Output file (\"-\" or empty for standard output)")
	rootCmd.Flags().String("merges", "", "Merge table file enabling byte-pair tokenization")
	rootCmd.Flags().Bool("passthrough", false, "Copy input bytes through unchanged")
	rootCmd.Flags().Bool("widen", false, "Widen every byte to a 16-bit token")
	rootCmd.Flags().String("type", "", "Content type tag: text, audio, bin, or video")
	rootCmd.Flags().Int("threads", 0, "Worker count (default: number of CPUs)")
	rootCmd.Flags().Int("memcap", envconfig.MemCap, "Max RAM usage percentage for chunk sizing")
	rootCmd.Flags().String("chunksize", envconfig.ChunkSize, "Chunk size, e.g. 4MB, 256KB (default: auto)")
	rootCmd.Flags().CountP("verbose", "v", "Verbose logging (repeat for per-chunk tracing)")

	rootCmd.MarkFlagsMutuallyExclusive("passthrough", "widen")
	rootCmd.MarkFlagsMutuallyExclusive("passthrough", "merges")
	rootCmd.MarkFlagsMutuallyExclusive("widen", "merges")

	cobra.EnableCommandSorting = false

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("blt version", version.Version)
		},
	}

	rootCmd.AddCommand(NewEnvCmd(), versionCmd)

	return rootCmd
}

// buildConfig translates flags and environment defaults into a pipeline
// configuration.
func buildConfig(cmd *cobra.Command) (pipeline.Config, error) {
	var cfg pipeline.Config

	cfg.Input, _ = cmd.Flags().GetString("input")
	if cfg.Input == "-" {
		cfg.Input = ""
	}
	cfg.Output, _ = cmd.Flags().GetString("output")
	if cfg.Output == "-" {
		cfg.Output = ""
	}

	contentType, _ := cmd.Flags().GetString("type")
	ct, err := tokenizer.ParseContentType(contentType)
	if err != nil {
		return pipeline.Config{}, err
	}
	cfg.ContentType = ct

	cfg.Workers, _ = cmd.Flags().GetInt("threads")
	if cfg.Workers == 0 {
		cfg.Workers = envconfig.NumThreads
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	cfg.MemCapPercent, _ = cmd.Flags().GetInt("memcap")

	if chunkSize, _ := cmd.Flags().GetString("chunksize"); chunkSize != "" {
		cfg.ChunkSize, err = format.ParseSize(chunkSize)
		if err != nil {
			return pipeline.Config{}, err
		}
	}

	if passthrough, _ := cmd.Flags().GetBool("passthrough"); passthrough {
		cfg.Strategy = tokenizer.Passthrough{}
	}
	if widen, _ := cmd.Flags().GetBool("widen"); widen {
		cfg.Strategy = tokenizer.ByteWidening{}
	}
	if merges, _ := cmd.Flags().GetString("merges"); merges != "" {
		cfg.Merges, err = parser.LoadMerges(merges)
		if err != nil {
			return pipeline.Config{}, err
		}
	}

	return cfg, nil
}

func runHandler(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetCount("verbose")
	if verbose == 0 && cfg.Output != "" && term.IsTerminal(int(os.Stderr.Fd())) {
		p := progress.NewProgress(os.Stderr)
		defer p.StopAndClear()

		var bar *progress.Bar
		var counter *progress.Counter
		cfg.Progress = func(u pipeline.Update) {
			if u.TotalBytes >= 0 {
				if bar == nil {
					bar = progress.NewBar("tokenizing", u.TotalBytes)
					p.SetState(bar)
				}
				bar.Set(u.BytesIn)
				return
			}
			if counter == nil {
				counter = progress.NewCounter("tokenizing")
				p.SetState(counter)
			}
			counter.Set(u.Chunks, u.BytesIn)
		}
	}

	return pipeline.Run(cmd.Context(), cfg)
}

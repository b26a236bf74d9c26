package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"linview/internal/backend"
	"linview/internal/compare"
	"linview/internal/config"
	"linview/internal/fetch"
	"linview/internal/tui"
	"linview/internal/util"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := rootCmd(&cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "viewer",
		Short:        "Compare how linearized and original PDFs load",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(*cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "backend base URL")
	root.PersistentFlags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "range request size in bytes")
	root.AddCommand(compareCmd(cfg), uploadCmd(cfg), filesCmd(cfg))
	return root
}

func runTUI(cfg config.Config) error {
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "viewer")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	client := backend.New(cfg.BackendURL, nil)
	m := tui.New(tui.Config{
		Files:   client,
		Reports: client,
		Engine:  fetch.New(&http.Client{}, cfg.BackendURL),
		Options: cfg.ViewerOptions(),
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func compareCmd(cfg *config.Config) *cobra.Command {
	var out string
	var post bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "compare <base-name>",
		Short: "Load both variants of a document side by side and print the timings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := backend.New(cfg.BackendURL, nil)
			r := &compare.Runner{
				BaseURL: cfg.BackendURL,
				HTTP:    &http.Client{},
				Options: cfg.ViewerOptions(),
				Timeout: timeout,
			}
			if post {
				r.Reports = client
			}
			results, err := r.Compare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := compare.WriteTable(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if out != "" {
				return util.WriteJSONAtomic(out, results)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write results as JSON to this path")
	cmd.Flags().BoolVar(&post, "post", false, "post a load report per variant to the backend")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Duration(cfg.CompareTimeoutSeconds)*time.Second, "per-variant timeout")
	return cmd
}

func uploadCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF; the backend stores it and a linearized copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			res, err := backend.New(cfg.BackendURL, nil).UploadFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s and %s (%d pages)\n", res.OriginalFilename, res.Filename, res.PageCount)
			return nil
		},
	}
}

func filesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List stored documents grouped by base name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			files, err := backend.New(cfg.BackendURL, nil).ListFiles(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(files))
			for _, f := range files {
				names = append(names, f.Name)
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers("base name", "original", "linearized")
			for _, p := range cfg.Tags().Group(names) {
				t.Row(p.Base, orDash(p.Original), orDash(p.Linearized))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

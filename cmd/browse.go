package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/brogergvhs/jmana/internal/config"
	"github.com/brogergvhs/jmana/internal/providers"
	"github.com/brogergvhs/jmana/internal/providers/jmana"

	"github.com/spf13/cobra"
)

var (
	flagPage   int
	flagSorted bool
)

func init() {
	popularCmd := &cobra.Command{
		Use:   "popular",
		Short: "List popular titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListing(cmd.Context(), func(ctx context.Context, src *jmana.Scraper) (providers.MangasPage, error) {
				return src.Popular(ctx, flagPage)
			})
		},
	}
	popularCmd.Flags().IntVar(&flagPage, "page", 1, "listing page (1-based)")

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "List recently updated titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListing(cmd.Context(), func(ctx context.Context, src *jmana.Scraper) (providers.MangasPage, error) {
				return src.Latest(ctx, 1)
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runListing(cmd.Context(), func(ctx context.Context, src *jmana.Scraper) (providers.MangasPage, error) {
				return src.Search(ctx, flagPage, query)
			})
		},
	}
	searchCmd.Flags().IntVar(&flagPage, "page", 1, "result page (1-based)")

	infoCmd := &cobra.Command{
		Use:   "info <manga-url>",
		Short: "Show title details",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	chaptersCmd := &cobra.Command{
		Use:   "chapters <manga-url>",
		Short: "List the chapters of a title",
		Args:  cobra.ExactArgs(1),
		RunE:  runChapters,
	}
	chaptersCmd.Flags().BoolVar(&flagSorted, "sorted", false, "sort by chapter number instead of site order")

	rootCmd.AddCommand(popularCmd, latestCmd, searchCmd, infoCmd, chaptersCmd)
}

func runListing(ctx context.Context, fetch func(context.Context, *jmana.Scraper) (providers.MangasPage, error)) error {
	if flagPage < 1 {
		return fmt.Errorf("invalid page %d", flagPage)
	}

	s, err := newSession(config.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	page, err := fetch(ctx, s.source)
	if err != nil {
		return err
	}

	printMangas(os.Stdout, page)
	return nil
}

func printMangas(out io.Writer, page providers.MangasPage) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTITLE\tURL")
	for i, m := range page.Mangas {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, m.Title, m.URL)
	}
	_ = w.Flush()

	if page.HasNextPage {
		_, _ = fmt.Fprintln(out, "\nMore results available (use --page).")
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := newSession(config.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := s.source.Details(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title:   %s\n", m.Title)
	fmt.Printf("Author:  %s\n", m.Author)
	fmt.Printf("Status:  %s\n", m.Status)
	fmt.Printf("URL:     %s\n", s.source.BaseURL()+m.URL)
	if m.Description != "" {
		fmt.Printf("\n%s\n", m.Description)
	}

	return nil
}

func runChapters(cmd *cobra.Command, args []string) error {
	s, err := newSession(config.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	all, err := s.source.Chapters(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if flagSorted {
		providers.SortChapters(all)
	}

	printChapters(os.Stdout, all)
	return nil
}

func printChapters(out io.Writer, all []providers.Chapter) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tLABEL\tNAME\tUPLOADED")
	for i, c := range all {
		date := "-"
		if c.UploadDate > 0 {
			date = time.UnixMilli(c.UploadDate).In(jmana.KST).Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, c.Label(), c.Name, date)
	}
	_ = w.Flush()
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/ideiamap/config"
	"github.com/spacesedan/ideiamap/internal/app"
	"github.com/spacesedan/ideiamap/internal/mapview"
	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/store"
)

const DOWNLOAD_TIMEOUT = 60 * time.Second

func annotateCommand(settings *config.Settings) *cobra.Command {
	var (
		file       string
		ideas      []string
		asMarkers  bool
		exportRecs bool
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate a batch file and/or individual ideas",
		Long: `Annotate a CSV, TSV or XLSX file with an IDEIA column, given as a path or
an http(s) URL, plus any ideas passed with --idea. Prints the table view, or
the map view with --markers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(ideas) == 0 {
				return fmt.Errorf("nothing to annotate: pass --file or --idea")
			}
			ctx := cmd.Context()

			a, err := app.New(ctx, *settings)
			if err != nil {
				return err
			}
			defer a.Close()

			session := store.NewSession(a.AnnotatorProvider())

			if file != "" {
				if err := loadFile(ctx, session, file); err != nil {
					return err
				}
			}
			for _, text := range ideas {
				if _, err := session.AddIndividual(ctx, text); err != nil {
					return err
				}
			}

			records := session.AllRecords()
			if exportRecs {
				if err := a.Exporter.Export(ctx, records); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asMarkers {
				return writeJSON(out, mapview.NewView(records))
			}
			return writeTable(out, records)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Batch file path or http(s) URL")
	cmd.Flags().StringArrayVarP(&ideas, "idea", "i", nil, "Individual idea text (repeatable)")
	cmd.Flags().BoolVar(&asMarkers, "markers", false, "Print the map view as JSON instead of the table")
	cmd.Flags().BoolVar(&exportRecs, "export", false, "Export records to the configured sinks")

	return cmd
}

func loadFile(ctx context.Context, session *store.Session, location string) error {
	name, body, err := openSource(ctx, location)
	if err != nil {
		return err
	}
	defer body.Close()

	progress := func(done, total int) {
		slog.Info("[Annotate] Progress", slog.Int("done", done), slog.Int("total", total))
	}
	_, err = session.LoadBatchFile(ctx, name, body, progress)
	return err
}

// openSource opens a local file or downloads a remote one. The returned name
// keeps the extension so the format can be detected.
func openSource(ctx context.Context, location string) (string, io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		return location, f, nil
	}

	ctx, cancel := context.WithTimeout(ctx, DOWNLOAD_TIMEOUT)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		cancel()
		return "", nil, fmt.Errorf("invalid batch URL: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return "", nil, fmt.Errorf("failed to download batch file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return "", nil, fmt.Errorf("failed to download batch file: status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	cancel()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return path.Base(req.URL.Path), io.NopCloser(bytes.NewReader(content)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, records []models.AnnotatedIdea) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSENTIMENT\tCONFIDENCE\tTOKENS\tNEIGHBORHOOD\tTEXT")
	for _, row := range mapview.Table(records) {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\t%s\n",
			row.Source, row.Sentiment, row.Confidence, row.TokenCount, row.Neighborhood, preview(row.Text, 60))
	}
	return tw.Flush()
}

func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

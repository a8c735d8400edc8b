package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	"golang.org/x/time/rate"
)

// Export formats.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// ExportFormats lists the accepted formats.
var ExportFormats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ExportOpts contains configuration for list exports.
type ExportOpts struct {
	Format         string  // Export format: json, csv, markdown, txt
	OutputDir      string  // Base output directory (default: kino_export_{epoch})
	NumWorkers     int     // Concurrent workers (default: 5, max 10)
	RateLimit      float64 // List fetches per second (default: 5)
	DownloadCovers bool    // Markdown only: save the first poster as cover.jpg
}

// ListExportResult is the outcome of exporting one list.
type ListExportResult struct {
	ListID  int64
	Title   string
	Success bool
	Files   []string
	Error   error
}

// ExportResult summarizes an export run.
type ExportResult struct {
	RunID        string
	TotalLists   int
	Succeeded    int
	Failed       int
	OutputDir    string
	ManifestPath string
	Results      []ListExportResult
}

// RunRecorder persists export runs.
type RunRecorder interface {
	Create(run *models.ExportRun) error
}

// Exporter writes lists to disk.
type Exporter struct {
	api    ListReader
	runs   RunRecorder
	logger *log.Logger
}

// NewExporter creates an exporter. runs and logger may be nil.
func NewExporter(api ListReader, runs RunRecorder, logger *log.Logger) *Exporter {
	return &Exporter{api: api, runs: runs, logger: logger}
}

type exportJob struct {
	index int
	list  *models.List
}

type indexedResult struct {
	index int
	ListExportResult
}

// Export fetches and writes every list in ids concurrently.
//
// Fetches are paced by a rate limiter and handed to a pool of workers that
// write the files. A failed list is recorded in the result and the manifest
// without stopping the others.
func (e *Exporter) Export(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts ExportOpts) (*ExportResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no lists to export", shared.ErrMissingArgument)
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if !slices.Contains(ExportFormats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("kino_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		TotalLists: len(ids),
		OutputDir:  opts.OutputDir,
		Results:    make([]ListExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan indexedResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, fetchListsUpdate(0, len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			list, err := e.api.GetList(ctx, id)
			if err != nil {
				results <- indexedResult{i, ListExportResult{
					ListID: id,
					Title:  fmt.Sprintf("Unknown (%d)", id),
					Error:  fmt.Errorf("failed to fetch list: %w", err),
				}}
				continue
			}

			jobs <- exportJob{index: i, list: list}
			sendProgress(prog, exportingListUpdate(i+1, len(ids), list.Title))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedResult, 0, len(ids))
	for res := range results {
		collected = append(collected, res)
		if res.Success {
			result.Succeeded++
			sendProgress(prog, exportCompletedUpdate(len(collected), len(ids), res.Title, len(res.Files)))
		} else {
			result.Failed++
			sendProgress(prog, exportFailedUpdate(len(collected), len(ids), res.Title, res.Error))
		}
	}
	slices.SortFunc(collected, func(a, b indexedResult) int { return a.index - b.index })
	for _, res := range collected {
		result.Results = append(result.Results, res.ListExportResult)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.record(result, opts)

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(manifestOf(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// record stores the run when a recorder is configured. Failures are logged only.
func (e *Exporter) record(result *ExportResult, opts ExportOpts) {
	if e.runs == nil {
		return
	}
	run := &models.ExportRun{
		Format:     opts.Format,
		OutputDir:  opts.OutputDir,
		TotalLists: result.TotalLists,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
	}
	if err := e.runs.Create(run); err != nil {
		warn(e.logger, "failed to record export run", "error", err)
		return
	}
	result.RunID = run.ID
}

func manifestOf(result *ExportResult, format string) formatter.Manifest {
	m := formatter.Manifest{
		RunID:      result.RunID,
		ExportedAt: time.Now().UTC(),
		Format:     format,
		OutputDir:  result.OutputDir,
		Total:      result.TotalLists,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Lists:      make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := formatter.ManifestEntry{ListID: r.ListID, Title: r.Title, Success: r.Success, Files: r.Files}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Lists = append(m.Lists, entry)
	}
	return m
}

func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- indexedResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- indexedResult{job.index, exportSingleList(job.list, opts)}
	}
}

// exportSingleList writes one list in the requested format.
func exportSingleList(list *models.List, opts ExportOpts) ListExportResult {
	result := ListExportResult{
		ListID: list.ID,
		Title:  list.Title,
		Files:  []string{},
	}
	base := fmt.Sprintf("list_%d", list.ID)

	switch opts.Format {
	case FormatCSV:
		csvRes, err := formatter.WriteCSVExport(list, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.MoviesFile, csvRes.MetadataFile}
	case FormatMarkdown:
		mdRes, err := formatter.WriteMarkdownExport(list, filepath.Join(opts.OutputDir, base), opts.DownloadCovers)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
	case FormatText:
		path, err := formatter.WriteTextExport(list, filepath.Join(opts.OutputDir, base+"_movies.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(list, filepath.Join(opts.OutputDir, base+".json"))
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
	}
	result.Success = true
	return result
}

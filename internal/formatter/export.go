package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// ExportToCSV converts a list to CSV with columns: ID, Title, Year, Director, Genres, Rating, Runtime
func ExportToCSV(list *models.List) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Director", "Genres", "Rating", "Runtime"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range list.Movies {
		rating, _ := m.CombinedRating()
		record := []string{
			strconv.FormatInt(m.ID, 10),
			Title(m),
			strconv.Itoa(m.YearRelease),
			m.Director.Lead(),
			m.Genres.String(),
			strconv.FormatFloat(rating, 'f', 1, 64),
			strconv.Itoa(m.MovieLength),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a list to Markdown with an optional cover image
func ExportToMarkdown(list *models.List, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}

	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(list.Movies))

	buf.WriteString("## Movies\n\n")
	for i, m := range list.Movies {
		directorPart := ""
		if lead := m.Director.Lead(); lead != "" {
			directorPart = fmt.Sprintf(", %s", lead)
		}
		fmt.Fprintf(&buf, "%d. %s (%s%s) [%s]\n", i+1, Title(m), Year(m), directorPart, Rating(m))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a list to plain text
func ExportToText(list *models.List) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", list.Title)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(list.Movies))

	for i, m := range list.Movies {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, Title(m), Year(m))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// listMetadata is the list without its movies.
type listMetadata struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	OwnerID     int64             `json:"owner_id"`
	CreatedAt   models.Timestamp  `json:"created_at"`
	UpdatedAt   *models.Timestamp `json:"updated_at,omitempty"`
	MovieCount  int               `json:"movie_count"`
}

// ToMetadataJSON generates a JSON representation of list metadata (without movies)
func ToMetadataJSON(list *models.List) ([]byte, error) {
	count := list.MovieCount
	if count == 0 {
		count = len(list.Movies)
	}
	return shared.MarshalJSON(listMetadata{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		OwnerID:     list.OwnerID,
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
		MovieCount:  count,
	}, true)
}

func baseName(list *models.List) string {
	return fmt.Sprintf("list_%d", list.ID)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a list to CSV with an accompanying metadata JSON file.
//
// Creates {base}_movies.csv and {base}_metadata.json; base defaults to list_{id}.
func WriteCSVExport(list *models.List, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = baseName(list)
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a list to Markdown in a dedicated directory.
//
// When download is set, the poster of the first movie that has one becomes
// {dir}/cover.jpg; failures to fetch it only skip the cover.
func WriteMarkdownExport(list *models.List, outputDir string, download bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = baseName(list)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if url := coverURL(list); download && url != "" {
		if imageData, err := DownloadImage(url); err == nil {
			coverImagePath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverImagePath, imageData, 0644); err == nil {
				coverImageFilename = "cover.jpg"
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(list, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

func coverURL(list *models.List) string {
	for _, m := range list.Movies {
		if m.PosterURL != "" {
			return m.PosterURL
		}
	}
	return ""
}

// WriteTextExport exports a list to plain text, defaulting to list_{id}_movies.txt.
func WriteTextExport(list *models.List, path string) (string, error) {
	if path == "" {
		path = baseName(list) + "_movies.txt"
	}

	textData, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full list, movies included, as indented JSON.
func WriteJSONExport(list *models.List, path string) (string, error) {
	if path == "" {
		path = baseName(list) + ".json"
	}

	data, err := shared.MarshalJSON(list, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// ManifestEntry is the outcome of exporting one list.
type ManifestEntry struct {
	ListID  int64    `json:"list_id"`
	Title   string   `json:"title"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Manifest summarizes an export run.
type Manifest struct {
	RunID      string          `json:"run_id,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Format     string          `json:"format"`
	OutputDir  string          `json:"output_directory"`
	Total      int             `json:"total_lists"`
	Succeeded  int             `json:"successful_exports"`
	Failed     int             `json:"failed_exports"`
	Lists      []ManifestEntry `json:"lists"`
}

// WriteExportManifest writes m as indented JSON to path.
func WriteExportManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

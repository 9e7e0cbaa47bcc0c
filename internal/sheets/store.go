// Package sheets adapts one Google Sheets worksheet into the tool's row
// store: header-mapped reads and partial column writes with bounded retry.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Recognized column names (case-insensitive in the sheet header).
const (
	ColStatus        = "status"
	ColRaw           = "raw"
	ColTitle         = "title"
	ColContent       = "content"
	ColCategories    = "categories"
	ColTags          = "tags"
	ColPostID        = "post_id"
	ColWPLink        = "wp_link"
	ColLastSynced    = "last_synced"
	ColSlug          = "slug"
	ColAuthor        = "author"
	ColDate          = "date"
	ColFeaturedImage = "featured_image_url"
	ColSEOTitle      = "seo_title"
	ColSEODesc       = "seo_description"
	ColSEOKeywords   = "seo_keywords"
	ColFBHeader      = "fb_header"
	ColFBCaption     = "fb_caption_short"
)

// Row is one data row of the worksheet, addressed by 1-based sheet row
// number. Cells are keyed by lowercased header name; absent columns and
// missing trailing cells read as "".
type Row struct {
	Number int
	cells  map[string]string
}

// NewRow builds a Row from header-name/value pairs. Keys are normalized to
// lowercase the same way ReadAll normalizes the header row.
func NewRow(number int, cells map[string]string) Row {
	normalized := make(map[string]string, len(cells))
	for k, v := range cells {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return Row{Number: number, cells: normalized}
}

// Get returns the cell under the given header name, or "".
func (r Row) Get(col string) string {
	return r.cells[strings.ToLower(col)]
}

// Status returns the trimmed, lowercased status cell.
func (r Row) Status() string {
	return strings.ToLower(strings.TrimSpace(r.Get(ColStatus)))
}

// Store reads and writes one worksheet.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	worksheet     string

	header []string       // lowercased header names by column index
	index  map[string]int // lowercased header name -> column index

	sleep func(time.Duration) // swapped out in tests
}

// NewStore builds a Store for one worksheet. Credentials (service account
// JSON) or a test endpoint are supplied via client options.
func NewStore(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*Store, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		sleep:         time.Sleep,
	}, nil
}

// ReadAll fetches the worksheet and returns every data row below the header,
// column-aligned by header name regardless of column order. An empty sheet
// returns no rows and no error.
func (s *Store) ReadAll(ctx context.Context) ([]Row, error) {
	readRange := fmt.Sprintf("%s!A1:Z", s.worksheet)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", s.worksheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	s.header = make([]string, len(resp.Values[0]))
	s.index = make(map[string]int, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		name := strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))
		s.header[i] = name
		if name != "" {
			s.index[name] = i
		}
	}

	rows := make([]Row, 0, len(resp.Values)-1)
	for i, raw := range resp.Values[1:] {
		cells := make(map[string]string, len(s.header))
		for col, name := range s.header {
			if name == "" {
				continue
			}
			if col < len(raw) {
				cells[name] = fmt.Sprint(raw[col])
			} else {
				cells[name] = ""
			}
		}
		rows = append(rows, Row{Number: i + 2, cells: cells})
	}
	return rows, nil
}

// HasColumn reports whether the header row contains the given column.
// Only valid after ReadAll.
func (s *Store) HasColumn(col string) bool {
	_, ok := s.index[strings.ToLower(col)]
	return ok
}

// WriteColumns writes only the named columns of one row, leaving every other
// cell untouched. Columns absent from the header are skipped. Transient
// failures are retried with bounded exponential backoff.
func (s *Store) WriteColumns(ctx context.Context, rowNumber int, updates map[string]string) error {
	if s.index == nil {
		return fmt.Errorf("worksheet header not loaded; call ReadAll first")
	}

	var ranges []*sheetsapi.ValueRange
	for col, value := range updates {
		idx, ok := s.index[strings.ToLower(col)]
		if !ok {
			continue
		}
		ranges = append(ranges, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", s.worksheet, columnLetter(idx), rowNumber),
			Values: [][]any{{value}},
		})
	}
	if len(ranges) == 0 {
		return nil
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             ranges,
	}
	return s.withRetry(ctx, fmt.Sprintf("write row %d", rowNumber), func() error {
		_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
}

// columnLetter converts a 0-based column index to an A1 column letter
// (0 -> A, 25 -> Z, 26 -> AA).
func columnLetter(idx int) string {
	letters := ""
	for {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
		if idx < 0 {
			return letters
		}
	}
}

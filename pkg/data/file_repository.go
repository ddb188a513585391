package data

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/rs/zerolog"
)

const fileComponent = "file_repository"

// FileRepository serves candidates from lab exports on disk.
//
// root is either a single export file or a directory holding one export per lab:
// <root>/<lab>.csv, <root>/<lab>.json or <root>/<lab>/candidates.{csv,json}.
type FileRepository struct {
	root    string
	mapping ColumnMapping
	filter  *DefaultCandidateFilter
	logger  zerolog.Logger
}

// NewFileRepository creates a repository over root with the default column mapping
func NewFileRepository(root string) *FileRepository {
	return NewFileRepositoryWithMapping(root, DefaultColumnMapping)
}

// NewFileRepositoryWithMapping creates a repository over root with custom CSV columns
func NewFileRepositoryWithMapping(root string, mapping ColumnMapping) *FileRepository {
	return &FileRepository{
		root:    root,
		mapping: mapping,
		filter:  NewDefaultCandidateFilter(),
		logger:  zerolog.Nop(),
	}
}

// SetLogger sets the logger used for skipped records
func (r *FileRepository) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// GetCandidates implements walkforward.CandidateRepository
func (r *FileRepository) GetCandidates(ctx context.Context, labID string, window walkforward.Window) ([]walkforward.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := r.LoadCandidates(labID)
	if err != nil {
		return nil, err
	}

	return r.filter.FilterByWindow(r.filter.FilterByLab(candidates, labID), window), nil
}

// LoadCandidates reads every valid candidate of labID's export, unscoped by window
func (r *FileRepository) LoadCandidates(labID string) ([]walkforward.Candidate, error) {
	path, err := r.LocateLabFile(labID)
	if err != nil {
		return nil, err
	}

	var candidates []walkforward.Candidate
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		candidates, err = r.loadJSON(path)
	default:
		candidates, err = r.loadCSV(path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorCategoryData, fileComponent, "load").
			WithContext("path", path)
	}

	return r.filter.RemoveDuplicates(candidates), nil
}

// LocateLabFile finds the export for labID under the repository root
func (r *FileRepository) LocateLabFile(labID string) (string, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorCategoryData, fileComponent, "locate")
	}
	if !info.IsDir() {
		return r.root, nil
	}

	candidates := []string{
		filepath.Join(r.root, labID+".csv"),
		filepath.Join(r.root, labID+".json"),
		filepath.Join(r.root, labID, "candidates.csv"),
		filepath.Join(r.root, labID, "candidates.json"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", errors.NewAnalysisError(errors.ErrorCategoryData, fileComponent, "locate",
		fmt.Sprintf("no export found for lab %s in %s", labID, r.root))
}

func (r *FileRepository) loadCSV(path string) ([]walkforward.Candidate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns[r.mapping.ID]; !ok {
		return nil, fmt.Errorf("missing %q column in CSV header", r.mapping.ID)
	}

	var candidates []walkforward.Candidate

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		candidate, err := r.parseRecord(record, header, columns)
		if err == nil {
			err = r.filter.Validate(candidate)
		}
		if err != nil {
			r.logger.Warn().Str("path", path).Int("line", lineNum).Err(err).Msg("skipping candidate record")
			continue
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (r *FileRepository) parseRecord(record, header []string, columns map[string]int) (walkforward.Candidate, error) {
	field := func(name string) string {
		if i, ok := columns[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var c walkforward.Candidate
	var err error

	c.ID = field(r.mapping.ID)
	c.LabID = field(r.mapping.LabID)

	floats := []struct {
		column string
		dst    *float64
	}{
		{r.mapping.ROI, &c.Metrics.ROI},
		{r.mapping.WinRate, &c.Metrics.WinRate},
		{r.mapping.MaxDrawdown, &c.Metrics.MaxDrawdown},
		{r.mapping.ProfitFactor, &c.Metrics.ProfitFactor},
		{r.mapping.SharpeRatio, &c.Metrics.SharpeRatio},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(field(f.column)); err != nil {
			return c, fmt.Errorf("invalid %s: %w", f.column, err)
		}
	}

	if c.Metrics.TotalTrades, err = parseInt(field(r.mapping.TotalTrades)); err != nil {
		return c, fmt.Errorf("invalid %s: %w", r.mapping.TotalTrades, err)
	}

	if c.WindowStart, err = r.parseDate(field(r.mapping.WindowStart)); err != nil {
		return c, err
	}
	if c.WindowEnd, err = r.parseDate(field(r.mapping.WindowEnd)); err != nil {
		return c, err
	}

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if !strings.HasPrefix(key, r.mapping.ParameterPrefix) || i >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[i])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("invalid parameter %s: %w", key, err)
		}
		if c.Parameters == nil {
			c.Parameters = make(map[string]float64)
		}
		c.Parameters[strings.TrimPrefix(key, r.mapping.ParameterPrefix)] = v
	}

	return c, nil
}

// jsonCandidate is the record shape of a JSON lab export
type jsonCandidate struct {
	ID           string             `json:"id"`
	LabID        string             `json:"lab_id"`
	ROI          float64            `json:"roi"`
	WinRate      float64            `json:"win_rate"`
	TotalTrades  int                `json:"total_trades"`
	MaxDrawdown  float64            `json:"max_drawdown"`
	ProfitFactor float64            `json:"profit_factor"`
	SharpeRatio  float64            `json:"sharpe_ratio"`
	Parameters   map[string]float64 `json:"parameters"`
	WindowStart  string             `json:"window_start"`
	WindowEnd    string             `json:"window_end"`
}

func (r *FileRepository) loadJSON(path string) ([]walkforward.Candidate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []jsonCandidate
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON export: %w", err)
	}

	candidates := make([]walkforward.Candidate, 0, len(records))
	for i, rec := range records {
		c := walkforward.Candidate{
			ID:         rec.ID,
			LabID:      rec.LabID,
			Parameters: rec.Parameters,
			Metrics: walkforward.Metrics{
				ROI:          rec.ROI,
				WinRate:      rec.WinRate,
				TotalTrades:  rec.TotalTrades,
				MaxDrawdown:  rec.MaxDrawdown,
				ProfitFactor: rec.ProfitFactor,
				SharpeRatio:  rec.SharpeRatio,
			},
		}

		c.WindowStart, err = r.parseDate(rec.WindowStart)
		if err == nil {
			c.WindowEnd, err = r.parseDate(rec.WindowEnd)
		}
		if err == nil {
			err = r.filter.Validate(c)
		}
		if err != nil {
			r.logger.Warn().Str("path", path).Int("index", i).Err(err).Msg("skipping candidate record")
			continue
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func (r *FileRepository) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range r.mapping.DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Missing numeric fields default to zero
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// exports sometimes write counts as floats ("42.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/racer/internal/config"
)

// GenerationRecord is one row of generations.csv.
type GenerationRecord struct {
	RunID      string    `csv:"run_id"`
	Generation int       `csv:"generation"`
	Best       float64   `csv:"best"`
	Mean       float64   `csv:"mean"`
	StdDev     float64   `csv:"stddev"`
	Median     float64   `csv:"median"`
	P10        float64   `csv:"p10"`
	P90        float64   `csv:"p90"`
	Worst      float64   `csv:"worst"`
	Score      int       `csv:"score"`
	Ticks      int       `csv:"ticks"`
	Reason     string    `csv:"reason"`
	BestGenome int       `csv:"best_genome"`
	Nodes      int       `csv:"nodes"`
	Genes      int       `csv:"genes"`
	Elapsed    float64   `csv:"elapsed_ms"`
	At         time.Time `csv:"-"`
}

// NewGenerationRecord fills the statistics columns from s.
func NewGenerationRecord(runID string, generation int, s Summary) GenerationRecord {
	return GenerationRecord{
		RunID:      runID,
		Generation: generation,
		Best:       s.Best,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Median:     s.Median,
		P10:        s.P10,
		P90:        s.P90,
		Worst:      s.Worst,
		At:         time.Now(),
	}
}

// OutputManager writes a training run's files into one directory:
// generations.csv, config.yaml and champion.yaml.
type OutputManager struct {
	dir           string
	file          *os.File
	headerWritten bool
}

// NewOutputManager creates the output directory and generations.csv.
// Returns nil if dir is empty (output disabled); every method is a no-op
// on a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	return &OutputManager{dir: dir, file: f}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg config.RacingConfig) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a record to generations.csv.
func (om *OutputManager) WriteGeneration(rec GenerationRecord) error {
	if om == nil {
		return nil
	}

	records := []GenerationRecord{rec}
	if !om.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.file); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.file); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WriteChampion saves an encoded champion genome.
func (om *OutputManager) WriteChampion(data []byte) error {
	if om == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(om.dir, "champion.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing champion.yaml: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the CSV file.
func (om *OutputManager) Close() error {
	if om == nil || om.file == nil {
		return nil
	}
	return om.file.Close()
}

// ReadGenerations loads every record from a generations.csv file.
func ReadGenerations(path string) ([]GenerationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []GenerationRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

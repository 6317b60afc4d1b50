package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/study"
)

// ErrPathUnset is returned when writing before a data directory is configured
var ErrPathUnset = errors.New("record: data path not set")

// Header is the trial log column order
var Header = []string{"PID", "CT", "A", "W", "EWW", "MT", "MissedClicks", "MovingTargets"}

// CSVWriter appends trial rows to <dir>/data_<CursorType>.csv
// The file is opened per write so an interrupted study keeps every completed row
type CSVWriter struct {
	path string
}

// NewCSVWriter resolves the data file for a cursor type; empty dir leaves the path unset
func NewCSVWriter(dir string, ct cursor.Type) *CSVWriter {
	if dir == "" {
		return &CSVWriter{}
	}
	return &CSVWriter{path: filepath.Join(dir, fmt.Sprintf("data_%s.csv", ct))}
}

// Path returns the resolved file path, empty when unset
func (w *CSVWriter) Path() string {
	return w.path
}

// WriteHeader appends the column header; repeated runs each start with one
func (w *CSVWriter) WriteHeader() error {
	return w.append(Header)
}

// WriteRow appends one trial
func (w *CSVWriter) WriteRow(r study.Row) error {
	return w.append(FormatRow(r))
}

// FormatRow renders a trial as CSV fields; MT in seconds with three decimals
func FormatRow(r study.Row) []string {
	moving := "0"
	if r.Moving {
		moving = "1"
	}
	return []string{
		r.ParticipantID,
		r.Cursor.String(),
		formatFloat(r.Amplitude),
		formatFloat(r.TargetSize),
		formatFloat(r.EWRatio),
		strconv.FormatFloat(r.MovementTime.Seconds(), 'f', 3, 64),
		strconv.Itoa(r.MissedClicks),
		moving,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (w *CSVWriter) append(fields []string) error {
	if w.path == "" {
		return ErrPathUnset
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(fields); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	return f.Close()
}

// ReadRows parses a trial log, skipping header lines from repeated runs
func ReadRows(r io.Reader) ([]study.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	var rows []study.Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		if rec[0] == Header[0] {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

// ReadFile opens and parses a trial log
func ReadFile(path string) ([]study.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

func parseRow(rec []string) (study.Row, error) {
	var (
		row study.Row
		err error
	)
	row.ParticipantID = rec[0]
	if row.Cursor, err = cursor.ParseType(rec[1]); err != nil {
		return row, err
	}

	floats := []*float64{&row.Amplitude, &row.TargetSize, &row.EWRatio}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(strings.TrimSpace(rec[2+i]), 64); err != nil {
			return row, fmt.Errorf("column %s: %w", Header[2+i], err)
		}
	}

	mt, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return row, fmt.Errorf("column MT: %w", err)
	}
	row.MovementTime = time.Duration(math.Round(mt*1e3)) * time.Millisecond

	if row.MissedClicks, err = strconv.Atoi(rec[6]); err != nil {
		return row, fmt.Errorf("column MissedClicks: %w", err)
	}
	row.Moving = rec[7] == "1"
	return row, nil
}

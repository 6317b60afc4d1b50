package record

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/fitts/study"
)

// SummaryFile is the persisted end-of-study record
type SummaryFile struct {
	SessionID         string    `yaml:"session_id"`
	ParticipantID     string    `yaml:"participant_id"`
	Cursor            string    `yaml:"cursor_type"`
	TotalTrials       int       `yaml:"total_trials"`
	TotalTimeSeconds  float64   `yaml:"total_time_seconds"`
	TotalMissedClicks int       `yaml:"total_missed_clicks"`
	HighestStreak     int       `yaml:"highest_streak"`
	CompletedAt       time.Time `yaml:"completed_at"`
}

// SummaryPath returns <dir>/summary_<CursorType>_<sessionID>.yaml
func SummaryPath(dir, cursorType, sessionID string) string {
	return filepath.Join(dir, fmt.Sprintf("summary_%s_%s.yaml", cursorType, sessionID))
}

// WriteSummary persists s next to the trial log and returns the file path
func WriteSummary(dir, sessionID string, s study.Summary, at time.Time) (string, error) {
	if dir == "" {
		return "", ErrPathUnset
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	doc := SummaryFile{
		SessionID:         sessionID,
		ParticipantID:     s.ParticipantID,
		Cursor:            s.Cursor.String(),
		TotalTrials:       s.TotalTrials,
		TotalTimeSeconds:  s.TotalTime.Seconds(),
		TotalMissedClicks: s.TotalMissedClicks,
		HighestStreak:     s.HighestStreak,
		CompletedAt:       at.UTC(),
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	path := SummaryPath(dir, doc.Cursor, sessionID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadSummary loads a persisted summary
func ReadSummary(path string) (SummaryFile, error) {
	var doc SummaryFile
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// SummarySink writes the summary file when the study completes
// Failures are logged; the ending screen still shows
type SummarySink struct {
	study.NopListener

	Dir       string
	SessionID string
	Now       func() time.Time
	Log       *zap.Logger

	written string
}

// StudyCompleted persists the summary
func (s *SummarySink) StudyCompleted(sum study.Summary) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	path, err := WriteSummary(s.Dir, s.SessionID, sum, now())
	if err != nil {
		log.Error("summary write failed", zap.Error(err))
		return
	}
	s.written = path
	log.Info("summary written", zap.String("path", path))
}

// Written returns the last summary path, empty if none
func (s *SummarySink) Written() string {
	return s.written
}

package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/clinicore/intake/internal/model"
)

// TurnProcessor defines the interface for processing one turn
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, patientID, text string, conv model.ConversationContext) (*model.TurnResult, error)
}

// TranscriptLine is one utterance read from a transcript file
type TranscriptLine struct {
	PatientID string
	Text      string
}

// SessionJob replays one patient's utterances in order. Turns within a
// session are strictly sequential; the context snapshot grows turn by
// turn, exactly as a live dialogue would feed the engine.
type SessionJob struct {
	PatientID  string
	Utterances []string
	Processor  TurnProcessor
	Limiter    *Limiter
}

// SessionResult aggregates the turn results of one patient session
type SessionResult struct {
	PatientID string
	Results   []*model.TurnResult
	Error     error
}

// GetError returns the error from the session result
func (r *SessionResult) GetError() error {
	return r.Error
}

// Execute replays the session
func (j *SessionJob) Execute(ctx context.Context) Result {
	res := &SessionResult{PatientID: j.PatientID}
	conv := model.NewConversationContext(time.Now().UTC())

	for _, utterance := range j.Utterances {
		if j.Limiter != nil {
			if err := j.Limiter.Wait(ctx, j.PatientID); err != nil {
				res.Error = fmt.Errorf("rate limit wait: %w", err)
				return res
			}
		}

		turnResult, err := j.Processor.ProcessTurn(ctx, j.PatientID, utterance, conv)
		if err != nil {
			res.Error = fmt.Errorf("turn %q: %w", utterance, err)
			return res
		}
		res.Results = append(res.Results, turnResult)
		conv = conv.WithTurn("patient", utterance, time.Now().UTC())
	}

	return res
}

// BatchProcessor replays transcript files. Sessions for different
// patients run concurrently; turns within a session never do.
type BatchProcessor struct {
	processor   TurnProcessor
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor TurnProcessor, limiter *Limiter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessLines groups transcript lines into per-patient sessions and
// replays the sessions concurrently
func (b *BatchProcessor) ProcessLines(ctx context.Context, lines []TranscriptLine) []*SessionResult {
	if len(lines) == 0 {
		return []*SessionResult{}
	}

	// Group by patient, preserving utterance order within each session
	sessions := make(map[string][]string)
	var order []string
	for _, line := range lines {
		if _, seen := sessions[line.PatientID]; !seen {
			order = append(order, line.PatientID)
		}
		sessions[line.PatientID] = append(sessions[line.PatientID], line.Text)
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, patientID := range order {
		pool.Submit(&SessionJob{
			PatientID:  patientID,
			Utterances: sessions[patientID],
			Processor:  b.processor,
			Limiter:    b.limiter,
		})
	}

	results := pool.Wait()

	sessionResults := make([]*SessionResult, len(results))
	for i, result := range results {
		sessionResults[i] = result.(*SessionResult)
	}

	return sessionResults
}

// ProcessFile reads a transcript file and replays it concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, defaultPatient string) ([]*SessionResult, error) {
	lines, err := ReadTranscript(filePath, defaultPatient)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	return b.ProcessLines(ctx, lines), nil
}

// ReadTranscript reads utterances from a file, one per line, in the form
// "patient_id|utterance". Lines without a separator belong to
// defaultPatient; empty lines and #-comments are skipped.
func ReadTranscript(filePath, defaultPatient string) ([]TranscriptLine, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []TranscriptLine

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patientID, text := defaultPatient, line
		if idx := strings.Index(line, "|"); idx > 0 {
			patientID = strings.TrimSpace(line[:idx])
			text = strings.TrimSpace(line[idx+1:])
		}
		if patientID == "" || text == "" {
			continue
		}
		lines = append(lines, TranscriptLine{PatientID: patientID, Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}

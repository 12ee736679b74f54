package sync

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	defaultChunkSize  = 25
	defaultChunkPause = 250 * time.Millisecond
	defaultPaceFloor  = time.Second
)

// ErrBadSignature is returned when a webhook payload fails the
// shared-secret check.
var ErrBadSignature = errors.New("webhook signature mismatch")

// RecordFetcher pulls one page of raw records for an integration.
// Implemented by Fetcher; an interface here so runs can be tested without a
// network.
type RecordFetcher interface {
	Fetch(ctx context.Context, cfg *integration.Integration, limit int) ([]map[string]interface{}, error)
}

// UnseenRetirer applies the integration's deletion strategy to active rows
// absent from the current feed pull. Implemented by the retention service.
type UnseenRetirer interface {
	RetireUnseen(ctx context.Context, cfg *integration.Integration, seenExternalIDs []string) (int, []string, error)
}

type SyncService interface {
	RunOne(ctx context.Context, id string) (*SyncResult, error)
	RunAll(ctx context.Context) ([]SyncResult, error)
	RunWebhook(ctx context.Context, id string, payload []byte, signature string) (*SyncResult, error)
	ListLogs(ctx context.Context, sourceID string, limit int64) ([]SyncResult, error)
	ExportLogs(ctx context.Context, sourceID string) ([]byte, string, error)
}

type SyncServiceImpl struct {
	IntegrationRepo integration.IntegrationRepository
	PropertyRepo    property.PropertyRepository
	LogRepo         SyncLogRepository
	Fetcher         RecordFetcher
	Retirer         UnseenRetirer
	Logger          *zap.Logger

	ChunkSize  int
	ChunkPause time.Duration
	PaceFloor  time.Duration
}

func NewSyncService(
	integrationRepo integration.IntegrationRepository,
	propertyRepo property.PropertyRepository,
	logRepo SyncLogRepository,
	fetcher RecordFetcher,
	retirer UnseenRetirer,
	logger *zap.Logger,
) SyncService {
	return &SyncServiceImpl{
		IntegrationRepo: integrationRepo,
		PropertyRepo:    propertyRepo,
		LogRepo:         logRepo,
		Fetcher:         fetcher,
		Retirer:         retirer,
		Logger:          logger,
		ChunkSize:       defaultChunkSize,
		ChunkPause:      defaultChunkPause,
		PaceFloor:       defaultPaceFloor,
	}
}

func (s *SyncServiceImpl) RunOne(ctx context.Context, id string) (*SyncResult, error) {
	cfg, err := s.IntegrationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runPull(ctx, cfg)
}

// RunAll syncs every active integration sequentially, pacing runs by each
// source's rate limit. A failing run is recorded and does not stop the
// remaining integrations.
func (s *SyncServiceImpl) RunAll(ctx context.Context) ([]SyncResult, error) {
	configs, err := s.IntegrationRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, 0, len(configs))
	for i := range configs {
		cfg := &configs[i]

		res, runErr := s.runPull(ctx, cfg)
		if runErr != nil {
			s.Logger.Error("sync run failed",
				zap.String("integration", cfg.ID.Hex()),
				zap.Error(runErr),
			)
		}
		if res != nil {
			results = append(results, *res)
		}

		if i < len(configs)-1 {
			time.Sleep(s.pace(cfg.RateLimit))
		}
	}

	return results, nil
}

// RunWebhook feeds a pushed payload through the same mapping, validation
// and persistence path as a pull. Push payloads may be partial, so no
// feed-diff retirement happens here.
func (s *SyncServiceImpl) RunWebhook(ctx context.Context, id string, payload []byte, signature string) (*SyncResult, error) {
	cfg, err := s.IntegrationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := verifySignature(cfg.WebhookSecret, payload, signature); err != nil {
		return nil, err
	}

	var body interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		formatErr := fmt.Errorf("undecodable webhook payload: %w", err)
		res := s.errorResult(cfg, time.Now(), formatErr)
		s.appendLog(ctx, res)
		return res, formatErr
	}

	return s.run(ctx, cfg, normalizeRecords(body), false)
}

func (s *SyncServiceImpl) ListLogs(ctx context.Context, sourceID string, limit int64) ([]SyncResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.LogRepo.List(ctx, sourceID, limit)
}

func (s *SyncServiceImpl) runPull(ctx context.Context, cfg *integration.Integration) (*SyncResult, error) {
	start := time.Now()

	raws, err := s.Fetcher.Fetch(ctx, cfg, 0)
	if err != nil {
		res := s.errorResult(cfg, start, err)
		s.appendLog(ctx, res)
		return res, err
	}

	return s.run(ctx, cfg, raws, true)
}

// run is the shared pipeline behind pull and push entry points: map each
// raw record, validate, batch, persist in chunks, retire unseen rows when
// the feed allows it, and append exactly one result to the sync log.
func (s *SyncServiceImpl) run(ctx context.Context, cfg *integration.Integration, raws []map[string]interface{}, fromFeed bool) (*SyncResult, error) {
	start := time.Now()
	res := &SyncResult{
		SourceID:  cfg.ID,
		StartedAt: start,
		Status:    StatusSuccess,
	}

	syncedAt := time.Now().UTC()
	batch := make([]property.Property, 0, len(raws))
	seen := make([]string, 0, len(raws))

	for i, raw := range raws {
		p, err := MapRecord(raw, cfg.Mapping)
		if err != nil {
			res.ErrorCount++
			res.ErrorMessages = append(res.ErrorMessages, fmt.Sprintf("record %d: %v", i, err))
			continue
		}

		if violations := Validate(p); len(violations) > 0 {
			res.ErrorCount++
			res.ErrorMessages = append(res.ErrorMessages,
				fmt.Sprintf("record %d (%s): %s", i, p.ExternalID, strings.Join(violations, "; ")))
			continue
		}

		p.SourceID = cfg.ID
		p.SyncedAt = syncedAt
		p.Active = true
		batch = append(batch, *p)
		seen = append(seen, p.ExternalID)
	}

	// Persist in fixed-size chunks with a short pause between them to
	// bound backend write load. A chunk failure is fatal to the run;
	// already-committed chunks stay in place.
	var persistErr error
	for i := 0; i < len(batch); i += s.ChunkSize {
		end := min(i+s.ChunkSize, len(batch))
		if err := s.PropertyRepo.BulkUpsert(ctx, batch[i:end]); err != nil {
			persistErr = fmt.Errorf("failed to persist chunk at offset %d: %w", i, err)
			break
		}
		res.Processed += end - i

		if end < len(batch) && s.ChunkPause > 0 {
			time.Sleep(s.ChunkPause)
		}
	}

	if persistErr != nil {
		res.Status = StatusError
		res.ErrorMessages = append(res.ErrorMessages, persistErr.Error())
	} else {
		if fromFeed && cfg.Deletion.Enabled && s.Retirer != nil {
			deleted, deletedIDs, err := s.Retirer.RetireUnseen(ctx, cfg, seen)
			if err != nil {
				res.ErrorCount++
				res.ErrorMessages = append(res.ErrorMessages, fmt.Sprintf("retire unseen: %v", err))
			}
			res.Deleted = deleted
			res.DeletedIDs = deletedIDs
		}

		if res.ErrorCount > 0 && res.Processed > 0 {
			res.Status = StatusPartial
		}
	}

	res.DurationMs = time.Since(start).Milliseconds()
	s.appendLog(ctx, res)

	return res, persistErr
}

func (s *SyncServiceImpl) errorResult(cfg *integration.Integration, start time.Time, err error) *SyncResult {
	return &SyncResult{
		SourceID:      cfg.ID,
		StartedAt:     start,
		Status:        StatusError,
		ErrorMessages: []string{err.Error()},
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

// appendLog writes the run result to the sync log. Log-write failures are
// swallowed: observability must never fail the business operation.
func (s *SyncServiceImpl) appendLog(ctx context.Context, res *SyncResult) {
	if err := s.LogRepo.Create(ctx, res); err != nil {
		s.Logger.Warn("failed to write sync log",
			zap.String("integration", res.SourceID.Hex()),
			zap.Error(err),
		)
	}
}

// pace derives the delay between two runs from the source's rate limit,
// never dropping below the floor.
func (s *SyncServiceImpl) pace(rateLimit int) time.Duration {
	if rateLimit <= 0 {
		return s.PaceFloor
	}
	d := time.Minute / time.Duration(rateLimit)
	if d < s.PaceFloor {
		return s.PaceFloor
	}
	return d
}

func verifySignature(secret string, payload []byte, signature string) error {
	if secret == "" {
		return nil
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// ExportLogs renders recent run results as an XLSX workbook for operators.
func (s *SyncServiceImpl) ExportLogs(ctx context.Context, sourceID string) ([]byte, string, error) {
	results, err := s.LogRepo.List(ctx, sourceID, 1000)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sync Logs"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Started At", "Source", "Status", "Processed", "Errors", "Deleted", "Duration (ms)", "Messages"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for row, r := range results {
		values := []interface{}{
			r.StartedAt.Format(time.RFC3339),
			r.SourceID.Hex(),
			r.Status,
			r.Processed,
			r.ErrorCount,
			r.Deleted,
			r.DurationMs,
			strings.Join(r.ErrorMessages, " | "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("sync_logs_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

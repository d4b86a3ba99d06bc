package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"debtster-core/internal/clients"
	"debtster-core/internal/domain"
	"debtster-core/internal/engine"
	"debtster-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReportStorage is where generated XLSX files land; satisfied by both the
// local StorageClient and the S3Client.
type ReportStorage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	Created  time.Time `json:"created_at"`
}

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute

	agingCacheKey = "aging_report"
	agingCacheTTL = 5 * time.Minute
)

// AgingReport is the cached portfolio risk snapshot.
type AgingReport struct {
	AsOf         time.Time            `json:"as_of"`
	Buckets      []engine.AgingBucket `json:"buckets"`
	TotalOverdue decimal.Decimal      `json:"total_overdue"`
	ItemCount    int                  `json:"item_count"`
}

type ReportService struct {
	titles  TitleRepository
	redis   *clients.RedisClient
	storage ReportStorage
	ws      *clients.WebSocketClient
	now     func() time.Time
}

func NewReportService(
	titles TitleRepository,
	redis *clients.RedisClient,
	storage ReportStorage,
	ws *clients.WebSocketClient,
) *ReportService {
	return &ReportService{
		titles:  titles,
		redis:   redis,
		storage: storage,
		ws:      ws,
		now:     time.Now,
	}
}

// Aging classifies every effectively open installment into the fixed overdue
// buckets. Snapshots for a given day are cached briefly; the dashboard polls
// this endpoint.
func (s *ReportService) Aging(ctx context.Context, asOf time.Time) (*AgingReport, error) {
	asOf = engine.DateOnly(asOf)
	cacheKey := fmt.Sprintf("%s:%s", agingCacheKey, asOf.Format("2006-01-02"))

	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey); err == nil {
			var cached AgingReport
			if err := json.Unmarshal([]byte(data), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	titles, err := s.titles.List(ctx, repository.TitlesFilter{})
	if err != nil {
		return nil, err
	}

	items := collectAgingItems(titles, asOf)
	report := &AgingReport{
		AsOf:      asOf,
		Buckets:   engine.ClassifyAging(items, asOf),
		ItemCount: 0,
	}
	for _, b := range report.Buckets {
		report.TotalOverdue = report.TotalOverdue.Add(b.Value)
		report.ItemCount += b.Count
	}

	if s.redis != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.redis.Set(ctx, cacheKey, string(data), agingCacheTTL); err != nil {
				log.Printf("[REPORTS] aging cache write failed: %v", err)
			}
		}
	}

	return report, nil
}

// StartPortfolioExport queues an async XLSX export of the open-debt
// portfolio plus the aging summary and returns the export id the caller
// polls (or listens on the websocket) for.
func (s *ReportService) StartPortfolioExport(ctx context.Context, userID int64) (string, error) {
	exportID := fmt.Sprintf("exports:%s", uuid.NewString())
	now := s.now()

	status := &ExportStatus{
		Key:      exportID,
		Type:     "portfolio",
		UserID:   userID,
		Progress: 0,
		FileURL:  nil,
		Created:  now,
	}
	_ = s.saveExportStatus(ctx, status)

	go s.runPortfolioExport(context.Background(), status)

	return exportID, nil
}

func (s *ReportService) runPortfolioExport(ctx context.Context, status *ExportStatus) {
	userID := status.UserID
	exportID := status.Key

	fail := func(err error) {
		log.Printf("[REPORTS] portfolio export %s failed: %v", exportID, err)
		if s.ws != nil {
			_ = s.ws.NotifyReportFailed(ctx, userID, exportID, err.Error())
		}
	}

	titles, err := s.titles.List(ctx, repository.TitlesFilter{})
	if err != nil {
		fail(err)
		return
	}

	today := engine.DateOnly(s.now())
	debts, inconsistencies := engine.GroupDebts(titles, today)
	for _, inc := range inconsistencies {
		log.Printf("[REPORTS] inconsistent title excluded from export: %v", inc)
	}
	open := engine.OpenDebts(debts)

	f := excelize.NewFile()
	sheet := "Open debts"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("user_%d", userID),
	})

	headers := []string{
		"Debt", "Client", "Tax ID", "Installments",
		"Open", "Paid", "Outstanding", "Earliest due date", "Overdue",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	total := len(open)
	chunkSize := 500
	for i, d := range open {
		row := i + 2
		earliest := ""
		if d.EarliestDueDate != nil {
			earliest = d.EarliestDueDate.Format("02/01/2006")
		}
		values := []interface{}{
			d.ID,
			strOrEmpty(d.ClientName),
			strOrEmpty(d.ClientTaxID),
			d.TotalInstallments,
			d.OpenCount,
			d.PaidCount,
			d.TotalOutstanding.StringFixed(2),
			earliest,
			d.HasOverdue,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if (i+1)%chunkSize == 0 || i == total-1 {
			raw := float64(i+1) / float64(total) * 100.0
			progress := math.Round(raw)
			// 100% is reserved for a ready file URL
			if progress >= 100 {
				progress = 95
			}

			status.Progress = progress
			_ = s.saveExportStatus(ctx, status)

			if s.ws != nil {
				_ = s.ws.NotifyReportProgress(ctx, userID, exportID, progress, "generating")
			}
		}
	}

	s.writeAgingSheet(f, titles, today)

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(err)
		return
	}

	fileName := fmt.Sprintf("portfolio_%s.xlsx", s.now().Format("20060102_150405"))

	status.Progress = 95
	_ = s.saveExportStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, userID, exportID, 95, "uploading")
	}

	key, err := s.storage.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		fail(err)
		return
	}
	url, err := s.storage.URL(ctx, key)
	if err != nil {
		fail(err)
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = s.saveExportStatus(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, userID, exportID, 100, "ready")
		_ = s.ws.NotifyReportComplete(ctx, userID, exportID, url, fileName)
	}
}

func (s *ReportService) writeAgingSheet(f *excelize.File, titles []domain.Title, asOf time.Time) {
	sheet := "Aging"
	_, err := f.NewSheet(sheet)
	if err != nil {
		log.Printf("[REPORTS] aging sheet: %v", err)
		return
	}

	buckets := engine.ClassifyAging(collectAgingItems(titles, asOf), asOf)

	headers := []string{"Bracket (days)", "Count", "Value", "Share %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, b := range buckets {
		row := i + 2
		values := []interface{}{b.Label, b.Count, b.Value.StringFixed(2), b.Percent.StringFixed(2)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}

func (s *ReportService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, exportSetKey, st.Key)
}

// collectAgingItems keeps installments and standalone titles that still owe
// something; debt header rows never carry an obligation of their own.
func collectAgingItems(titles []domain.Title, asOf time.Time) []engine.AgingItem {
	var items []engine.AgingItem
	for _, t := range titles {
		if t.Kind() == domain.KindParent {
			continue
		}
		if !engine.IsEffectivelyOpen(t, asOf) {
			continue
		}
		items = append(items, engine.AgingItem{
			DueDate:     t.DueDate,
			Outstanding: t.Amount,
		})
	}
	return items
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jonikpatel/realtime-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

const dateLayout = "2006-01-02"

// snapshot is the product of one CSV load, also the gob cache payload.
type snapshot struct {
	Orders      []models.Order
	SkippedRows int64
	LoadedAt    time.Time
}

// Store owns the order snapshot for the session. It is written once during
// load and read-only afterwards; aggregation works on slices taken under
// RLock, so concurrent request handling never mutates the dataset.
type Store struct {
	mu      sync.RWMutex
	snap    *snapshot
	csvPath string
	logger  *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		snap:   &snapshot{},
		logger: logger,
	}
}

// SetData replaces the snapshot directly, bypassing the CSV loader.
func (s *Store) SetData(orders []models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snapshot{Orders: orders, LoadedAt: time.Now()}
}

// Orders returns the loaded snapshot. Callers must treat it as read-only.
func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Orders
}

// SkippedRows reports how many malformed rows the last load dropped.
func (s *Store) SkippedRows() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.SkippedRows
}

func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facets := CollectFacets(s.snap.Orders)
	return map[string]any{
		"record_count": len(s.snap.Orders),
		"skipped_rows": s.snap.SkippedRows,
		"loaded_at":    s.snap.LoadedAt,
		"regions":      len(facets.Regions),
		"categories":   len(facets.Categories),
	}
}

// LoadFromCSV loads the snapshot, preferring a gob cache that is newer than
// the CSV file itself.
func (s *Store) LoadFromCSV(ctx context.Context, filename string) error {
	s.csvPath = filename

	if cached, err := s.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LoadedAt) {
			s.mu.Lock()
			s.snap = cached
			s.mu.Unlock()
			s.logger.Info("loaded from cache", "records", len(cached.Orders))
			return nil
		}
	}

	start := time.Now()
	s.logger.Info("processing CSV file", "filename", filename)

	snap, err := s.streamLoadCSV(ctx, filename)
	if err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	if snap.SkippedRows > 0 {
		s.logger.Warn("skipped malformed rows", "skipped", snap.SkippedRows)
	}

	if err := s.saveToCache(filename); err != nil {
		s.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := len(snap.Orders)
	s.logger.Info("csv load complete",
		"records", count,
		"skipped", snap.SkippedRows,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (s *Store) streamLoadCSV(ctx context.Context, filename string) (*snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	// Skip header
	if !scanner.Scan() {
		return nil, fmt.Errorf("empty file")
	}

	snap := &snapshot{}
	batch := make([]string, 0, batchSize)

	flush := func() error {
		orders, skipped, err := s.parseBatch(ctx, batch)
		if err != nil {
			return err
		}
		snap.Orders = append(snap.Orders, orders...)
		snap.SkippedRows += skipped
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		batch = append(batch, line)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}

	if len(snap.Orders) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}

	snap.LoadedAt = time.Now()
	return snap, nil
}

// parseBatch parses lines concurrently while preserving input order.
// Malformed rows are skipped and counted, never propagated as errors.
func (s *Store) parseBatch(ctx context.Context, batch []string) ([]models.Order, int64, error) {
	parsed := make([]*models.Order, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for i, line := range batch {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			order, err := parseOrderFast(strings.Split(line, ","))
			if err != nil {
				return nil // skip malformed rows
			}
			parsed[i] = &order
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, len(batch))
	var skipped int64
	for _, o := range parsed {
		if o == nil {
			skipped++
			continue
		}
		orders = append(orders, *o)
	}
	return orders, skipped, nil
}

// parseOrderFast expects the documented column layout:
// order_id, date, region, category, amount.
func parseOrderFast(record []string) (models.Order, error) {
	if len(record) < 5 {
		return models.Order{}, fmt.Errorf("insufficient columns")
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(record[1]))
	if err != nil {
		return models.Order{}, err
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return models.Order{}, err
	}

	orderID := strings.TrimSpace(record[0])
	region := strings.TrimSpace(record[2])
	category := strings.TrimSpace(record[3])
	if orderID == "" || region == "" || category == "" {
		return models.Order{}, fmt.Errorf("missing fields")
	}

	return models.Order{
		OrderID:  orderID,
		Date:     date,
		Region:   region,
		Category: category,
		Amount:   amount,
	}, nil
}

// Cache management
func (s *Store) getCacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (s *Store) saveToCache(csvPath string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	filename := s.getCacheFilename(csvPath)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	s.mu.RLock()
	defer s.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(s.snap)
}

func (s *Store) loadFromCache(csvPath string) (*snapshot, error) {
	filename := s.getCacheFilename(csvPath)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

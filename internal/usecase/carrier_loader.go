package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/internal/infrastructure/router"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/utils"
)

// CarrierLoader aggregates carrier codes across every raw fact file and
// upserts the carriers dimension
type CarrierLoader struct {
	carrierRepo repository.CarrierRepository
	storageRepo repository.StorageRepository
	router      *router.SourceRouter
	logger      logger.Logger
	prefix      string
}

// NewCarrierLoader creates a new carrier loader
func NewCarrierLoader(
	carrierRepo repository.CarrierRepository,
	storageRepo repository.StorageRepository,
	sourceRouter *router.SourceRouter,
	logger logger.Logger,
	prefix string,
) *CarrierLoader {
	return &CarrierLoader{
		carrierRepo: carrierRepo,
		storageRepo: storageRepo,
		router:      sourceRouter,
		logger:      logger,
		prefix:      prefix,
	}
}

// Load scans every fact file for carrier codes and DOT ids, merges them
// in sorted code order so the synthesized rows are reproducible across
// runs, and upserts conflict do-nothing
func (l *CarrierLoader) Load(ctx context.Context) error {
	keys, err := l.storageRepo.List(ctx, l.prefix)
	if err != nil {
		return fmt.Errorf("failed to list raw files: %w", err)
	}

	dotIDs := make(map[string]*int)
	scanned := 0
	for _, file := range l.router.Classify(keys) {
		if file.Source != entity.SourceFlights {
			continue
		}
		if err := l.scanFile(ctx, file.Key, dotIDs); err != nil {
			return err
		}
		scanned++
	}
	if len(dotIDs) == 0 {
		l.logger.Warn("No carrier codes found in raw files", "filesScanned", scanned)
		return nil
	}

	codes := make([]string, 0, len(dotIDs))
	for code := range dotIDs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	carriers := make([]entity.Carrier, 0, len(codes))
	for _, code := range codes {
		carriers = append(carriers, entity.Carrier{
			Code:  code,
			Name:  entity.CarrierName(code),
			DotID: dotIDs[code],
		})
	}

	inserted, err := l.carrierRepo.BulkUpsert(ctx, carriers)
	if err != nil {
		return fmt.Errorf("failed to upsert carriers: %w", err)
	}
	l.logger.Info("Carriers dimension loaded", "filesScanned", scanned, "distinct", len(carriers), "inserted", inserted)
	return nil
}

// scanFile reads only the carrier columns of one fact file. The first
// DOT id seen for a code wins.
func (l *CarrierLoader) scanFile(ctx context.Context, key string, dotIDs map[string]*int) error {
	rc, err := l.storageRepo.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", key, err)
	}
	carrierIdx, dotIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Reporting_Airline":
			carrierIdx = i
		case "DOT_ID_Reporting_Airline":
			dotIdx = i
		}
	}
	if carrierIdx < 0 {
		return fmt.Errorf("file %s: missing required columns: Reporting_Airline", key)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if carrierIdx >= len(record) {
			continue
		}
		code := strings.TrimSpace(record[carrierIdx])
		if code == "" {
			continue
		}
		if _, seen := dotIDs[code]; seen {
			continue
		}
		var dotID *int
		if dotIdx >= 0 && dotIdx < len(record) {
			dotID = utils.SafeInt(record[dotIdx])
		}
		dotIDs[code] = dotID
	}
	return nil
}

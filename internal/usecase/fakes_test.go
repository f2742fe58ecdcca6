package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"
)

// In-memory fakes for the warehouse repositories and object storage so
// loader behavior tests run without a database.

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (l nopLogger) With(...interface{}) logger.Logger { return l }

type fakeStorage struct {
	objects map[string]string
	fail    map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}, fail: map[string]error{}}
}

func (s *fakeStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *fakeStorage) Upload(ctx context.Context, key, localPath string) error {
	s.objects[key] = localPath
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.fail[key]; err != nil {
		return nil, err
	}
	content, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader([]byte(content))), nil
}

func (s *fakeStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

type fakeAirportRepo struct {
	byCode map[string]entity.Airport
	order  []string
}

func newFakeAirportRepo(codes ...string) *fakeAirportRepo {
	r := &fakeAirportRepo{byCode: map[string]entity.Airport{}}
	for _, code := range codes {
		r.byCode[code] = entity.Airport{Code: code}
		r.order = append(r.order, code)
	}
	return r
}

func (r *fakeAirportRepo) BulkUpsert(ctx context.Context, airports []entity.Airport) (int, error) {
	inserted := 0
	for _, a := range airports {
		if _, ok := r.byCode[a.Code]; ok {
			continue
		}
		r.byCode[a.Code] = a
		r.order = append(r.order, a.Code)
		inserted++
	}
	return inserted, nil
}

func (r *fakeAirportRepo) Codes(ctx context.Context) ([]string, error) {
	codes := append([]string(nil), r.order...)
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeAirportRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.byCode)), nil
}

func (r *fakeAirportRepo) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	a, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("airport %s not found", code)
	}
	return &a, nil
}

type fakeCarrierRepo struct {
	byCode map[string]entity.Carrier
	order  []string
}

func newFakeCarrierRepo(codes ...string) *fakeCarrierRepo {
	r := &fakeCarrierRepo{byCode: map[string]entity.Carrier{}}
	for _, code := range codes {
		r.byCode[code] = entity.Carrier{Code: code, Name: entity.CarrierName(code)}
		r.order = append(r.order, code)
	}
	return r
}

func (r *fakeCarrierRepo) BulkUpsert(ctx context.Context, carriers []entity.Carrier) (int, error) {
	inserted := 0
	for _, c := range carriers {
		if _, ok := r.byCode[c.Code]; ok {
			continue
		}
		r.byCode[c.Code] = c
		r.order = append(r.order, c.Code)
		inserted++
	}
	return inserted, nil
}

func (r *fakeCarrierRepo) Codes(ctx context.Context) ([]string, error) {
	codes := append([]string(nil), r.order...)
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeCarrierRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.byCode)), nil
}

type fakeDateRepo struct {
	dates map[string]entity.DateDim
}

func newFakeDateRepo(dates ...time.Time) *fakeDateRepo {
	r := &fakeDateRepo{dates: map[string]entity.DateDim{}}
	for _, d := range dates {
		dim := entity.NewDateDim(d)
		r.dates[dim.DateID.Format("2006-01-02")] = dim
	}
	return r
}

func (r *fakeDateRepo) BulkUpsert(ctx context.Context, dims []entity.DateDim) (int, error) {
	inserted := 0
	for _, dim := range dims {
		key := dim.DateID.Format("2006-01-02")
		if _, ok := r.dates[key]; ok {
			continue
		}
		r.dates[key] = dim
		inserted++
	}
	return inserted, nil
}

func (r *fakeDateRepo) DateIDs(ctx context.Context) ([]time.Time, error) {
	keys := make([]string, 0, len(r.dates))
	for k := range r.dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ids := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, r.dates[k].DateID)
	}
	return ids, nil
}

func (r *fakeDateRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.dates)), nil
}

type fakeFlightRepo struct {
	rows        map[string]entity.Flight
	inserts     int
	outOfRange  int64
	origUnknown int64
	destUnknown int64
	stats       entity.FlightStats
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{rows: map[string]entity.Flight{}}
}

func flightKey(f entity.Flight) string {
	num := -1
	if f.FlightNumber != nil {
		num = *f.FlightNumber
	}
	return fmt.Sprintf("%s|%s|%d|%s", f.FlightDate.Format("2006-01-02"), f.CarrierCode, num, f.OriginAirport)
}

// BulkInsert mirrors the conflict do-nothing target: duplicate natural
// keys are absorbed silently
func (r *fakeFlightRepo) BulkInsert(ctx context.Context, flights []entity.Flight) error {
	r.inserts++
	for _, f := range flights {
		key := flightKey(f)
		if _, ok := r.rows[key]; ok {
			continue
		}
		r.rows[key] = f
	}
	return nil
}

func (r *fakeFlightRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeFlightRepo) CountUnknownOrigins(ctx context.Context) (int64, error) {
	return r.origUnknown, nil
}

func (r *fakeFlightRepo) CountUnknownDests(ctx context.Context) (int64, error) {
	return r.destUnknown, nil
}

func (r *fakeFlightRepo) CountArrDelaysOutOfRange(ctx context.Context, floor, ceil float64) (int64, error) {
	return r.outOfRange, nil
}

func (r *fakeFlightRepo) Stats(ctx context.Context) (*entity.FlightStats, error) {
	stats := r.stats
	stats.TotalFlights = int64(len(r.rows))
	return &stats, nil
}

type fakeRejectRepo struct {
	records []entity.RejectedRecord
}

func (r *fakeRejectRepo) BulkInsert(ctx context.Context, records []entity.RejectedRecord) error {
	r.records = append(r.records, records...)
	return nil
}

func (r *fakeRejectRepo) CountByFile(ctx context.Context, source, fileName string) (int64, error) {
	var count int64
	for _, rec := range r.records {
		if rec.Source == source && rec.FileName == fileName {
			count++
		}
	}
	return count, nil
}

type fakeRunRepo struct {
	runs map[string]entity.PipelineRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: map[string]entity.PipelineRun{}}
}

func runKey(fileName, source string) string { return fileName + "|" + source }

func (r *fakeRunRepo) Upsert(ctx context.Context, run *entity.PipelineRun) error {
	key := runKey(run.FileName, run.Source)
	if existing, ok := r.runs[key]; ok {
		run.StartedAt = existing.StartedAt
	}
	r.runs[key] = *run
	return nil
}

func (r *fakeRunRepo) CompletedFileNames(ctx context.Context, source string) ([]string, error) {
	var names []string
	for _, run := range r.runs {
		if run.Source == source && run.Status == entity.RunStatusCompleted {
			names = append(names, run.FileName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *fakeRunRepo) LatestCompleted(ctx context.Context, source string) (*entity.PipelineRun, error) {
	var latest *entity.PipelineRun
	for key := range r.runs {
		run := r.runs[key]
		if run.Source != source || run.Status != entity.RunStatusCompleted {
			continue
		}
		if latest == nil || (run.CompletedAt != nil && latest.CompletedAt != nil && run.CompletedAt.After(*latest.CompletedAt)) {
			latest = &run
		}
	}
	return latest, nil
}

func (r *fakeRunRepo) GetByFileAndSource(ctx context.Context, fileName, source string) (*entity.PipelineRun, error) {
	run, ok := r.runs[runKey(fileName, source)]
	if !ok {
		return nil, fmt.Errorf("run %s/%s not found", source, fileName)
	}
	return &run, nil
}

type fakeWeatherRepo struct {
	rows map[string]entity.WeatherObservation
}

func newFakeWeatherRepo() *fakeWeatherRepo {
	return &fakeWeatherRepo{rows: map[string]entity.WeatherObservation{}}
}

func (r *fakeWeatherRepo) BulkInsert(ctx context.Context, observations []entity.WeatherObservation) error {
	for _, obs := range observations {
		key := obs.Key()
		if _, ok := r.rows[key]; ok {
			continue
		}
		r.rows[key] = obs
	}
	return nil
}

func (r *fakeWeatherRepo) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{}, len(r.rows))
	for key := range r.rows {
		keys[key] = struct{}{}
	}
	return keys, nil
}

func (r *fakeWeatherRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeWeatherRepo) CountAirportsCovered(ctx context.Context) (int64, error) {
	airports := map[string]struct{}{}
	for _, obs := range r.rows {
		airports[obs.AirportCode] = struct{}{}
	}
	return int64(len(airports)), nil
}

func (r *fakeWeatherRepo) CountDatesCovered(ctx context.Context) (int64, error) {
	dates := map[string]struct{}{}
	for _, obs := range r.rows {
		dates[obs.ObservationDate.Format("2006-01-02")] = struct{}{}
	}
	return int64(len(dates)), nil
}

func (r *fakeWeatherRepo) Stats(ctx context.Context) (*entity.WeatherStats, error) {
	airports, _ := r.CountAirportsCovered(ctx)
	return &entity.WeatherStats{
		TotalObservations: int64(len(r.rows)),
		AirportsCovered:   airports,
	}, nil
}

type fakeWeatherSource struct {
	airports     []string
	observations map[string][]entity.WeatherObservation
	err          error
}

func (s *fakeWeatherSource) MappedAirports() []string { return s.airports }

func (s *fakeWeatherSource) FetchObservations(ctx context.Context, airportCode string, start, end time.Time) ([]entity.WeatherObservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.observations[airportCode], nil
}

var (
	_ repository.StorageRepository        = (*fakeStorage)(nil)
	_ repository.AirportRepository        = (*fakeAirportRepo)(nil)
	_ repository.CarrierRepository        = (*fakeCarrierRepo)(nil)
	_ repository.DateDimRepository        = (*fakeDateRepo)(nil)
	_ repository.FlightRepository         = (*fakeFlightRepo)(nil)
	_ repository.RejectedRecordRepository = (*fakeRejectRepo)(nil)
	_ repository.PipelineRunRepository    = (*fakeRunRepo)(nil)
	_ repository.WeatherRepository        = (*fakeWeatherRepo)(nil)
	_ repository.WeatherSourceRepository  = (*fakeWeatherSource)(nil)
)

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errNotLoaded is returned before the dataset has been loaded.
var errNotLoaded = errors.New("dataset not loaded")

// Dataset is the fetched column schema and record list.
type Dataset struct {
	Columns []Column
	Records []Record

	columnsByID  map[string]Column
	recordsByKey map[string]int
}

func newDataset(columns []Column, records []Record) *Dataset {
	d := &Dataset{
		Columns:      columns,
		Records:      records,
		columnsByID:  make(map[string]Column, len(columns)),
		recordsByKey: make(map[string]int, len(records)),
	}
	for _, col := range columns {
		d.columnsByID[col.ID] = col
	}
	for i, rec := range records {
		if first, dup := d.recordsByKey[rec.Key]; dup {
			logger.Named("service").Warn("duplicate record key, only the first is reachable",
				zap.String("key", rec.Key), zap.Int("first", first), zap.Int("dropped", i))
			continue
		}
		d.recordsByKey[rec.Key] = i
	}
	return d
}

func (d *Dataset) column(id string) (Column, bool) {
	col, ok := d.columnsByID[id]
	return col, ok
}

func (d *Dataset) record(key string) (Record, error) {
	i, ok := d.recordsByKey[key]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrRecordNotFound, key)
	}
	return d.Records[i], nil
}

// Service represents the application service with its data source
type Service struct {
	source Source
	config *Config
	layout Layout
	msgs   Messages
	db     *sql.DB // set when the source is SQL backed
	log    *zap.Logger

	mu       sync.RWMutex
	data     *Dataset
	renderer *Renderer
	loadErr  error
}

// NewService creates a new service instance bound to a data source
func NewService(config *Config, source Source, layout Layout, msgs Messages) *Service {
	return &Service{
		source: source,
		config: config,
		layout: layout,
		msgs:   msgs,
		log:    logger.Named("service"),
	}
}

// Load fetches the column schema and the records concurrently. Both must
// succeed; a failure is kept and every later request reports it.
func (s *Service) Load(ctx context.Context) error {
	var (
		columns []Column
		records []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columns, err = s.source.Columns(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.source.Records(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = err
		s.log.Error("failed to load directory", zap.Error(err))
		return err
	}

	s.data = newDataset(columns, records)
	s.renderer = NewRenderer(columns, s.layout, s.config, s.msgs)
	s.loadErr = nil
	s.log.Info("directory loaded", zap.Int("columns", len(columns)), zap.Int("records", len(records)))
	return nil
}

// SetLayout swaps the slot layout used by later renders.
func (s *Service) SetLayout(layout Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = layout
	if s.data != nil {
		s.renderer = NewRenderer(s.data.Columns, layout, s.config, s.msgs)
	}
}

func (s *Service) currentLayout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

func (s *Service) dataset() (*Dataset, error) {
	data, _, err := s.snapshot()
	return data, err
}

func (s *Service) snapshot() (*Dataset, *Renderer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr != nil {
		return nil, nil, s.loadErr
	}
	if s.data == nil {
		return nil, nil, errNotLoaded
	}
	return s.data, s.renderer, nil
}

func (s *Service) loadFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr != nil || s.data == nil
}

// Close releases the database handle of a SQL source.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// FetchError reports a non-success HTTP status from the data API.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error %d fetching %s", e.StatusCode, e.URL)
}

// Source provides the column schema and the record list.
type Source interface {
	Columns(ctx context.Context) ([]Column, error)
	Records(ctx context.Context) ([]Record, error)
}

// HTTPSource reads both resources from the remote data API.
type HTTPSource struct {
	client     *http.Client
	columnsURL string
	recordsURL string
	log        *zap.Logger
}

func NewHTTPSource(client *http.Client, columnsURL, recordsURL string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		client:     client,
		columnsURL: columnsURL,
		recordsURL: recordsURL,
		log:        logger.Named("fetcher"),
	}
}

func (s *HTTPSource) Columns(ctx context.Context) ([]Column, error) {
	body, err := s.fetch(ctx, s.columnsURL, "columns")
	if err != nil {
		return nil, err
	}
	return decodeColumns(body)
}

func (s *HTTPSource) Records(ctx context.Context) ([]Record, error) {
	body, err := s.fetch(ctx, s.recordsURL, "records")
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// fetch issues a GET and returns the body. Transport errors are returned as is.
func (s *HTTPSource) fetch(ctx context.Context, url, resource string) ([]byte, error) {
	start := time.Now()
	defer func() {
		fetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("fetch failed", zap.String("url", url), zap.Error(err))
		fetchFailures.WithLabelValues(resource).Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ferr := &FetchError{URL: url, StatusCode: resp.StatusCode}
		s.log.Error("fetch returned bad status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		fetchFailures.WithLabelValues(resource).Inc()
		return nil, ferr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Error("failed to read body", zap.String("url", url), zap.Error(err))
		fetchFailures.WithLabelValues(resource).Inc()
		return nil, err
	}
	s.log.Debug("fetched resource", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const testColumnsJSON = `[
	{"id": "nom", "fields": {"label": "Nom", "type": "Text", "widgetOptions": ""}},
	{"id": "ville", "fields": {"label": "Ville", "type": "Choice", "widgetOptions": "{\"choices\":[\"Paris\",\"Lyon\",\"Nantes\"]}"}},
	{"id": "specialites", "fields": {"label": "Spécialités", "type": "Choice", "widgetOptions": "{\"choices\":[\"TCC\",\"EMDR\",\"Hypnose\"]}"}},
	{"id": "photo", "fields": {"label": "Photo", "type": "Attachments", "widgetOptions": ""}},
	{"id": "description", "fields": {"label": "Description", "type": "Text", "widgetOptions": ""}},
	{"id": "teleconsultation", "fields": {"label": "Téléconsultation", "type": "Bool", "widgetOptions": ""}},
	{"id": "langues", "fields": {"label": "Langues", "type": "Text", "widgetOptions": ""}},
	{"id": "diplome", "fields": {"label": "Diplôme", "type": "Attachments", "widgetOptions": ""}}
]`

const testRecordsJSON = `[
	{"id": 1, "nom": "Alice", "ville": "Paris", "photo": ["L", "att123"], "specialites": ["TCC", "EMDR"],
	 "teleconsultation": true, "langues": ["fr", "en"], "diplome": ["L", "dip9"]},
	{"id": 2, "nom": "Bruno", "ville": "Lyon", "photo": null, "specialites": "Hypnose", "description": "Psychologue",
	 "teleconsultation": false}
]`

// stubSource serves fixed collections or errors.
type stubSource struct {
	columns    []Column
	records    []Record
	columnsErr error
	recordsErr error
}

func (s *stubSource) Columns(ctx context.Context) ([]Column, error) {
	return s.columns, s.columnsErr
}

func (s *stubSource) Records(ctx context.Context) ([]Record, error) {
	return s.records, s.recordsErr
}

func testFixtures(t *testing.T) ([]Column, []Record) {
	t.Helper()
	columns, err := decodeColumns([]byte(testColumnsJSON))
	require.NoError(t, err)
	records, err := decodeRecords([]byte(testRecordsJSON))
	require.NoError(t, err)
	return columns, records
}

func testConfig() *Config {
	return &Config{
		AttachmentBaseURL:    "https://files.example.com/attachments",
		AttachmentEndpointID: "dir42",
		Locale:               "fr",
		FrameAncestors:       "*",
	}
}

func testMessages(t *testing.T) Messages {
	t.Helper()
	msgs, err := loadMessages("fr")
	require.NoError(t, err)
	return msgs
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	layout, err := loadLayout("")
	require.NoError(t, err)
	return layout
}

// newTestService returns a loaded service over the fixtures.
func newTestService(t *testing.T) *Service {
	t.Helper()
	columns, records := testFixtures(t)
	svc := NewService(testConfig(), &stubSource{columns: columns, records: records}, testLayout(t), testMessages(t))
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func recordKeys(records []Record) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys
}

func makeRecord(key string, fields map[string]Value) Record {
	return Record{Key: key, Fields: fields}
}

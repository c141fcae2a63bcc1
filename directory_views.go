package main

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// renderPage executes the page template into a buffer so a template failure
// never leaves a half-written response.
func renderPage(w http.ResponseWriter, page Page) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", page); err != nil {
		logger.Named("http").Error("failed to render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(page.Status)
	_, _ = buf.WriteTo(w)
}

// HTTP Handlers for the directory views
func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	state := parseAppState(r.URL.Query())
	renderPage(w, s.ListPage(state))
}

func (s *Service) handleProfile(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(mux.Vars(r)["key"])
	if err != nil {
		http.Error(w, "Invalid record key", http.StatusBadRequest)
		return
	}
	state := parseAppState(r.URL.Query())
	renderPage(w, s.ProfilePage(state, key))
}

func (s *Service) handleListColumns(w http.ResponseWriter, r *http.Request) {
	data, err := s.dataset()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, s.msgs.LoadError)
		return
	}
	respondJSON(w, http.StatusOK, data.Columns)
}

func (s *Service) handleListRecords(w http.ResponseWriter, r *http.Request) {
	data, err := s.dataset()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, s.msgs.LoadError)
		return
	}

	state := parseAppState(r.URL.Query())
	records := filterRecords(data.Records, state.Filter)
	records = sortRecords(records, state.Sort.Column, state.Sort.Direction)

	respondJSON(w, http.StatusOK, RecordListResponse{
		Count:   len(records),
		Results: records,
	})
}

func (s *Service) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	data, err := s.dataset()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, s.msgs.LoadError)
		return
	}

	key, err := url.PathUnescape(mux.Vars(r)["key"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record key")
		return
	}

	rec, err := data.record(key)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.loadFailed() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

package main

import (
	"net/http"
	"net/url"
)

// ViewMode is the visible pane.
type ViewMode string

const (
	ViewList    ViewMode = "list"
	ViewProfile ViewMode = "profile"
)

// ViewState is the visible pane and, in profile mode, the selected record.
type ViewState struct {
	Mode     ViewMode
	Selected *Record
}

// AppState is everything a page render depends on. It round-trips through
// the URL query so each request owns its own copy.
type AppState struct {
	Filter FilterState
	Sort   SortState
	View   ViewState
}

func newAppState() AppState {
	return AppState{
		Filter: FilterState{},
		Sort:   SortState{Direction: SortAsc},
		View:   ViewState{Mode: ViewList},
	}
}

func parseAppState(q url.Values) AppState {
	state := newAppState()
	state.Filter = parseFilterState(q)
	state.Sort = parseSortState(q)
	return state
}

// Select moves to the profile of rec.
func (s *AppState) Select(rec Record) {
	s.View = ViewState{Mode: ViewProfile, Selected: &rec}
}

// Back returns to the list and drops the selection.
func (s *AppState) Back() {
	s.View = ViewState{Mode: ViewList}
}

// Query encodes filter and sort state.
func (s AppState) Query() url.Values {
	q := url.Values{}
	s.Filter.Encode(q)
	s.Sort.Encode(q)
	return q
}

func (s AppState) withQuery(path string) string {
	if q := s.Query().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// ListURL is the list view carrying the current filter and sort.
func (s AppState) ListURL() string {
	return s.withQuery("/")
}

// ProfileURL is the select transition for a record key.
func (s AppState) ProfileURL(key string) string {
	return s.withQuery("/profile/" + url.PathEscape(key))
}

// ToggleDirectionURL is the list with the sort direction flipped.
func (s AppState) ToggleDirectionURL() string {
	next := s
	next.Sort.ToggleDirection()
	return next.ListURL()
}

// ResizeMessage is posted to the embedding frame whenever content changes.
type ResizeMessage struct {
	Type   string `json:"type"`
	Height int    `json:"height"`
}

// SortOption is one entry of the sort select.
type SortOption struct {
	ColumnID string
	Label    string
	Selected bool
}

// SortBar is the sort select and its direction toggle.
type SortBar struct {
	Options   []SortOption
	Active    bool
	Direction SortDirection
	ToggleURL string
}

// Page is the view-model handed to the page template.
type Page struct {
	Msgs   Messages
	State  AppState
	Resize ResizeMessage
	Status int

	Error   string
	Filters []FilterGroup
	Sort    SortBar
	List    *ListView
	Profile *ProfileView
}

// ShowList reports whether the list and filter regions are visible.
func (p Page) ShowList() bool {
	return p.Error == "" && p.State.View.Mode == ViewList
}

// ShowProfile reports whether the profile region is visible.
func (p Page) ShowProfile() bool {
	return p.Error == "" && p.State.View.Mode == ViewProfile && p.Profile != nil
}

func (s *Service) newPage(state AppState) Page {
	return Page{
		Msgs:   s.msgs,
		State:  state,
		Resize: ResizeMessage{Type: "resize"},
		Status: http.StatusOK,
	}
}

// errorPage is the permanent state after a failed load: the generic message
// and nothing else.
func (s *Service) errorPage(state AppState, status int, message string) Page {
	page := s.newPage(state)
	page.Status = status
	page.Error = message
	return page
}

// ListPage filters and sorts the records and renders the list view.
func (s *Service) ListPage(state AppState) Page {
	data, renderer, err := s.snapshot()
	if err != nil {
		return s.errorPage(state, http.StatusServiceUnavailable, s.msgs.LoadError)
	}

	state.Back()
	records := filterRecords(data.Records, state.Filter)
	records = sortRecords(records, state.Sort.Column, state.Sort.Direction)

	page := s.newPage(state)
	page.Filters = filterGroups(data.Columns, data.Records, state.Filter)
	page.Sort = sortBar(data.Columns, state)
	list := renderer.RenderList(records, state.ProfileURL)
	page.List = &list
	return page
}

// ProfilePage selects a record by key and renders its profile.
func (s *Service) ProfilePage(state AppState, key string) Page {
	data, renderer, err := s.snapshot()
	if err != nil {
		return s.errorPage(state, http.StatusServiceUnavailable, s.msgs.LoadError)
	}

	rec, err := data.record(key)
	if err != nil {
		return s.errorPage(state, http.StatusNotFound, s.msgs.NotFound)
	}

	state.Select(rec)
	page := s.newPage(state)
	profile := renderer.RenderProfile(*state.View.Selected)
	page.Profile = &profile
	return page
}

func sortBar(columns []Column, state AppState) SortBar {
	bar := SortBar{
		Active:    state.Sort.Column != "",
		Direction: state.Sort.Direction,
	}
	for _, col := range columns {
		bar.Options = append(bar.Options, SortOption{
			ColumnID: col.ID,
			Label:    col.Label,
			Selected: col.ID == state.Sort.Column,
		})
	}
	if bar.Active {
		bar.ToggleURL = state.ToggleDirectionURL()
	}
	return bar
}

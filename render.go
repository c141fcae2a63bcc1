package main

import (
	"net/url"
	"strings"
)

// SlotViewKind is how a rendered slot presents its value.
type SlotViewKind string

const (
	SlotHidden SlotViewKind = "hidden"
	SlotText   SlotViewKind = "text"
	SlotTags   SlotViewKind = "tags"
	SlotPhoto  SlotViewKind = "image"
)

// SlotView is the projection of one record value into a slot.
type SlotView struct {
	Column   string
	Kind     SlotViewKind
	Text     string
	Tags     []string
	ImageURL string
}

// CardView is one list card.
type CardView struct {
	Key        string
	ProfileURL string
	Slots      []SlotView
}

// ListView is the list presentation. Empty is set when no card survives.
type ListView struct {
	Cards []CardView
	Empty bool
}

// InfoRow is a labeled "additional info" row of the profile.
type InfoRow struct {
	Column string
	Label  string
	Value  SlotView
}

// ProfileView is the single-record presentation.
type ProfileView struct {
	Key        string
	Slots      []SlotView
	Additional []InfoRow
}

// Renderer projects records into view-models.
type Renderer struct {
	columns    []Column
	byID       map[string]Column
	layout     Layout
	attachBase string
	endpointID string
	msgs       Messages
}

func NewRenderer(columns []Column, layout Layout, config *Config, msgs Messages) *Renderer {
	byID := make(map[string]Column, len(columns))
	for _, col := range columns {
		byID[col.ID] = col
	}
	return &Renderer{
		columns:    columns,
		byID:       byID,
		layout:     layout,
		attachBase: config.AttachmentBaseURL,
		endpointID: config.AttachmentEndpointID,
		msgs:       msgs,
	}
}

// attachmentURL builds {base}/{endpoint}/{id}. An empty endpoint id is skipped.
func (r *Renderer) attachmentURL(id string) string {
	u := strings.TrimRight(r.attachBase, "/")
	if ep := strings.Trim(r.endpointID, "/"); ep != "" {
		u += "/" + ep
	}
	return u + "/" + url.PathEscape(id)
}

// RenderList builds one card per record; profileURL links each card to its
// profile transition.
func (r *Renderer) RenderList(records []Record, profileURL func(key string) string) ListView {
	if len(records) == 0 {
		return ListView{Empty: true}
	}

	cards := make([]CardView, 0, len(records))
	for _, rec := range records {
		slots := make([]SlotView, 0, len(r.layout.Card))
		for _, slot := range r.layout.Card {
			slots = append(slots, r.renderSlot(slot, rec.Get(slot.Column)))
		}
		cards = append(cards, CardView{
			Key:        rec.Key,
			ProfileURL: profileURL(rec.Key),
			Slots:      slots,
		})
	}
	return ListView{Cards: cards}
}

// RenderProfile fills the profile slots, then adds an info row for every other
// column holding a truthy value.
func (r *Renderer) RenderProfile(rec Record) ProfileView {
	view := ProfileView{Key: rec.Key}
	rendered := make(map[string]bool, len(r.layout.Profile))
	for _, slot := range r.layout.Profile {
		view.Slots = append(view.Slots, r.renderSlot(slot, rec.Get(slot.Column)))
		rendered[slot.Column] = true
	}

	for _, col := range r.columns {
		if rendered[col.ID] {
			continue
		}
		value := rec.Get(col.ID)
		if !value.Truthy() {
			continue
		}
		sv, ok := r.renderInfo(col, value)
		if !ok {
			continue
		}
		view.Additional = append(view.Additional, InfoRow{Column: col.ID, Label: col.Label, Value: sv})
	}
	return view
}

// renderSlot applies the per-type slot rules shared by cards and profiles.
func (r *Renderer) renderSlot(slot Slot, value Value) SlotView {
	sv := SlotView{Column: slot.Column}
	if slot.Kind == SlotImage {
		if value.Kind != KindAttachment {
			sv.Kind = SlotHidden
			return sv
		}
		sv.Kind = SlotPhoto
		sv.ImageURL = r.attachmentURL(value.AttachmentID)
		return sv
	}

	if col, ok := r.byID[slot.Column]; ok && col.IsChoice() {
		sv.Kind = SlotTags
		sv.Tags = tagsOf(value)
		return sv
	}

	sv.Kind = SlotText
	if value.Truthy() {
		sv.Text = value.Text()
	}
	return sv
}

func (r *Renderer) renderInfo(col Column, value Value) (SlotView, bool) {
	sv := SlotView{Column: col.ID}
	switch {
	case value.Kind == KindAttachment && col.Type == ColumnTypeAttachments:
		sv.Kind = SlotPhoto
		sv.ImageURL = r.attachmentURL(value.AttachmentID)
	case value.Kind == KindList && col.Type == ColumnTypeAttachments:
		// an attachments list without the local marker has nothing to show
		return sv, false
	case col.IsChoice():
		sv.Kind = SlotTags
		sv.Tags = tagsOf(value)
	case value.Kind == KindList:
		sv.Kind = SlotText
		sv.Text = joinItems(value.List)
	case value.Kind == KindAttachment:
		sv.Kind = SlotText
		sv.Text = attachmentMarker + ", " + value.AttachmentID
	case value.Kind == KindBool:
		sv.Kind = SlotText
		sv.Text = r.msgs.YesNo(value.Bool)
	default:
		sv.Kind = SlotText
		sv.Text = value.Text()
	}
	return sv, true
}

// tagsOf returns one tag per element; a scalar is a single tag and a falsy
// scalar yields none. An attachment keeps its two wire elements as tags.
func tagsOf(value Value) []string {
	if value.Kind == KindAttachment {
		return []string{attachmentMarker, value.AttachmentID}
	}
	if value.Kind != KindList && !value.Truthy() {
		return nil
	}
	items := value.Items()
	tags := make([]string, 0, len(items))
	for _, item := range items {
		tags = append(tags, item.Text())
	}
	return tags
}

func joinItems(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text()
	}
	return strings.Join(parts, ", ")
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (*Renderer, []Record) {
	t.Helper()
	columns, records := testFixtures(t)
	return NewRenderer(columns, testLayout(t), testConfig(), testMessages(t)), records
}

func slotFor(t *testing.T, slots []SlotView, column string) SlotView {
	t.Helper()
	for _, s := range slots {
		if s.Column == column {
			return s
		}
	}
	require.Failf(t, "slot not found", "no slot for column %q", column)
	return SlotView{}
}

func profileURLFor(key string) string { return "/profile/" + key }

func TestRenderListAttachmentSlot(t *testing.T) {
	r, records := newTestRenderer(t)
	list := r.RenderList(records, profileURLFor)
	require.Len(t, list.Cards, 2)

	photo := slotFor(t, list.Cards[0].Slots, "photo")
	assert.Equal(t, SlotPhoto, photo.Kind)
	assert.True(t, strings.HasSuffix(photo.ImageURL, "/att123"), photo.ImageURL)
	assert.Equal(t, "https://files.example.com/attachments/dir42/att123", photo.ImageURL)

	hidden := slotFor(t, list.Cards[1].Slots, "photo")
	assert.Equal(t, SlotHidden, hidden.Kind, "null attachment hides the slot")
	assert.Empty(t, hidden.ImageURL)
}

func TestRenderListTextAndProfileLink(t *testing.T) {
	r, records := newTestRenderer(t)
	list := r.RenderList(records, profileURLFor)

	alice := list.Cards[0]
	assert.Equal(t, "1", alice.Key)
	assert.Equal(t, "/profile/1", alice.ProfileURL)
	assert.Equal(t, SlotView{Column: "nom", Kind: SlotText, Text: "Alice"}, slotFor(t, alice.Slots, "nom"))
	assert.Equal(t, SlotView{Column: "description", Kind: SlotText}, slotFor(t, alice.Slots, "description"),
		"absent value renders as empty text")
}

func TestRenderListEmpty(t *testing.T) {
	r, _ := newTestRenderer(t)
	list := r.RenderList(nil, profileURLFor)
	assert.True(t, list.Empty)
	assert.Empty(t, list.Cards)
}

func TestRenderSlotChoiceTags(t *testing.T) {
	r, _ := newTestRenderer(t)
	slot := Slot{Column: "specialites", Kind: SlotField}

	got := r.renderSlot(slot, ListValue(StringValue("TCC"), StringValue("EMDR")))
	assert.Equal(t, SlotView{Column: "specialites", Kind: SlotTags, Tags: []string{"TCC", "EMDR"}}, got)

	got = r.renderSlot(slot, StringValue("Hypnose"))
	assert.Equal(t, []string{"Hypnose"}, got.Tags, "a scalar becomes a single tag")

	got = r.renderSlot(slot, Value{})
	assert.Equal(t, SlotTags, got.Kind)
	assert.Empty(t, got.Tags)

	got = r.renderSlot(slot, AttachmentValue("x"))
	assert.Equal(t, []string{"L", "x"}, got.Tags, "an attachment splits into its two elements")
}

func TestAttachmentURLWithoutEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.AttachmentBaseURL = "/files/"
	cfg.AttachmentEndpointID = ""
	r := NewRenderer(nil, Layout{}, cfg, testMessages(t))
	assert.Equal(t, "/files/a%20b", r.attachmentURL("a b"))
}

func TestRenderProfileAdditionalInfo(t *testing.T) {
	r, records := newTestRenderer(t)
	profile := r.RenderProfile(records[0])

	assert.Equal(t, "1", profile.Key)
	assert.Equal(t, "Alice", slotFor(t, profile.Slots, "nom").Text)

	rows := make(map[string]InfoRow)
	for _, row := range profile.Additional {
		rows[row.Column] = row
	}

	// columns bound to profile slots never repeat as info rows
	for _, col := range []string{"photo", "nom", "type", "description"} {
		assert.NotContains(t, rows, col)
	}

	assert.Equal(t, "Ville", rows["ville"].Label)
	assert.Equal(t, []string{"Paris"}, rows["ville"].Value.Tags, "scalar choice renders one tag")
	assert.Equal(t, []string{"TCC", "EMDR"}, rows["specialites"].Value.Tags)
	assert.Equal(t, "Oui", rows["teleconsultation"].Value.Text)
	assert.Equal(t, "fr, en", rows["langues"].Value.Text)
	assert.Equal(t, SlotPhoto, rows["diplome"].Value.Kind)
	assert.Equal(t, "https://files.example.com/attachments/dir42/dip9", rows["diplome"].Value.ImageURL)

	var order []string
	for _, row := range profile.Additional {
		order = append(order, row.Column)
	}
	assert.Equal(t, []string{"ville", "specialites", "teleconsultation", "langues", "diplome"}, order,
		"rows follow column order")
}

func TestRenderProfileSkipsFalsyValues(t *testing.T) {
	r, records := newTestRenderer(t)
	profile := r.RenderProfile(records[1])

	for _, row := range profile.Additional {
		assert.NotEqual(t, "teleconsultation", row.Column, "false is not displayed")
	}
	assert.Equal(t, "Psychologue", slotFor(t, profile.Slots, "description").Text)
}

func TestRenderProfileNoAdditionalInfo(t *testing.T) {
	r, _ := newTestRenderer(t)
	profile := r.RenderProfile(makeRecord("x", map[string]Value{"nom": StringValue("Solo")}))
	assert.Empty(t, profile.Additional)
}

func TestRenderInfoVariants(t *testing.T) {
	r, _ := newTestRenderer(t)
	attachments := Column{ID: "docs", Label: "Docs", Type: ColumnTypeAttachments}
	plain := Column{ID: "p", Label: "P", Type: ColumnTypeText}

	_, ok := r.renderInfo(attachments, ListValue(StringValue("x")))
	assert.False(t, ok, "attachments without the local marker are skipped")

	sv, ok := r.renderInfo(plain, BoolValue(true))
	require.True(t, ok)
	assert.Equal(t, "Oui", sv.Text)

	sv, _ = r.renderInfo(plain, NumberValue(42))
	assert.Equal(t, "42", sv.Text)

	sv, _ = r.renderInfo(plain, AttachmentValue("z"))
	assert.Equal(t, "L, z", sv.Text, "an attachment outside an attachments column joins like a list")
}

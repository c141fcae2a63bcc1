package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// SlotKind selects how a slot renders regardless of column type.
type SlotKind string

const (
	SlotField SlotKind = "field"
	SlotImage SlotKind = "image"
)

// Slot is one templated position bound to a column id.
type Slot struct {
	Column string   `yaml:"column"`
	Kind   SlotKind `yaml:"kind"`
}

// Layout declares the slots of the list card and of the profile.
type Layout struct {
	Card    []Slot `yaml:"card"`
	Profile []Slot `yaml:"profile"`
}

// loadLayout reads the layout at path, or the embedded default when path is empty.
func loadLayout(path string) (Layout, error) {
	data := defaultLayout
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Layout{}, fmt.Errorf("failed to read layout: %w", err)
		}
	}
	return parseLayout(data)
}

func parseLayout(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	for _, slots := range [][]Slot{layout.Card, layout.Profile} {
		for i := range slots {
			if slots[i].Column == "" {
				return Layout{}, fmt.Errorf("layout slot %d has no column", i)
			}
			switch slots[i].Kind {
			case "":
				slots[i].Kind = SlotField
			case SlotField, SlotImage:
			default:
				return Layout{}, fmt.Errorf("layout slot %q has unknown kind %q", slots[i].Column, slots[i].Kind)
			}
		}
	}
	return layout, nil
}

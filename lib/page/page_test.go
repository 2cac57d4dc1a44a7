// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package page

import (
	"errors"
	"slices"
	"testing"
)

// layout builds:
//
//	list (scroll container)
//	  header  h=2
//	  message h=5
//	  footer  h=1
//	reply (field)
func layout(t *testing.T) *Document {
	t.Helper()
	document := New()
	steps := []struct {
		parent  string
		element Element
	}{
		{"", Element{ID: "list", Kind: ScrollContainer, Height: 10}},
		{"list", Element{ID: "header", Kind: Block, Height: 2}},
		{"list", Element{ID: "message", Kind: Block, Height: 5}},
		{"list", Element{ID: "footer", Kind: Block, Height: 1}},
		{"", Element{ID: "reply", Kind: Field}},
	}
	for _, step := range steps {
		if err := document.Append(step.parent, step.element); err != nil {
			t.Fatalf("Append(%s): %v", step.element.ID, err)
		}
	}
	return document
}

func TestInsertAfterAndRemove(t *testing.T) {
	document := layout(t)
	if err := document.InsertAfter("message", Element{ID: "frame", Kind: Frame, Height: 3}); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	if got, want := document.Children("list"), []string{"header", "message", "frame", "footer"}; !slices.Equal(got, want) {
		t.Errorf("Children = %v, want %v", got, want)
	}
	if next, _ := document.NextSibling("message"); next != "frame" {
		t.Errorf("NextSibling(message) = %q, want frame", next)
	}
	frame, _ := document.Get("frame")
	if frame.Parent != "list" {
		t.Errorf("frame parent = %q, want list", frame.Parent)
	}

	if err := document.Remove("frame"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := document.Get("frame"); ok {
		t.Error("frame still present after Remove")
	}
	if err := document.Remove("frame"); !errors.Is(err, ErrNoElement) {
		t.Errorf("second Remove = %v, want ErrNoElement", err)
	}
}

func TestDuplicateID(t *testing.T) {
	document := layout(t)
	if err := document.Append("", Element{ID: "reply"}); err == nil {
		t.Fatal("duplicate Append succeeded")
	}
	if id := document.NewID("reply"); id == "reply" {
		t.Fatal("NewID returned a taken id")
	}
}

func TestScrollOffset(t *testing.T) {
	document := layout(t)

	offset, err := document.ScrollOffset("message")
	if err != nil || offset != 2 {
		t.Fatalf("ScrollOffset(message) = %d, %v; want 2", offset, err)
	}

	document.SetHidden("header", true)
	if offset, _ := document.ScrollOffset("footer"); offset != 5 {
		t.Errorf("ScrollOffset(footer) with hidden header = %d, want 5", offset)
	}

	if err := document.Scroll("list", 4); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if offset, _ := document.ScrollOffset("message"); offset != -4 {
		t.Errorf("ScrollOffset(message) after scroll = %d, want -4", offset)
	}

	if container, ok := document.ScrollParent("message"); !ok || container != "list" {
		t.Errorf("ScrollParent(message) = %q, %v", container, ok)
	}
	if _, ok := document.ScrollParent("reply"); ok {
		t.Error("reply should have no scroll parent")
	}
	if offset, _ := document.ScrollOffset("reply"); offset != 10 {
		t.Errorf("ScrollOffset(reply) = %d, want 10 (document top)", offset)
	}
}

func TestOnScroll(t *testing.T) {
	document := layout(t)
	var seen []int
	unsubscribe, err := document.OnScroll("list", func(top int) {
		seen = append(seen, top)
		// Listeners may read the document.
		document.ScrollOffset("message")
	})
	if err != nil {
		t.Fatalf("OnScroll: %v", err)
	}
	document.Scroll("list", 3)
	document.Scroll("list", -1)
	unsubscribe()
	unsubscribe()
	document.Scroll("list", 7)

	if want := []int{3, 0}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
	if n := document.ScrollListeners("list"); n != 0 {
		t.Errorf("ScrollListeners = %d after unsubscribe", n)
	}
}

func TestEditableFieldsAndFocus(t *testing.T) {
	document := layout(t)
	document.Append("list", Element{ID: "search", Kind: Field})
	if got, want := document.EditableFields(), []string{"search", "reply"}; !slices.Equal(got, want) {
		t.Errorf("EditableFields = %v, want %v", got, want)
	}

	document.Focus("search")
	document.Remove("list")
	if document.Focused() != "" {
		t.Error("focus should clear when the focused element is removed")
	}
	if got := document.EditableFields(); !slices.Equal(got, []string{"reply"}) {
		t.Errorf("EditableFields after removing list = %v", got)
	}
}

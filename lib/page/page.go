// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package page models the host document a prompt and its glass surfaces
// live in: an ordered element tree with visibility, field values,
// heights, focus and scrollable containers.
//
// Layout is one-dimensional. An element's offset inside a container is
// the sum of the heights of the visible elements before it, which is
// all glass sizing and scroll reporting need.
package page

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNoElement is returned for operations on an unknown element id.
var ErrNoElement = errors.New("page: no such element")

// Kind classifies an element.
type Kind int

const (
	// Block is passive content, such as a message body.
	Block Kind = iota
	// Field is an editable input. SecureTeardown scrubs every Field.
	Field
	// Frame hosts an isolated glass surface.
	Frame
	// Notice is an inline status or error message.
	Notice
	// ScrollContainer clips and scrolls its children.
	ScrollContainer
)

// Element is a snapshot of one node.
type Element struct {
	ID        string
	Kind      Kind
	Parent    string
	Hidden    bool
	Height    int
	Text      string
	Value     string
	ScrollTop int
}

type node struct {
	Element
	children []string
}

// Document is a thread-safe element tree. The zero value is not
// usable; call New.
type Document struct {
	mu        sync.Mutex
	nodes     map[string]*node
	roots     []string
	focused   string
	nextID    int
	listeners map[string]map[int]func(top int)
	nextSub   int
}

// New returns an empty document.
func New() *Document {
	return &Document{
		nodes:     make(map[string]*node),
		listeners: make(map[string]map[int]func(int)),
	}
}

// NewID returns an id, unique within the document, with the given
// prefix.
func (d *Document) NewID(prefix string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		d.nextID++
		id := fmt.Sprintf("%s-%d", prefix, d.nextID)
		if _, taken := d.nodes[id]; !taken {
			return id
		}
	}
}

// Append adds element as the last child of parent, or as a root when
// parent is empty.
func (d *Document) Append(parent string, element Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkNewLocked(element.ID); err != nil {
		return err
	}
	element.Parent = parent
	if parent == "" {
		d.roots = append(d.roots, element.ID)
	} else {
		parentNode, ok := d.nodes[parent]
		if !ok {
			return fmt.Errorf("%w: parent %q", ErrNoElement, parent)
		}
		parentNode.children = append(parentNode.children, element.ID)
	}
	d.nodes[element.ID] = &node{Element: element}
	return nil
}

// InsertAfter adds element as the next sibling of sibling.
func (d *Document) InsertAfter(sibling string, element Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkNewLocked(element.ID); err != nil {
		return err
	}
	siblingNode, ok := d.nodes[sibling]
	if !ok {
		return fmt.Errorf("%w: sibling %q", ErrNoElement, sibling)
	}
	element.Parent = siblingNode.Parent
	list := d.childListLocked(siblingNode.Parent)
	position := indexOf(*list, sibling) + 1
	*list = slices.Insert(*list, position, element.ID)
	d.nodes[element.ID] = &node{Element: element}
	return nil
}

// Remove deletes an element and its descendants.
func (d *Document) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	list := d.childListLocked(target.Parent)
	if position := indexOf(*list, id); position >= 0 {
		*list = slices.Delete(*list, position, position+1)
	}
	d.removeSubtreeLocked(id)
	return nil
}

func (d *Document) removeSubtreeLocked(id string) {
	target := d.nodes[id]
	for _, child := range target.children {
		d.removeSubtreeLocked(child)
	}
	delete(d.nodes, id)
	delete(d.listeners, id)
	if d.focused == id {
		d.focused = ""
	}
}

// Get returns a snapshot of an element.
func (d *Document) Get(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.nodes[id]
	if !ok {
		return Element{}, false
	}
	return target.Element, true
}

// Children returns the ids of parent's children in order.
func (d *Document) Children(parent string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if parent != "" {
		if _, ok := d.nodes[parent]; !ok {
			return nil
		}
	}
	return append([]string(nil), *d.childListLocked(parent)...)
}

// NextSibling returns the id following id under the same parent.
func (d *Document) NextSibling(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.nodes[id]
	if !ok {
		return "", false
	}
	list := *d.childListLocked(target.Parent)
	position := indexOf(list, id)
	if position < 0 || position+1 >= len(list) {
		return "", false
	}
	return list[position+1], true
}

// SetHidden changes visibility.
func (d *Document) SetHidden(id string, hidden bool) error {
	return d.update(id, func(element *Element) { element.Hidden = hidden })
}

// SetHeight changes layout height.
func (d *Document) SetHeight(id string, height int) error {
	if height < 0 {
		height = 0
	}
	return d.update(id, func(element *Element) { element.Height = height })
}

// SetValue replaces the value of an element. It is meant for fields
// but accepted on any kind.
func (d *Document) SetValue(id, value string) error {
	return d.update(id, func(element *Element) { element.Value = value })
}

func (d *Document) update(id string, mutate func(*Element)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	mutate(&target.Element)
	return nil
}

// Focus moves input focus to id.
func (d *Document) Focus(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	d.focused = id
	return nil
}

// Blur clears focus.
func (d *Document) Blur() {
	d.mu.Lock()
	d.focused = ""
	d.mu.Unlock()
}

// Focused returns the focused element id, or "".
func (d *Document) Focused() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// EditableFields returns the ids of every Field element in document
// order.
func (d *Document) EditableFields() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var fields []string
	var walk func(ids []string)
	walk = func(ids []string) {
		for _, id := range ids {
			current := d.nodes[id]
			if current.Kind == Field {
				fields = append(fields, id)
			}
			walk(current.children)
		}
	}
	walk(d.roots)
	return fields
}

func (d *Document) checkNewLocked(id string) error {
	if id == "" {
		return fmt.Errorf("page: element id is required")
	}
	if _, exists := d.nodes[id]; exists {
		return fmt.Errorf("page: duplicate element id %q", id)
	}
	return nil
}

func (d *Document) childListLocked(parent string) *[]string {
	if parent == "" {
		return &d.roots
	}
	return &d.nodes[parent].children
}

func indexOf(list []string, id string) int {
	return slices.Index(list, id)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package page

import "fmt"

// ScrollParent returns the nearest ScrollContainer ancestor of id.
func (d *Document) ScrollParent(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollParentLocked(id)
}

func (d *Document) scrollParentLocked(id string) (string, bool) {
	current, ok := d.nodes[id]
	if !ok {
		return "", false
	}
	for current.Parent != "" {
		parent := d.nodes[current.Parent]
		if parent.Kind == ScrollContainer {
			return parent.ID, true
		}
		current = parent
	}
	return "", false
}

// ScrollOffset returns the distance from the visible top of id's
// nearest scroll container to the top of id. It is negative when id is
// scrolled above the viewport. Without a scroll container the offset is
// measured from the document top.
func (d *Document) ScrollOffset(id string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[id]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	container, _ := d.scrollParentLocked(id)

	offset := 0
	current := id
	for {
		currentNode := d.nodes[current]
		for _, sibling := range *d.childListLocked(currentNode.Parent) {
			if sibling == current {
				break
			}
			if siblingNode := d.nodes[sibling]; !siblingNode.Hidden {
				offset += siblingNode.Height
			}
		}
		if currentNode.Parent == container {
			break
		}
		current = currentNode.Parent
	}
	if container != "" {
		offset -= d.nodes[container].ScrollTop
	}
	return offset, nil
}

// Scroll sets a container's scroll position and notifies its
// listeners. Listeners run on the caller's goroutine without the
// document lock held, so they may call back into the document.
func (d *Document) Scroll(container string, top int) error {
	d.mu.Lock()
	target, ok := d.nodes[container]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoElement, container)
	}
	if top < 0 {
		top = 0
	}
	target.ScrollTop = top
	listeners := make([]func(int), 0, len(d.listeners[container]))
	for _, listener := range d.listeners[container] {
		listeners = append(listeners, listener)
	}
	d.mu.Unlock()

	for _, listener := range listeners {
		listener(top)
	}
	return nil
}

// OnScroll subscribes to scroll events of container. The returned
// function unsubscribes; calling it more than once is harmless.
func (d *Document) OnScroll(container string, listener func(top int)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[container]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoElement, container)
	}
	d.nextSub++
	subscription := d.nextSub
	if d.listeners[container] == nil {
		d.listeners[container] = make(map[int]func(int))
	}
	d.listeners[container][subscription] = listener
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners[container], subscription)
	}, nil
}

// ScrollListeners reports how many listeners container has.
func (d *Document) ScrollListeners(container string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[container])
}

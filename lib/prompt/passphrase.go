// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"context"
	"sync"

	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/secret"
)

// passphraseReply is the answer to one executor passphrase request.
type passphraseReply struct {
	passphrase *secret.Buffer
	err        error
}

type passphraseWait struct {
	request action.PassphraseRequest
	reply   chan passphraseReply
}

// passphraseBroker queues executor passphrase requests FIFO and hands
// the head to the view. Requests arrive on executor goroutines; answers
// come from the event loop.
type passphraseBroker struct {
	mu     sync.Mutex
	queue  []*passphraseWait
	closed bool
}

// wait enqueues request and blocks until it is answered, ctx ends, or
// the broker closes. notify runs after enqueueing so the view can show
// the new head.
func (b *passphraseBroker) wait(ctx context.Context, request action.PassphraseRequest, notify func()) (*secret.Buffer, error) {
	waiter := &passphraseWait{request: request, reply: make(chan passphraseReply, 1)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.queue = append(b.queue, waiter)
	b.mu.Unlock()
	notify()

	select {
	case reply := <-waiter.reply:
		return reply.passphrase, reply.err
	case <-ctx.Done():
		b.remove(waiter)
		return nil, ctx.Err()
	}
}

func (b *passphraseBroker) remove(target *passphraseWait) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, waiter := range b.queue {
		if waiter == target {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return
		}
	}
}

// head returns the oldest pending request and the number behind it.
func (b *passphraseBroker) head() (*PassphrasePrompt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	first := b.queue[0].request
	return &PassphrasePrompt{KeyID: first.KeyID, Attempt: first.Attempt, Waiting: len(b.queue) - 1}, true
}

// answer resolves the head request. It reports false when nothing is
// pending, in which case the caller keeps ownership of passphrase.
func (b *passphraseBroker) answer(reply passphraseReply) bool {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		return false
	}
	waiter := b.queue[0]
	b.queue = b.queue[1:]
	b.mu.Unlock()
	waiter.reply <- reply
	return true
}

// failAll rejects every pending and future request with err.
func (b *passphraseBroker) failAll(err error) {
	b.mu.Lock()
	waiting := b.queue
	b.queue = nil
	b.closed = true
	b.mu.Unlock()
	for _, waiter := range waiting {
		waiter.reply <- passphraseReply{err: err}
	}
}

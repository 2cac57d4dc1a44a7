// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/glass/lib/codec"
)

// ProtocolVersion is exchanged in the handshake. Peers with different
// versions refuse each other.
const ProtocolVersion = 1

const (
	typeHello    = "hello"
	typeHelloAck = "hello-ack"
	typeRequest  = "request"
	typeResponse = "response"
)

// envelope is the single CBOR message shape on the wire. A request with
// ID 0 is a notification and gets no response.
type envelope struct {
	Type    string           `cbor:"type"`
	ID      uint64           `cbor:"id,omitempty"`
	Name    string           `cbor:"name,omitempty"`
	Version int              `cbor:"version,omitempty"`
	Params  codec.RawMessage `cbor:"params,omitempty"`
	OK      bool             `cbor:"ok,omitempty"`
	Error   string           `cbor:"error,omitempty"`
	Data    codec.RawMessage `cbor:"data,omitempty"`
}

// Handler answers one named request. A nil result produces a response
// without data.
type Handler func(ctx context.Context, params codec.RawMessage) (any, error)

// RemoteError is returned by Call when the peer answered with ok=false.
type RemoteError struct {
	Request string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("glass request %q failed: %s", e.Request, e.Message)
}

// Port is one end of a glass channel: a symmetric CBOR request/response
// protocol over a net.Conn. Either side may call the other once the
// handshake has completed. Inbound requests are served concurrently.
type Port struct {
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	encoder *codec.Encoder

	mu       sync.Mutex
	handlers map[string]Handler
	pending  map[uint64]chan envelope
	nextID   uint64

	// onReady runs once, on its own goroutine, when the accepting side
	// completes the handshake.
	onReady func()

	acks      chan envelope
	ready     chan struct{}
	readyOnce sync.Once

	baseCtx   context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewPort wraps conn. Register handlers, then call Start.
func NewPort(conn net.Conn, logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Port{
		conn:     conn,
		logger:   logger,
		encoder:  codec.NewEncoder(conn),
		handlers: make(map[string]Handler),
		pending:  make(map[uint64]chan envelope),
		acks:     make(chan envelope, 1),
		ready:    make(chan struct{}),
		baseCtx:  baseCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Handle registers a handler. Registering the same name twice panics.
func (p *Port) Handle(name string, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.handlers[name]; exists {
		panic(fmt.Sprintf("glass.Port: duplicate handler for %q", name))
	}
	p.handlers[name] = handler
}

// OnReady sets a function run when a peer's hello is accepted. Must be
// called before Start.
func (p *Port) OnReady(fn func()) {
	p.onReady = fn
}

// Start begins reading from the connection.
func (p *Port) Start() {
	go p.readLoop()
}

// Ready is closed once the handshake has completed.
func (p *Port) Ready() <-chan struct{} { return p.ready }

// Done is closed when the port has shut down.
func (p *Port) Done() <-chan struct{} { return p.done }

// Handshake sends hello and waits for the peer's acknowledgement, ctx,
// or timeout, whichever comes first.
func (p *Port) Handshake(ctx context.Context, timeout <-chan time.Time) error {
	sent := make(chan error, 1)
	go func() { sent <- p.write(envelope{Type: typeHello, Version: ProtocolVersion}) }()
	for {
		select {
		case err := <-sent:
			if err != nil {
				return err
			}
			continue
		case ack := <-p.acks:
			if !ack.OK {
				return fmt.Errorf("peer refused handshake: %s", ack.Error)
			}
			if ack.Version != ProtocolVersion {
				return fmt.Errorf("peer speaks protocol version %d", ack.Version)
			}
			return nil
		case <-timeout:
			return fmt.Errorf("no handshake acknowledgement")
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return ErrNotConnected
		}
	}
}

// Call sends a request and decodes the response data into result,
// which may be nil. Calls before the handshake fail with
// ErrNotConnected rather than queueing.
func (p *Port) Call(ctx context.Context, name string, params, result any) error {
	if err := p.usable(); err != nil {
		return err
	}
	request := envelope{Type: typeRequest, Name: name}
	if err := encodeParams(&request, params); err != nil {
		return err
	}

	replies := make(chan envelope, 1)
	p.mu.Lock()
	p.nextID++
	request.ID = p.nextID
	p.pending[request.ID] = replies
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, request.ID)
		p.mu.Unlock()
	}()

	if err := p.write(request); err != nil {
		return err
	}

	select {
	case response := <-replies:
		return decodeResponse(name, response, result)
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		// The peer may have replied and then hung up.
		select {
		case response := <-replies:
			return decodeResponse(name, response, result)
		default:
			return ErrNotConnected
		}
	}
}

func decodeResponse(name string, response envelope, result any) error {
	if !response.OK {
		return &RemoteError{Request: name, Message: response.Error}
	}
	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding %q response: %w", name, err)
		}
	}
	return nil
}

// Notify sends a request that expects no response.
func (p *Port) Notify(name string, params any) error {
	if err := p.usable(); err != nil {
		return err
	}
	request := envelope{Type: typeRequest, Name: name}
	if err := encodeParams(&request, params); err != nil {
		return err
	}
	return p.write(request)
}

// Close shuts the port down. Pending calls fail with ErrNotConnected.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.cancel()
		close(p.done)
		err = p.conn.Close()
	})
	return err
}

func (p *Port) usable() error {
	select {
	case <-p.done:
		return ErrNotConnected
	default:
	}
	select {
	case <-p.ready:
		return nil
	default:
		return ErrNotConnected
	}
}

func (p *Port) markReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

func (p *Port) write(message envelope) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.encoder.Encode(message); err != nil {
		p.Close()
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
			return ErrNotConnected
		}
		return fmt.Errorf("writing %s: %w", message.Type, err)
	}
	return nil
}

func (p *Port) readLoop() {
	defer p.Close()
	decoder := codec.NewDecoder(p.conn)
	for {
		var message envelope
		if err := decoder.Decode(&message); err != nil {
			select {
			case <-p.done:
			default:
				p.logger.Debug("glass channel closed", "error", err)
			}
			return
		}

		switch message.Type {
		case typeHello:
			p.acceptHello(message)
		case typeHelloAck:
			// Ready before the next message is read, so a request the
			// peer sends right after its ack is served.
			if message.OK && message.Version == ProtocolVersion {
				p.markReady()
			}
			select {
			case p.acks <- message:
			default:
			}
		case typeRequest:
			go p.serve(message)
		case typeResponse:
			p.mu.Lock()
			replies, ok := p.pending[message.ID]
			p.mu.Unlock()
			if ok {
				replies <- message
			}
		default:
			p.logger.Warn("glass channel: unknown message type", "type", message.Type)
		}
	}
}

func (p *Port) acceptHello(hello envelope) {
	if hello.Version != ProtocolVersion {
		p.write(envelope{
			Type:  typeHelloAck,
			Error: fmt.Sprintf("unsupported protocol version %d", hello.Version),
		})
		return
	}
	if err := p.write(envelope{Type: typeHelloAck, OK: true, Version: ProtocolVersion}); err != nil {
		return
	}
	p.markReady()
	if p.onReady != nil {
		go p.onReady()
	}
}

func (p *Port) serve(request envelope) {
	select {
	case <-p.ready:
	default:
		p.respond(request, nil, fmt.Errorf("handshake not complete"))
		return
	}

	p.mu.Lock()
	handler, ok := p.handlers[request.Name]
	p.mu.Unlock()
	if !ok {
		p.respond(request, nil, fmt.Errorf("unknown request %q", request.Name))
		return
	}

	var deferred []func()
	ctx := context.WithValue(p.baseCtx, afterReplyKey{}, &deferred)
	result, err := handler(ctx, request.Params)
	if err != nil {
		p.logger.Debug("glass request failed", "request", request.Name, "error", err)
	}
	p.respond(request, result, err)
	for _, fn := range deferred {
		fn()
	}
}

func (p *Port) respond(request envelope, result any, handlerErr error) {
	if request.ID == 0 {
		return
	}
	response := envelope{Type: typeResponse, ID: request.ID, OK: handlerErr == nil}
	if handlerErr != nil {
		response.Error = handlerErr.Error()
	} else if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			response.OK = false
			response.Error = fmt.Sprintf("encoding response: %v", err)
		} else {
			response.Data = data
		}
	}
	p.write(response)
}

type afterReplyKey struct{}

// AfterReply schedules fn to run after the response to the request
// being handled has been written. Outside a handler it runs fn
// immediately.
func AfterReply(ctx context.Context, fn func()) {
	deferred, ok := ctx.Value(afterReplyKey{}).(*[]func())
	if !ok {
		fn()
		return
	}
	*deferred = append(*deferred, fn)
}

func encodeParams(message *envelope, params any) error {
	if params == nil {
		return nil
	}
	data, err := codec.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding %q params: %w", message.Name, err)
	}
	message.Params = data
	return nil
}

// DecodeParams decodes request params into v. Absent params leave v
// untouched.
func DecodeParams(params codec.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := codec.Unmarshal(params, v); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}

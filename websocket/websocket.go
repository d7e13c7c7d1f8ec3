package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	impl "github.com/gorilla/websocket"
)

// ErrSocketClosed indicates the operation failed because the underlying websocket connection has been closed.
var ErrSocketClosed = errors.New("websocket closed")

// ErrSocketTimeout indicates the operation failed because a read or write deadline expired.
var ErrSocketTimeout = errors.New("websocket timeout")

var ErrReadLimit = errors.New("websocket read limit exceeded")

type MessageType int

const (
	TextMessage   MessageType = 1
	BinaryMessage MessageType = 2
	CloseMessage  MessageType = 8
	PingMessage   MessageType = 9
	PongMessage   MessageType = 10
)

var DefaultReadLimit int64 = 512
var DefaultReadTimeout = 60 * time.Second
var DefaultWriteTimeout = 10 * time.Second

type Message struct {
	Type    MessageType
	Payload []byte
}

// Websocket is the small surface handlers need from a connection.
type Websocket interface {
	// Ping sends a ping-type message to the client.
	Ping(context.Context) error

	// Send sends a text-type message to the client with the given payload.
	Send(context.Context, []byte) error

	// Receive blocks until the client sends a data message or closes the connection. Pings and pongs are answered
	// internally and never returned.
	Receive(context.Context) (*Message, error)

	// Close explicitly closes the underlying connection. Any future operations on this Websocket will fail.
	Close()
}

type Options struct {
	// Limit (in bytes) on message reads. A client sending more than this has the socket closed on it.
	ReadLimit int64

	// Maximum time between reads on the socket.
	ReadTimeout time.Duration

	WriteTimeout time.Duration

	// CheckOrigin is handed to the upgrader. A nil value only accepts same-host origins.
	CheckOrigin func(r *http.Request) bool
}

func (o *Options) Init() {
	if o.ReadLimit <= 0 {
		o.ReadLimit = DefaultReadLimit
	}

	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}

	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
}

type received struct {
	msg *Message
	err error
}

// Proxy implements the Websocket interface around the gorilla/websocket library.
type Proxy struct {
	conn *impl.Conn
	opts Options
	recv chan received
	done chan struct{}
	once sync.Once
	wmu  sync.Mutex
}

// Upgrade switches the connection to the websocket protocol and starts reading from it. On failure the upgrader has
// already answered the client with an error status.
func Upgrade(opts *Options, w http.ResponseWriter, r *http.Request, h http.Header) (Websocket, error) {
	o := Options{}

	if opts != nil {
		o = *opts
	}

	o.Init()

	u := impl.Upgrader{CheckOrigin: o.CheckOrigin}

	conn, err := u.Upgrade(w, r, h)

	if err != nil {
		return nil, err
	}

	p := &Proxy{
		conn: conn,
		opts: o,
		recv: make(chan received),
		done: make(chan struct{}),
	}

	p.conn.SetReadLimit(p.opts.ReadLimit)

	// Control handlers run on the read goroutine.
	p.conn.SetPingHandler(func(appData string) error {
		_ = p.conn.SetReadDeadline(time.Now().Add(p.opts.ReadTimeout))
		return p.control(impl.PongMessage, []byte(appData))
	})

	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(p.opts.ReadTimeout))
	})

	p.conn.SetCloseHandler(func(code int, text string) error {
		p.deliver(received{msg: &Message{Type: CloseMessage}})
		return nil
	})

	go p.readLoop()

	return p, nil
}

// Ping implements the Ping function from the Websocket interface.
func (p *Proxy) Ping(ctx context.Context) error {
	return p.write(ctx, PingMessage, nil)
}

// Send implements the Send function from the Websocket interface.
func (p *Proxy) Send(ctx context.Context, msg []byte) error {
	return p.write(ctx, TextMessage, msg)
}

// Receive implements the Receive function from the Websocket interface.
func (p *Proxy) Receive(ctx context.Context) (*Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrSocketClosed
	case r := <-p.recv:
		return r.msg, r.err
	}
}

// Close implements the Close function from the Websocket interface.
func (p *Proxy) Close() {
	p.once.Do(func() {
		close(p.done)

		p.wmu.Lock()
		defer p.wmu.Unlock()

		m := impl.FormatCloseMessage(impl.CloseNormalClosure, "")
		_ = p.conn.WriteControl(impl.CloseMessage, m, time.Now().Add(time.Second))
		_ = p.conn.Close()
	})
}

func (p *Proxy) control(t int, data []byte) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	return p.conn.WriteControl(t, data, time.Now().Add(p.opts.WriteTimeout))
}

func (p *Proxy) write(ctx context.Context, t MessageType, m []byte) error {
	select {
	case <-p.done:
		return ErrSocketClosed
	default:
	}

	ch := make(chan error, 1)

	go func() {
		p.wmu.Lock()
		defer p.wmu.Unlock()

		var err error

		if t == PingMessage {
			err = p.conn.WriteControl(int(t), m, time.Now().Add(p.opts.WriteTimeout))
		} else {
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout))
			err = p.conn.WriteMessage(int(t), m)
		}

		ch <- translate(err)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-ch:
		return err
	}
}

// deliver hands a read result to Receive, giving up once the proxy is closed.
func (p *Proxy) deliver(r received) bool {
	select {
	case p.recv <- r:
		return true
	case <-p.done:
		return false
	}
}

// readLoop continually reads from the socket so that gorilla processes control messages. Data messages and the final
// read error are passed to Receive.
func (p *Proxy) readLoop() {
	defer p.Close()

	for {
		_ = p.conn.SetReadDeadline(time.Now().Add(p.opts.ReadTimeout))
		t, data, err := p.conn.ReadMessage()

		if err != nil {
			var ce *impl.CloseError

			// The close handler already reported a client close.
			if !errors.As(err, &ce) {
				p.deliver(received{err: translate(err)})
			}

			return
		}

		if !p.deliver(received{msg: &Message{Type: MessageType(t), Payload: data}}) {
			return
		}
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, impl.ErrReadLimit) {
		return ErrReadLimit
	}

	var e net.Error

	if errors.As(err, &e) && e.Timeout() {
		return ErrSocketTimeout
	}

	return ErrSocketClosed
}

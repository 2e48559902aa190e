package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Client is a hub-side handle for one live connection. The hub only queues
// bytes on it; the transport owns the network connection and drains Send.
type Client struct {
	ID     string
	UserID uint64

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client with an outbound queue of the given size.
func NewClient(userID uint64, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Send returns the outbound queue.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Enqueue queues msg without blocking. It returns false when the client is
// closed or its queue is full.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close marks the client as gone. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

package osc

import (
	"fmt"
	"net"
	"strconv"
)

// Client enables you to send OSC frames to a specified console. The socket is
// not connected: an ICMP port-unreachable for one datagram does not fail the
// writes that follow it.
type Client struct {
	conn  *net.UDPConn
	raddr *net.UDPAddr
}

// Dial creates a new OSC Client sending to the specified server.
func Dial(addr string) (*Client, error) {
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, raddr: a}, nil
}

// DialHostPort is Dial for a separate host and numeric port.
func DialHostPort(host string, port int) (*Client, error) {
	return Dial(net.JoinHostPort(host, strconv.Itoa(port)))
}

// Send encodes and sends a single OSC Message.
func (c *Client) Send(m *Message) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = c.conn.WriteToUDP(data, c.raddr)
	return err
}

// SendBatch writes each frame as its own datagram, in order. Delivery is not
// confirmed. It stops at the first failed local write and returns the number
// of frames already handed to the network; those are not recalled.
func (c *Client) SendBatch(frames [][]byte) (int, error) {
	for i, f := range frames {
		if _, err := c.conn.WriteToUDP(f, c.raddr); err != nil {
			return i, fmt.Errorf("SendBatch: frame %d of %d: %w", i+1, len(frames), err)
		}
	}
	return len(frames), nil
}

// RemoteAddr returns the console address the client sends to.
func (c *Client) RemoteAddr() net.Addr {
	return c.raddr
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}

package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	tlsAddr      = "irc.chat.twitch.tv:6697"
	websocketURL = "wss://irc-ws.chat.twitch.tv:443"
)

// conn is one line-oriented session with the chat server.
type conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

type tlsConn struct {
	net.Conn
	reader *bufio.Reader
}

func dialTLS(ctx context.Context) (conn, error) {
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 10 * time.Second},
		Config:    &tls.Config{MinVersion: tls.VersionTLS12},
	}

	c, err := d.DialContext(ctx, "tcp", tlsAddr)
	if err != nil {
		return nil, fmt.Errorf("tls dial: %w", err)
	}

	return &tlsConn{Conn: c, reader: bufio.NewReader(c)}, nil
}

func (c *tlsConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tlsConn) WriteLine(line string) error {
	_, err := c.Write([]byte(line + "\r\n"))
	return err
}

// wsConn carries IRC over websocket frames. One frame may hold several
// lines.
type wsConn struct {
	ws      *websocket.Conn
	pending []string
}

func dialWebSocket(ctx context.Context) (conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	ws, resp, err := dialer.DialContext(ctx, websocketURL, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	return &wsConn{ws: ws}, nil
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}
		c.pending = splitLines(string(data))
	}

	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) WriteLine(line string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func splitLines(data string) []string {
	var lines []string
	for _, l := range strings.Split(data, "\n") {
		if l = strings.TrimRight(l, "\r"); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

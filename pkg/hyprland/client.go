package hyprland

import (
	"bufio"
	"fmt"
	"net"
	"strings"
)

// Client reads the socket2 event stream, one "event>>data" line at a time.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func Connect() (*Client, error) {
	conn, err := connect(EventSocket)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ReadLine() (string, error) {
	str, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read from hypr socket: %w", err)
	}
	return strings.TrimSuffix(str, "\n"), nil
}

type event struct {
	Type string
	Data string
}

func parseEvent(line string) (event, error) {
	evType, evData, found := strings.Cut(line, ">>")
	if !found {
		return event{}, fmt.Errorf("invalid line: %q", line)
	}

	return event{Type: evType, Data: evData}, nil
}

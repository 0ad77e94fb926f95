package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-crane/nowplaying/presence"
)

var ErrClosedByPeer = errors.New("discord closed the IPC connection")

const defaultTimeout = 5 * time.Second

// Client speaks the local Discord RPC protocol for one application id.
type Client struct {
	ClientID string
	Timeout  time.Duration
	// Dial is swapped out in tests
	Dial func(timeout time.Duration) (net.Conn, error)

	conn net.Conn
	pid  int
}

func NewClient(clientID string) *Client {
	return &Client{
		ClientID: clientID,
		Timeout:  defaultTimeout,
		Dial:     dialSocket,
		pid:      os.Getpid(),
	}
}

type handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}

type command struct {
	Cmd   string       `json:"cmd"`
	Args  activityArgs `json:"args"`
	Nonce string       `json:"nonce"`
}

type activityArgs struct {
	PID      int                `json:"pid"`
	Activity *presence.Activity `json:"activity"`
}

type response struct {
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt"`
	Nonce string          `json:"nonce"`
	Data  json.RawMessage `json:"data"`
}

type errorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.Dial(c.Timeout)
	if err != nil {
		return err
	}
	c.conn = conn
	if err := c.handshake(); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("discord handshake failed: %w", err)
	}
	slog.Debug("Completed Discord handshake", slog.String("client_id", c.ClientID))
	return nil
}

func (c *Client) Reconnect() error {
	c.Close()
	return c.Connect()
}

func (c *Client) handshake() error {
	if err := c.send(opHandshake, handshake{Version: 1, ClientID: c.ClientID}); err != nil {
		return err
	}
	res, err := c.receive()
	if err != nil {
		return err
	}
	if res.Evt != "READY" {
		return fmt.Errorf("expected READY dispatch, got %q", res.Evt)
	}
	return nil
}

func (c *Client) SetActivity(activity *presence.Activity) error {
	return c.setActivity(activity)
}

// ClearActivity sends a null activity which removes it from the profile
func (c *Client) ClearActivity() error {
	return c.setActivity(nil)
}

func (c *Client) setActivity(activity *presence.Activity) error {
	if c.conn == nil {
		return presence.ErrNotConnected
	}
	nonce := uuid.NewString()
	cmd := command{
		Cmd:   "SET_ACTIVITY",
		Args:  activityArgs{PID: c.pid, Activity: activity},
		Nonce: nonce,
	}
	if err := c.send(opFrame, cmd); err != nil {
		return err
	}
	res, err := c.receive()
	if err != nil {
		return err
	}
	if res.Evt == "ERROR" {
		var e errorData
		if err := json.Unmarshal(res.Data, &e); err != nil {
			return fmt.Errorf("discord rejected activity: %s", string(res.Data))
		}
		return fmt.Errorf("discord rejected activity (%d): %s", e.Code, e.Message)
	}
	if res.Nonce != "" && res.Nonce != nonce {
		slog.Debug("Discord response nonce mismatch", slog.String("want", nonce), slog.String("got", res.Nonce))
	}
	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	// Best effort, Discord may already be gone
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	_ = writeRaw(c.conn, opClose, []byte("{}"))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(op opcode, payload any) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.Timeout)); err != nil {
		return err
	}
	return writeFrame(c.conn, op, payload)
}

// receive returns the next command response, answering pings on the way
func (c *Client) receive() (response, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
			return response{}, err
		}
		op, body, err := readFrame(c.conn)
		if err != nil {
			return response{}, err
		}
		switch op {
		case opPing:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.Timeout)); err != nil {
				return response{}, err
			}
			if err := writeRaw(c.conn, opPong, body); err != nil {
				return response{}, err
			}
			continue
		case opClose:
			var e errorData
			if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
				return response{}, fmt.Errorf("%w: %s", ErrClosedByPeer, e.Message)
			}
			return response{}, ErrClosedByPeer
		case opFrame:
			var res response
			if err := json.Unmarshal(body, &res); err != nil {
				return response{}, fmt.Errorf("failed to decode discord response: %w", err)
			}
			return res, nil
		default:
			slog.Debug("Ignoring unexpected Discord opcode", slog.Int("op", int(op)))
		}
	}
}

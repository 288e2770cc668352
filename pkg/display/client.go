package display

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// Wire identifiers for the small protocol surface this client speaks:
// wl_display, wl_registry, wl_callback, wl_output (bound, events ignored)
// and wlr-gamma-control-unstable-v1.
const (
	displayObject = 1

	opDisplaySync        uint16 = 0
	opDisplayGetRegistry uint16 = 1
	evDisplayError       uint16 = 0
	evDisplayDeleteID    uint16 = 1

	opRegistryBind         uint16 = 0
	evRegistryGlobal       uint16 = 0
	evRegistryGlobalRemove uint16 = 1

	evCallbackDone uint16 = 0

	opManagerGetGammaControl uint16 = 0

	opGammaSetGamma uint16 = 0
	opGammaDestroy  uint16 = 1
	evGammaSize     uint16 = 0
	evGammaFailed   uint16 = 1

	outputInterface  = "wl_output"
	managerInterface = "zwlr_gamma_control_manager_v1"
)

type outMessage struct {
	data []byte
	fd   int // -1 when the message carries no descriptor
}

// Client speaks the Wayland wire protocol directly over the compositor
// socket. It implements Service. Only the engine loop may call it.
type Client struct {
	conn   *net.UnixConn
	logger *slog.Logger

	out     []outMessage
	pending []byte // received bytes not yet forming a complete message
	scratch []byte

	nextID     uint32
	registryID uint32
	manager    uint32 // gamma control manager object, 0 when not advertised

	outputsByName map[uint32]uint32 // registry name -> wl_output object
	outputsByID   map[uint32]uint32 // wl_output object -> registry name
	controlsByID  map[uint32]uint32 // gamma control object -> registry name
	controlByName map[uint32]uint32 // registry name -> gamma control object
	callbacks     map[uint32]bool   // pending wl_callback objects -> done

	events []Event
	closed bool
}

var _ Service = (*Client)(nil)

// Connect dials the compositor socket named by WAYLAND_DISPLAY (relative
// paths resolve under XDG_RUNTIME_DIR) and requests the registry. Globals
// arrive on the first Roundtrip.
func Connect(logger *slog.Logger) (*Client, error) {
	path, err := socketPath()
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display at %s: %w", path, err)
	}

	c := &Client{
		conn:          conn,
		logger:        logger,
		scratch:       make([]byte, 4096),
		nextID:        2,
		outputsByName: make(map[uint32]uint32),
		outputsByID:   make(map[uint32]uint32),
		controlsByID:  make(map[uint32]uint32),
		controlByName: make(map[uint32]uint32),
		callbacks:     make(map[uint32]bool),
	}
	c.registryID = c.newID()
	c.queue(encodeMessage(displayObject, opDisplayGetRegistry, c.registryID), -1)
	return c, nil
}

func socketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, name), nil
}

// Roundtrip flushes queued requests and blocks until the server confirms it
// has processed them
func (c *Client) Roundtrip() error {
	id := c.newID()
	c.callbacks[id] = false
	c.queue(encodeMessage(displayObject, opDisplaySync, id), -1)
	if err := c.flush(); err != nil {
		return err
	}
	for !c.callbacks[id] {
		if err := c.readOnce(time.Time{}); err != nil {
			return err
		}
	}
	delete(c.callbacks, id)
	return nil
}

// Wait flushes queued requests and blocks until the socket is readable or
// the deadline passes. Incoming traffic is dispatched into the event queue.
func (c *Client) Wait(deadline time.Time) error {
	if err := c.flush(); err != nil {
		return err
	}
	err := c.readOnce(deadline)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return nil
	}
	return err
}

// Drain returns queued events in arrival order and clears the queue
func (c *Client) Drain() []Event {
	events := c.events
	c.events = nil
	return events
}

// HasGammaManager reports whether the compositor advertised the gamma
// control manager
func (c *Client) HasGammaManager() bool {
	return c.manager != 0
}

// RequestGamma asks the manager for gamma control over an output. The ramp
// size, or a failure notice, arrives as an event on a later dispatch.
func (c *Client) RequestGamma(output uint32) error {
	if c.manager == 0 {
		return errors.New("no gamma control manager available")
	}
	outputID, ok := c.outputsByName[output]
	if !ok {
		return fmt.Errorf("unknown output %d", output)
	}
	if _, ok := c.controlByName[output]; ok {
		return nil
	}

	id := c.newID()
	c.controlsByID[id] = output
	c.controlByName[output] = id
	c.queue(encodeMessage(c.manager, opManagerGetGammaControl, id, outputID), -1)
	return nil
}

// ReleaseGamma destroys the gamma control of an output, if one exists
func (c *Client) ReleaseGamma(output uint32) {
	control, ok := c.controlByName[output]
	if !ok {
		return
	}
	delete(c.controlByName, output)
	delete(c.controlsByID, control)
	c.queue(encodeMessage(control, opGammaDestroy), -1)
}

// SubmitGamma rewinds the buffer and hands its descriptor to the compositor,
// replacing the output's active ramp wholesale
func (c *Client) SubmitGamma(output uint32, buf *RampBuffer) error {
	control, ok := c.controlByName[output]
	if !ok {
		return fmt.Errorf("output %d has no gamma control", output)
	}
	if err := buf.rewind(); err != nil {
		return err
	}
	c.queue(encodeMessage(control, opGammaSetGamma), buf.fd)
	return c.flush()
}

// Close terminates the connection, unblocking any Wait in progress
func (c *Client) Close() error {
	c.closed = true
	return c.conn.Close()
}

func (c *Client) newID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Client) queue(data []byte, fd int) {
	c.out = append(c.out, outMessage{data: data, fd: fd})
}

// flush writes every queued message in order. Descriptors ride along as
// SCM_RIGHTS on their own message so they stay attached to the right
// request. Short writes and EINTR/EAGAIN are handled by the runtime; on
// error the unsent tail stays queued. Sent entries are cleared so the
// reused queue does not pin their buffers.
func (c *Client) flush() error {
	for i, m := range c.out {
		var oob []byte
		if m.fd >= 0 {
			oob = unix.UnixRights(m.fd)
		}
		if _, _, err := c.conn.WriteMsgUnix(m.data, oob, nil); err != nil {
			c.out = c.out[i:]
			return fmt.Errorf("display write: %w", err)
		}
	}
	clear(c.out)
	c.out = c.out[:0]
	return nil
}

// readOnce blocks until the socket is readable or the deadline passes, then
// dispatches every complete message received so far
func (c *Client) readOnce(deadline time.Time) error {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	n, err := c.conn.Read(c.scratch)
	if n > 0 {
		c.pending = append(c.pending, c.scratch[:n]...)
		if derr := c.dispatch(); derr != nil {
			return derr
		}
	}
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return os.ErrDeadlineExceeded
		}
		if c.closed {
			return errors.New("display connection closed")
		}
		return fmt.Errorf("display read: %w", err)
	}
	return nil
}

func (c *Client) dispatch() error {
	for {
		msg, consumed := parseMessage(c.pending)
		if consumed == 0 {
			return nil
		}
		c.pending = c.pending[consumed:]
		if err := c.handle(msg); err != nil {
			return err
		}
	}
}

func (c *Client) handle(msg message) error {
	a := args{data: msg.data}

	switch {
	case msg.object == displayObject:
		switch msg.opcode {
		case evDisplayError:
			object, code, text := a.uint(), a.uint(), a.string()
			return fmt.Errorf("display error on object %d (code %d): %s", object, code, text)
		case evDisplayDeleteID:
			// Ids are never reused, so confirmation is informational only.
			a.uint()
		}

	case msg.object == c.registryID:
		switch msg.opcode {
		case evRegistryGlobal:
			name, iface := a.uint(), a.string()
			a.uint() // advertised version; both interfaces are bound at 1
			if !a.bad {
				c.handleGlobal(name, iface)
			}
		case evRegistryGlobalRemove:
			if name := a.uint(); !a.bad {
				c.handleGlobalRemove(name)
			}
		}

	default:
		if _, ok := c.callbacks[msg.object]; ok && msg.opcode == evCallbackDone {
			c.callbacks[msg.object] = true
			break
		}
		if name, ok := c.controlsByID[msg.object]; ok {
			switch msg.opcode {
			case evGammaSize:
				if size := a.uint(); !a.bad {
					c.events = append(c.events, GammaSizeEvent{Name: name, RampSize: size})
				}
			case evGammaFailed:
				c.events = append(c.events, GammaFailedEvent{Name: name})
			}
		}
		// wl_output geometry/mode events and anything else are skipped;
		// the framing is self-describing.
	}

	if a.bad {
		return fmt.Errorf("malformed event %d on object %d", msg.opcode, msg.object)
	}
	return nil
}

func (c *Client) handleGlobal(name uint32, iface string) {
	switch iface {
	case outputInterface:
		id := c.newID()
		c.outputsByName[name] = id
		c.outputsByID[id] = name
		c.queue(encodeMessage(c.registryID, opRegistryBind, name, outputInterface, uint32(1), id), -1)
		c.events = append(c.events, OutputAddedEvent{Name: name})
	case managerInterface:
		if c.manager != 0 {
			return
		}
		c.manager = c.newID()
		c.queue(encodeMessage(c.registryID, opRegistryBind, name, managerInterface, uint32(1), c.manager), -1)
		c.logger.Debug("bound gamma control manager", "global", name)
	}
}

func (c *Client) handleGlobalRemove(name uint32) {
	id, ok := c.outputsByName[name]
	if !ok {
		return
	}
	delete(c.outputsByName, name)
	delete(c.outputsByID, id)
	c.events = append(c.events, OutputRemovedEvent{Name: name})
}

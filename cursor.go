package triemap

import (
	"bytes"

	"github.com/gholt/triemap/engine"
)

// cursor tracks the slot most recently reached in an engine and the key it
// sits on. slot is nil whenever there is no current position.
type cursor struct {
	eng     engine.Engine
	slot    *uint64
	buf     []byte
	key     []byte
	success bool
}

func newCursor(eng engine.Engine) *cursor {
	return &cursor{
		eng:     eng,
		buf:     make([]byte, eng.MaxKeyLen()),
		success: true,
	}
}

// land records slot as the new position, reconstructing its key.
func (c *cursor) land(slot *uint64) bool {
	c.slot = slot
	c.success = slot != nil
	if slot == nil {
		c.key = c.key[:0]
		return false
	}
	n := c.eng.Key(c.buf)
	if n < 0 {
		// The engine lost its position; treat it as a miss.
		c.slot = nil
		c.success = false
		c.key = c.key[:0]
		return false
	}
	c.key = append(c.key[:0], c.buf[:n]...)
	return true
}

// fail marks the last call as unsuccessful without moving the position.
func (c *cursor) fail() {
	c.success = false
}

func (c *cursor) find(key []byte) bool {
	return c.land(c.eng.Slot(key))
}

func (c *cursor) atOrAfter(key []byte) bool {
	return c.land(c.eng.AtOrAfter(key))
}

func (c *cursor) begin() bool {
	return c.land(c.eng.Begin())
}

func (c *cursor) end() bool {
	return c.land(c.eng.End())
}

func (c *cursor) next() bool {
	if c.slot == nil {
		return c.land(nil)
	}
	return c.land(c.eng.Next())
}

func (c *cursor) previous() bool {
	if c.slot == nil {
		return c.land(nil)
	}
	return c.land(c.eng.Previous())
}

// remove deletes the key under the cursor and moves to its predecessor.
func (c *cursor) remove() bool {
	if c.slot == nil {
		c.success = false
		return false
	}
	c.land(c.eng.DeleteCurrent())
	c.success = true
	return true
}

// currentKey returns a copy of the key under the cursor.
func (c *cursor) currentKey() []byte {
	return bytes.Clone(c.key)
}

// replay returns a cursor on eng positioned by repeating the exact lookup of
// this cursor's key.
func (c *cursor) replay(eng engine.Engine) *cursor {
	r := newCursor(eng)
	r.success = c.success
	if c.slot != nil {
		r.land(eng.Slot(c.key))
		r.success = c.success
	}
	return r
}

func (c *cursor) reset() {
	c.slot = nil
	c.key = c.key[:0]
	c.success = true
}

// Package packed overlays typed, bit-accurate field accessors on raw header bytes.
//
// A header format is described by a [Layout] type that knows the format's
// minimum length, and a table of [Field] descriptors that place each field
// at a byte offset, storage width, shift and bit length. [View] and [MutView]
// guard the minimum length once at construction; after that every field
// access is a fixed-offset computation that cannot fail.
//
// Views never copy nor own the underlying bytes. A [View] may be shared by any
// number of readers. A [MutView] must be the only view over its bytes for as long
// as it is in use: Go does not check this, callers keep a single writer.
package packed

import "github.com/soypat/pktview"

// Layout is implemented by zero-sized marker types naming a header format.
type Layout interface {
	// MinLen returns the length of the fixed header in octets.
	MinLen() int
}

func minLen[L Layout]() int {
	var l L
	return l.MinLen()
}

// View is a read-only lens over a buffer holding a header of layout L.
type View[L Layout] struct {
	buf []byte
}

// NewView returns a View over buf. [pktview.ErrShortBuffer] is returned
// and the zero View is returned if buf is shorter than L's minimum length.
func NewView[L Layout](buf []byte) (View[L], error) {
	if len(buf) < minLen[L]() {
		return View[L]{}, pktview.ErrShortBuffer
	}
	return View[L]{buf: buf}, nil
}

// Data returns the whole buffer the view was created with.
func (v View[L]) Data() []byte { return v.buf }

// Header returns the fixed header portion of the buffer. Its capacity is clipped
// so appending to it never overwrites the payload.
func (v View[L]) Header() []byte {
	n := minLen[L]()
	return v.buf[:n:n]
}

// Payload returns the octets following the fixed header. It may be empty.
func (v View[L]) Payload() []byte { return v.buf[minLen[L]():] }

// Get reads field f from the header.
func (v View[L]) Get(f Field) uint32 { return f.Get(v.buf) }

// Get reads field f from v and converts it to T.
func Get[T Unsigned, L Layout](v View[L], f Field) T {
	return T(v.Get(f))
}

// MutView is a read-write lens over a buffer holding a header of layout L.
type MutView[L Layout] struct {
	View[L]
}

// NewMutView returns a MutView over buf. See [NewView].
func NewMutView[L Layout](buf []byte) (MutView[L], error) {
	v, err := NewView[L](buf)
	return MutView[L]{View: v}, err
}

// ReadOnly returns a read-only view over the same bytes.
func (v MutView[L]) ReadOnly() View[L] { return v.View }

// Put writes x into field f of the header. See [Field.Put].
func (v MutView[L]) Put(f Field, x uint32) { f.Put(v.buf, x) }

// Put writes x to field f of v, truncating x to the field's width.
func Put[T Unsigned, L Layout](v MutView[L], f Field, x T) {
	v.Put(f, uint32(x))
}

// Zero clears all octets of the fixed header. The payload is left untouched.
func (v MutView[L]) Zero() {
	clear(v.buf[:minLen[L]()])
}

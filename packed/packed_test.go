package packed

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/soypat/pktview"
)

type testLayout struct{}

func (testLayout) MinLen() int { return 8 }

// Layout used throughout: two nibbles, a 13 bit field sharing a word with 3 bits,
// and a 32 bit word.
var (
	fieldHi    = Field{Name: "hi", Off: 0, Width: 8, Shift: 4, Bits: 4}
	fieldLo    = Field{Name: "lo", Off: 0, Width: 8, Shift: 0, Bits: 4}
	fieldTop3  = Field{Name: "top3", Class: FieldClassFlags, Off: 2, Width: 8, Shift: 5, Bits: 3}
	fieldLow13 = Field{Name: "low13", Class: FieldClassOffset, Off: 2, Width: 16, Shift: 0, Bits: 13}
	fieldWord  = Field{Name: "word", Class: FieldClassSrc, Off: 4, Width: 32, Shift: 0, Bits: 32}
	testFields = []Field{fieldHi, fieldLo, fieldTop3, fieldLow13, fieldWord}
)

func TestNewView(t *testing.T) {
	for n := 0; n < 8; n++ {
		_, err := NewView[testLayout](make([]byte, n))
		if !errors.Is(err, pktview.ErrShortBuffer) {
			t.Errorf("len %d: want ErrShortBuffer, got %v", n, err)
		}
		_, err = NewMutView[testLayout](make([]byte, n))
		if !errors.Is(err, pktview.ErrShortBuffer) {
			t.Errorf("len %d: mutable want ErrShortBuffer, got %v", n, err)
		}
	}
	for n := 8; n < 16; n++ {
		buf := make([]byte, n)
		v, err := NewView[testLayout](buf)
		if err != nil {
			t.Fatal(err)
		}
		if len(v.Header()) != 8 || cap(v.Header()) != 8 {
			t.Errorf("len %d: bad header len/cap %d/%d", n, len(v.Header()), cap(v.Header()))
		}
		if len(v.Payload()) != n-8 {
			t.Errorf("len %d: want payload length %d, got %d", n, n-8, len(v.Payload()))
		}
		if len(v.Data()) != n || &v.Data()[0] != &buf[0] {
			t.Errorf("len %d: data does not alias buffer", n)
		}
		if n > 8 && &v.Payload()[0] != &buf[8] {
			t.Errorf("len %d: payload does not alias buffer", n)
		}
	}
}

func TestHeaderAppendDoesNotClobberPayload(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7, 0xaa}
	v, err := NewView[testLayout](buf)
	if err != nil {
		t.Fatal(err)
	}
	_ = append(v.Header(), 0xff)
	if buf[8] != 0xaa {
		t.Error("append to header overwrote payload")
	}
}

func TestFieldValidate(t *testing.T) {
	for _, f := range testFields {
		if err := f.Validate(); err != nil {
			t.Errorf("%s: %v", f.Name, err)
		}
	}
	if err := CheckLayout(8, testFields...); err != nil {
		t.Error(err)
	}
	for _, tc := range []struct {
		f    Field
		want error
	}{
		{Field{Width: 24, Bits: 1}, errFieldWidth},
		{Field{Width: 8, Bits: 0}, errFieldBits},
		{Field{Width: 8, Bits: 9}, errFieldBits},
		{Field{Width: 8, Shift: 5, Bits: 4}, errFieldShift},
		{Field{Width: 16, Shift: 14, Bits: 3}, errFieldShift},
	} {
		if err := tc.f.Validate(); err != tc.want {
			t.Errorf("%+v: want %v, got %v", tc.f, tc.want, err)
		}
	}
	if err := CheckLayout(7, testFields...); err != errFieldBounds {
		t.Errorf("want out of bounds error, got %v", err)
	}
	// Same bits described twice, and a nibble reaching into the 13 bit field.
	for _, overlapping := range [][]Field{
		{fieldHi, fieldWord, fieldHi},
		{fieldLow13, Field{Name: "mid", Off: 2, Width: 8, Shift: 0, Bits: 4}},
		{fieldTop3, Field{Name: "wide", Off: 2, Width: 16, Shift: 0, Bits: 14}},
	} {
		if err := CheckLayout(8, overlapping...); err != errFieldOverlap {
			t.Errorf("want overlap error, got %v", err)
		}
	}
}

func TestFieldBitOffset(t *testing.T) {
	for _, tc := range []struct {
		f    Field
		want int
	}{
		{fieldHi, 0},
		{fieldLo, 4},
		{fieldTop3, 16},
		{fieldLow13, 19},
		{fieldWord, 32},
	} {
		if got := tc.f.BitOffset(); got != tc.want {
			t.Errorf("%s: want bit offset %d, got %d", tc.f.Name, tc.want, got)
		}
	}
}

func TestFieldRoundTripIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var buf [8]byte
	v, err := NewMutView[testLayout](buf[:])
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		rng.Read(buf[:])
		f := testFields[rng.Intn(len(testFields))]
		before := make([]uint32, len(testFields))
		for j := range testFields {
			before[j] = v.Get(testFields[j])
		}
		want := rng.Uint32() & f.Mask()
		v.Put(f, want)
		if got := v.Get(f); got != want {
			t.Fatalf("%s: want %#x, got %#x", f.Name, want, got)
		}
		for j, other := range testFields {
			if other.Name == f.Name {
				continue
			}
			if got := v.Get(other); got != before[j] {
				t.Fatalf("writing %s changed %s: %#x -> %#x", f.Name, other.Name, before[j], got)
			}
		}
	}
}

func TestFieldTruncation(t *testing.T) {
	var buf [8]byte
	v, err := NewMutView[testLayout](buf[:])
	if err != nil {
		t.Fatal(err)
	}
	ro := v.ReadOnly()
	Put(v, fieldLo, uint8(0xff))
	if buf[0] != 0x0f {
		t.Errorf("want 0x0f, got %#x", buf[0])
	}
	Put(v, fieldLow13, uint16(0xffff))
	if got := Get[uint16](ro, fieldLow13); got != 0x1fff {
		t.Errorf("want 0x1fff, got %#x", got)
	}
	if got := Get[uint8](ro, fieldTop3); got != 0 {
		t.Errorf("13 bit write leaked into top 3 bits: %#x", got)
	}
	Put(v, fieldTop3, uint8(0b1111_1101))
	if got := Get[uint8](ro, fieldTop3); got != 0b101 {
		t.Errorf("want 0b101, got %#b", got)
	}
	if !bytes.Equal(buf[2:4], []byte{0xbf, 0xff}) {
		t.Errorf("unexpected storage %x", buf[2:4])
	}
}

func TestMutViewZero(t *testing.T) {
	buf := bytes.Repeat([]byte{0xff}, 10)
	v, _ := NewMutView[testLayout](buf)
	v.Zero()
	if !bytes.Equal(buf, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff}) {
		t.Errorf("unexpected buffer after Zero: %x", buf)
	}
	if ro := v.ReadOnly(); &ro.Data()[0] != &buf[0] {
		t.Error("read-only view does not alias mutable view")
	}
}

func TestFormatter(t *testing.T) {
	buf := []byte{0xa5, 0, 0xe0, 0x10, 192, 168, 1, 2}
	var f Formatter
	got := string(f.AppendFields(nil, buf, testFields))
	const want = "hi=10; lo=5; top3=0x7; low13=16; word=192.168.1.2"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	f = Formatter{FieldSep: ",", FilterClasses: []FieldClass{FieldClassFlags, FieldClassSrc}}
	got = string(f.AppendFields(nil, buf, testFields))
	const wantFiltered = "top3=0x7,word=192.168.1.2"
	if got != wantFiltered {
		t.Errorf("want %q, got %q", wantFiltered, got)
	}
	got = string(f.AppendField(nil, []byte{17}, Field{Name: "next proto", Class: FieldClassProtocol, Width: 8, Bits: 8}))
	if got != "(next proto)=UDP" {
		t.Errorf("unexpected protocol format %q", got)
	}
}

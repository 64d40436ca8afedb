package packed

import (
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/soypat/pktview"
)

// Formatter prints the fields of a header given its field table.
// The zero value is ready to use.
type Formatter struct {
	// FieldSep separates fields. Defaults to "; ".
	FieldSep string
	// FilterClasses, when non-nil, restricts output to fields of the listed classes.
	FilterClasses []FieldClass
}

// AppendFields appends "name=value" for each field in fields read from buf.
// buf must hold every field's storage unit; see [CheckLayout].
func (f *Formatter) AppendFields(dst, buf []byte, fields []Field) []byte {
	sep := f.fieldSep()
	first := true
	for i := range fields {
		field := fields[i]
		if f.filterField(field) {
			continue
		}
		if !first {
			dst = append(dst, sep...)
		}
		first = false
		dst = f.AppendField(dst, buf, field)
	}
	return dst
}

// AppendField appends a single "name=value" pair to dst.
func (f *Formatter) AppendField(dst, buf []byte, field Field) []byte {
	name := field.Name
	if name == "" {
		name = field.Class.String()
	}
	hasSpaces := strings.IndexByte(name, ' ') >= 0
	if hasSpaces {
		dst = append(dst, '(')
	}
	dst = append(dst, name...)
	if hasSpaces {
		dst = append(dst, ')')
	}
	dst = append(dst, '=')
	v := field.Get(buf)
	switch field.Class {
	case FieldClassChecksum, FieldClassID, FieldClassFlags:
		dst = append(dst, "0x"...)
		dst = strconv.AppendUint(dst, uint64(v), 16)
	case FieldClassProtocol:
		dst = append(dst, pktview.IPProto(v).String()...)
	case FieldClassSrc, FieldClassDst:
		if field.Bits == 32 {
			dst = netip.AddrFrom4([4]byte(buf[field.Off:field.End()])).AppendTo(dst)
			break
		}
		fallthrough
	default:
		dst = strconv.AppendUint(dst, uint64(v), 10)
	}
	return dst
}

func (f *Formatter) filterField(field Field) bool {
	return f.FilterClasses != nil && !slices.Contains(f.FilterClasses, field.Class)
}

func (f *Formatter) fieldSep() string {
	sep := f.FieldSep
	if sep == "" {
		sep = "; "
	}
	return sep
}

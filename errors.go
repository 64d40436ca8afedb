package pktview

type errGeneric uint8

// Generic errors common to all header views.
const (
	_              errGeneric = iota // non-initialized err
	ErrShortBuffer                   // short buffer
	ErrBadCRC                        // incorrect checksum
)

func (err errGeneric) Error() string {
	switch err {
	case ErrShortBuffer:
		return "short buffer"
	case ErrBadCRC:
		return "incorrect checksum"
	}
	return "non-initialized err"
}

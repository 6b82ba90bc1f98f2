package resource

import (
	"time"
)

// HeaderKind is the value type of an HTTP header record
type HeaderKind int

const (
	// TextHeaderKind is for headers holding free text
	TextHeaderKind HeaderKind = iota
	// DateHeaderKind is for headers holding an HTTP date
	DateHeaderKind
	// IntHeaderKind is for headers holding an integer
	IntHeaderKind
)

// String returns the name of the header kind
func (kind HeaderKind) String() string {
	switch kind {
	case TextHeaderKind:
		return "text"
	case DateHeaderKind:
		return "date"
	case IntHeaderKind:
		return "int"
	default:
		return "unknown"
	}
}

// HttpHeader is a single named, typed HTTP header value captured from a response.
// The value type is fixed by the constructor, so a record can never hold a value
// that does not match its kind. Records are immutable and owned by the
// CachedResource that lists them.
type HttpHeader struct {
	name    string
	kind    HeaderKind
	text    string
	date    time.Time
	integer int
}

// NewTextHeader creates a text header record
func NewTextHeader(name string, value string) HttpHeader {
	return HttpHeader{
		name: name,
		kind: TextHeaderKind,
		text: value,
	}
}

// NewDateHeader creates a date header record
func NewDateHeader(name string, value time.Time) HttpHeader {
	return HttpHeader{
		name: name,
		kind: DateHeaderKind,
		date: value,
	}
}

// NewIntHeader creates an integer header record
func NewIntHeader(name string, value int) HttpHeader {
	return HttpHeader{
		name: name,
		kind: IntHeaderKind,
		integer: value,
	}
}

// GetName returns the header name
func (header HttpHeader) GetName() string {
	return header.name
}

// GetKind returns the header kind
func (header HttpHeader) GetKind() HeaderKind {
	return header.kind
}

// GetText returns the text value, valid for TextHeaderKind
func (header HttpHeader) GetText() string {
	return header.text
}

// GetDate returns the date value, valid for DateHeaderKind
func (header HttpHeader) GetDate() time.Time {
	return header.date
}

// GetInt returns the integer value, valid for IntHeaderKind
func (header HttpHeader) GetInt() int {
	return header.integer
}

package resource

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pageseeder/webcache-common/utils"
)

// HeaderSink receives the headers of a cached resource when it is served.
// Set replaces any prior value for the name, Add appends alongside it.
type HeaderSink interface {
	SetHeader(name string, value string)
	AddHeader(name string, value string)

	SetDateHeader(name string, value time.Time)
	AddDateHeader(name string, value time.Time)

	SetIntHeader(name string, value int)
	AddIntHeader(name string, value int)
}

// HTTPHeaderSink implements HeaderSink over a net/http header map
type HTTPHeaderSink struct {
	header http.Header
}

// NewHTTPHeaderSink creates a new HTTPHeaderSink
func NewHTTPHeaderSink(header http.Header) *HTTPHeaderSink {
	return &HTTPHeaderSink{
		header: header,
	}
}

// SetHeader sets a text header, replacing prior values
func (sink *HTTPHeaderSink) SetHeader(name string, value string) {
	sink.header.Set(name, value)
}

// AddHeader adds a text header alongside prior values
func (sink *HTTPHeaderSink) AddHeader(name string, value string) {
	sink.header.Add(name, value)
}

// SetDateHeader sets a date header, replacing prior values
func (sink *HTTPHeaderSink) SetDateHeader(name string, value time.Time) {
	sink.header.Set(name, utils.FormatHTTPDate(value))
}

// AddDateHeader adds a date header alongside prior values
func (sink *HTTPHeaderSink) AddDateHeader(name string, value time.Time) {
	sink.header.Add(name, utils.FormatHTTPDate(value))
}

// SetIntHeader sets an integer header, replacing prior values
func (sink *HTTPHeaderSink) SetIntHeader(name string, value int) {
	sink.header.Set(name, strconv.Itoa(value))
}

// AddIntHeader adds an integer header alongside prior values
func (sink *HTTPHeaderSink) AddIntHeader(name string, value int) {
	sink.header.Add(name, strconv.Itoa(value))
}

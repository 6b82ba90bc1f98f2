package resource

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/pageseeder/webcache-common/gziputil"
	"github.com/pageseeder/webcache-common/utils"
)

const (
	lastModifiedHeaderName = "Last-Modified"
	etagHeaderName         = "ETag"

	// suffix distinguishing the validator of the gzipped variant
	etagGzipMarker = "-gzip"
)

// CachedResource is an immutable representation of a cached HTTP response.
// The body is held in exactly one representation, either raw or gzipped, and
// a single stored resource can serve both the plain and the gzip variant of
// the response through content-negotiated header emission.
type CachedResource struct {
	statusCode   int
	contentType  string
	storeGzipped bool
	content      []byte
	headers      []HttpHeader
}

// NewCachedResource creates a new CachedResource holding the body in the
// requested representation:
//   - gzipped storage requested and the body is raw, the body is gzipped;
//   - gzipped storage requested and the body already carries the gzip magic
//     bytes, the body is stored as-is;
//   - plain storage requested and the body carries the gzip magic bytes,
//     construction fails, the caller violated the contract.
func NewCachedResource(statusCode int, contentType string, body []byte, storeGzipped bool, headers []HttpHeader) (*CachedResource, error) {
	content := body
	if storeGzipped {
		if !gziputil.IsGzipped(body) {
			gzipped, err := gziputil.Gzip(body)
			if err != nil {
				return nil, xerrors.Errorf("failed to gzip body for cached resource: %w", err)
			}
			content = gzipped
		}
	} else {
		if gziputil.IsGzipped(body) {
			return nil, xerrors.Errorf("non-gzip content has been gzipped")
		}
	}

	resourceHeaders := make([]HttpHeader, len(headers))
	copy(resourceHeaders, headers)

	return &CachedResource{
		statusCode:   statusCode,
		contentType:  contentType,
		storeGzipped: storeGzipped,
		content:      content,
		headers:      resourceHeaders,
	}, nil
}

// GetStatusCode returns the HTTP status code of the response
func (res *CachedResource) GetStatusCode() int {
	return res.statusCode
}

// GetContentType returns the content type (MIME) of the response
func (res *CachedResource) GetContentType() string {
	return res.contentType
}

// GetHeaders returns the headers of the response in capture order
func (res *CachedResource) GetHeaders() []HttpHeader {
	headers := make([]HttpHeader, len(res.headers))
	copy(headers, res.headers)
	return headers
}

// StoresGzipped returns whether the body is stored gzipped
func (res *CachedResource) StoresGzipped() bool {
	return res.storeGzipped
}

// HasGzippedBody returns whether a gzipped body is stored
func (res *CachedResource) HasGzippedBody() bool {
	return res.storeGzipped && res.content != nil
}

// HasUngzippedBody returns whether a raw body is stored
func (res *CachedResource) HasUngzippedBody() bool {
	return !res.storeGzipped && res.content != nil
}

// GetGzippedBody returns the gzipped body.
// It fails if the body is not stored gzipped.
func (res *CachedResource) GetGzippedBody() ([]byte, error) {
	if !res.storeGzipped {
		return nil, xerrors.Errorf("cached resource does not store a gzipped body")
	}
	return res.content, nil
}

// GetUngzippedBody returns the raw body.
// If the body is stored gzipped, it is inflated on demand and the result is
// not written back into the resource.
func (res *CachedResource) GetUngzippedBody() ([]byte, error) {
	if res.storeGzipped {
		ungzipped, err := gziputil.Gunzip(res.content)
		if err != nil {
			return nil, xerrors.Errorf("failed to inflate body of cached resource: %w", err)
		}
		return ungzipped, nil
	}
	return res.content, nil
}

// IsOK returns whether the response status is 200
func (res *CachedResource) IsOK() bool {
	return res.statusCode == http.StatusOK
}

// GetLastModified returns the last modified date of the resource, scanning
// the headers for "Last-Modified". The second return value is false if no
// such header is defined.
func (res *CachedResource) GetLastModified() (time.Time, bool) {
	for _, header := range res.headers {
		if !strings.EqualFold(header.GetName(), lastModifiedHeaderName) {
			continue
		}

		switch header.GetKind() {
		case DateHeaderKind:
			return header.GetDate(), true
		case TextHeaderKind:
			date, err := utils.ParseHTTPDate(header.GetText())
			if err == nil {
				return date, true
			}
		}
	}
	return time.Time{}, false
}

// GetETag returns the entity tag of the resource, scanning the headers for
// "ETag". The second return value is false if no such header is defined.
func (res *CachedResource) GetETag() (string, bool) {
	for _, header := range res.headers {
		if strings.EqualFold(header.GetName(), etagHeaderName) && header.GetKind() == TextHeaderKind {
			return header.GetText(), true
		}
	}
	return "", false
}

// CopyHeadersTo emits the headers to the sink in capture order. The first
// occurrence of each name sets the header, every later occurrence of the same
// name is added alongside, so multi-valued headers survive. The ETag value is
// adjusted for the variant being served before emission.
func (res *CachedResource) CopyHeadersTo(sink HeaderSink, gzipped bool) {
	set := map[string]bool{}
	for _, header := range res.headers {
		name := header.GetName()
		nameKey := strings.ToLower(name)
		first := !set[nameKey]
		set[nameKey] = true

		switch header.GetKind() {
		case TextHeaderKind:
			value := header.GetText()
			if nameKey == "etag" {
				value = adjustETagVariant(value, gzipped)
			}
			if first {
				sink.SetHeader(name, value)
			} else {
				sink.AddHeader(name, value)
			}
		case DateHeaderKind:
			if first {
				sink.SetDateHeader(name, header.GetDate())
			} else {
				sink.AddDateHeader(name, header.GetDate())
			}
		case IntHeaderKind:
			if first {
				sink.SetIntHeader(name, header.GetInt())
			} else {
				sink.AddIntHeader(name, header.GetInt())
			}
		}
	}
}

// adjustETagVariant toggles the "-gzip" marker on an ETag value so that one
// stored validator distinguishes the plain and gzipped variants. Quoted values
// keep the marker inside the closing quote.
func adjustETagVariant(value string, gzipped bool) string {
	quoted := strings.HasSuffix(value, `"`)

	if gzipped {
		if strings.HasSuffix(value, etagGzipMarker) || strings.HasSuffix(value, etagGzipMarker+`"`) {
			return value
		}
		if quoted {
			return value[:len(value)-1] + etagGzipMarker + `"`
		}
		return value + etagGzipMarker
	}

	if strings.HasSuffix(value, etagGzipMarker+`"`) {
		return strings.TrimSuffix(value, etagGzipMarker+`"`) + `"`
	}
	return strings.TrimSuffix(value, etagGzipMarker)
}

package store

import (
	"bytes"
	"encoding/gob"
	"time"

	"golang.org/x/xerrors"

	"github.com/pageseeder/webcache-common/resource"
)

// storable gob forms of a cached resource and its headers

type headerRecord struct {
	Name string
	Kind int
	Text string
	Date time.Time
	Int  int
}

type resourceRecord struct {
	StatusCode  int
	ContentType string
	Gzipped     bool
	Content     []byte
	Headers     []headerRecord
}

// encodeResource returns the gob encoding of a cached resource
func encodeResource(res *resource.CachedResource) ([]byte, error) {
	var content []byte
	var err error
	if res.StoresGzipped() {
		content, err = res.GetGzippedBody()
	} else {
		content, err = res.GetUngzippedBody()
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read body of resource to encode: %w", err)
	}

	record := resourceRecord{
		StatusCode:  res.GetStatusCode(),
		ContentType: res.GetContentType(),
		Gzipped:     res.StoresGzipped(),
		Content:     content,
	}

	for _, header := range res.GetHeaders() {
		headerRec := headerRecord{
			Name: header.GetName(),
			Kind: int(header.GetKind()),
		}

		switch header.GetKind() {
		case resource.TextHeaderKind:
			headerRec.Text = header.GetText()
		case resource.DateHeaderKind:
			headerRec.Date = header.GetDate()
		case resource.IntHeaderKind:
			headerRec.Int = header.GetInt()
		}

		record.Headers = append(record.Headers, headerRec)
	}

	buffer := &bytes.Buffer{}
	err = gob.NewEncoder(buffer).Encode(record)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode resource: %w", err)
	}

	return buffer.Bytes(), nil
}

// decodeResource rebuilds a cached resource from its gob encoding
func decodeResource(data []byte) (*resource.CachedResource, error) {
	record := resourceRecord{}
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&record)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode resource: %w", err)
	}

	var headers []resource.HttpHeader
	for _, headerRec := range record.Headers {
		switch resource.HeaderKind(headerRec.Kind) {
		case resource.TextHeaderKind:
			headers = append(headers, resource.NewTextHeader(headerRec.Name, headerRec.Text))
		case resource.DateHeaderKind:
			headers = append(headers, resource.NewDateHeader(headerRec.Name, headerRec.Date))
		case resource.IntHeaderKind:
			headers = append(headers, resource.NewIntHeader(headerRec.Name, headerRec.Int))
		default:
			return nil, xerrors.Errorf("unknown header kind %d for header %q", headerRec.Kind, headerRec.Name)
		}
	}

	res, err := resource.NewCachedResource(record.StatusCode, record.ContentType, record.Content, record.Gzipped, headers)
	if err != nil {
		return nil, xerrors.Errorf("failed to rebuild decoded resource: %w", err)
	}

	return res, nil
}

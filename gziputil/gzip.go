package gziputil

import (
	"bytes"
	"compress/gzip"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

const (
	// first two bytes of any GZIP stream, per RFC 1952
	gzipID1 byte = 0x1f
	gzipID2 byte = 0x8b

	// read chunk size used while inflating
	gunzipChunkSize = 4096
)

var (
	emptyGzipOnce sync.Once
	emptyGzipLen  int
)

// IsGzipped checks the first two bytes of the candidate for the GZIP magic number.
// Returns false for nil input or input shorter than two bytes.
func IsGzipped(candidate []byte) bool {
	if len(candidate) < 2 {
		return false
	}
	return candidate[0] == gzipID1 && candidate[1] == gzipID2
}

// EmptyGzipSize returns the size of a GZIP stream holding an empty payload
// (header, empty deflate block and trailer).
func EmptyGzipSize() int {
	emptyGzipOnce.Do(func() {
		buffer := &bytes.Buffer{}
		writer := gzip.NewWriter(buffer)
		writer.Close()
		emptyGzipLen = buffer.Len()
	})
	return emptyGzipLen
}

// IsEmptyGzip checks whether a gzipped body inflates to nothing.
// Callers use this to report a zero-length body instead of forwarding
// overhead-only bytes.
func IsEmptyGzip(compressed []byte) bool {
	return len(compressed) == EmptyGzipSize()
}

// Gzip compresses the given bytes.
// It fails if the input is already gzipped to guard against double compression.
func Gzip(ungzipped []byte) ([]byte, error) {
	if IsGzipped(ungzipped) {
		return nil, xerrors.Errorf("attempted to gzip content that is already gzipped")
	}

	buffer := &bytes.Buffer{}
	writer := gzip.NewWriter(buffer)

	_, err := writer.Write(ungzipped)
	if err != nil {
		return nil, xerrors.Errorf("failed to gzip content: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, xerrors.Errorf("failed to gzip content: %w", err)
	}

	return buffer.Bytes(), nil
}

// Gunzip inflates a gzipped stream back to raw bytes.
// It fails if the stream is corrupt.
func Gunzip(gzipped []byte) ([]byte, error) {
	logger := log.WithFields(log.Fields{
		"package":  "gziputil",
		"function": "Gunzip",
	})

	reader, err := gzip.NewReader(bytes.NewReader(gzipped))
	if err != nil {
		return nil, xerrors.Errorf("failed to read gzip stream: %w", err)
	}
	defer reader.Close()

	uncompressed := &bytes.Buffer{}
	chunk := make([]byte, gunzipChunkSize)
	for {
		readLen, readErr := reader.Read(chunk)
		if readLen > 0 {
			uncompressed.Write(chunk[:readLen])
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, xerrors.Errorf("failed to inflate corrupt gzip stream: %w", readErr)
		}
	}

	logger.Debugf("inflated %d bytes to %d bytes", len(gzipped), uncompressed.Len())
	return uncompressed.Bytes(), nil
}

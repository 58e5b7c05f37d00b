package media

import (
	"bufio"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Sniff peeks at the start of r and reports the detected content type and whether
// it is an image (including HEIC/HEIF and AVIF phone photos). The returned reader
// yields the full, unconsumed stream.
func Sniff(r io.Reader) (io.Reader, string, bool, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return br, "", false, err
	}
	if len(head) == 0 {
		return br, "", false, nil
	}
	ct := mimetype.Detect(head).String()
	return br, ct, strings.HasPrefix(ct, "image/"), nil
}

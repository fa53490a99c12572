package music

import (
	"bufio"
	"io"
)

const oggHeaderSize = 27

type oggPage struct {
	header  bool
	packets [][]byte
}

// oggReader pulls Opus packets out of an Ogg stream as produced by ffmpeg
// with -f ogg.
type oggReader struct {
	r *bufio.Reader
}

func newOggReader(r io.Reader) *oggReader {
	return &oggReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// NextPage returns the next page. OpusHead and OpusTags pages are flagged as
// header pages so callers can skip them.
func (o *oggReader) NextPage() (*oggPage, error) {
	if err := o.sync(); err != nil {
		return nil, err
	}

	// The capture pattern was consumed by sync.
	rest := make([]byte, oggHeaderSize-4)
	if _, err := io.ReadFull(o.r, rest); err != nil {
		return nil, unexpectedEOF(err)
	}

	headerType := rest[1]
	segments := make([]byte, rest[22])
	if _, err := io.ReadFull(o.r, segments); err != nil {
		return nil, unexpectedEOF(err)
	}

	size := 0
	for _, s := range segments {
		size += int(s)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(o.r, body); err != nil {
		return nil, unexpectedEOF(err)
	}

	page := &oggPage{
		header:  headerType&0x02 != 0,
		packets: splitPackets(segments, body),
	}
	if len(body) >= 8 {
		switch string(body[:8]) {
		case "OpusHead", "OpusTags":
			page.header = true
		}
	}
	return page, nil
}

func (o *oggReader) sync() error {
	for {
		b, err := o.r.ReadByte()
		if err != nil {
			return err
		}
		if b != 'O' {
			continue
		}

		peek, err := o.r.Peek(3)
		if err != nil {
			return err
		}
		if string(peek) == "ggS" {
			_, _ = o.r.Discard(3)
			return nil
		}
	}
}

// splitPackets joins lacing values into packets. A segment shorter than 255
// bytes terminates a packet; a trailing run of 255s continues on the next page
// and is returned as-is.
func splitPackets(segments []byte, body []byte) [][]byte {
	var packets [][]byte
	var current []byte
	offset := 0

	for _, seg := range segments {
		n := int(seg)
		if offset+n > len(body) {
			break
		}
		current = append(current, body[offset:offset+n]...)
		offset += n

		if seg < 255 && len(current) > 0 {
			packets = append(packets, current)
			current = nil
		}
	}

	if len(current) > 0 {
		packets = append(packets, current)
	}
	return packets
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

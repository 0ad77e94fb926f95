package discord

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

type opcode uint32

const (
	opHandshake opcode = 0
	opFrame     opcode = 1
	opClose     opcode = 2
	opPing      opcode = 3
	opPong      opcode = 4
)

// Frames larger than this are not something Discord sends us
const maxFrameSize = 1 << 20

type header struct {
	Op     opcode
	Length uint32
}

func writeFrame(w io.Writer, op opcode, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writeRaw(w, op, body)
}

func writeRaw(w io.Writer, op opcode, body []byte) error {
	buf := make([]byte, 8, 8+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	buf = append(buf, body...)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) (opcode, []byte, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return 0, nil, err
	}
	if h.Length > maxFrameSize {
		return 0, nil, fmt.Errorf("frame of %d bytes exceeds limit", h.Length)
	}
	body := make([]byte, h.Length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return h.Op, body, nil
}

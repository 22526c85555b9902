// Package upload implements the chunked file transfer used by the resume
// sockets: a JSON control frame naming the file, binary chunks, then an EOF
// marker.
package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types share their values with RFC 6455 opcodes, so both
// gorilla/websocket and fiber's websocket connections satisfy Conn.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

var eofMarker = []byte("EOF")

var (
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
	ErrTooManyFiles     = errors.New("too many files in batch")
	ErrUnexpectedFrame  = errors.New("unexpected frame")
	ErrConnectionClosed = errors.New("connection closed before upload completed")
)

type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

type Limits struct {
	MaxFileBytes int64
	MaxFiles     int
}

type File struct {
	Name     string
	SafeName string
	Data     []byte
}

type control struct {
	Filename string `json:"filename"`
	NumFiles *int   `json:"num_files,omitempty"`
}

// Receive reads a single file. index is used for the default name when the
// control frame carries none.
func Receive(conn Conn, limits Limits, index int) (*File, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		return nil, closedErr(err)
	}
	if mt != TextMessage {
		return nil, fmt.Errorf("%w: expected filename control frame, got binary", ErrUnexpectedFrame)
	}
	var ctrl control
	if err := json.Unmarshal(data, &ctrl); err != nil {
		return nil, fmt.Errorf("%w: invalid control frame: %v", ErrUnexpectedFrame, err)
	}
	name := ctrl.Filename
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("uploaded_file_%d.pdf", index)
	}

	var buf bytes.Buffer
	for {
		mt, chunk, err := conn.ReadMessage()
		if err != nil {
			return nil, closedErr(err)
		}
		if isEOF(mt, chunk) {
			break
		}
		if mt != BinaryMessage {
			return nil, fmt.Errorf("%w: text frame inside file %q", ErrUnexpectedFrame, name)
		}
		if limits.MaxFileBytes > 0 && int64(buf.Len()+len(chunk)) > limits.MaxFileBytes {
			return nil, fmt.Errorf("%w: %q is larger than %d bytes", ErrFileTooLarge, name, limits.MaxFileBytes)
		}
		buf.Write(chunk)
	}

	return &File{Name: name, SafeName: SanitizeFilename(name), Data: buf.Bytes()}, nil
}

// ReceiveBatch reads the batch header and then every announced file,
// reporting progress to the peer before each one. onFile runs after each
// file has been fully received; an error from it stops the batch.
func ReceiveBatch(conn Conn, limits Limits, onFile func(i int, f *File) error) (int, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		return 0, closedErr(err)
	}
	if mt != TextMessage {
		return 0, fmt.Errorf("%w: expected batch header, got binary", ErrUnexpectedFrame)
	}
	var header control
	if err := json.Unmarshal(data, &header); err != nil {
		return 0, fmt.Errorf("%w: invalid batch header: %v", ErrUnexpectedFrame, err)
	}
	n := 1
	if header.NumFiles != nil && *header.NumFiles > 0 {
		n = *header.NumFiles
	}
	if limits.MaxFiles > 0 && n > limits.MaxFiles {
		return 0, fmt.Errorf("%w: %d announced, at most %d allowed", ErrTooManyFiles, n, limits.MaxFiles)
	}

	for i := 0; i < n; i++ {
		progress := fmt.Sprintf("Processing file %d of %d", i+1, n)
		if err := conn.WriteMessage(TextMessage, []byte(progress)); err != nil {
			return i, err
		}
		f, err := Receive(conn, limits, i)
		if err != nil {
			return i, err
		}
		if err := onFile(i, f); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Send is the client half of the protocol. With batch set it writes the
// num_files header and consumes the progress line before each file.
func Send(conn Conn, files []File, chunkSize int, batch bool) error {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	if batch {
		header, _ := json.Marshal(map[string]int{"num_files": len(files)})
		if err := conn.WriteMessage(TextMessage, header); err != nil {
			return err
		}
	}
	for _, f := range files {
		if batch {
			// progress line
			if _, _, err := conn.ReadMessage(); err != nil {
				return closedErr(err)
			}
		}
		ctrl, _ := json.Marshal(control{Filename: f.Name})
		if err := conn.WriteMessage(TextMessage, ctrl); err != nil {
			return err
		}
		for off := 0; off < len(f.Data); off += chunkSize {
			end := off + chunkSize
			if end > len(f.Data) {
				end = len(f.Data)
			}
			if err := conn.WriteMessage(BinaryMessage, f.Data[off:end]); err != nil {
				return err
			}
		}
		if err := conn.WriteMessage(BinaryMessage, eofMarker); err != nil {
			return err
		}
	}
	return nil
}

func isEOF(mt int, data []byte) bool {
	return (mt == BinaryMessage || mt == TextMessage) && bytes.Equal(data, eofMarker)
}

// closedErr marks read failures. Any read error mid-transfer means the peer
// is gone, whichever websocket implementation produced it.
func closedErr(err error) error {
	return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
}

// SanitizeFilename keeps the base name and only letters, digits, spaces,
// dots, underscores and dashes.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" || safe == "." || safe == ".." {
		return "uploaded_file_" + randomSuffix()
	}
	return safe
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

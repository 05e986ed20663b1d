// Package runlog records a run as compressed JSONL: one header line, then one
// record per executed action carrying the decoded action, its full log and
// the state digest afterwards. The format is what replay verification and the
// batch tools consume.
package runlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// Header is the first line of every run log.
type Header struct {
	ProtocolVersion string `json:"protocol_version"`
	SeedText        string `json:"seed_text"`
	CatalogsDigest  string `json:"catalogs_digest"`
	StartDigest     string `json:"start_digest"`
	CreatedAt       string `json:"created_at"`
}

// Record is one executed action: the action as submitted, the engine's log,
// and the digest of the state the action left behind.
type Record struct {
	Action      json.RawMessage    `json:"action"`
	Log         protocol.ActionLog `json:"log"`
	DigestAfter string             `json:"digest_after"`
}

// DecodeAction unpacks the record's action envelope.
func (r Record) DecodeAction() (protocol.Action, error) {
	return protocol.DecodeAction(r.Action)
}

type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens a new run log and writes its header.
func Create(path string, hdr Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}

	if hdr.CreatedAt == "" {
		hdr.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := w.writeLine(hdr); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Append records one executed action.
func (w *Writer) Append(action protocol.Action, log protocol.ActionLog, digestAfter string) error {
	raw, err := protocol.EncodeAction(action)
	if err != nil {
		return err
	}
	return w.writeLine(Record{Action: raw, Log: log, DigestAfter: digestAfter})
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.New("runlog: writer closed")
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err error
	if w.w != nil {
		_ = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	return err
}

type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
	hdr Header
}

// Open reads the header and positions the reader at the first record.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec.IOReadCloser())
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !sc.Scan() {
		_ = f.Close()
		dec.Close()
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("runlog: empty file")
	}
	var hdr Header
	if err := json.Unmarshal(sc.Bytes(), &hdr); err != nil {
		_ = f.Close()
		dec.Close()
		return nil, fmt.Errorf("runlog: bad header: %w", err)
	}

	return &Reader{f: f, dec: dec, sc: sc, hdr: hdr}, nil
}

func (r *Reader) Header() Header { return r.hdr }

// Next returns the following record, or io.EOF at the end.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return rec, err
		}
		return rec, io.EOF
	}
	if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
		return rec, fmt.Errorf("runlog: bad record: %w", err)
	}
	return rec, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

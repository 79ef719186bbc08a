package dxf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pid-digitizer/backend/internal/models"
	"golang.org/x/text/encoding/charmap"
)

// writer emits group code/value pairs. The first write error sticks and
// every later call becomes a no-op, so callers check err once at the end.
type writer struct {
	bw      *bufio.Writer
	n       int64
	err     error
	handles uint64
}

func newWriter(w io.Writer, firstHandle uint64) *writer {
	wr := &writer{handles: firstHandle}
	wr.bw = bufio.NewWriter(countingWriter{w: w, n: &wr.n})
	return wr
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

func (w *writer) pair(code int, value string) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.bw, "%3d\n", code); err != nil {
		w.err = err
		return
	}
	if _, err := w.bw.Write(encodeValue(value)); err != nil {
		w.err = err
		return
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		w.err = err
	}
}

func (w *writer) str(code int, s string)    { w.pair(code, s) }
func (w *writer) text(code int, s string)   { w.pair(code, s) }
func (w *writer) int(code int, v int)       { w.pair(code, strconv.Itoa(v)) }
func (w *writer) float(code int, v float64) { w.pair(code, formatFloat(v)) }

func (w *writer) point(code int, p models.Point) {
	w.float(code, p.X)
	w.float(code+10, p.Y)
	w.float(code+20, 0)
}

// handle allocates the next object handle.
func (w *writer) handle() string {
	h := w.handles
	w.handles++
	return strings.ToUpper(strconv.FormatUint(h, 16))
}

func (w *writer) entityHeader(typ, owner, layer string, lineweight int) {
	w.str(0, typ)
	w.str(5, w.handle())
	w.str(330, owner)
	w.str(100, "AcDbEntity")
	w.str(8, layer)
	if lineweight != LineweightByLayer {
		w.int(370, lineweight)
	}
}

func (w *writer) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.bw.Flush()
}

// encodeValue converts a value to the ANSI_1252 code page. Runes outside it
// become \U+XXXX escapes and line breaks become spaces.
func encodeValue(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			b = append(b, '?')
		case r < 0x20:
			b = append(b, ' ')
		case r < utf8.RuneSelf:
			b = append(b, byte(r))
		default:
			if c, ok := charmap.Windows1252.EncodeRune(r); ok {
				b = append(b, c)
			} else {
				b = append(b, fmt.Sprintf(`\U+%04X`, r)...)
			}
		}
	}
	return b
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

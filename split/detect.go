package split

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"cssplit/archive"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUnknown:
		return "unknown"
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return fmt.Sprintf("srcEncoding(%d)", int(e))
}

// enough for filetype matchers
const headerSize = 262

func readHeader(r io.Reader) ([]byte, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func fileHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readHeader(f)
}

// isArchiveFile checks file content, extension does not matter.
func isArchiveFile(path string) (bool, error) {
	header, err := fileHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(header, "zip"), nil
}

// looksLikeStylesheet accepts names with css extension unless content is
// recognized as some known binary format.
func looksLikeStylesheet(name string, header []byte) (bool, srcEncoding) {
	if !archive.IsStylesheet(name) {
		return false, encUnknown
	}
	enc := detectUTF(header)
	if enc == encUnknown {
		if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown {
			return false, encUnknown
		}
	}
	return true, enc
}

func isStylesheetFile(path string) (bool, srcEncoding, error) {
	header, err := fileHeader(path)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := looksLikeStylesheet(path, header)
	return ok, enc, nil
}

func isStylesheetInArchive(f *zip.File) (bool, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	header, err := readHeader(r)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := looksLikeStylesheet(f.Name, header)
	return ok, enc, nil
}

func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte{0x00, 0x00, 0xFE, 0xFF})
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte{0xFF, 0xFE, 0x00, 0x00})
}

func isUTF8BOM3(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte{0xFE, 0xFF})
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte{0xFF, 0xFE})
}

// selectReader returns reader producing UTF-8 without BOM.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	// this should never happen
	panic(fmt.Sprintf("unexpected source encoding %d", int(enc)))
}

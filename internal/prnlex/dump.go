// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prn

import (
	"compress/bzip2"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// Page is one page of a MediaWiki XML export.
type Page struct {
	Title string `xml:"title"`
	Ns    int    `xml:"ns"`
	Text  string `xml:"revision>text"`
}

// dumpReader streams pages out of an export without loading the dump
// into memory. Per prd002-prn-compiler R2.1: dumps run to gigabytes, so
// the compiler is a single bounded-memory pass.
type dumpReader struct {
	dec *xml.Decoder
}

func newDumpReader(r io.Reader) *dumpReader {
	return &dumpReader{dec: xml.NewDecoder(r)}
}

// Next returns the next page, or io.EOF when the dump is exhausted.
func (d *dumpReader) Next() (*Page, error) {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "page" {
			continue
		}

		var p Page
		if err := d.dec.DecodeElement(&p, &se); err != nil {
			return nil, fmt.Errorf("decoding page element: %w", err)
		}
		return &p, nil
	}
}

// countingReader tracks compressed bytes consumed so progress can be
// reported against the dump's on-disk size.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

func (c *countingReader) count() int64 {
	return c.n.Load()
}

// openDump opens a dump file, transparently decompressing .bz2 exports.
// The returned countingReader reflects position within the raw file.
func openDump(path string) (*dumpReader, *countingReader, io.Closer, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("opening dump: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, nil, 0, fmt.Errorf("inspecting dump: %w", err)
	}

	counter := &countingReader{r: f}
	var r io.Reader = counter
	if strings.HasSuffix(path, ".bz2") {
		r = bzip2.NewReader(counter)
	}

	return newDumpReader(r), counter, f, info.Size(), nil
}

// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webview

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// newBoundary returns a MIME multipart boundary compatible with RFC 2046
// (section 5.1.1).
func newBoundary() string {
	var b [30]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// frameWriter writes a never ending multipart/x-mixed-replace body.
//
// mime/multipart.Writer only writes the boundary closing a part when the next
// one starts, which leaves browsers waiting for the next frame to show the
// current one.
type frameWriter struct {
	w        io.Writer
	boundary string
	started  bool
	buf      bytes.Buffer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: w, boundary: newBoundary()}
}

// write sends one part, closing boundary included. The Content-Length header
// of hdr is set.
func (f *frameWriter) write(hdr textproto.MIMEHeader, body []byte) error {
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	f.buf.Reset()
	if !f.started {
		fmt.Fprintf(&f.buf, "--%s\r\n", f.boundary)
		f.started = true
	}
	for k, values := range hdr {
		for _, v := range values {
			fmt.Fprintf(&f.buf, "%s: %s\r\n", k, v)
		}
	}
	f.buf.WriteString("\r\n")
	f.buf.Write(body)
	fmt.Fprintf(&f.buf, "\r\n--%s\r\n", f.boundary)
	_, err := f.buf.WriteTo(f.w)
	return err
}

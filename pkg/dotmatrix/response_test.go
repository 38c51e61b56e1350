// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Thermoquad/mmm8x8/pkg/transport"
)

// chunkReader replays reads: a nil chunk is an empty read, then err once the
// chunks run out
type chunkReader struct {
	chunks [][]byte
	err    error
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.reads++
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, transport.ErrNoData
	}
	chunk := r.chunks[0]
	if chunk == nil {
		r.chunks = r.chunks[1:]
		return 0, transport.ErrNoData
	}
	n := copy(p, chunk)
	if n < len(chunk) {
		r.chunks[0] = chunk[n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestReadResponse(t *testing.T) {
	ack := []byte{0x02, 0x00, 0x01, 0x46, 0x00, 0x00}

	tests := []struct {
		name   string
		chunks [][]byte
	}{
		{"single read", [][]byte{ack}},
		{"split reads", [][]byte{ack[:2], ack[2:5], ack[5:]}},
		{"one byte per read with idle reads", [][]byte{
			nil, ack[0:1], nil, ack[1:2], ack[2:3], nil, nil, ack[3:4], ack[4:5], nil, ack[5:6],
		}},
		{"extra bytes stay unread", [][]byte{append(append([]byte{}, ack...), 0xEE)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &chunkReader{chunks: tt.chunks}
			got, err := ReadResponse(context.Background(), r, len(ack), 5)
			if err != nil {
				t.Fatalf("ReadResponse() error = %v", err)
			}
			if !bytes.Equal(got, ack) {
				t.Errorf("ReadResponse() = % X, want % X", got, ack)
			}
		})
	}
}

func TestReadResponse_ZeroNilIsIdle(t *testing.T) {
	r := &zeroNilReader{data: []byte{1, 2, 3}, emptyEvery: 2}
	got, err := ReadResponse(context.Background(), r, 3, 3)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("ReadResponse() = % X", got)
	}
}

// zeroNilReader alternates (0, nil) reads with single bytes
type zeroNilReader struct {
	data       []byte
	emptyEvery int
	n          int
}

func (r *zeroNilReader) Read(p []byte) (int, error) {
	r.n++
	if r.n%r.emptyEvery == 1 || len(r.data) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestReadResponse_Timeout(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{{0x02, 0x00, 0x01}}}
	_, err := ReadResponse(context.Background(), r, ReplyLenAck, 4)

	if !errors.Is(err, ErrResponseTimeout) {
		t.Fatalf("ReadResponse() error = %v, want ErrResponseTimeout", err)
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %T, want *ReadError", err)
	}
	if readErr.Got != 3 || readErr.Want != ReplyLenAck {
		t.Errorf("ReadError = %d of %d, want 3 of %d", readErr.Got, readErr.Want, ReplyLenAck)
	}
	// One data read plus the idle budget
	if r.reads != 5 {
		t.Errorf("reads = %d, want 5", r.reads)
	}
}

func TestReadResponse_IdleBudgetResetsOnData(t *testing.T) {
	// Three idle reads between bytes never exhaust a budget of four
	var chunks [][]byte
	for i := 0; i < ReplyLenAck; i++ {
		chunks = append(chunks, nil, nil, nil, []byte{byte(i)})
	}
	r := &chunkReader{chunks: chunks}
	if _, err := ReadResponse(context.Background(), r, ReplyLenAck, 4); err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
}

func TestReadResponse_HardError(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{{0x02}}, err: io.ErrUnexpectedEOF}
	_, err := ReadResponse(context.Background(), r, ReplyLenAck, 0)

	var readErr *ReadError
	if !errors.As(err, &readErr) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadResponse() error = %v, want *ReadError wrapping io.ErrUnexpectedEOF", err)
	}
	if readErr.Got != 1 {
		t.Errorf("Got = %d, want 1", readErr.Got)
	}
}

func TestReadResponse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &chunkReader{}
	_, err := ReadResponse(ctx, r, ReplyLenAck, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadResponse() error = %v, want context.Canceled", err)
	}
	if r.reads != 0 {
		t.Errorf("reads = %d after cancellation, want 0", r.reads)
	}
}

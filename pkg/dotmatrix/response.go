// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"context"
	"errors"
	"io"

	"github.com/Thermoquad/mmm8x8/pkg/transport"
)

// DefaultMaxIdleReads bounds consecutive empty reads while waiting for a reply.
// With the default 100ms transport read timeout this is about five seconds.
const DefaultMaxIdleReads = 50

// ReadResponse reads exactly n bytes from r.
//
// Short reads are retried until n bytes have arrived. An empty read, either
// (0, nil) or transport.ErrNoData, means the device has not answered yet and
// is retried as well; maxIdle consecutive empty reads (0 = no limit) fail with
// ErrResponseTimeout. Any other error aborts the read.
//
// The reply is returned raw: responses are neither escaped nor checksummed.
func ReadResponse(ctx context.Context, r io.Reader, n int, maxIdle int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	idle := 0

	for got < n {
		if err := ctx.Err(); err != nil {
			return nil, &ReadError{Got: got, Want: n, Err: err}
		}

		m, err := r.Read(buf[got:])
		got += m
		if got >= n {
			break
		}

		if err != nil && !errors.Is(err, transport.ErrNoData) {
			return nil, &ReadError{Got: got, Want: n, Err: err}
		}

		if m > 0 {
			idle = 0
			continue
		}

		idle++
		if maxIdle > 0 && idle >= maxIdle {
			return nil, &ReadError{Got: got, Want: n, Err: ErrResponseTimeout}
		}
	}

	return buf, nil
}

//go:build accelerate

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// This file forces linking against the system BLAS
// when you build with `-tags accelerate`.
func init() {
	blas64.Use(netlib.Implementation{})
}

package array

// This file registers the pure-Go gonum BLAS implementation used by Dot.
// Registration is explicit so a build could swap in an accelerated
// implementation the same way.

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/gonum"
)

func init() {
	blas32.Use(gonum.Implementation{})
	log.Debug().Msg("array: gonum BLAS registered for float32 dot")
}

package kstate

import (
	"fmt"
	"iter"

	"github.com/birdayz/kgrad/kserde"
)

// MapIter decodes a byte iterator. Iteration stops at the first entry that
// fails to decode; when errp is non-nil that error is stored in it.
func MapIter[K, V any](
	seq iter.Seq2[[]byte, []byte],
	keys kserde.Deserializer[K],
	values kserde.Deserializer[V],
	errp *error,
) iter.Seq2[K, V] {
	fail := func(err error) {
		if errp != nil {
			*errp = err
		}
	}
	return func(yield func(K, V) bool) {
		for kb, vb := range seq {
			k, err := keys(kb)
			if err != nil {
				fail(fmt.Errorf("decode key %q: %w", kb, err))
				return
			}
			v, err := values(vb)
			if err != nil {
				fail(fmt.Errorf("decode value of %q: %w", kb, err))
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

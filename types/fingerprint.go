package types

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

/*
Fingerprint produces a short deterministic digest of an arbitrary value.

The value is serialized to JSON first (encoding/json emits map keys in sorted
order, so equal maps hash equally) and the canonical bytes are hashed with
FNV-1a. Values that cannot be serialized (channels, functions, cycles) fall
back to hashing their textual representation instead. Fingerprinting never
fails and never panics.

The digest only has to answer one question cheaply: "did this write actually
change the value?" — so a fast non-cryptographic hash is enough.
*/
func Fingerprint(value any) string {
	h := fnv.New64a()
	if data, err := json.Marshal(value); err == nil {
		h.Write(data)
	} else {
		fmt.Fprintf(h, "%v", value)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

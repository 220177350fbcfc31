package finegrained

import "unsafe"

// read32 reinterprets p as a word pointer.
//
// # Safety
//   - nn: p must be non-null
//   - aligned4: p must be 4-byte aligned
func read32(p unsafe.Pointer) uint32 {
	return *(*uint32)(p)
}

//oblicheck:entrypoint
func partial(p unsafe.Pointer) uint32 { // want `partial directly contains 1 unjustified obligated call`
	// Safety:
	//   - nn: checked at the boundary
	return read32(p)
}

//oblicheck:entrypoint
func full(p unsafe.Pointer) uint32 {
	// Safety:
	//   - nn: checked at the boundary
	//   - aligned4: allocated with 8-byte alignment
	return read32(p)
}

//oblicheck:entrypoint
func directDeref(p unsafe.Pointer) byte { // want `directDeref directly contains 1 unjustified safety-relevant operation`
	// Safety: this pointer business is fine
	return *(*byte)(p)
}

//oblicheck:entrypoint
func carefulDeref(p unsafe.Pointer) byte {
	// Safety: p is valid and aligned for byte reads
	return *(*byte)(p)
}

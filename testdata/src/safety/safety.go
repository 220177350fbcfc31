package safety

import "unsafe"

//oblicheck:entrypoint
func useRaw(p unsafe.Pointer) byte { // want `useRaw directly contains 1 unjustified safety-relevant operation`
	return *(*byte)(p)
}

//oblicheck:entrypoint
func useJustified(p unsafe.Pointer) byte {
	// Safety: p points into the caller's pinned buffer
	return *(*byte)(p)
}

//oblicheck:entrypoint
func forward(p unsafe.Pointer) { // want `forward directly contains 1 unjustified obligated call`
	deref(p)
}

//oblicheck:entrypoint
func forwardJustified(p unsafe.Pointer) {
	// Safety: the pointer stays valid for the duration of the call
	deref(p)
}

// deref reads the byte p points at.
//
// # Safety
//   - nn: p must be non-null
func deref(p unsafe.Pointer) byte {
	return *(*byte)(p)
}

// checked tolerates nil pointers.
//
// # Safety
// none
func checked(p unsafe.Pointer) byte {
	if p == nil {
		return 0
	}
	// Safety: nil-checked above
	return *(*byte)(p)
}

//oblicheck:entrypoint
func useChecked(p unsafe.Pointer) byte {
	return checked(p)
}

var table = [4]byte{1, 2, 3, 4}

// # Safety
//   - idx-valid: idx must index into the table
//
//oblicheck:entrypoint
func lookup(idx int) byte { // want `lookup declares safety requirements, but its body performs no unsafe operation`
	return table[idx]
}

type codec interface {
	Decode(p unsafe.Pointer) byte
}

type rawCodec struct{}

// # Safety
//   - nn: p must be non-null
//
//oblicheck:entrypoint
func (rawCodec) Decode(p unsafe.Pointer) byte { // want `declares safety requirements that interface method \(codec\)\.Decode does not declare`
	return *(*byte)(p)
}

var _ codec = rawCodec{}

//oblicheck:check public
package checkpublic

import "unsafe"

func Exported(p unsafe.Pointer) byte { // want `Exported directly contains 1 unjustified safety-relevant operation`
	return *(*byte)(p)
}

// internalHelper is never reached from an exported function, so the public
// mode leaves it unchecked.
func internalHelper(p unsafe.Pointer) byte {
	return *(*byte)(p)
}

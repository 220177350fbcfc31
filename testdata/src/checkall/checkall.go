//oblicheck:check all
package checkall

import "unsafe"

func hidden(p unsafe.Pointer) byte { // want `hidden directly contains 1 unjustified safety-relevant operation`
	return *(*byte)(p)
}

func fine() int {
	return 1
}

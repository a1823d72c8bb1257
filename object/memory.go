package object

import (
	"fmt"
	"math/bits"
	"runtime"
	"runtime/debug"
)

// Size of the Object interface in bytes.
const ObjectSize = 2 * bits.UintSize / 8 // also unsafe.Sizeof(interface) == 16 bytes (2 pointers == 2 ints)

// MaxArrayGrowth is the most elements a single index or length write may
// add to an array, whatever the memory limit.
const MaxArrayGrowth = 1 << 24

// Returns the amount of free memory in bytes.
func FreeMemory() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	currentAlloc := memStats.HeapAlloc
	gomemlimit := debug.SetMemoryLimit(-1)
	return gomemlimit - int64(currentAlloc) //nolint:gosec // can be negative.
}

func SizeOk(n int) (bool, int64) {
	if n <= 256 { // no checks for small slices
		return true, 0
	}
	free := FreeMemory()
	return ((free >= 0) && ((int64(n) * ObjectSize) < free)), free
}

// MakeObjectSlice is make([]Object, 0, n) that errors instead of risking
// an OOM kill when n is unreasonably large (e.g. a huge array length).
func MakeObjectSlice(n int) ([]Object, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid array length %d", n)
	}
	if ok, _ := SizeOk(n); ok {
		return make([]Object, 0, n), nil
	}
	runtime.GC()
	if ok, free := SizeOk(n); !ok {
		return nil, fmt.Errorf("would exceed memory requesting %d objects, %d free", n, free)
	}
	return make([]Object, 0, n), nil
}

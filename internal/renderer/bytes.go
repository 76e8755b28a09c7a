package renderer

import "unsafe"

// toBytes reinterprets a slice of plain-old-data values as its raw bytes
// for upload. The result aliases s.
func toBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

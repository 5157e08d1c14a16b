//go:build cgo

// Package main builds the embeddable C ABI surface:
//
//	go build -buildmode=c-shared -o libmirrorblade.so ./cshared
//
// Exported strings are heap-owned; callers must release them through
// MBFreeString. MBDispatchJSON never panics outward; internal failures
// produce {"ok":false,"error":"..."}.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/OliviaAI-TGDK/MirrorBlade/bridge"
)

var (
	initOnce sync.Once
	instance *bridge.Bridge
)

func instanceOrInit() *bridge.Bridge {
	initOnce.Do(func() {
		b, err := bridge.New(bridge.Defaults())
		if err != nil {
			return
		}
		instance = b
		_ = b.Start(context.Background())
	})
	return instance
}

//export MBVersion
func MBVersion() *C.char {
	return C.CString(bridge.Version)
}

//export MBPing
func MBPing() C.int {
	if instanceOrInit() == nil {
		return 0
	}
	return 1
}

//export MBDispatchJSON
func MBDispatchJSON(op *C.char, argsJSON *C.char) *C.char {
	b := instanceOrInit()
	if b == nil {
		return C.CString(`{"ok":false,"error":"bridge init failed"}`)
	}
	goOp := C.GoString(op)
	goArgs := ""
	if argsJSON != nil {
		goArgs = C.GoString(argsJSON)
	}
	return C.CString(b.DispatchJSON(goOp, goArgs))
}

//export MBShutdown
func MBShutdown() {
	if instance != nil {
		_ = instance.Stop(context.Background())
	}
}

//export MBFreeString
func MBFreeString(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}

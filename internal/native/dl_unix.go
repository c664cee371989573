//go:build !windows

package native

import "github.com/ebitengine/purego"

type systemOpener struct{}

func (systemOpener) Open(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func (systemOpener) Symbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

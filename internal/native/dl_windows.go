//go:build windows

package native

import "golang.org/x/sys/windows"

type systemOpener struct{}

func (systemOpener) Open(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func (systemOpener) Symbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

package external

import (
	"fmt"
	"unsafe"
)

// Descriptor says where a file's bytes come from. Exactly one of FilePath,
// FileContent, FileHandle or FilePointer.
type Descriptor interface {
	isDescriptor()
	fmt.Stringer
}

// FilePath references a file on disk. Relative paths are resolved through a
// resource.Locator before opening.
type FilePath struct {
	Path string
}

// FileContent carries the file bytes inline. The slice is borrowed, not copied.
type FileContent struct {
	Data []byte
}

// FileHandle references a range of an open file descriptor owned by the
// caller. A zero Length means the rest of the file after Offset.
type FileHandle struct {
	Fd     uintptr
	Offset int64
	Length int64
}

// FilePointer references Length bytes of memory at Address owned by the caller.
type FilePointer struct {
	Address unsafe.Pointer
	Length  int
}

func (FilePath) isDescriptor()    {}
func (FileContent) isDescriptor() {}
func (FileHandle) isDescriptor()  {}
func (FilePointer) isDescriptor() {}

func (d FilePath) String() string {
	return fmt.Sprintf("file_path(%s)", d.Path)
}

func (d FileContent) String() string {
	return fmt.Sprintf("file_content(%d bytes)", len(d.Data))
}

func (d FileHandle) String() string {
	return fmt.Sprintf("file_handle(fd=%d, offset=%d, length=%d)", d.Fd, d.Offset, d.Length)
}

func (d FilePointer) String() string {
	return fmt.Sprintf("file_pointer(%p, %d bytes)", d.Address, d.Length)
}

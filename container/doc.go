// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package container reads compiled Xenos shader containers.
//
// A container is a big-endian blob with a 36-byte header, a header region of
// VirtualSize bytes holding the D3DX constant table, the literal definition
// table and the stage header, and a data region of PhysicalSize bytes holding
// the microcode and literal constant values.
//
// Parse validates the signature and every offset it follows, returning an
// error wrapping ErrMalformed when the buffer is not a container or is
// truncated. The returned Container is a read-only view; it never modifies
// the input.
//
// Scan locates containers embedded in a larger archive, the way shader
// packages ship them.
package container

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteSource renders ci as a C++ translation unit defining
// g_shaderCacheEntries and the compressed blobs, for hosts that link the
// cache into their executable. The DXIL arrays are only written when the
// cache holds DXIL.
func WriteSource(w io.Writer, ci *CacheIndex) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `#include "shader_cache.h"`)
	fmt.Fprintln(bw, "ShaderCacheEntry g_shaderCacheEntries[] = {")
	for _, e := range ci.Entries {
		fmt.Fprintf(bw, "\t{ 0x%X, %d, %d, %d, %d, %d },\n",
			e.ShaderHash(), e.DXILOffset, e.DXILSize, e.SPIRVOffset, e.SPIRVSize, uint32(e.SpecConstants))
	}
	fmt.Fprintln(bw, "};")

	if ci.DXILDecompressed > 0 {
		writeByteArray(bw, "g_compressedDxilCache", ci.DXIL)
		fmt.Fprintf(bw, "const size_t g_dxilCacheCompressedSize = %d;\n", len(ci.DXIL))
		fmt.Fprintf(bw, "const size_t g_dxilCacheDecompressedSize = %d;\n", ci.DXILDecompressed)
	}

	writeByteArray(bw, "g_compressedSpirvCache", ci.SPIRV)
	fmt.Fprintf(bw, "const size_t g_spirvCacheCompressedSize = %d;\n", len(ci.SPIRV))
	fmt.Fprintf(bw, "const size_t g_spirvCacheDecompressedSize = %d;\n", ci.SPIRVDecompressed)
	fmt.Fprintf(bw, "const size_t g_shaderCacheEntryCount = %d;\n", len(ci.Entries))

	return bw.Flush()
}

func writeByteArray(bw *bufio.Writer, name string, data []byte) {
	fmt.Fprintf(bw, "const uint8_t %s[] = {", name)
	var num []byte
	for _, b := range data {
		num = strconv.AppendUint(num[:0], uint64(b), 10)
		bw.Write(num)
		bw.WriteByte(',')
	}
	fmt.Fprintln(bw, "};")
}

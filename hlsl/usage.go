// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/xenos/container"
)

// swizzles maps component selectors to swizzle characters.
const swizzles = "xyzw01__"

// usageTypes is the HLSL input type of a vertex element by usage.
var usageTypes = [...]string{
	container.UsagePosition:     "float4",
	container.UsageBlendWeight:  "float4",
	container.UsageBlendIndices: "uint4",
	container.UsageNormal:       "uint4",
	container.UsagePointSize:    "float4",
	container.UsageTexCoord:     "float4",
	container.UsageTangent:      "uint4",
	container.UsageBinormal:     "uint4",
	container.UsageTessFactor:   "float4",
	container.UsagePositionT:    "float4",
	container.UsageColor:        "float4",
	container.UsageFog:          "float4",
	container.UsageDepth:        "float4",
	container.UsageSample:       "float4",
}

// usageSemantics is the HLSL semantic name by usage.
var usageSemantics = [...]string{
	container.UsagePosition:     "POSITION",
	container.UsageBlendWeight:  "BLENDWEIGHT",
	container.UsageBlendIndices: "BLENDINDICES",
	container.UsageNormal:       "NORMAL",
	container.UsagePointSize:    "PSIZE",
	container.UsageTexCoord:     "TEXCOORD",
	container.UsageTangent:      "TANGENT",
	container.UsageBinormal:     "BINORMAL",
	container.UsageTessFactor:   "TESSFACTOR",
	container.UsagePositionT:    "POSITIONT",
	container.UsageColor:        "COLOR",
	container.UsageFog:          "FOG",
	container.UsageDepth:        "DEPTH",
	container.UsageSample:       "SAMPLE",
}

type usageKey struct {
	usage container.DeclUsage
	index uint32
}

// usageLocations assigns Vulkan input locations to vertex elements. The
// table matches the vertex layouts of the host renderer.
var usageLocations = map[usageKey]uint32{
	{container.UsagePosition, 0}:     0,
	{container.UsageNormal, 0}:       1,
	{container.UsageTangent, 0}:      2,
	{container.UsageBinormal, 0}:     3,
	{container.UsageTexCoord, 0}:     4,
	{container.UsageTexCoord, 1}:     5,
	{container.UsageTexCoord, 2}:     6,
	{container.UsageTexCoord, 3}:     7,
	{container.UsageColor, 0}:        8,
	{container.UsageBlendIndices, 0}: 9,
	{container.UsageBlendWeight, 0}:  10,
	{container.UsageColor, 1}:        11,
	{container.UsageTexCoord, 4}:     12,
	{container.UsageTexCoord, 5}:     13,
	{container.UsageTexCoord, 6}:     14,
	{container.UsageTexCoord, 7}:     15,
	{container.UsagePosition, 1}:     15,
}

// interpolators lists the varyings passed from vertex to pixel stage.
var interpolators = func() []usageKey {
	keys := make([]usageKey, 0, 18)
	for i := uint32(0); i < 16; i++ {
		keys = append(keys, usageKey{container.UsageTexCoord, i})
	}
	return append(keys,
		usageKey{container.UsageColor, 0},
		usageKey{container.UsageColor, 1},
	)
}()

func isInterpolator(usage container.DeclUsage, index uint32) bool {
	for _, k := range interpolators {
		if k.usage == usage && k.index == index {
			return true
		}
	}
	return false
}

// variable returns the suffix shared by input and output names, e.g. "TexCoord3".
func variable(usage container.DeclUsage, index uint32) string {
	return fmt.Sprintf("%s%d", usage, index)
}

func semantic(usage container.DeclUsage, index uint32) string {
	if !usage.Valid() {
		return fmt.Sprintf("UNKNOWN%d", index)
	}
	return fmt.Sprintf("%s%d", usageSemantics[usage], index)
}

// textureDimensions lists the descriptor tables each sampler binds.
var textureDimensions = [...]string{"2D", "3D", "Cube"}

package main

import (
	"hash/fnv"
	"image/color"
)

var colors = []color.NRGBA{
	{R: 0xa4, G: 0x63, B: 0x3a, A: 0xff},
	{R: 0x85, G: 0x76, B: 0x25, A: 0xff}, //#857625
	{R: 0x51, G: 0x85, B: 0x4d, A: 0xff}, //#51854d
	{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff}, //#2b7fa8
	{R: 0x72, G: 0x6c, B: 0xae, A: 0xff}, //#726cae
	{R: 0x97, G: 0x5f, B: 0x91, A: 0xff}, //975f91
	{R: 0x3a, G: 0x8f, B: 0x86, A: 0xff}, //#3a8f86
	{R: 0xb0, G: 0x4a, B: 0x5a, A: 0xff}, //#b04a5a
}

var hoverColor = color.NRGBA{R: 0xf0, G: 0xc0, B: 0x20, A: 0xff}

// colorFor picks a stable color for a state name.
func colorFor(state string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(state))
	return colors[h.Sum32()%uint32(len(colors))]
}

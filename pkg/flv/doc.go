// SPDX-License-Identifier: GPL-2.0-or-later

// Package flv reads and writes flv files.
package flv

// All integers are big-endian.
//
// file {
//   header
//   dataOffset  uint32 // Always 9, the size of the header.
//   zero        uint32 // Back pointer of the non-existent tag before the first.
//   tags        []tag
// }
//
// header { // 5 bytes, followed by dataOffset.
//   signature uint24 // "FLV".
//   version   uint8  // 1.
//   flags     uint8 { audio 0x1, video 0x4 }
// }
//
// tag {
//   type        uint8  // 8 audio, 9 video, 18 script.
//   dataSize    uint24 // Size of data, excluding these 11 bytes.
//   timestamp   uint24 // Lower 24 bits, milliseconds.
//   timestampEx uint8  // Upper 8 bits.
//   streamID    uint24 // Always 0.
//   data        [dataSize]byte
//   backPointer uint32 // dataSize + 11.
// }
//
// video data {
//   frameType uint4
//   codecID   uint4
//   if codecID == 7 {
//     packetType      uint8
//     compositionTime int24
//     data            [dataSize-5]byte
//   } else {
//     data [dataSize-1]byte
//   }
// }
//
// audio data {
//   soundFormat uint4
//   soundRate   uint2
//   soundSize   uint1
//   soundType   uint1
//   if soundFormat == 10 {
//     packetType uint8
//     data       [dataSize-2]byte
//   } else {
//     data [dataSize-1]byte
//   }
// }
//
// script data {
//   name     amf0 string
//   metadata amf0 ecma array
// }
//
// The timestamp is timestampEx<<24 | timestamp. The four bytes are not a
// single big-endian uint32, bytes 00 00 64 00 are 100 milliseconds.
//
// Data sizes derived by subtraction are clamped at zero. A declared size
// smaller than the fixed fields of its payload yields empty data.

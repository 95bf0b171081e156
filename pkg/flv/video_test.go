// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"bytes"
	"testing"

	"flvkit/pkg/byteio"

	"github.com/stretchr/testify/require"
)

func encodeTagData(t *testing.T, data TagData) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := byteio.NewWriter(buf)
	data.encode(w)
	require.NoError(t, w.TryError)
	require.Equal(t, buf.Len(), data.Size())
	return buf.Bytes()
}

func TestVideoDescriptor(t *testing.T) {
	cases := []struct {
		frameType  uint8
		codecID    uint8
		descriptor uint8
	}{
		{FrameTypeKeyframe, CodecIDAVC, 0x17},
		{FrameTypeInterFrame, CodecIDAVC, 0x27},
		{FrameTypeDisposableInterFrame, CodecIDSorensonH263, 0x32},
		{FrameTypeInfo, CodecIDVP6, 0x54},
		{0x0f, 0x0f, 0xff},
	}
	for _, tc := range cases {
		descriptor, err := packVideoDescriptor(tc.frameType, tc.codecID)
		require.NoError(t, err)
		require.Equal(t, tc.descriptor, descriptor)

		frameType, codecID, err := unpackVideoDescriptor(tc.descriptor)
		require.NoError(t, err)
		require.Equal(t, tc.frameType, frameType)
		require.Equal(t, tc.codecID, codecID)
	}
}

func TestVideoDescriptorMasksFields(t *testing.T) {
	descriptor, err := packVideoDescriptor(0x21, 0x37)
	require.NoError(t, err)
	require.Equal(t, uint8(0x17), descriptor)
}

func TestAVCVideoRoundTrip(t *testing.T) {
	video := NewAVCVideo(FrameTypeKeyframe, &AVCPacket{
		PacketType:      AVCPacketTypeNALU,
		CompositionTime: -33,
		Data:            []byte{1, 2, 3},
	})

	raw := encodeTagData(t, video)
	expected := []byte{
		0x17,             // Keyframe, AVC.
		1,                // NALU.
		0xff, 0xff, 0xdf, // Composition time.
		1, 2, 3, // Data.
	}
	require.Equal(t, expected, raw)

	decoded, err := decodeVideoData(byteio.NewReader(bytes.NewReader(raw)), uint32(len(raw)))
	require.NoError(t, err)
	require.Equal(t, video, decoded)
	require.True(t, decoded.IsKeyframe())
}

func TestRawVideoRoundTrip(t *testing.T) {
	video := &VideoData{
		FrameType: FrameTypeInterFrame,
		CodecID:   CodecIDVP6,
		Body:      RawVideo{9, 8, 7, 6},
	}

	raw := encodeTagData(t, video)
	require.Equal(t, []byte{0x24, 9, 8, 7, 6}, raw)

	decoded, err := decodeVideoData(byteio.NewReader(bytes.NewReader(raw)), uint32(len(raw)))
	require.NoError(t, err)
	require.Equal(t, video, decoded)
	require.False(t, decoded.IsKeyframe())
}

func TestAVCDataSizeClamp(t *testing.T) {
	// Descriptor, packet type, composition time and two spare bytes.
	input := []byte{0x17, 1, 0, 0, 0, 0xaa, 0xbb}

	cases := []struct {
		dataSize uint32
		expected []byte
	}{
		{0, nil},
		{1, nil},
		{5, nil},
		{6, []byte{0xaa}},
		{7, []byte{0xaa, 0xbb}},
	}
	for _, tc := range cases {
		r := bytes.NewReader(input)
		video, err := decodeVideoData(byteio.NewReader(r), tc.dataSize)
		require.NoError(t, err)

		packet, ok := video.Body.(*AVCPacket)
		require.True(t, ok)
		require.Equal(t, tc.expected, packet.Data, "data size %d", tc.dataSize)

		// The packet header is always consumed.
		consumed := len(input) - r.Len()
		require.Equal(t, 5+len(tc.expected), consumed)
	}
}

func TestRawVideoDataSizeClamp(t *testing.T) {
	input := []byte{0x22, 0xaa}

	cases := []struct {
		dataSize uint32
		expected RawVideo
	}{
		{0, nil},
		{1, nil},
		{2, RawVideo{0xaa}},
	}
	for _, tc := range cases {
		video, err := decodeVideoData(byteio.NewReader(bytes.NewReader(input)), tc.dataSize)
		require.NoError(t, err)
		require.Equal(t, tc.expected, video.Body)
	}
}

func TestVideoMissingBody(t *testing.T) {
	video := &VideoData{FrameType: FrameTypeKeyframe, CodecID: CodecIDAVC}
	require.Equal(t, 1, video.Size())

	w := byteio.NewWriter(&bytes.Buffer{})
	video.encode(w)
	require.ErrorIs(t, w.TryError, ErrMissingData)
}

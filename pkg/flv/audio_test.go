// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"bytes"
	"io"
	"testing"

	"flvkit/pkg/byteio"

	"github.com/stretchr/testify/require"
)

func TestAudioDescriptor(t *testing.T) {
	cases := []struct {
		name       string
		audio      AudioData
		descriptor uint8
	}{
		{
			name: "aac",
			audio: AudioData{
				SoundFormat: SoundFormatAAC,
				SoundRate:   SoundRate44k,
				SoundSize:   SoundSize16Bit,
				SoundType:   SoundTypeStereo,
			},
			descriptor: 0xaf,
		},
		{
			name: "mp3Mono",
			audio: AudioData{
				SoundFormat: SoundFormatMP3,
				SoundRate:   SoundRate22k,
				SoundSize:   SoundSize16Bit,
				SoundType:   SoundTypeMono,
			},
			descriptor: 0x2a,
		},
		{
			name: "pcm8bit",
			audio: AudioData{
				SoundFormat: SoundFormatLinearPCM,
				SoundRate:   SoundRate5k,
				SoundSize:   SoundSize8Bit,
				SoundType:   SoundTypeMono,
			},
			descriptor: 0x00,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			descriptor, err := packAudioDescriptor(&tc.audio)
			require.NoError(t, err)
			require.Equal(t, tc.descriptor, descriptor)

			unpacked, err := unpackAudioDescriptor(tc.descriptor)
			require.NoError(t, err)
			require.Equal(t, tc.audio, *unpacked)
		})
	}
}

func TestAACAudioRoundTrip(t *testing.T) {
	audio := NewAACAudio(&AACPacket{
		PacketType: AACPacketTypeSequenceHeader,
		Data:       []byte{0x12, 0x10},
	})

	raw := encodeTagData(t, audio)
	require.Equal(t, []byte{0xaf, 0, 0x12, 0x10}, raw)

	decoded, err := decodeAudioData(byteio.NewReader(bytes.NewReader(raw)), uint32(len(raw)))
	require.NoError(t, err)
	require.Equal(t, audio, decoded)
}

func TestRawAudioRoundTrip(t *testing.T) {
	audio := &AudioData{
		SoundFormat: SoundFormatMP3,
		SoundRate:   SoundRate44k,
		SoundSize:   SoundSize16Bit,
		SoundType:   SoundTypeStereo,
		Body:        RawAudio{0xff, 0xfb, 0x90},
	}

	raw := encodeTagData(t, audio)
	require.Equal(t, []byte{0x2f, 0xff, 0xfb, 0x90}, raw)

	decoded, err := decodeAudioData(byteio.NewReader(bytes.NewReader(raw)), uint32(len(raw)))
	require.NoError(t, err)
	require.Equal(t, audio, decoded)
}

func TestAACDataSizeClamp(t *testing.T) {
	// Descriptor, packet type and two spare bytes.
	input := []byte{0xaf, 1, 0xaa, 0xbb}

	cases := []struct {
		dataSize uint32
		expected []byte
	}{
		{0, nil},
		{1, nil},
		{2, nil},
		{3, []byte{0xaa}},
		{4, []byte{0xaa, 0xbb}},
	}
	for _, tc := range cases {
		r := bytes.NewReader(input)
		audio, err := decodeAudioData(byteio.NewReader(r), tc.dataSize)
		require.NoError(t, err)

		packet, ok := audio.Body.(*AACPacket)
		require.True(t, ok)
		require.Equal(t, tc.expected, packet.Data, "data size %d", tc.dataSize)
		require.Equal(t, 2+len(tc.expected), len(input)-r.Len())
	}
}

func TestRawAudioDataSizeClamp(t *testing.T) {
	input := []byte{0x2f, 0xaa}

	cases := []struct {
		dataSize uint32
		expected RawAudio
	}{
		{0, nil},
		{1, nil},
		{2, RawAudio{0xaa}},
	}
	for _, tc := range cases {
		audio, err := decodeAudioData(byteio.NewReader(bytes.NewReader(input)), tc.dataSize)
		require.NoError(t, err)
		require.Equal(t, tc.expected, audio.Body)
	}
}

func TestAudioTruncated(t *testing.T) {
	_, err := decodeAudioData(byteio.NewReader(bytes.NewReader([]byte{0xaf, 1, 0xaa})), 4)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the length of the canonical RIFF/WAVE header.
const HeaderSize = 44

const (
	pcmFormat     = 1
	bitsPerSample = 16
	fmtChunkSize  = 16
)

// Header is the canonical 44-byte PCM 16-bit WAV header.
type Header struct {
	ChunkSize     uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// NewHeader fills every derived field for a PCM16 stream of dataLen bytes.
func NewHeader(channels, sampleRate int, dataLen uint32) Header {
	return Header{
		ChunkSize:     dataLen + 36,
		AudioFormat:   pcmFormat,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(channels) * 2,
		BlockAlign:    uint16(channels) * 2,
		BitsPerSample: bitsPerSample,
		DataSize:      dataLen,
	}
}

// Bytes encodes h in little-endian order.
func (h Header) Bytes() []byte {
	header := make([]byte, HeaderSize)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], h.ChunkSize)
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], h.AudioFormat)
	binary.LittleEndian.PutUint16(header[22:24], h.NumChannels)
	binary.LittleEndian.PutUint32(header[24:28], h.SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], h.ByteRate)
	binary.LittleEndian.PutUint16(header[32:34], h.BlockAlign)
	binary.LittleEndian.PutUint16(header[34:36], h.BitsPerSample)

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], h.DataSize)

	return header
}

// ParseHeader decodes a canonical 44-byte header.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Header{}, ErrNotWavFile
	}
	if string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return Header{}, ErrUnsupportedWavLayout
	}

	return Header{
		ChunkSize:     binary.LittleEndian.Uint32(b[4:8]),
		AudioFormat:   binary.LittleEndian.Uint16(b[20:22]),
		NumChannels:   binary.LittleEndian.Uint16(b[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(b[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(b[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(b[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(b[34:36]),
		DataSize:      binary.LittleEndian.Uint32(b[40:44]),
	}, nil
}

// WritePlaceholder reserves HeaderSize zero bytes at the start of a file that
// is patched later with PatchHeader.
func WritePlaceholder(w io.Writer) error {
	if _, err := w.Write(make([]byte, HeaderSize)); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// PatchHeader overwrites the first HeaderSize bytes of a file that is
// totalSize bytes long, everything after the header being PCM16 data.
func PatchHeader(w io.WriterAt, totalSize int64, channels, sampleRate int) error {
	if totalSize < HeaderSize {
		return fmt.Errorf("file of %d bytes: %w", totalSize, ErrShortHeader)
	}

	h := NewHeader(channels, sampleRate, uint32(totalSize-HeaderSize))
	if _, err := w.WriteAt(h.Bytes(), 0); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// WriteWAV16 writes a 16-bit PCM WAV of interleaved samples at sampleRate.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	h := NewHeader(channels, sampleRate, uint32(len(samples)*2))

	if _, err := w.Write(h.Bytes()); err != nil {
		return fmt.Errorf("%w", err)
	}

	// Write 8K samples at a time
	const chunkSize = 8192
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		end := min(i+chunkSize, len(samples))
		chunk := samples[i:end]
		buf = buf[:len(chunk)*2]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:j*2+2], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// Package wav frames raw PCM audio as a canonical 44-byte RIFF/WAVE file.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the length of the canonical PCM header.
const HeaderSize = 44

const formatPCM = 1

var ErrInvalidHeader = errors.New("invalid wav header")

// Header is the subset of RIFF/WAVE fields a PCM file needs
type Header struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

func (h Header) byteRate() int   { return h.SampleRate * h.Channels * h.BitsPerSample / 8 }
func (h Header) blockAlign() int { return h.Channels * h.BitsPerSample / 8 }

// WriteHeader emits the 44-byte header describing h.
func WriteHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+h.DataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(h.byteRate()))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(h.blockAlign()))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(h.BitsPerSample))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(h.DataSize))

	_, err := w.Write(buf[:])
	return err
}

// Frame returns header followed by pcm.
func Frame(pcm []byte, channels, sampleRate, bitsPerSample int) []byte {
	var b bytes.Buffer
	b.Grow(HeaderSize + len(pcm))
	// bytes.Buffer writes never fail
	_ = WriteHeader(&b, Header{
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: bitsPerSample,
		DataSize:      len(pcm),
	})
	b.Write(pcm)
	return b.Bytes()
}

// Parse reads a canonical header and returns it with the PCM payload.
func Parse(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes is shorter than a header", ErrInvalidHeader, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Header{}, nil, fmt.Errorf("%w: missing RIFF/WAVE magic", ErrInvalidHeader)
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return Header{}, nil, fmt.Errorf("%w: unexpected chunk layout", ErrInvalidHeader)
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != formatPCM {
		return Header{}, nil, fmt.Errorf("%w: format %d is not PCM", ErrInvalidHeader, format)
	}

	h := Header{
		Channels:      int(binary.LittleEndian.Uint16(data[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(data[24:28])),
		BitsPerSample: int(binary.LittleEndian.Uint16(data[34:36])),
		DataSize:      int(binary.LittleEndian.Uint32(data[40:44])),
	}
	payload := data[HeaderSize:]
	if h.DataSize > len(payload) {
		return Header{}, nil, fmt.Errorf("%w: data chunk declares %d bytes, have %d", ErrInvalidHeader, h.DataSize, len(payload))
	}
	return h, payload[:h.DataSize], nil
}

// WriteFile frames pcm and writes it to path.
func WriteFile(path string, pcm []byte, channels, sampleRate, bitsPerSample int) error {
	return os.WriteFile(path, Frame(pcm, channels, sampleRate, bitsPerSample), 0o644)
}

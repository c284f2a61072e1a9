// Package audio owns the speaker: decoding WAV payloads and pushing
// PCM16 to the platform output device.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Clip is decoded audio: mono 16-bit little-endian PCM at SampleRate.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// Duration in samples.
func (c Clip) Samples() int { return len(c.PCM) / 2 }

// DecodeWAV parses a RIFF/WAVE stream into a Clip. Only uncompressed
// 16-bit PCM is accepted; stereo input is averaged down to mono.
func DecodeWAV(r io.Reader) (Clip, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, err
	}
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("not a WAV stream")
	}

	var (
		channels uint16
		rate     uint32
		haveFmt  bool
		data     []byte
	)
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(b) {
			return Clip{}, fmt.Errorf("truncated %q chunk", id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return Clip{}, fmt.Errorf("short fmt chunk")
			}
			tag := binary.LittleEndian.Uint16(b[off : off+2])
			channels = binary.LittleEndian.Uint16(b[off+2 : off+4])
			rate = binary.LittleEndian.Uint32(b[off+4 : off+8])
			bits := binary.LittleEndian.Uint16(b[off+14 : off+16])
			if tag != 1 || bits != 16 {
				return Clip{}, fmt.Errorf("unsupported WAV format tag=%d bits=%d", tag, bits)
			}
			if channels != 1 && channels != 2 {
				return Clip{}, fmt.Errorf("unsupported channel count %d", channels)
			}
			haveFmt = true
		case "data":
			data = b[off : off+size]
		}
		// Chunks are word aligned.
		off += size + size%2
		if haveFmt && data != nil {
			break
		}
	}
	if !haveFmt || data == nil {
		return Clip{}, fmt.Errorf("missing fmt or data chunk")
	}

	if channels == 2 {
		data = stereoToMono(data)
	}
	return Clip{PCM: data, SampleRate: int(rate)}, nil
}

func stereoToMono(raw []byte) []byte {
	out := make([]byte, 0, len(raw)/2)
	for i := 0; i+3 < len(raw); i += 4 {
		l := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
		r := int16(binary.LittleEndian.Uint16(raw[i+2 : i+4]))
		avg := int16((int32(l) + int32(r)) / 2)
		out = binary.LittleEndian.AppendUint16(out, uint16(avg))
	}
	return out
}

// Resample converts a clip to the target rate with nearest-sample
// picking. Good enough for speech; clips already at the target rate are
// returned unchanged.
func Resample(c Clip, targetRate int) Clip {
	if c.SampleRate == targetRate || c.SampleRate <= 0 || targetRate <= 0 {
		return c
	}
	in := c.Samples()
	outSamples := int(int64(in) * int64(targetRate) / int64(c.SampleRate))
	out := make([]byte, 0, outSamples*2)
	for i := 0; i < outSamples; i++ {
		src := int(int64(i) * int64(c.SampleRate) / int64(targetRate))
		if src >= in {
			src = in - 1
		}
		out = append(out, c.PCM[src*2], c.PCM[src*2+1])
	}
	return Clip{PCM: out, SampleRate: targetRate}
}

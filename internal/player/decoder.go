package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrUnsupportedRate is returned when a stream's sample rate differs from the
// shared output context.
var ErrUnsupportedRate = errors.New("unsupported sample rate")

// pcmDecoder yields 16-bit little-endian interleaved stereo PCM.
type pcmDecoder interface {
	io.Reader
	SampleRate() int
}

// newDecoder picks a decoder by extension. Every decoder reads r forward
// only, so it works directly on an HTTP body.
func newDecoder(ext string, r io.Reader) (pcmDecoder, error) {
	var (
		dec pcmDecoder
		err error
	)
	switch ext {
	case ".mp3":
		dec, err = newMP3Decoder(r)
	case ".wav":
		dec, err = newWAVDecoder(r)
	case ".flac":
		dec, err = newFLACDecoder(r)
	case ".ogg":
		dec, err = newOGGDecoder(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, err
	}
	if dec.SampleRate() != sampleRate {
		return nil, errors.Wrapf(ErrUnsupportedRate, "%d Hz", dec.SampleRate())
	}
	return dec, nil
}

// putStereo writes one output frame, duplicating mono and dropping channels
// beyond the first two.
func putStereo(dst []byte, frame func(ch int) int, channels int) {
	l := clamp16(frame(0))
	r := l
	if channels > 1 {
		r = clamp16(frame(1))
	}
	binary.LittleEndian.PutUint16(dst, uint16(l))
	binary.LittleEndian.PutUint16(dst[2:], uint16(r))
}

func clamp16(s int) int16 {
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}

// --- MP3 decoder ---

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(r io.Reader) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding MP3")
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) SampleRate() int            { return d.dec.SampleRate() }

// --- WAV decoder ---

// wavDecoder buffers the whole body: the RIFF parser needs to seek.
type wavDecoder struct {
	pcm         io.Reader
	buf         []byte
	sampleRate  int
	channels    int
	srcBitDepth int
}

func newWAVDecoder(r io.Reader) (*wavDecoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading WAV body")
	}
	rs := bytes.NewReader(data)
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	return &wavDecoder{
		pcm:         io.LimitReader(rs, dec.PCMLen()),
		sampleRate:  int(dec.SampleRate),
		channels:    int(dec.NumChans),
		srcBitDepth: bitDepth,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	// Drain buffered data first
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	srcBytesPerSample := d.srcBitDepth / 8
	srcFrameSize := srcBytesPerSample * d.channels
	frames := len(p) / 4
	if frames == 0 {
		frames = 1
	}
	src := make([]byte, frames*srcFrameSize)
	n, err := io.ReadFull(d.pcm, src)
	framesRead := n / srcFrameSize
	if framesRead == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	sample := func(frame, ch int) int {
		off := frame*srcFrameSize + ch*srcBytesPerSample
		switch d.srcBitDepth {
		case 8:
			// 8-bit WAV is unsigned
			return (int(src[off]) - 128) << 8
		case 16:
			return int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			s := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF // sign extend
			}
			return int(s >> 8)
		default:
			return int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
	}

	raw := make([]byte, framesRead*4)
	for i := range framesRead {
		putStereo(raw[i*4:], func(ch int) int { return sample(i, ch) }, d.channels)
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return written, err
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }

// --- FLAC decoder ---

type flacDecoder struct {
	stream     *flac.Stream
	buf        []byte
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(r io.Reader) (*flacDecoder, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding FLAC")
	}

	info := stream.Info
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	// Drain buffered data first
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*4)
	for i := 0; i < nSamples; i++ {
		putStereo(raw[i*4:], func(ch int) int {
			sample := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				sample >>= (d.bps - 16)
			case d.bps < 16:
				sample <<= (16 - d.bps)
			}
			return sample
		}, d.channels)
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	return written, nil
}

func (d *flacDecoder) SampleRate() int { return d.sampleRate }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	reader   *oggvorbis.Reader
	buf      []byte
	samples  []float32
	channels int
}

func newOGGDecoder(r io.Reader) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding OGG")
	}
	return &oggDecoder{reader: reader, channels: reader.Channels()}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	// Read float32 samples (interleaved), whole frames only
	frames := len(p) / 4
	if frames == 0 {
		frames = 1
	}
	want := frames * d.channels
	if cap(d.samples) < want {
		d.samples = make([]float32, want)
	}
	n, err := d.reader.Read(d.samples[:want])
	framesRead := n / d.channels
	if framesRead == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	raw := make([]byte, framesRead*4)
	for i := 0; i < framesRead; i++ {
		putStereo(raw[i*4:], func(ch int) int {
			s := d.samples[i*d.channels+ch]
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			return int(s * 32767)
		}, d.channels)
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	return written, err
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }

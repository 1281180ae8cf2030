package wavfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type chunk struct {
	tag  string
	body []byte
}

func riff(form string, chunks ...chunk) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString(form)
	for _, c := range chunks {
		b.WriteString(c.tag)
		binary.Write(&b, binary.LittleEndian, uint32(len(c.body)))
		b.Write(c.body)
	}
	return b.Bytes()
}

func fmtChunk(code, channels uint16, rate uint32, bits uint16, extra int) chunk {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, code)
	binary.Write(&b, binary.LittleEndian, channels)
	binary.Write(&b, binary.LittleEndian, rate)
	binary.Write(&b, binary.LittleEndian, rate*uint32(channels)*uint32(bits)/8)
	binary.Write(&b, binary.LittleEndian, channels*bits/8)
	binary.Write(&b, binary.LittleEndian, bits)
	b.Write(make([]byte, extra))
	return chunk{tag: "fmt ", body: b.Bytes()}
}

func TestDecodeMinimal(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	raw := riff("WAVE", fmtChunk(1, 2, 22050, 16, 0), chunk{"data", payload})

	s, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, uint16(2), s.Channels)
	require.Equal(t, uint32(22050), s.SampleRate)
	require.Equal(t, uint16(16), s.Bits)
	require.Equal(t, payload, s.Data)
}

func TestDecodeSkipsUnknownChunksAndFmtExtension(t *testing.T) {
	payload := []byte{9, 8, 7}
	raw := riff("WAVE",
		chunk{"LIST", []byte("INFOsome text")},
		fmtChunk(1, 1, 44100, 8, 2),
		chunk{"fact", []byte{0, 0, 0, 0}},
		chunk{"data", payload},
		chunk{"junk", []byte{0xff}},
	)

	s, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, uint16(1), s.Channels)
	require.Equal(t, uint32(44100), s.SampleRate)
	require.Equal(t, uint16(8), s.Bits)
	require.Equal(t, payload, s.Data)
}

func TestDecodeDoesNotReadPastData(t *testing.T) {
	raw := riff("WAVE", fmtChunk(1, 1, 8000, 8, 0), chunk{"data", []byte{1, 2}})
	trailer := []byte("trailing bytes")
	r := bytes.NewReader(append(raw, trailer...))

	_, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, len(trailer), r.Len())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"empty", nil, ErrStreamHeader},
		{"wrong riff tag", append([]byte("RIFX"), riff("WAVE")[4:]...), ErrStreamHeader},
		{"wrong form tag", riff("AVI "), ErrStreamType},
		{"short form", []byte("RIFF\x00\x00\x00\x00WA"), ErrStreamHeader},
		{"non pcm", riff("WAVE", fmtChunk(3, 1, 8000, 32, 0), chunk{"data", []byte{1}}), ErrDataType},
		{"no data chunk", riff("WAVE", fmtChunk(1, 1, 8000, 8, 0)), ErrNoData},
		{"only header", riff("WAVE"), ErrNoData},
		{"truncated chunk header", append(riff("WAVE"), 'f', 'm'), ErrNoData},
		{"partial chunk tag", riff("WAVE", chunk{"LIST", nil})[:12+4], ErrNoData},
		{"skip past end", append(riff("WAVE"), []byte("LIST\x64\x00\x00\x00abc")...), ErrNoData},
		{"short fmt", riff("WAVE", chunk{"fmt ", []byte{1, 0, 1, 0}}), ErrStreamHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.raw))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeTruncatedData(t *testing.T) {
	raw := riff("WAVE", fmtChunk(1, 1, 8000, 8, 0), chunk{"data", []byte{1, 2, 3, 4}})
	_, err := Decode(bytes.NewReader(raw[:len(raw)-2]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeFile(t *testing.T) {
	fsys := fstest.MapFS{
		"dig_grass1.wav": {Data: riff("WAVE", fmtChunk(1, 1, 8000, 8, 0), chunk{"data", []byte{1}})},
		"broken.wav":     {Data: []byte("nope")},
	}

	s, err := DecodeFile(fsys, "dig_grass1.wav")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, s.Data)

	_, err = DecodeFile(fsys, "broken.wav")
	require.ErrorIs(t, err, ErrStreamHeader)
	require.Contains(t, err.Error(), "broken.wav")

	_, err = DecodeFile(fsys, "missing.wav")
	require.Error(t, err)
}

func TestProperty_EncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := &Sound{
			Channels:   rapid.Uint16Range(1, 2).Draw(t, "channels"),
			SampleRate: rapid.Uint32Range(4000, 96000).Draw(t, "rate"),
			Bits:       rapid.SampledFrom([]uint16{8, 16}).Draw(t, "bits"),
			Data:       rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "data"),
		}
		var b bytes.Buffer
		if err := Encode(&b, in); err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := Decode(&b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Channels != in.Channels || out.SampleRate != in.SampleRate || out.Bits != in.Bits {
			t.Fatalf("format mismatch: got %+v want %+v", out, in)
		}
		if !bytes.Equal(out.Data, in.Data) {
			t.Fatalf("data mismatch")
		}
	})
}

func TestProperty_ArbitraryInputNeverPanics(t *testing.T) {
	known := []error{ErrStreamHeader, ErrStreamType, ErrDataType, ErrNoData, io.ErrUnexpectedEOF}
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 0, 128).Draw(t, "raw")
		if rapid.Bool().Draw(t, "riffPrefix") {
			raw = append([]byte("RIFF\x00\x00\x00\x00WAVE"), raw...)
		}
		_, err := Decode(bytes.NewReader(raw))
		if err == nil {
			return
		}
		for _, k := range known {
			if errors.Is(err, k) {
				return
			}
		}
		t.Fatalf("unexpected error kind: %v", err)
	})
}

package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// Sound holds decoded PCM data and parameters.
type Sound struct {
	Data       []byte
	SampleRate uint32
	Channels   uint16
	Bits       uint16
}

var (
	ErrStreamHeader = errors.New("wav: bad RIFF header")
	ErrStreamType   = errors.New("wav: not a WAVE container")
	ErrDataType     = errors.New("wav: audio format is not PCM")
	ErrNoData       = errors.New("wav: no data chunk")
)

const (
	tagRIFF = 0x52494646 // 'RIFF'
	tagWAVE = 0x57415645 // 'WAVE'
	tagFmt  = 0x666d7420 // 'fmt '
	tagData = 0x64617461 // 'data'

	formatPCM  = 1
	fmtBaseLen = 16
)

// Decode parses a RIFF/WAVE stream. Chunks are walked in order until the
// first data chunk, which is read in full and returned; anything after it is
// never touched.
func Decode(r io.Reader) (*Sound, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:4]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamHeader, err)
	}
	if binary.BigEndian.Uint32(hdr[0:4]) != tagRIFF {
		return nil, ErrStreamHeader
	}
	// riff size is ignored
	if _, err := io.ReadFull(r, hdr[4:12]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamHeader, err)
	}
	if binary.BigEndian.Uint32(hdr[8:12]) != tagWAVE {
		return nil, ErrStreamType
	}

	s := &Sound{}
	var chunk [8]byte
	for {
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoData
			}
			return nil, fmt.Errorf("%w: chunk header: %w", ErrNoData, err)
		}
		tag := binary.BigEndian.Uint32(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch tag {
		case tagFmt:
			if size < fmtBaseLen {
				return nil, fmt.Errorf("%w: fmt chunk is %d bytes", ErrStreamHeader, size)
			}
			var f [fmtBaseLen]byte
			if _, err := io.ReadFull(r, f[:]); err != nil {
				return nil, fmt.Errorf("wav: fmt chunk: %w", unexpected(err))
			}
			if code := binary.LittleEndian.Uint16(f[0:2]); code != formatPCM {
				return nil, fmt.Errorf("%w: format code %d", ErrDataType, code)
			}
			s.Channels = binary.LittleEndian.Uint16(f[2:4])
			s.SampleRate = binary.LittleEndian.Uint32(f[4:8])
			// f[8:14] is byte rate and block align
			s.Bits = binary.LittleEndian.Uint16(f[14:16])
			size -= fmtBaseLen
		case tagData:
			data, err := io.ReadAll(io.LimitReader(r, int64(size)))
			if err != nil {
				return nil, fmt.Errorf("wav: data chunk: %w", err)
			}
			if uint32(len(data)) != size {
				return nil, fmt.Errorf("wav: data chunk has %d of %d bytes: %w", len(data), size, io.ErrUnexpectedEOF)
			}
			s.Data = data
			return s, nil
		}

		if size == 0 {
			continue
		}
		if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoData
			}
			return nil, err
		}
	}
}

// DecodeFile decodes the named asset from fsys.
func DecodeFile(fsys fs.FS, name string) (*Sound, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Encode writes s as a canonical 44 byte header PCM WAV file.
func Encode(w io.Writer, s *Sound) error {
	dataLen := uint32(len(s.Data))
	blockAlign := uint32(s.Channels) * uint32(s.Bits) / 8

	var header [44]byte
	binary.BigEndian.PutUint32(header[0:], tagRIFF)
	binary.LittleEndian.PutUint32(header[4:], 36+dataLen)
	binary.BigEndian.PutUint32(header[8:], tagWAVE)
	binary.BigEndian.PutUint32(header[12:], tagFmt)
	binary.LittleEndian.PutUint32(header[16:], fmtBaseLen)
	binary.LittleEndian.PutUint16(header[20:], formatPCM)
	binary.LittleEndian.PutUint16(header[22:], s.Channels)
	binary.LittleEndian.PutUint32(header[24:], s.SampleRate)
	binary.LittleEndian.PutUint32(header[28:], s.SampleRate*blockAlign)
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:], s.Bits)
	binary.BigEndian.PutUint32(header[36:], tagData)
	binary.LittleEndian.PutUint32(header[40:], dataLen)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}
	if _, err := w.Write(s.Data); err != nil {
		return fmt.Errorf("wav: write data: %w", err)
	}
	return nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

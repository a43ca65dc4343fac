package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"terrastream.world/internal/sim/gen"
)

// EncodingRLEZstd is base64(zstd(varint (value, run) pairs)). Chunk
// arrays are long runs of a three-value alphabet, so RLE does most of the
// work and zstd squeezes the pair stream.
const EncodingRLEZstd = "RLE_ZSTD"

var (
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
)

func init() {
	var err error
	zstdEnc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	zstdDec, err = zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
}

func rleEncode(ids []uint16) []byte {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		v := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == v && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}
	return buf.Bytes()
}

// rleDecode expands at most want values. Run lengths are untrusted
// input; the cumulative bound stops a hostile pair from allocating
// arbitrarily (or wrapping on int conversion).
func rleDecode(raw []byte, want int) ([]uint16, error) {
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > 0xFFFF {
			return nil, fmt.Errorf("value too large: %d", v)
		}
		if run == 0 || run > uint64(want-len(out)) {
			return nil, fmt.Errorf("run of %d overflows %d expected values", run, want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(v))
		}
	}
	return out, nil
}

func encodeIDs(ids []uint16) string {
	packed := zstdEnc.EncodeAll(rleEncode(ids), nil)
	return base64.StdEncoding.EncodeToString(packed)
}

func decodeIDs(b64 string, want int) ([]uint16, error) {
	packed, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	raw, err := zstdDec.DecodeAll(packed, nil)
	if err != nil {
		return nil, err
	}
	ids, err := rleDecode(raw, want)
	if err != nil {
		return nil, err
	}
	if len(ids) != want {
		return nil, fmt.Errorf("decoded %d values, want %d", len(ids), want)
	}
	return ids, nil
}

func EncodeTiles(tiles []gen.TileKind) string {
	ids := make([]uint16, len(tiles))
	for i, t := range tiles {
		ids[i] = uint16(t)
	}
	return encodeIDs(ids)
}

func DecodeTiles(b64 string, want int) ([]gen.TileKind, error) {
	ids, err := decodeIDs(b64, want)
	if err != nil {
		return nil, fmt.Errorf("tiles: %w", err)
	}
	tiles := make([]gen.TileKind, len(ids))
	for i, v := range ids {
		tiles[i] = gen.TileKind(v)
	}
	return tiles, nil
}

func EncodeResources(resources []gen.ResourceKind) string {
	ids := make([]uint16, len(resources))
	for i, r := range resources {
		ids[i] = uint16(r)
	}
	return encodeIDs(ids)
}

func DecodeResources(b64 string, want int) ([]gen.ResourceKind, error) {
	ids, err := decodeIDs(b64, want)
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	resources := make([]gen.ResourceKind, len(ids))
	for i, v := range ids {
		resources[i] = gen.ResourceKind(v)
	}
	return resources, nil
}

package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted core types. These are maintained by
// hand; the field order here is the wire format, so append new fields
// at the end and never reorder existing ones.

var (
	// FingerprintMUS serializes a Fingerprint.
	FingerprintMUS = fingerprintMUS{}

	// ChunkMUS serializes a Chunk.
	ChunkMUS = chunkMUS{}

	// DocumentIndexMUS serializes a DocumentIndex.
	DocumentIndexMUS = documentIndexMUS{}

	vectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	vectorsMUS = ord.NewSliceSer[[]float32](vectorMUS)
	chunksMUS  = ord.NewSliceSer[Chunk](ChunkMUS)
)

var (
	_ mus.Serializer[Fingerprint]   = FingerprintMUS
	_ mus.Serializer[Chunk]         = ChunkMUS
	_ mus.Serializer[DocumentIndex] = DocumentIndexMUS
)

type fingerprintMUS struct{}

func (fingerprintMUS) Marshal(f Fingerprint, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(f), bs)
}

func (fingerprintMUS) Unmarshal(bs []byte) (f Fingerprint, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return Fingerprint(v), n, err
}

func (fingerprintMUS) Size(f Fingerprint) (size int) {
	return varint.Uint64.Size(uint64(f))
}

func (fingerprintMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.Text, bs)
	n += ord.String.Marshal(c.Source, bs[n:])
	n += varint.PositiveInt.Marshal(c.Page, bs[n:])
	n += ord.String.Marshal(c.ClauseNumber, bs[n:])
	return
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	c.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Page, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.ClauseNumber, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = ord.String.Size(c.Text)
	size += ord.String.Size(c.Source)
	size += varint.PositiveInt.Size(c.Page)
	size += ord.String.Size(c.ClauseNumber)
	return
}

func (chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

type documentIndexMUS struct{}

func (documentIndexMUS) Marshal(d DocumentIndex, bs []byte) (n int) {
	n = FingerprintMUS.Marshal(d.Fingerprint, bs)
	n += ord.String.Marshal(d.Source, bs[n:])
	n += varint.PositiveInt.Marshal(d.Dimension, bs[n:])
	n += vectorsMUS.Marshal(d.Vectors, bs[n:])
	n += chunksMUS.Marshal(d.Chunks, bs[n:])
	n += varint.Int64.Marshal(d.BuiltAt.UnixMicro(), bs[n:])
	return
}

func (documentIndexMUS) Unmarshal(bs []byte) (d DocumentIndex, n int, err error) {
	var n1 int
	d.Fingerprint, n, err = FingerprintMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Dimension, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Vectors, n1, err = vectorsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Chunks, n1, err = chunksMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.BuiltAt = time.UnixMicro(micro).UTC()
	return
}

func (documentIndexMUS) Size(d DocumentIndex) (size int) {
	size = FingerprintMUS.Size(d.Fingerprint)
	size += ord.String.Size(d.Source)
	size += varint.PositiveInt.Size(d.Dimension)
	size += vectorsMUS.Size(d.Vectors)
	size += chunksMUS.Size(d.Chunks)
	size += varint.Int64.Size(d.BuiltAt.UnixMicro())
	return
}

func (documentIndexMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = FingerprintMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorsMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = chunksMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

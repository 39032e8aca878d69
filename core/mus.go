package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the storage layer. Timestamps are encoded
// as Unix microseconds, embeddings as raw float32.

var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
)

// DocumentMUS serializes Document values.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Content, bs[n:])
	n += metadataMUS.Marshal(d.Metadata, bs[n:])
	n += varint.Int.Marshal(d.ChunkCount, bs[n:])
	n += varint.Int64.Marshal(d.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	d.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (documentMUS) Size(d Document) (n int) {
	n = ord.String.Size(d.Id)
	n += ord.String.Size(d.Content)
	n += metadataMUS.Size(d.Metadata)
	n += varint.Int.Size(d.ChunkCount)
	n += varint.Int64.Size(d.CreatedAt.UnixMicro())
	return n
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.DocID, bs)
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += vectorMUS.Marshal(c.Embedding, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	c.DocID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Embedding, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkMUS) Size(c Chunk) (n int) {
	n = ord.String.Size(c.DocID)
	n += varint.Int.Size(c.Index)
	n += ord.String.Size(c.Text)
	n += vectorMUS.Size(c.Embedding)
	return n
}

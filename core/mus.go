// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// IndexedChunkMUS serializes indexed chunks in the MUS format for storage.
var IndexedChunkMUS = indexedChunkMUS{}

var float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)

type indexedChunkMUS struct{}

func (s indexedChunkMUS) Marshal(v IndexedChunk, bs []byte) (n int) {
	n = ord.String.Marshal(v.ChunkID, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.PageTitle, bs[n:])
	n += varint.Int.Marshal(int(v.EntityType), bs[n:])
	n += ord.String.Marshal(v.SourceURL, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += float32SliceMUS.Marshal(v.Vector, bs[n:])
	return
}

func (s indexedChunkMUS) Unmarshal(bs []byte) (v IndexedChunk, n int, err error) {
	v.ChunkID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var entity int
	entity, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntityType = EntityType(entity)
	v.SourceURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexedChunkMUS) Size(v IndexedChunk) (size int) {
	size = ord.String.Size(v.ChunkID)
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.PageTitle)
	size += varint.Int.Size(int(v.EntityType))
	size += ord.String.Size(v.SourceURL)
	size += varint.Int.Size(v.ChunkIndex)
	size += float32SliceMUS.Size(v.Vector)
	return
}

func (s indexedChunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = float32SliceMUS.Skip(bs[n:])
	n += n1
	return
}

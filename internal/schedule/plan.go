package schedule

import (
	"fmt"
)

// Chunk is a contiguous range of the body.
type Chunk struct {
	// Index is the 0-based position of the chunk.
	Index int
	// Offset is the byte offset of the chunk within the body.
	Offset int64
	// Size is the length of the chunk; only the last chunk may be shorter than the plan's chunk size.
	Size int
}

// Plan partitions a body of Length bytes into chunks of ChunkSize bytes.
type Plan struct {
	Length    int64
	ChunkSize int
}

// NewPlan validates length and chunk size.
func NewPlan(length int64, chunkSize int) (Plan, error) {
	if length < 0 {
		return Plan{}, fmt.Errorf("%w: negative length %d", ErrScheduler, length)
	}

	if chunkSize < 1 {
		return Plan{}, fmt.Errorf("%w: chunk size must be positive, got %d", ErrScheduler, chunkSize)
	}

	return Plan{Length: length, ChunkSize: chunkSize}, nil
}

// Count returns ceil(Length/ChunkSize).
func (p Plan) Count() int {
	size := int64(p.ChunkSize)

	return int((p.Length + size - 1) / size)
}

// Chunk returns chunk i. It panics if i is out of range.
func (p Plan) Chunk(i int) Chunk {
	if i < 0 || i >= p.Count() {
		panic(fmt.Sprintf("schedule: chunk %d out of range [0,%d)", i, p.Count()))
	}

	offset := int64(i) * int64(p.ChunkSize)

	return Chunk{
		Index:  i,
		Offset: offset,
		Size:   int(min(int64(p.ChunkSize), p.Length-offset)),
	}
}

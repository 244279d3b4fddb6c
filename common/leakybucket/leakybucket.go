package leakybucket

import (
	"sync"
)

type Frame struct {
	payload string
}

func (frame Frame) GetPayload() string {
	return frame.payload
}

type Batch struct {
	frames []Frame
}

func (batch Batch) GetFrames() []Frame {
	return batch.frames
}

type FlushCallback func(batch Batch, bucket *Bucket)

// Bucket accumulates frames and hands them to the flush callback one full
// batch at a time. When the consumer cannot keep up, only the newest
// maxPendingBatches batches are retained; older ones leak away.
type Bucket struct {
	mutex sync.Mutex

	framesPerBatch    int
	maxPendingBatches int
	flushCbk          FlushCallback

	frames  []Frame
	pending []Batch
}

func NewBucket(framesPerBatch int, maxPendingBatches int, flushCbk FlushCallback) *Bucket {
	return &Bucket{
		framesPerBatch:    framesPerBatch,
		maxPendingBatches: maxPendingBatches,
		flushCbk:          flushCbk,

		frames:  make([]Frame, 0, framesPerBatch),
		pending: make([]Batch, 0),
	}
}

func (bucket *Bucket) AddFrame(payload string) {
	bucket.mutex.Lock()

	bucket.frames = append(bucket.frames, Frame{payload: payload})

	if len(bucket.frames) < bucket.framesPerBatch {
		bucket.mutex.Unlock()
		return
	}

	bucket.pending = append(bucket.pending, Batch{frames: bucket.frames})
	bucket.frames = make([]Frame, 0, bucket.framesPerBatch)

	if len(bucket.pending) > bucket.maxPendingBatches {
		bucket.pending = bucket.pending[len(bucket.pending)-bucket.maxPendingBatches:]
	}

	flushable := bucket.pending
	bucket.pending = make([]Batch, 0)

	bucket.mutex.Unlock()

	for _, batch := range flushable {
		bucket.flushCbk(batch, bucket)
	}
}

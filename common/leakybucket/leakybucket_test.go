package leakybucket_test

import (
	"strconv"
	"testing"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/leakybucket"
)

func TestBucketFlushesFullBatches(t *testing.T) {
	flushed := make([][]string, 0)

	bucket := leakybucket.NewBucket(3, 5, func(batch leakybucket.Batch, bucket *leakybucket.Bucket) {
		payloads := make([]string, 0)
		for _, frame := range batch.GetFrames() {
			payloads = append(payloads, frame.GetPayload())
		}
		flushed = append(flushed, payloads)
	})

	for i := 0; i < 7; i++ {
		bucket.AddFrame(strconv.Itoa(i))
	}

	if len(flushed) != 2 {
		panic("Expected two full batches to have been flushed")
	}

	if len(flushed[0]) != 3 || flushed[0][0] != "0" || flushed[0][2] != "2" {
		panic("Unexpected first batch content")
	}

	if len(flushed[1]) != 3 || flushed[1][0] != "3" {
		panic("Unexpected second batch content")
	}
}

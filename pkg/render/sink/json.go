package sink

import (
	"github.com/matzehuels/redline/pkg/batch"
)

// RenderJSON encodes the batch as indented JSON.
func RenderJSON(b *batch.Batch) ([]byte, error) {
	return batch.Marshal(b)
}

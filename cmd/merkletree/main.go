// Command merkletree is a standalone benchmark for internal/merkletree,
// unrelated to the broadcast sequencer: it appends a hundred thousand
// leaves and reports the root hash and elapsed time.
package main

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/drand/bftseq/internal/merkletree"
)

const leafCount = 100_000

func main() {
	head := merkletree.NewHead()
	fmt.Printf("root before: %x\n", head.Root())

	start := time.Now()
	for i := 0; i < leafCount; i++ {
		commitment := sha256.Sum256([]byte(fmt.Sprintf("hello world%d", i)))
		head.AppendLeaf(commitment)
	}
	elapsed := time.Since(start)

	fmt.Printf("root after: %x\n", head.Root())
	fmt.Printf("elapsed: %s\n", elapsed)
}

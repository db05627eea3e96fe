package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/copypix/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
	// Missing indicates at least one side is absent or not a regular file
	Missing Result = "missing"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	PathA  string
	PathB  string
	Result Result
	Reason string
}

// Comparator decides whether two files have identical content
type Comparator struct {
	backend storage.Backend
	hasher  *Hasher
}

// NewComparator creates a comparator that hashes through hasher
func NewComparator(backend storage.Backend, hasher *Hasher) *Comparator {
	return &Comparator{backend: backend, hasher: hasher}
}

// IsIdentical reports whether the files at a and b have identical content.
// A missing path or one that is not a regular file yields false, not an error.
// Neither file is modified.
func (c *Comparator) IsIdentical(ctx context.Context, a, b string) (bool, error) {
	comparison, err := c.Compare(ctx, a, b)
	if err != nil {
		return false, err
	}
	return comparison.Result == Same, nil
}

// Compare compares two files: a size check first, then content digests
func (c *Comparator) Compare(ctx context.Context, a, b string) (*Comparison, error) {
	infoA, ok := c.regularFile(ctx, a)
	if !ok {
		return &Comparison{PathA: a, PathB: b, Result: Missing, Reason: fmt.Sprintf("%s is not a regular file", a)}, nil
	}
	infoB, ok := c.regularFile(ctx, b)
	if !ok {
		return &Comparison{PathA: a, PathB: b, Result: Missing, Reason: fmt.Sprintf("%s is not a regular file", b)}, nil
	}

	// Different sizes can never hash equal
	if infoA.Size != infoB.Size {
		return &Comparison{
			PathA:  a,
			PathB:  b,
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: %d != %d", infoA.Size, infoB.Size),
		}, nil
	}

	hashA, err := c.hasher.Digest(ctx, a)
	if err != nil {
		return nil, err
	}
	hashB, err := c.hasher.Digest(ctx, b)
	if err != nil {
		return nil, err
	}

	if hashA != hashB {
		return &Comparison{PathA: a, PathB: b, Result: Different, Reason: "file hashes differ"}, nil
	}

	return &Comparison{PathA: a, PathB: b, Result: Same, Reason: "file hashes match"}, nil
}

func (c *Comparator) regularFile(ctx context.Context, path string) (*storage.FileInfo, bool) {
	info, err := c.backend.Stat(ctx, path)
	if err != nil || !info.IsRegular {
		return nil, false
	}
	return info, true
}

// SameContent hashes two files and reports whether the digests match,
// without the size shortcut. Used for post-copy verification.
func SameContent(ctx context.Context, hasher *Hasher, a, b string) (bool, error) {
	hashA, err := hasher.Digest(ctx, a)
	if err != nil {
		return false, err
	}
	hashB, err := hasher.Digest(ctx, b)
	if err != nil {
		return false, err
	}
	return hashA == hashB, nil
}

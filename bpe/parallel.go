package bpe

import (
	"bytes"
	"context"
	"io"
	"os"
	"runtime"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// miniChunkSize is the scan granularity used when snapping a proposed
// chunk boundary forward to the next occurrence of the split token.
const miniChunkSize = 4096

// ParallelPreTokDriver splits a file into byte ranges aligned to a
// safe delimiter and fans pre-tokenization across workers, merging
// their partial word counts. It never splits a pre-token across
// workers because every boundary lands on an occurrence of
// splitToken (or EOF).
type ParallelPreTokDriver struct {
	specials   []string
	splitToken []byte
	log        Logger
}

// NewParallelPreTokDriver builds a driver that strips specials before
// pre-tokenizing and aligns worker boundaries on splitToken.
func NewParallelPreTokDriver(specials []string, splitToken []byte, log Logger) *ParallelPreTokDriver {
	if log == nil {
		log = nopLogger{}
	}
	return &ParallelPreTokDriver{specials: specials, splitToken: splitToken, log: log}
}

// Run pre-tokenizes path using up to desiredChunks workers and returns
// the merged WordCounts. The result does not depend on desiredChunks:
// addition of per-worker frequencies is commutative, and no pre-token
// is ever split across a boundary.
func (d *ParallelPreTokDriver) Run(ctx context.Context, path string, desiredChunks int) (map[string]int, error) {
	if desiredChunks < 1 {
		desiredChunks = 1
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "bpe: open corpus file")
	}
	defer f.Close()

	size, err := fileSize(f)
	if err != nil {
		return nil, errors.Wrap(err, "bpe: stat corpus file")
	}

	boundaries, err := d.findBoundaries(f, size, desiredChunks)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]int, len(boundaries)-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.GOMAXPROCS(0), 1))

	for i := 0; i < len(boundaries)-1; i++ {
		i := i
		start, end := boundaries[i], boundaries[i+1]
		if start >= end {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			counts, err := d.runWorker(path, start, end)
			if err != nil {
				return errors.Wrapf(err, "bpe: worker range [%d,%d)", start, end)
			}
			results[i] = counts
			d.log.Debug("pretok worker done", zap.Int("worker", i), zap.Int64("start", start), zap.Int64("end", end))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]int)
	for _, counts := range results {
		for frag, n := range counts {
			merged[frag] += n
		}
	}
	return merged, nil
}

func (d *ParallelPreTokDriver) runWorker(path string, start, end int64) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	if !utf8.Valid(buf) {
		return nil, ErrInputEncoding
	}
	return PreTokenize(string(buf), d.specials), nil
}

// findBoundaries proposes desiredChunks+1 equally spaced offsets,
// then snaps each interior offset forward to the next occurrence of
// splitToken (or EOF), scanning in miniChunkSize windows. Duplicate
// boundaries are collapsed, so fewer than desiredChunks ranges may
// result — this is expected when the file has fewer split-token
// occurrences than requested chunks.
func (d *ParallelPreTokDriver) findBoundaries(f *os.File, size int64, desiredChunks int) ([]int64, error) {
	if size == 0 {
		return []int64{0, 0}, nil
	}
	if len(d.splitToken) == 0 || desiredChunks <= 1 {
		return []int64{0, size}, nil
	}

	raw := make([]int64, desiredChunks+1)
	step := size / int64(desiredChunks)
	for i := range raw {
		raw[i] = int64(i) * step
	}
	raw[desiredChunks] = size

	snapped := make([]int64, len(raw))
	snapped[0] = 0
	snapped[len(raw)-1] = size
	for i := 1; i < len(raw)-1; i++ {
		off, err := d.snapForward(f, raw[i], size)
		if err != nil {
			return nil, err
		}
		snapped[i] = off
	}

	dedup := []int64{snapped[0]}
	for _, b := range snapped[1:] {
		if b > dedup[len(dedup)-1] {
			dedup = append(dedup, b)
		}
	}
	if dedup[len(dedup)-1] != size {
		dedup = append(dedup, size)
	}
	return dedup, nil
}

// snapForward scans forward from offset in miniChunkSize windows for
// the first occurrence of the split token, returning the offset just
// past it. If EOF is reached first, the boundary snaps to EOF.
func (d *ParallelPreTokDriver) snapForward(f *os.File, offset, size int64) (int64, error) {
	pos := offset
	buf := make([]byte, miniChunkSize)
	for pos < size {
		n, err := f.ReadAt(buf, pos)
		if n > 0 {
			if idx := bytes.Index(buf[:n], d.splitToken); idx >= 0 {
				return pos + int64(idx) + int64(len(d.splitToken)), nil
			}
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if err == io.EOF || n < len(buf) {
			return size, nil
		}
		pos += int64(n)
	}
	return size, nil
}

func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

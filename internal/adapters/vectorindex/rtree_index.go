package vectorindex

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/rtree"
)

// Index file layout, little endian:
//
//	magic   [4]byte "OQIX"
//	version uint32
//	count   uint64
//	count × { id int64, lat float32, lon float32 }
var fileMagic = [4]byte{'O', 'Q', 'I', 'X'}

const fileVersion uint32 = 1

// Point is one indexed sample.
type Point struct {
	ID  int64
	Lat float32
	Lon float32
}

type fileRecord struct {
	ID  int64
	Lat float32
	Lon float32
}

// RTreeIndex is an in-memory nearest-neighbor index over [lat, lon]
// vectors. Distance is planar L2 in degree space, so results are
// approximate and callers re-rank by geodesic distance.
//
// It is read-only after construction and safe for concurrent searches.
type RTreeIndex struct {
	tree rtree.RTreeG[int64]
}

// NewRTreeIndex builds an index from points.
func NewRTreeIndex(points []Point) *RTreeIndex {
	idx := &RTreeIndex{}
	for _, p := range points {
		pt := [2]float64{float64(p.Lat), float64(p.Lon)}
		idx.tree.Insert(pt, pt, p.ID)
	}
	return idx
}

func (x *RTreeIndex) Len() int { return x.tree.Len() }

// Search returns up to k ids nearest vector, closest first.
func (x *RTreeIndex) Search(ctx context.Context, vector [2]float32, k int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []int64{}, nil
	}

	target := [2]float64{float64(vector[0]), float64(vector[1])}
	ids := make([]int64, 0, k)

	x.tree.Nearby(
		rtree.BoxDist[float64, int64](target, target, nil),
		func(min, max [2]float64, id int64, dist float64) bool {
			ids = append(ids, id)
			return len(ids) < k
		},
	)

	return ids, nil
}

// WriteIndex serializes points in the index file format.
func WriteIndex(w io.Writer, points []Point) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(fileMagic[:]); err != nil {
		return fmt.Errorf("write index: header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, fileVersion); err != nil {
		return fmt.Errorf("write index: header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(points))); err != nil {
		return fmt.Errorf("write index: header: %w", err)
	}

	for _, p := range points {
		if err := binary.Write(bw, binary.LittleEndian, fileRecord(p)); err != nil {
			return fmt.Errorf("write index: id=%d: %w", p.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write index: flush: %w", err)
	}
	return nil
}

// ReadIndex parses an index file and builds the in-memory tree.
func ReadIndex(r io.Reader) (*RTreeIndex, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read index: header: %w", err)
	}
	if magic != fileMagic {
		return nil, errors.New("read index: not an index file")
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read index: header: %w", err)
	}
	if version != fileVersion {
		return nil, fmt.Errorf("read index: unsupported version %d", version)
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read index: header: %w", err)
	}

	idx := &RTreeIndex{}
	for i := uint64(0); i < count; i++ {
		var rec fileRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("read index: record %d of %d: %w", i+1, count, err)
		}
		pt := [2]float64{float64(rec.Lat), float64(rec.Lon)}
		idx.tree.Insert(pt, pt, rec.ID)
	}

	return idx, nil
}

// LoadFile reads the index at path.
func LoadFile(path string) (*RTreeIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load index: open %s: %w", path, err)
	}
	defer f.Close()

	return ReadIndex(f)
}

// SaveFile writes points to path, replacing any existing file.
func SaveFile(path string, points []Point) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save index: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save index: close %s: %w", path, cerr)
		}
	}()

	return WriteIndex(f, points)
}

package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jchantrell/modelbundle/internal/status"
	"github.com/oriath-net/gooz"
)

// Blocks is an Oodle block container: a fixed header, a table of compressed
// block sizes, then the blocks. Every block but the last decompresses to
// exactly granularity bytes.
type Blocks struct {
	data        []byte
	size        int64
	granularity int64 // usually 256KiB
	blocks      []block
}

// compressed block position relative to Blocks.data
type block struct {
	offset int64
	length int64
}

type blocksHead struct {
	UncompressedSize             uint32
	TotalPayloadSize             uint32
	HeadPayloadSize              uint32
	FirstFileEncode              uint32
	_                            uint32
	UncompressedSize2            int64
	TotalPayloadSize2            int64
	BlockCount                   uint32
	UncompressedBlockGranularity uint32
	_                            [4]uint32
}

var blocksHeadSize = binary.Size(blocksHead{})

const (
	// one Kraken quantum
	maxGranularity = 256 << 10

	// Oodle chunk header
	minBlockLength = 2

	// decompressed bytes allowed per compressed payload byte
	maxExpansion = 1024
)

func readBlocksHead(data []byte) (blocksHead, error) {
	var bh blocksHead
	if len(data) < blocksHeadSize {
		return bh, status.Errorf(status.TruncatedEntry, "block container head needs %d bytes, got %d", blocksHeadSize, len(data))
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &bh); err != nil {
		return bh, status.Wrap(status.CorruptArchive, err, "reading block container head")
	}
	return bh, nil
}

// IsBlockContainer reports whether data starts with a self-consistent block
// container head. Zip archives never match.
func IsBlockContainer(data []byte) bool {
	if bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	bh, err := readBlocksHead(data)
	if err != nil {
		return false
	}
	return checkHead(bh, len(data)) == nil
}

func checkHead(bh blocksHead, available int) error {
	if bh.UncompressedBlockGranularity == 0 || bh.UncompressedBlockGranularity > maxGranularity {
		return status.Errorf(status.CorruptArchive, "block granularity %d outside (0, %d]", bh.UncompressedBlockGranularity, maxGranularity)
	}
	if bh.UncompressedSize2 <= 0 || int64(bh.UncompressedSize) != bh.UncompressedSize2 {
		return status.Errorf(status.CorruptArchive, "inconsistent uncompressed size %d/%d", bh.UncompressedSize, bh.UncompressedSize2)
	}

	granularity := int64(bh.UncompressedBlockGranularity)
	expectedBlocks := (bh.UncompressedSize2 + granularity - 1) / granularity
	if expectedBlocks != int64(bh.BlockCount) {
		return status.Errorf(status.CorruptArchive,
			"got %d blocks of size %d for %d bytes data", bh.BlockCount, granularity, bh.UncompressedSize2)
	}

	if int64(blocksHeadSize)+4*int64(bh.BlockCount) > int64(available) {
		return status.Errorf(status.TruncatedEntry, "block size table for %d blocks exceeds %d bytes", bh.BlockCount, available)
	}
	return nil
}

// OpenBlocks parses the head and block table of a block container
func OpenBlocks(data []byte) (*Blocks, error) {
	bh, err := readBlocksHead(data)
	if err != nil {
		return nil, err
	}
	if err := checkHead(bh, len(data)); err != nil {
		return nil, err
	}

	blockSizes := make([]uint32, bh.BlockCount)
	if err := binary.Read(bytes.NewReader(data[blocksHeadSize:]), binary.LittleEndian, &blockSizes); err != nil {
		return nil, status.Wrap(status.TruncatedEntry, err, "reading block sizes (BlockCount=%d)", bh.BlockCount)
	}

	blocks := make([]block, bh.BlockCount)
	tableEnd := int64(blocksHeadSize + binary.Size(blockSizes))
	p := tableEnd
	for i := range blockSizes {
		sz := int64(blockSizes[i])
		if sz < minBlockLength {
			return nil, status.Errorf(status.CorruptArchive, "block %d has %d compressed bytes", i, sz)
		}
		blocks[i] = block{offset: p, length: sz}
		p += sz
	}

	if p > int64(len(data)) {
		return nil, status.Errorf(status.TruncatedEntry, "block payload ends at %d but container has %d bytes", p, len(data))
	}

	if payload := p - tableEnd; bh.UncompressedSize2 > payload*maxExpansion {
		return nil, status.Errorf(status.CorruptArchive, "uncompressed size %d from %d compressed bytes", bh.UncompressedSize2, payload)
	}
	if bh.UncompressedSize2 > int64(math.MaxInt) {
		return nil, status.Errorf(status.CorruptArchive, "uncompressed size %d exceeds address space", bh.UncompressedSize2)
	}

	return &Blocks{
		data:        data,
		size:        bh.UncompressedSize2,
		granularity: int64(bh.UncompressedBlockGranularity),
		blocks:      blocks,
	}, nil
}

// Size returns the decompressed size
func (b *Blocks) Size() int64 {
	return b.size
}

// ReadAt decompresses len(p) bytes starting at off
func (b *Blocks) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > b.size {
		return 0, fmt.Errorf("read [%d, %d) outside bounds of %d bytes", off, off+int64(len(p)), b.size)
	}

	obuf := make([]byte, b.granularity)

	n := 0
	for n < len(p) {
		blkId := int(off / b.granularity)
		blkOff := int(off % b.granularity)
		blk := &b.blocks[blkId]

		rawSize := int(b.granularity)
		if blkId == len(b.blocks)-1 {
			rawSize = int(b.size - int64(blkId)*b.granularity)
		}

		compressed := b.data[blk.offset : blk.offset+blk.length]
		if _, err := gooz.Decompress(compressed, obuf[:rawSize]); err != nil {
			return n, status.Wrap(status.CorruptArchive, err, "decompressing block %d", blkId)
		}

		copied := copy(p[n:], obuf[blkOff:rawSize])
		n += copied
		off += int64(copied)
	}

	return n, nil
}

// Read returns the entire decompressed payload
func (b *Blocks) Read() ([]byte, error) {
	data := make([]byte, b.size)
	if _, err := b.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("reading block container: %w", err)
	}
	return data, nil
}

package cartridge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

var sevenZipMagic = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}

// Load unwraps a 7z-archived ROM (the first regular file found inside
// the archive is used) before handing the bytes to New, or uses data
// as-is for a plain binary ROM image. Archived ROMs are an enrichment
// over the original loader, which only ever read a raw binary file;
// the teacher's go.mod already carries bodgit/sevenzip for this.
func Load(data []byte) (*Cartridge, error) {
	rom, err := unwrapArchive(data)
	if err != nil {
		return nil, fmt.Errorf("cartridge: %w", err)
	}
	if len(rom)%0x4000 != 0 {
		return nil, fmt.Errorf("cartridge: rom size %d is not a multiple of 16KiB", len(rom))
	}
	return New(rom)
}

func unwrapArchive(data []byte) ([]byte, error) {
	if len(data) < len(sevenZipMagic) || !bytes.Equal(data[:len(sevenZipMagic)], sevenZipMagic) {
		return data, nil
	}

	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open 7z archive: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("7z archive contains no files")
}

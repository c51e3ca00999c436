package main

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// fileLoader implements machine.Loader against the local filesystem,
// transparently decompressing .gz/.zip/.7z ROM images -- adapted from
// the teacher's pkg/utils.LoadFile, minus the sqweek/dialog file
// picker (cmd/gomeboy takes paths as flags instead).
type fileLoader struct {
	romPath     string
	biosPath    string
	batteryPath string
}

func (l *fileLoader) LoadROM() ([]byte, error) {
	return loadCompressed(l.romPath)
}

func (l *fileLoader) LoadBIOS() ([]byte, error) {
	if l.biosPath == "" {
		return nil, nil
	}
	return loadCompressed(l.biosPath)
}

func (l *fileLoader) LoadBattery() ([]byte, error) {
	if l.batteryPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(l.batteryPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (l *fileLoader) SaveBattery(data []byte) error {
	if l.batteryPath == "" {
		return nil
	}
	return os.WriteFile(l.batteryPath, data, 0o644)
}

// loadCompressed reads filename, transparently decompressing it if its
// extension names a supported archive format; a bare .gb/.gbc/.bin
// file (or anything unrecognized) is returned as-is.
func loadCompressed(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var decoder io.ReadCloser
	switch filepath.Ext(filename) {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	case ".zip":
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(zr.File) == 0 {
			return data, nil
		}
		decoder, err = zr.File[0].Open()
		if err != nil {
			return nil, err
		}
	case ".7z":
		sr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(sr.File) == 0 {
			return data, nil
		}
		decoder, err = sr.File[0].Open()
		if err != nil {
			return nil, err
		}
	default:
		return data, nil
	}
	defer decoder.Close()
	return io.ReadAll(decoder)
}

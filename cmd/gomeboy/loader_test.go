package main

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCompressedPassesThroughUnrecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02, 0x03}, 0o644))

	data, err := loadCompressed(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, data)
}

func TestLoadCompressedDecompressesGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	data, err := loadCompressed(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, data)
}

func TestLoadCompressedExtractsFirstEntryOfZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("game.gb")
	require.NoError(t, err)
	_, err = w.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	data, err := loadCompressed(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)
}

func TestLoadBIOSReturnsNilWithoutErrorWhenPathEmpty(t *testing.T) {
	l := &fileLoader{}
	data, err := l.LoadBIOS()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestLoadBatteryReturnsNilWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	l := &fileLoader{batteryPath: filepath.Join(dir, "missing.sav")}
	data, err := l.LoadBattery()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestSaveBatteryIsNoOpWithoutBatteryPath(t *testing.T) {
	l := &fileLoader{}
	require.NoError(t, l.SaveBattery([]byte{0x01}))
}

func TestSaveThenLoadBatteryRoundTrips(t *testing.T) {
	dir := t.TempDir()
	l := &fileLoader{batteryPath: filepath.Join(dir, "save.sav")}

	require.NoError(t, l.SaveBattery([]byte{0x01, 0x02, 0x03}))
	data, err := l.LoadBattery()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, data)
}

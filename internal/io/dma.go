package io

// BusReader is the subset of the bus an IO component needs to copy
// bytes out of general memory (OAM DMA source, HDMA source).
type BusReader interface {
	Read(address uint16) uint8
}

// OAMWriter lets OAM DMA write sprite bytes directly, bypassing the
// mode-2/mode-3 write blocking that applies to ordinary CPU writes.
type OAMWriter interface {
	WriteOAMByte(index uint8, value uint8)
}

// OAMDMA implements the 0xFF46 OAM DMA transfer: 160 bytes copied from
// H*0x100 into OAM, one byte every 4 T-states (one machine cycle),
// over 160 machine cycles total.
type OAMDMA struct {
	bus BusReader
	oam OAMWriter

	active    bool
	source    uint16
	progress  uint8 // next byte index to copy, 0..159
	tickAccum int
}

func NewOAMDMA(bus BusReader, oam OAMWriter) *OAMDMA {
	return &OAMDMA{bus: bus, oam: oam}
}

func (d *OAMDMA) Active() bool { return d.active }

// Write handles a write to 0xFF46: H > 0xDF is clamped, and a write
// while a transfer is already running is ignored.
func (d *OAMDMA) Write(h uint8) {
	if d.active {
		return
	}
	if h > 0xDF {
		h = 0xDF
	}
	d.active = true
	d.source = uint16(h) << 8
	d.progress = 0
	d.tickAccum = 0
}

// Tick advances the transfer by the given number of T-states.
func (d *OAMDMA) Tick(cycles int) {
	if !d.active {
		return
	}
	d.tickAccum += cycles
	for d.tickAccum >= 4 && d.active {
		d.tickAccum -= 4
		d.oam.WriteOAMByte(d.progress, d.bus.Read(d.source+uint16(d.progress)))
		d.progress++
		if d.progress >= 160 {
			d.active = false
		}
	}
}

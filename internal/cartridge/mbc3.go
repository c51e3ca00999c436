package cartridge

import (
	"fmt"
	"time"
)

// rtc register indices, selected via the 0x4000-0x5FFF write window.
const (
	rtcSeconds uint8 = 0x08
	rtcMinutes uint8 = 0x09
	rtcHours   uint8 = 0x0A
	rtcDaysLo  uint8 = 0x0B
	rtcDaysHi  uint8 = 0x0C
)

// MBC3 supports 128 ROM banks, 4 RAM banks, and a real-time clock
// latched through the 0x6000-0x7FFF write window. The RTC derives its
// registers from wall-clock seconds elapsed since the emulator reset,
// exactly as the original's emu/ext_chip/mbc3.c does with gettimeofday.
type MBC3 struct {
	rom []byte
	ram []byte

	romBank    uint8
	ramBank    uint8
	ramEnabled bool

	rtcRegSelected bool
	selectedReg    uint8
	latching       bool
	latched        bool

	dayHigh  bool
	dayCarry bool
	halted   bool

	// elapsedSnapshot is the wall-clock second count captured at the
	// last 0->1 latch transition. Reads derive S/M/H/day from this
	// snapshot, not from live elapsed time -- the original only updates
	// it inside the latch handler.
	elapsedSnapshot int64

	romBankCount uint
	fault        string

	startTime time.Time
	now       func() time.Time
}

func NewMBC3(rom []byte, h Header) *MBC3 {
	return &MBC3{
		rom:          rom,
		ram:          make([]byte, h.RAMSize),
		romBank:      1,
		romBankCount: h.ROMBankCount,
		startTime:    time.Now(),
		now:          time.Now,
	}
}

// SetClock overrides the time source used to derive the RTC registers.
// Used by tests to simulate elapsed wall-clock time without sleeping.
func (m *MBC3) SetClock(start time.Time, now func() time.Time) {
	m.startTime = start
	m.now = now
}

func (m *MBC3) Fault() string { return m.fault }

func (m *MBC3) elapsed() int64 {
	return int64(m.now().Sub(m.startTime).Seconds())
}

func (m *MBC3) ReadROM(address uint16) uint8 {
	if address < 0x4000 {
		return m.rom[address]
	}
	off := uint32(m.romBank)*0x4000 + uint32(address-0x4000)
	if int(off) >= len(m.rom) {
		return 0xFF
	}
	return m.rom[off]
}

func (m *MBC3) WriteROM(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value == 0x0A
	case address < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
		if m.romBankCount != 0 && uint(m.romBank) >= m.romBankCount {
			m.fault = fmt.Sprintf("mbc3: rom bank %d out of range (have %d banks)", m.romBank, m.romBankCount)
		}
	case address < 0x6000:
		if value <= 0x03 {
			m.rtcRegSelected = false
			m.ramBank = value
		} else if value >= 0x08 && value <= 0x0C {
			m.rtcRegSelected = true
			m.selectedReg = value
		}
	case address < 0x8000:
		if value == 0x00 {
			m.latching = true
		} else if value == 0x01 && m.latching {
			m.latching = false
			m.latch()
		}
	}
}

// latch snapshots the elapsed-seconds derived RTC fields, exactly as
// the original's 0->1 transition handler does.
func (m *MBC3) latch() {
	m.elapsedSnapshot = m.elapsed()
	days := m.elapsedSnapshot / 86400
	m.dayHigh = days > 0xFF
	if days > 0x1FF {
		m.dayCarry = true
	}
	m.latched = true
}

func (m *MBC3) rtcRead() uint8 {
	elapsed := m.elapsedSnapshot
	switch m.selectedReg {
	case rtcSeconds:
		return uint8(elapsed % 60)
	case rtcMinutes:
		return uint8((elapsed / 60) % 60)
	case rtcHours:
		return uint8((elapsed / 3600) % 24)
	case rtcDaysLo:
		return uint8((elapsed / 86400) & 0xFF)
	case rtcDaysHi:
		var b uint8
		if m.dayHigh {
			b |= 0x01
		}
		if m.halted {
			b |= 0x40
		}
		if m.dayCarry {
			b |= 0x80
		}
		return b
	}
	return 0xFF
}

func (m *MBC3) rtcWrite(value uint8) {
	switch m.selectedReg {
	case rtcDaysHi:
		m.dayHigh = value&0x01 != 0
		m.halted = value&0x40 != 0
		m.dayCarry = value&0x80 != 0
	}
}

func (m *MBC3) ReadRAM(address uint16) uint8 {
	if m.rtcRegSelected {
		return m.rtcRead()
	}
	if !m.ramEnabled {
		return 0xFF
	}
	off := uint32(m.ramBank)*0x2000 + uint32(address-0xA000)
	if int(off) >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *MBC3) WriteRAM(address uint16, value uint8) {
	if m.rtcRegSelected {
		m.rtcWrite(value)
		return
	}
	if !m.ramEnabled {
		return
	}
	off := uint32(m.ramBank)*0x2000 + uint32(address-0xA000)
	if int(off) >= len(m.ram) {
		return
	}
	m.ram[off] = value
}

func (m *MBC3) RAM() []byte      { return m.ram }
func (m *MBC3) LoadRAM(d []byte) { copy(m.ram, d) }

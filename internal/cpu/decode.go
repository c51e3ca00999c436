package cpu

import "fmt"

// illegalOpcodes are the 11 Sharp LR35902 primary opcodes with no
// defined behavior on real hardware.
var illegalOpcodes = [...]uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func isIllegalOpcode(opcode uint8) bool {
	for _, o := range illegalOpcodes {
		if o == opcode {
			return true
		}
	}
	return false
}

// execPrimary decodes and executes one primary-table opcode, returning
// the number of M-cycles (4 T-states each) it consumes.
func execPrimary(c *CPU, opcode uint8) int {
	if isIllegalOpcode(opcode) {
		c.fault(fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", opcode, c.PC-1))
		return 1
	}

	switch {
	case opcode == 0x00: // NOP
		return 1
	case opcode == 0x76: // HALT
		c.halt()
		return 1
	case opcode == 0x10: // STOP
		c.fetch8() // STOP is followed by a padding byte on real hardware
		return 1
	case opcode == 0xF3: // DI
		c.di()
		return 1
	case opcode == 0xFB: // EI
		c.ei()
		return 1
	case opcode == 0x07:
		c.rlca()
		return 1
	case opcode == 0x0F:
		c.rrca()
		return 1
	case opcode == 0x17:
		c.rla()
		return 1
	case opcode == 0x1F:
		c.rra()
		return 1
	case opcode == 0x27:
		c.daa()
		return 1
	case opcode == 0x2F:
		c.cpl()
		return 1
	case opcode == 0x37:
		c.scf()
		return 1
	case opcode == 0x3F:
		c.ccf()
		return 1
	case opcode == 0xCB:
		sub := c.fetch8()
		return execCB(c, sub)

	// --- 16-bit immediate loads: LD rr,d16 ---
	case opcode&0xCF == 0x01:
		c.setR16((opcode>>4)&0x03, c.fetch16())
		return 3

	// --- LD (BC),A / LD (DE),A / LD (HL+),A / LD (HL-),A ---
	case opcode == 0x02:
		c.bus.Write(c.BC(), c.A)
		return 2
	case opcode == 0x12:
		c.bus.Write(c.DE(), c.A)
		return 2
	case opcode == 0x22:
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() + 1)
		return 2
	case opcode == 0x32:
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() - 1)
		return 2

	// --- LD A,(BC) / LD A,(DE) / LD A,(HL+) / LD A,(HL-) ---
	case opcode == 0x0A:
		c.A = c.bus.Read(c.BC())
		return 2
	case opcode == 0x1A:
		c.A = c.bus.Read(c.DE())
		return 2
	case opcode == 0x2A:
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() + 1)
		return 2
	case opcode == 0x3A:
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() - 1)
		return 2

	// --- INC rr / DEC rr ---
	case opcode&0xCF == 0x03:
		idx := (opcode >> 4) & 0x03
		c.setR16(idx, c.getR16(idx)+1)
		return 2
	case opcode&0xCF == 0x0B:
		idx := (opcode >> 4) & 0x03
		c.setR16(idx, c.getR16(idx)-1)
		return 2

	// --- ADD HL,rr ---
	case opcode&0xCF == 0x09:
		c.addHL16(c.getR16((opcode >> 4) & 0x03))
		return 2

	// --- INC r8 / DEC r8 ---
	case opcode&0xC7 == 0x04:
		op := c.r8(opcode >> 3)
		op.Set(c.inc8(op.Get()))
		if opcode>>3&0x07 == 6 {
			return 3
		}
		return 1
	case opcode&0xC7 == 0x05:
		op := c.r8(opcode >> 3)
		op.Set(c.dec8(op.Get()))
		if opcode>>3&0x07 == 6 {
			return 3
		}
		return 1

	// --- LD r8,d8 ---
	case opcode&0xC7 == 0x06:
		op := c.r8(opcode >> 3)
		op.Set(c.fetch8())
		if opcode>>3&0x07 == 6 {
			return 3
		}
		return 2

	// --- LD (a16),SP ---
	case opcode == 0x08:
		addr := c.fetch16()
		c.bus.Write(addr, uint8(c.SP))
		c.bus.Write(addr+1, uint8(c.SP>>8))
		return 5

	// --- JR r8 / JR cc,r8 ---
	case opcode == 0x18:
		c.jr(int8(c.fetch8()))
		return 3
	case opcode&0xE7 == 0x20:
		disp := int8(c.fetch8())
		if c.condition((opcode >> 3) & 0x03) {
			c.jr(disp)
			return 3
		}
		return 2

	// --- LD r8,r8' (0x40-0x7F, except HALT already handled) ---
	case opcode&0xC0 == 0x40:
		dst := c.r8(opcode >> 3)
		src := c.r8(opcode)
		dst.Set(src.Get())
		if opcode>>3&0x07 == 6 || opcode&0x07 == 6 {
			return 2
		}
		return 1

	// --- ALU A,r8 (0x80-0xBF) ---
	case opcode&0xC0 == 0x80:
		v := c.r8(opcode).Get()
		c.aluOp((opcode>>3)&0x07, v)
		if opcode&0x07 == 6 {
			return 2
		}
		return 1

	// --- ALU A,d8 ---
	case opcode&0xC7 == 0xC6:
		c.aluOp((opcode>>3)&0x07, c.fetch8())
		return 2

	// --- RET / RET cc / RETI ---
	case opcode == 0xC9:
		c.ret()
		return 4
	case opcode == 0xD9:
		c.reti()
		return 4
	case opcode&0xE7 == 0xC0:
		if c.condition((opcode >> 3) & 0x03) {
			c.ret()
			return 5
		}
		return 2

	// --- JP a16 / JP cc,a16 / JP (HL) ---
	case opcode == 0xC3:
		c.jp(c.fetch16())
		return 4
	case opcode == 0xE9:
		c.jp(c.HL())
		return 1
	case opcode&0xE7 == 0xC2:
		addr := c.fetch16()
		if c.condition((opcode >> 3) & 0x03) {
			c.jp(addr)
			return 4
		}
		return 3

	// --- CALL a16 / CALL cc,a16 ---
	case opcode == 0xCD:
		c.call(c.fetch16())
		return 6
	case opcode&0xE7 == 0xC4:
		addr := c.fetch16()
		if c.condition((opcode >> 3) & 0x03) {
			c.call(addr)
			return 6
		}
		return 3

	// --- RST n ---
	case opcode&0xC7 == 0xC7:
		c.rst(uint16(opcode & 0x38))
		return 4

	// --- PUSH rr / POP rr ---
	case opcode&0xCF == 0xC5:
		c.push(c.getStackR16((opcode >> 4) & 0x03))
		return 4
	case opcode&0xCF == 0xC1:
		c.setStackR16((opcode>>4)&0x03, c.pop())
		return 3

	// --- ADD SP,r8 / LD HL,SP+r8 / LD SP,HL ---
	case opcode == 0xE8:
		c.SP = c.addSP8(int8(c.fetch8()))
		return 4
	case opcode == 0xF8:
		c.SetHL(c.addSP8(int8(c.fetch8())))
		return 3
	case opcode == 0xF9:
		c.SP = c.HL()
		return 2

	// --- LDH (a8),A / LDH A,(a8) / LD (C),A / LD A,(C) ---
	case opcode == 0xE0:
		c.bus.Write(0xFF00+uint16(c.fetch8()), c.A)
		return 3
	case opcode == 0xF0:
		c.A = c.bus.Read(0xFF00 + uint16(c.fetch8()))
		return 3
	case opcode == 0xE2:
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 2
	case opcode == 0xF2:
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 2

	// --- LD (a16),A / LD A,(a16) ---
	case opcode == 0xEA:
		c.bus.Write(c.fetch16(), c.A)
		return 4
	case opcode == 0xFA:
		c.A = c.bus.Read(c.fetch16())
		return 4
	}

	return 1 // unreachable: every opcode not handled above is caught by isIllegalOpcode
}

// aluOp applies one of the eight ALU operations the 0x80-0xBF/0xC6
// group shares, identified by the 3-bit field that also orders CP/SUB/
// etc. in the mnemonic table: 0=ADD 1=ADC 2=SUB 3=SBC 4=AND 5=XOR 6=OR 7=CP.
func (c *CPU) aluOp(op uint8, v uint8) {
	switch op {
	case 0:
		c.A = c.add8(c.A, v, false)
	case 1:
		c.A = c.add8(c.A, v, c.Carry())
	case 2:
		c.A = c.sub8(c.A, v, false)
	case 3:
		c.A = c.sub8(c.A, v, c.Carry())
	case 4:
		c.A = c.and8(c.A, v)
	case 5:
		c.A = c.xor8(c.A, v)
	case 6:
		c.A = c.or8(c.A, v)
	case 7:
		c.sub8(c.A, v, false) // CP: discard result, flags only
	}
}

// execCB decodes and executes one 0xCB-prefixed opcode, returning the
// number of M-cycles it consumes.
func execCB(c *CPU, opcode uint8) int {
	op := c.r8(opcode)
	isHL := opcode&0x07 == 6
	group := opcode >> 6
	field := (opcode >> 3) & 0x07

	switch group {
	case 0: // rotate/shift/swap family
		v := op.Get()
		switch field {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		case 7:
			v = c.srl(v)
		}
		op.Set(v)
		if isHL {
			return 4
		}
		return 2
	case 1: // BIT b,r8
		c.bit(field, op.Get())
		if isHL {
			return 3
		}
		return 2
	case 2: // RES b,r8
		op.Set(resBit(field, op.Get()))
		if isHL {
			return 4
		}
		return 2
	default: // SET b,r8
		op.Set(setBit(field, op.Get()))
		if isHL {
			return 4
		}
		return 2
	}
}

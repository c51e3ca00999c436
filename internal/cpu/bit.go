package cpu

// bit tests bit n of v, setting Z to its inverse and H always, leaving
// C untouched.
func (c *CPU) bit(n, v uint8) {
	c.SetZero(v&(1<<n) == 0)
	c.SetSubtract(false)
	c.SetHalfCarry(true)
}

func setBit(n, v uint8) uint8 { return v | (1 << n) }
func resBit(n, v uint8) uint8 { return v &^ (1 << n) }

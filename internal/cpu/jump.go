package cpu

// jr reads a signed 8-bit displacement and adds it to PC.
func (c *CPU) jr(disp int8) {
	c.PC = uint16(int32(c.PC) + int32(disp))
}

func (c *CPU) jp(address uint16) {
	c.PC = address
}

func (c *CPU) call(address uint16) {
	c.bus.Push16(&c.SP, c.PC)
	c.PC = address
}

func (c *CPU) ret() {
	c.PC = c.bus.Pop16(&c.SP)
}

func (c *CPU) reti() {
	c.ret()
	c.IRQ.IME = true
}

func (c *CPU) rst(address uint16) {
	c.bus.Push16(&c.SP, c.PC)
	c.PC = address
}

func (c *CPU) push(v uint16) { c.bus.Push16(&c.SP, v) }
func (c *CPU) pop() uint16   { return c.bus.Pop16(&c.SP) }

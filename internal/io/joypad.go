package io

import "github.com/thelolagemann/gomeboy/internal/interrupts"

// Button indexes one of the eight physical buttons, LSB to MSB on a
// little-endian host: A, B, Start, Select, Up, Down, Left, Right --
// the bit layout spec.md §6 assigns to the frontend-owned button_states
// byte.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonStart
	ButtonSelect
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Joypad composes the 0xFF00 register from the frontend's button-state
// byte and the game's direction/action nibble selection, and raises the
// Joypad interrupt on any newly-pressed button the game is listening
// for.
type Joypad struct {
	selectNibble uint8 // bits 4-5 as written by the game; 0 = selected
	prevState    uint8

	irq *interrupts.Service
}

func NewJoypad(irq *interrupts.Service) *Joypad {
	return &Joypad{selectNibble: 0x30, irq: irq}
}

// Sync records the latest frontend button state (spec.md's bit layout:
// bit0=A .. bit7=Right, 1 = pressed) and raises Joypad on any 0->1
// transition the selected nibble is listening for.
func (j *Joypad) Sync(buttonState uint8) {
	rising := buttonState &^ j.prevState
	j.prevState = buttonState

	if rising == 0 {
		return
	}
	listensDirections := j.selectNibble&0x10 == 0
	listensActions := j.selectNibble&0x20 == 0
	actionsRising := rising & 0x0F
	directionsRising := rising >> 4

	if (listensActions && actionsRising != 0) || (listensDirections && directionsRising != 0) {
		j.irq.Request(interrupts.JoypadFlag)
	}
}

// Read returns the 0xFF00 register value given the frontend's current
// button state.
func (j *Joypad) Read(buttonState uint8) uint8 {
	reg := j.selectNibble | 0x0F
	if j.selectNibble&0x10 == 0 {
		reg &^= buttonState >> 4 // directions
	}
	if j.selectNibble&0x20 == 0 {
		reg &^= buttonState & 0x0F // actions
	}
	return reg | 0xC0
}

func (j *Joypad) Write(value uint8) {
	j.selectNibble = value & 0x30
}

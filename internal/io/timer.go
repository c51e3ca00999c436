package io

import "github.com/thelolagemann/gomeboy/internal/interrupts"

// timerDivisors maps TAC's low two bits to the tick threshold that
// advances TIMA once reached, per spec.md §4.5 (÷1024, ÷16, ÷64, ÷256).
var timerDivisors = [4]uint16{1024, 16, 64, 256}

// Timer implements DIV (0xFF04), TIMA (0xFF05), TMA (0xFF06) and TAC
// (0xFF07). Ticks are counted in T-states (1/4194304s).
type Timer struct {
	divCounter uint16 // free-running; DIV register is divCounter>>8
	subCounter uint16 // counts toward the next TIMA increment

	tima, tma, tac uint8

	irq *interrupts.Service
}

func NewTimer(irq *interrupts.Service) *Timer {
	return &Timer{irq: irq}
}

func (t *Timer) enabled() bool { return t.tac&0x04 != 0 }

// Tick advances the timer by the given number of T-states.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.divCounter++
		if !t.enabled() {
			continue
		}
		t.subCounter++
		threshold := timerDivisors[t.tac&0x03]
		if t.subCounter >= threshold {
			t.subCounter -= threshold
			t.tima++
			if t.tima == 0 {
				t.tima = t.tma
				t.irq.Request(interrupts.TimerFlag)
			}
		}
	}
}

func (t *Timer) ReadDIV() uint8 { return uint8(t.divCounter >> 8) }
func (t *Timer) WriteDIV()      { t.divCounter = 0 }

func (t *Timer) ReadTIMA() uint8 { return t.tima }

// WriteTIMA always resets TIMA to 0, regardless of the written value --
// real hardware ignores the data byte on a TIMA write.
func (t *Timer) WriteTIMA(uint8) { t.tima = 0 }

func (t *Timer) ReadTMA() uint8   { return t.tma }
func (t *Timer) WriteTMA(v uint8) { t.tma = v }
func (t *Timer) ReadTAC() uint8   { return t.tac | 0xF8 }
func (t *Timer) WriteTAC(v uint8) { t.tac = v & 0x07 }

package ppu

import (
	"github.com/thelolagemann/gomeboy/internal/ppu/colorcorrect"
	"github.com/thelolagemann/gomeboy/internal/ppu/palette"
)

// bgAttr decodes a CGB background tile-map attribute byte (stored in
// VRAM bank 1 at the same tile-map address as the tile index in bank
// 0).
type bgAttr struct {
	palette  uint8
	bank     uint8
	flipX    bool
	flipY    bool
	priority bool // BG-over-sprite priority; ignored on CGB while LCDC.0 is clear
}

func decodeBGAttr(v uint8) bgAttr {
	return bgAttr{
		palette:  v & 0x07,
		bank:     (v >> 3) & 0x01,
		flipX:    v&0x20 != 0,
		flipY:    v&0x40 != 0,
		priority: v&0x80 != 0,
	}
}

// bgPixel is one composited background/window pixel, retained across
// the sprite pass to resolve priority.
type bgPixel struct {
	colorIdx uint8 // 0-3, the raw BG/window palette index (for DMG LCDC.0 and CGB priority rules)
	attr     bgAttr
}

// renderScanline composites one full 160-pixel line (background,
// window, sprites) into p.working[p.LY], exactly as spec.md §4.4
// describes: one atomic pass per scanline rather than a pixel FIFO.
func (p *PPU) renderScanline() {
	line := int(p.LY)
	if line >= ScreenHeight {
		return
	}

	var lineBuf [ScreenWidth]bgPixel

	bgDrawn := p.LCDC.BGWindowEnabled || p.isCGB
	if bgDrawn {
		p.renderBackgroundLine(line, &lineBuf)
	} else {
		for x := range lineBuf {
			lineBuf[x] = bgPixel{}
		}
	}

	windowDrawnThisLine := false
	if p.LCDC.WindowEnabled && (p.LCDC.BGWindowEnabled || p.isCGB) && int(p.WY) <= line && p.WX <= 166 {
		windowDrawnThisLine = p.renderWindowLine(line, &lineBuf)
	}
	if windowDrawnThisLine {
		p.windowLine++
	}

	for x := 0; x < ScreenWidth; x++ {
		px := lineBuf[x]
		p.working[line][x] = p.bgColor(px)
	}

	if p.LCDC.SpriteEnabled {
		p.renderSpritesLine(line, &lineBuf)
	}
}

func (p *PPU) bgColor(px bgPixel) [3]uint8 {
	if p.isCGB {
		rgb := p.BGPalette.Color(px.attr.palette, px.colorIdx)
		return p.applyTonemap(rgb)
	}
	shades := palette.Monochrome(p.BGP)
	return shades[px.colorIdx]
}

func (p *PPU) applyTonemap(rgb [3]uint8) [3]uint8 {
	r, g, b := colorcorrect.Correct(p.Tonemap, rgb[0], rgb[1], rgb[2])
	return [3]uint8{r, g, b}
}

func (p *PPU) renderBackgroundLine(line int, buf *[ScreenWidth]bgPixel) {
	scrolledY := uint8(line) + p.SCY
	mapBase := p.LCDC.BGTileMapBase()
	tileRow := int(scrolledY) / 8
	rowInTile := int(scrolledY) % 8

	for x := 0; x < ScreenWidth; x++ {
		scrolledX := uint8(x) + p.SCX
		tileCol := int(scrolledX) / 8
		colInTile := int(scrolledX) % 8

		mapOffset := uint16(tileRow*32 + tileCol)
		tileIndex := p.vram[0][mapBase-0x8000+mapOffset]

		var attr bgAttr
		if p.isCGB {
			attr = decodeBGAttr(p.vram[1][mapBase-0x8000+mapOffset])
		}

		row := rowInTile
		col := colInTile
		if attr.flipY {
			row = 7 - row
		}
		if attr.flipX {
			col = 7 - col
		}

		addr := TileDataAddress(tileIndex, p.LCDC.TileDataUnsigned) - 0x8000 + uint16(row*2)
		lo := p.vram[attr.bank][addr]
		hi := p.vram[attr.bank][addr+1]
		pixels := TileRow(lo, hi)

		buf[x] = bgPixel{colorIdx: pixels[col], attr: attr}
	}
}

func (p *PPU) renderWindowLine(line int, buf *[ScreenWidth]bgPixel) bool {
	wx := int(p.WX) - 7
	if wx >= ScreenWidth {
		return false
	}
	mapBase := p.LCDC.WindowTileMapBase()
	tileRow := int(p.windowLine) / 8
	rowInTile := int(p.windowLine) % 8

	drew := false
	for x := 0; x < ScreenWidth; x++ {
		if x < wx {
			continue
		}
		winX := x - wx
		tileCol := winX / 8
		colInTile := winX % 8

		mapOffset := uint16(tileRow*32 + tileCol)
		tileIndex := p.vram[0][mapBase-0x8000+mapOffset]

		var attr bgAttr
		if p.isCGB {
			attr = decodeBGAttr(p.vram[1][mapBase-0x8000+mapOffset])
		}

		row := rowInTile
		col := colInTile
		if attr.flipY {
			row = 7 - row
		}
		if attr.flipX {
			col = 7 - col
		}

		addr := TileDataAddress(tileIndex, p.LCDC.TileDataUnsigned) - 0x8000 + uint16(row*2)
		lo := p.vram[attr.bank][addr]
		hi := p.vram[attr.bank][addr+1]
		pixels := TileRow(lo, hi)

		buf[x] = bgPixel{colorIdx: pixels[col], attr: attr}
		drew = true
	}
	return drew
}

func (p *PPU) renderSpritesLine(line int, buf *[ScreenWidth]bgPixel) {
	sprites := p.OAM.VisibleOnLine(line, p.LCDC.TallSprites)

	// DMG priority: lower X wins, ties broken by OAM order (already the
	// iteration order since VisibleOnLine walks OAM in index order); we
	// sort a copy by X only for DMG so the draw order below resolves
	// correctly, but CGB always uses OAM order regardless of X.
	order := sprites
	if !p.isCGB {
		order = make([]Sprite, len(sprites))
		copy(order, sprites)
		for i := 1; i < len(order); i++ {
			for j := i; j > 0 && order[j].ScreenX() < order[j-1].ScreenX(); j-- {
				order[j], order[j-1] = order[j-1], order[j]
			}
		}
	}

	// Draw in reverse priority order so the highest-priority sprite's
	// Write happens last and visually wins at each pixel.
	for i := len(order) - 1; i >= 0; i-- {
		p.drawSprite(order[i], line, buf)
	}
}

func (p *PPU) drawSprite(s Sprite, line int, buf *[ScreenWidth]bgPixel) {
	height := 8
	tile := s.Tile
	if p.LCDC.TallSprites {
		height = 16
		tile &^= 0x01
	}

	row := line - s.ScreenY()
	if s.FlipY() {
		row = height - 1 - row
	}
	tileIdx := tile
	if p.LCDC.TallSprites && row >= 8 {
		tileIdx = tile | 0x01
		row -= 8
	}

	bank := uint8(0)
	if p.isCGB {
		bank = uint8(s.CGBBank())
	}

	addr := SpriteTileAddress(tileIdx) - 0x8000 + uint16(row*2)
	lo := p.vram[bank][addr]
	hi := p.vram[bank][addr+1]
	pixels := TileRow(lo, hi)

	for col := 0; col < 8; col++ {
		x := s.ScreenX() + col
		if x < 0 || x >= ScreenWidth {
			continue
		}
		srcCol := col
		if s.FlipX() {
			srcCol = 7 - col
		}
		colorIdx := pixels[srcCol]
		if colorIdx == 0 {
			continue // transparent
		}

		if p.spriteHiddenBehindBG(s, buf[x]) {
			continue
		}

		p.working[line][x] = p.spriteColor(s, colorIdx)
	}
}

// spriteHiddenBehindBG implements the DMG/CGB BG-to-OAM priority rules:
// on DMG, LCDC.0 clear disables the whole BG/window layer so sprites
// are never hidden by it; on CGB, LCDC.0 instead only toggles whether
// the BG's own per-tile priority bit and the sprite's OBJ-behind-BG
// attribute bit are honored at all.
func (p *PPU) spriteHiddenBehindBG(s Sprite, bg bgPixel) bool {
	if p.isCGB && !p.LCDC.BGWindowEnabled {
		return false
	}
	if bg.colorIdx == 0 {
		return false
	}
	if p.isCGB && bg.attr.priority {
		return true
	}
	return s.BehindBG()
}

func (p *PPU) spriteColor(s Sprite, colorIdx uint8) [3]uint8 {
	if p.isCGB {
		rgb := p.OBJPalette.Color(uint8(s.CGBPalette()), colorIdx)
		return p.applyTonemap(rgb)
	}
	reg := p.OBP0
	if s.DMGPalette() == 1 {
		reg = p.OBP1
	}
	shades := palette.Monochrome(reg)
	return shades[colorIdx]
}

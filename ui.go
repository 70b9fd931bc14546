package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func (g *Game) handleTextInput() {
	// Create a buffer to store the input characters
	buffer := make([]rune, 0, 16)
	buffer = ebiten.AppendInputChars(buffer)

	// Process printable characters
	for _, char := range buffer {
		g.TextBoxText += strings.ToUpper(string(char))
	}
	g.TextBoxText = strings.TrimLeft(g.TextBoxText, " ")

	// Process backspace key
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if len(g.TextBoxText) > 0 {
			g.TextBoxText = g.TextBoxText[:len(g.TextBoxText)-1]
		}
	}
}

func drawText(screen *ebiten.Image, x, y float64, clr color.Color, textStr string) {
	if len(textStr) == 0 {
		return
	}
	fontFace := basicfont.Face7x13
	textWidth := font.MeasureString(fontFace, textStr).Ceil()
	textHeight := fontFace.Metrics().Ascent.Ceil()

	textImage := ebiten.NewImage(textWidth, textHeight)
	text.Draw(textImage, textStr, fontFace, 0, 10, clr)

	textOpts := &ebiten.DrawImageOptions{}
	textOpts.GeoM.Translate(x, y)

	screen.DrawImage(textImage, textOpts)
}

func (g *Game) DrawTextbox(screen *ebiten.Image, screenWidth, screenHeight int) {
	// Set the textbox dimensions and position
	boxWidth := int(0.8 * float64(screenWidth))
	if boxWidth > 800 {
		boxWidth = 800
	}
	boxHeight := 24
	boxX := (screenWidth - boxWidth) / 2
	boxY := screenHeight - boxHeight - 50

	bgImg := ebiten.NewImage(boxWidth, boxHeight)
	bgImg.Fill(color.RGBA{50, 50, 50, 200})

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(boxX), float64(boxY))
	screen.DrawImage(bgImg, op)

	textX := float64(boxX) + 10
	textY := float64(boxY) + float64(boxHeight)/2 - 5

	drawText(screen, textX, textY, color.White, g.TextBoxText)
}

// DrawLegend lists the loaded routes down the left edge: a color swatch, the
// route id and name, dimmed when the route is deselected.
func (g *Game) DrawLegend(screen *ebiten.Image) {
	ids := g.Routes.All()
	if len(ids) == 0 {
		return
	}

	x := float32(10)
	y := float32(40)
	colors := g.Routes.Colors()
	for _, id := range ids {
		clr := colors[id]
		textColor := color.Color(color.White)
		if !g.Routes.IsSelected(id) {
			clr.A = 80
			textColor = color.RGBA{160, 160, 160, 255}
		}
		vector.DrawFilledRect(screen, x, y, 14, 14, clr, false)
		vector.StrokeRect(screen, x, y, 14, 14, 1, color.RGBA{0, 0, 0, 255}, false)

		label := id
		if name := g.Routes.Name(id); name != "" && name != id {
			label = fmt.Sprintf("%s  %s", id, name)
		}
		drawText(screen, float64(x)+20, float64(y)+2, textColor, label)
		y += 18
	}
}

func drawSquareCrosshair(screen *ebiten.Image, x, y, squareSize, crosshairSize float32, clr color.Color) {
	halfSquareSize := squareSize / 2
	halfCrosshairSize := crosshairSize / 2

	// Draw the square
	vector.StrokeLine(screen, x-halfSquareSize, y-halfSquareSize, x+halfSquareSize, y-halfSquareSize, 1, clr, false)
	vector.StrokeLine(screen, x+halfSquareSize, y-halfSquareSize, x+halfSquareSize, y+halfSquareSize, 1, clr, false)
	vector.StrokeLine(screen, x+halfSquareSize, y+halfSquareSize, x-halfSquareSize, y+halfSquareSize, 1, clr, false)
	vector.StrokeLine(screen, x-halfSquareSize, y+halfSquareSize, x-halfSquareSize, y-halfSquareSize, 1, clr, false)

	// Draw the crosshair lines
	vector.StrokeLine(screen, x-halfCrosshairSize, y, x-halfSquareSize, y, 1, clr, false)
	vector.StrokeLine(screen, x+halfSquareSize, y, x+halfCrosshairSize, y, 1, clr, false)
	vector.StrokeLine(screen, x, y-halfCrosshairSize, x, y-halfSquareSize, 1, clr, false)
	vector.StrokeLine(screen, x, y+halfSquareSize, x, y+halfCrosshairSize, 1, clr, false)
}

package main

import (
	"log"

	"github.com/AdamMil/Chrono-sub000/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	g := game.New()
	ebiten.SetWindowTitle("Chrono Kernel Viewer")
	ebiten.SetWindowSize(g.Layout(0, 0))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

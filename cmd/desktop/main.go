package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/utils"
)

// stepsPerFrame clocks the machine at roughly 6 MHz at 60 fps, enough
// for the reference screen programs to feel instant.
const stepsPerFrame = 100_000

// specialKeys maps host keys to the platform's extended key codes.
// Printable characters arrive through the input-character buffer
// instead.
var specialKeys = []struct {
	key  ebiten.Key
	code uint16
}{
	{ebiten.KeyEnter, 128},
	{ebiten.KeyBackspace, 129},
	{ebiten.KeyArrowLeft, 130},
	{ebiten.KeyArrowUp, 131},
	{ebiten.KeyArrowRight, 132},
	{ebiten.KeyArrowDown, 133},
	{ebiten.KeyHome, 134},
	{ebiten.KeyEnd, 135},
	{ebiten.KeyPageUp, 136},
	{ebiten.KeyPageDown, 137},
	{ebiten.KeyInsert, 138},
	{ebiten.KeyDelete, 139},
	{ebiten.KeyEscape, 140},
}

type Game struct {
	vm        *cpu.Computer
	screenImg *ebiten.Image // reused 512×256 canvas
	key       uint16
	showState bool
}

func heldSpecialKey() (uint16, bool) {
	for _, sk := range specialKeys {
		if ebiten.IsKeyPressed(sk.key) {
			return sk.code, true
		}
	}
	return 0, false
}

func (g *Game) Update() error {
	// The keyboard register reflects the currently held key. A typed
	// character sticks until every key is released, which is how the
	// platform's single-register keyboard behaves.
	if chars := ebiten.AppendInputChars(nil); len(chars) > 0 {
		g.key = uint16(chars[0])
	} else if code, ok := heldSpecialKey(); ok {
		g.key = code
	} else if len(inpututil.AppendPressedKeys(nil)) == 0 {
		g.key = 0
	}
	g.vm.SetKey(g.key)

	for i := 0; i < stepsPerFrame; i++ {
		if g.vm.Halted {
			break
		}
		g.vm.Step()
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}

	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	if g.showState {
		msg := fmt.Sprintf("PC=%d A=%d D=%d KBD=%d halted=%t",
			g.vm.PC, g.vm.A, g.vm.D, g.vm.Key(), g.vm.Halted)
		ebitenutil.DebugPrintAt(screen, msg, 4, 4)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight
}

// loadWords assembles an .asm source or parses an already-assembled
// .hack file into ROM words.
func loadWords(path string) ([]uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".hack") {
		var words []uint16
		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			v, err := strconv.ParseUint(line, 2, 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: not a 16-bit binary word: %q", i+1, line)
			}
			words = append(words, uint16(v))
		}
		return words, nil
	}

	program, errs := asm.Assemble(string(data))
	for _, perr := range errs {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, perr)
	}
	return asm.Words(program), nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: desktop <program.asm|program.hack> [--state]")
		os.Exit(2)
	}
	filename := os.Args[1]
	showState := false
	if len(os.Args) > 2 {
		for _, arg := range os.Args[2:] {
			showState = arg == "--state"
		}
	}

	fullPath, _, err := utils.GetPathInfo(filename)
	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}

	words, err := loadWords(fullPath)
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	vm := cpu.NewComputer()
	vm.LoadROM(words)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*2, cpu.ScreenHeight*2)
	ebiten.SetWindowTitle("Hack Machine")

	game := &Game{vm: vm, showState: showState}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

package maze

import "github.com/vovakirdan/gridstage/internal/art"

// builtinLevel is the default maze when no level file is selected.
var builtinLevel = art.LevelSpec{
	ID:      "maze-builtin",
	Name:    "Coin Maze",
	Beneath: ' ',
	Art: []string{
		"#############",
		"#P  $   #   #",
		"# ### ### # #",
		"# #   $   # #",
		"# # ##### # #",
		"# #     # # #",
		"# ##### # # #",
		"#   $   # #X#",
		"####### # # #",
		"#     $   # #",
		"# ####### # #",
		"#         $ #",
		"#############",
	},
	// Walls behind coins behind the player.
	ZOrder: []rune{WallChar, CoinChar, PlayerChar},
}

package render

import (
	"github.com/gdamore/tcell/v2"
)

// Study palette
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38) // Tokyo Night background

	RgbGoal            = tcell.NewRGBColor(255, 80, 80)   // Goal target
	RgbGoalSelected    = tcell.NewRGBColor(50, 255, 50)   // Goal flash after selection
	RgbDistractor      = tcell.NewRGBColor(200, 200, 200) // Idle distractor
	RgbDistractorHover = tcell.NewRGBColor(255, 255, 0)   // Nearest distractor under the bubble
	RgbCaptured        = tcell.NewRGBColor(0, 200, 200)   // Inside min radius
	RgbMissed          = tcell.NewRGBColor(120, 40, 40)   // Selected distractor

	RgbBubble      = tcell.NewRGBColor(100, 150, 255)
	RgbPointCursor = tcell.NewRGBColor(255, 165, 0)

	RgbStatusBar  = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbStatusText = tcell.NewRGBColor(0, 0, 0)
	RgbSummary    = tcell.NewRGBColor(255, 255, 255)
)

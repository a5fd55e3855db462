package app

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"

	KeyNavLogin    = "l"
	KeyNavAbout    = "a"
	KeyNavContact  = "c"
	KeyNavUpload   = "ctrl+u"
	KeyNavSymptoms = "ctrl+p"
	KeyNavResults  = "ctrl+r"
	KeyLogout      = "ctrl+l"

	KeyToggleRole = "ctrl+t"
	KeyToggleMode = "ctrl+s"

	KeyRefresh    = "r"
	KeyClearOwner = "d"
	KeyClearAll   = "D"
	KeyDownload   = "s"
	KeyConfirmYes = "y"
	KeyConfirmNo  = "n"
)

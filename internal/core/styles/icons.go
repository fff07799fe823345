package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconCheck     = "✓"
	IconUnchecked = "○"
	IconCursor    = "›"
	IconCalendar  = "\U000F00ED" // 󰃭
	IconUndo      = "\U000F054C" // 󰕌
)

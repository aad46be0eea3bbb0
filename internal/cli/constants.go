package cli

const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2

	// Progress display modes for the fetch command.
	ProgressLog = "log"
	ProgressBar = "bar"
)

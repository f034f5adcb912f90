package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// ComposerHeight is the number of lines for the composer textarea
	ComposerHeight = 3

	// ComposerBorderHeight is the border size around the composer
	ComposerBorderHeight = 2

	// InputPaddingWidth is the horizontal padding inside the composer (Padding(0, 1) = 1 left + 1 right)
	InputPaddingWidth = 2

	// ComposerTotalHeight is the total height of the composer (textarea + borders)
	ComposerTotalHeight = ComposerHeight + ComposerBorderHeight

	// BubbleMaxWidth caps the outer width of a message bubble
	BubbleMaxWidth = 60

	// DefaultWrapWidth is the default width for text wrapping when viewport width is unknown
	DefaultWrapWidth = 80

	// MinTerminalWidth and MinTerminalHeight clamp layout math on tiny terminals
	MinTerminalWidth  = 40
	MinTerminalHeight = 10
)

// Message box limits
const (
	// MaxSenderNameWidth truncates long sender names in the bubble header
	MaxSenderNameWidth = 24

	// ComposerCharLimit bounds a single outbound message
	ComposerCharLimit = 4000
)

package script

// Script tokens.
const (
	// CommentPrefix starts a comment line; trailing comments are allowed too.
	CommentPrefix = "#"

	KeywordOpen     = "open"
	KeywordAlloc    = "alloc"
	KeywordFree     = "free"
	KeywordInspect  = "inspect"
	KeywordValidate = "validate"
	KeywordClose    = "close"
)

// ScannerMaxLineSize bounds a single script line.
const ScannerMaxLineSize = 64 * 1024

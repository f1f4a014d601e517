package css

var (
	ExtractCharset = extractCharset
	ExtractMedia   = extractMedia
	IsClosingBrace = isClosingBrace
)

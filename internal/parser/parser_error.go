package parser

// Structured parser error handling (ParserError, NewParserError,
// skipToEndOfLine, peekError, noPrefixParseFnError) lives in parser.go
// alongside the Pratt core it instruments.

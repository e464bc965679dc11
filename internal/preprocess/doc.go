// Package preprocess evaluates conditional blocks embedded as line comments
// in replacement snippets.
//
// A replacement may wrap lines in markers:
//
//	// @IF debug
//	console.log("only in debug builds");
//	// @END
//	// @UNLESS test
//	scheduleFlush();
//	// @END
//
// Blocks nest. A content line is kept only if every enclosing block holds,
// and one indent unit (a tab) is stripped from it per enclosing block.
// Marker lines are always dropped. Unknown flag names are false.
package preprocess

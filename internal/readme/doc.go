// Package readme extracts transformation rules from README files.
//
// A README opts in by linking to the anchor fragment somewhere in a
// paragraph:
//
//	## Transformations
//
//	These rules are picked up by [elm-pipeline](#elm-pipeline-transforms-5f0c5d9e-2a7b-4f0e-9a4d-1c3b7e8f6a21).
//
//	```js
//	var $author$project$Main$slow = function (x) {
//	    return expensive(x);
//	};
//	```
//
//	```js
//	var $author$project$Main$slow = cheap;
//	```
//
// Every fenced block after the anchor, up to the next heading of level 1 to
// 3, is collected. Blocks pair up in order: find, replace, find, replace.
// Only top-level blocks of the document are considered.
package readme

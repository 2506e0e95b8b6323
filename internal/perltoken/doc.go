// Package perltoken tokenizes Perl source into a mutable tree of typed tokens, with just enough fidelity to locate embedded POD, comments, literals, and the __END__ / __DATA__
// sections.
//
// Tree shape:
//   - The root is a KindDocument. Its children are statements, whitespace, comments, POD blocks, and at most one trailing section.
//   - A KindStatement runs up to and including its ";" (or up to the closing "}" of a compound statement such as "sub foo { ... }").
//   - A KindBlock holds "{" ... "}" and the statements inside it.
//   - A KindEndSection holds the __END__ separator followed by KindEndMarker text and any POD blocks after it. A KindDataSection holds the __DATA__ separator and a single
//     KindDataMarker.
//
// Invariants:
//   - Tree.Serialize() of a freshly tokenized tree is byte-identical to the input.
//   - Every leaf's Line is the 1-based line on which it starts.
//   - POD blocks (KindDocumentation) start at the beginning of a line with "=" followed by a letter, and end after a "=cut" line or at EOF.
//
// Regular expressions written with "/" are recognized heuristically (a "/" where an operand is expected starts a match). Formats and other exotic quoting constructs are not
// modeled; their contents are tokenized as ordinary code.
package perltoken

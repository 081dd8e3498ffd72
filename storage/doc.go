// Package storage implements the on-disk inverted index segment: a term
// dictionary over block-chunked, Roaring-Bitmap-compressed posting lists.
// Both the Builder's spilled partial segments and the Merger's final index
// share this format, so the Posting Reader can seek into either without a
// separate on-disk representation for "partial" vs "final".
//
// # File Format
//
// ## File Header
//   - Magic Number (4 bytes): 0x007E8B11
//   - Version (1 byte)
//   - DocIDs bitmap (RoaringBitmap): every doc-id present in this segment
//   - Number of Terms (4 bytes)
//
// ## Terms Section (repeated Number-of-Terms times)
//   - Term Length (2 bytes) + Term String (UTF-8)
//   - Total Documents (4 bytes): document frequency for this term
//   - Number of Blocks (4 bytes)
//
// ## Blocks Section (repeated Number-of-Blocks times per term)
//   - Min DocID / Max DocID (4 bytes each)
//   - Bitmap Container Type (1 byte): 1 = ArrayContainer, 2 = BitmapContainer
//   - Compressed DocID Storage (RoaringBitmap container)
//   - Number of Term Frequencies (4 bytes)
//   - Term Frequencies ([]float32): one per doc-id, in bitmap rank order
//   - Important Flags ([]byte, one per doc-id, 0/1): true iff the posting's
//     important-flag is set (spec.md §3) — added on top of the teacher's
//     original format, which had no notion of field importance.
package storage

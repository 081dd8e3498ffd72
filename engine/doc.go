// Package engine is the Query Planner / Ranker (component G). It evaluates
// a strict boolean-AND query across a segment's posting lists using the
// block-based min-heap merge strategy, then scores surviving candidates
// with smoothed TF-IDF, an importance boost, and a complete-match bonus.
//
// # Features
//
// - Supports multi-term queries across multiple segments.
// - Efficient block-based processing using min-heaps for priority management.
// - Smoothed TF-IDF scoring with an importance boost and complete-match bonus.
// - Supports extension with custom ranking functions.
//
// # TODOs
//
// - Parallelize query execution for better performance on multi-core systems.
package engine

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package answer decides whether free-text guesses match known answers.
//
// Every comparison runs on normalized text: lowercase, accents folded away,
// letters, digits and single spaces only. On top of that the package layers
// exact, substring, word-level and edit-distance checks. All functions are
// pure and safe for concurrent use.
package answer

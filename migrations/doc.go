// Package migrations holds this project's migration units. Each unit lives
// in its own file, registers itself in init, and is never edited once it has
// been applied anywhere. New files come from "migrator prog add" or are
// written by hand.
package migrations

// Package schema names the tables and columns of the postgres store so
// queries never spell identifiers by hand.
package schema

// ReaderProgressTable represents the 'reader.progress' table
type ReaderProgressTable struct {
	Table       string
	ComicID     string
	CurrentPage string
	LastRead    string
}

// ReaderProgress is the schema definition for reader.progress
var ReaderProgress = ReaderProgressTable{
	Table:       "reader.progress",
	ComicID:     "comicid",
	CurrentPage: "currentpage",
	LastRead:    "lastread",
}

// Columns returns all standard column names, in scan order.
func (t ReaderProgressTable) Columns() []string {
	return []string{t.ComicID, t.CurrentPage, t.LastRead}
}

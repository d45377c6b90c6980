package schema

// ReaderSettingsTable represents the 'reader.setting' table
type ReaderSettingsTable struct {
	Table     string
	Key       string
	Value     string
	UpdatedAt string
}

// ReaderSettings is the schema definition for reader.setting
var ReaderSettings = ReaderSettingsTable{
	Table:     "reader.setting",
	Key:       "key",
	Value:     "value",
	UpdatedAt: "updatedat",
}

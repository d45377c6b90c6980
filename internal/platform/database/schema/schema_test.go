package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicreader/internal/platform/database/schema"
)

func TestReaderProgressColumns(t *testing.T) {
	assert.Equal(t, []string{"comicid", "currentpage", "lastread"}, schema.ReaderProgress.Columns())
	assert.Equal(t, "reader.setting", schema.ReaderSettings.Table)
}

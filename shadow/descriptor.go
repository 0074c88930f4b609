package shadow

import "fmt"

// Default shadow-table layout constants for a vec0 index with one vector
// column, three auxiliary metadata columns, and three metadata text
// columns. These match the layout the archive app provisions for
// vec_messages and vec_image_descriptions.
const (
	defaultMetadataChunks = 3
	defaultMetadataTexts  = 3

	// KeyColumn is the payload column of the metadata text tables. The
	// text table at the key ordinal stores the primary record's id, which
	// is how a logical identifier reverse-maps to a row address.
	KeyColumn = "data"
)

// TableSet is the declarative descriptor of one vec0 index: the ordered
// list of shadow tables that jointly represent it, which of them is the
// live-row registry, and where the foreign key back to the primary record
// lives. Adding a shadow table to an index means adding it here; the prune
// package iterates this list and never names tables itself.
type TableSet struct {
	// Index is the virtual table name, e.g. "vec_messages".
	Index string

	// Tables lists every shadow table, in the order mutations are applied.
	Tables []string

	// Registry is the rowid registry table; its live row count is the
	// index's entry count.
	Registry string

	// KeyTable is the metadata text table whose KeyColumn stores the
	// primary record id.
	KeyTable string
}

// ForIndex builds the descriptor for a vec0 index following the standard
// shadow naming scheme: _rowids, _chunks, _vector_chunks00, then
// metadataChunks auxiliary chunk tables and metadataTexts text tables.
// keyOrdinal selects which metadata text table carries the record id.
func ForIndex(index string, metadataChunks, metadataTexts, keyOrdinal int) (TableSet, error) {
	if keyOrdinal < 0 || keyOrdinal >= metadataTexts {
		return TableSet{}, fmt.Errorf("shadow: key ordinal %d out of range (have %d metadata text tables)", keyOrdinal, metadataTexts)
	}
	ts := TableSet{
		Index:    index,
		Registry: index + "_rowids",
	}
	ts.Tables = append(ts.Tables,
		index+"_rowids",
		index+"_chunks",
		index+"_vector_chunks00",
	)
	for i := 0; i < metadataChunks; i++ {
		ts.Tables = append(ts.Tables, fmt.Sprintf("%s_metadatachunks%02d", index, i))
	}
	for i := 0; i < metadataTexts; i++ {
		name := fmt.Sprintf("%s_metadatatext%02d", index, i)
		ts.Tables = append(ts.Tables, name)
		if i == keyOrdinal {
			ts.KeyTable = name
		}
	}
	return ts, nil
}

// Messages returns the descriptor for the vec_messages index: nine shadow
// tables, with the message id stored in vec_messages_metadatatext01.
func Messages() TableSet {
	ts, err := ForIndex("vec_messages", defaultMetadataChunks, defaultMetadataTexts, 1)
	if err != nil {
		// Static arguments; unreachable.
		panic(err)
	}
	return ts
}

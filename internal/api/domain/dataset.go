package domain

const (
	DefaultEncoding  = "utf-8"
	DefaultDelimiter = ","
	DefaultQuotechar = `"`
)

// DataSet is an uploaded tabular contact list.
type DataSet struct {
	ID        string
	Name      string
	File      string // blob key, empty until uploaded
	Encoding  string // WHATWG encoding label
	Delimiter string // one character
	Quotechar string // one character
	HasHeader bool
	Fields    []string
	Owned
	Audit
}

// DataSetFilename recovers the uploaded filename from the stored key.
func DataSetFilename(d DataSet) (string, error) {
	return storedFilename(d.File)
}

// DataSetKey is the blob key for one upload of a dataset's file.
func DataSetKey(tenantID, datasetID, uploadID, filename string) string {
	return "datasets/" + tenantID + "/" + datasetID + "/" + uploadID + "/" + EncodeFilename(filename)
}

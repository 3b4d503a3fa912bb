package sqlbridge

// QueryResult holds the outcome of one statement execution. Rows from
// every result set are concatenated in production order with no
// marker separating result sets.
type QueryResult struct {
	Rows     [][]string
	Warnings string
}

// HasWarnings reports whether any warning was collected.
func (r *QueryResult) HasWarnings() bool {
	return r.Warnings != ""
}

// appendWarning adds one warning line. Empty messages are dropped.
func (r *QueryResult) appendWarning(message string) {
	if message == "" {
		return
	}
	r.Warnings += "Warning: " + message + "\n"
}
